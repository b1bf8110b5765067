package httpapi

import (
	"net/http"
	"strconv"

	"postfeed/internal/config"
	"postfeed/internal/core/post"
	assetPort "postfeed/internal/ports/asset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// allowedImageTypes are the upload content types kept; anything else is
// ignored as if no file was sent.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

type PostController struct {
	pc      PostUseCase
	uploads assetPort.Store
}

func NewPostController(pc PostUseCase, uploads assetPort.Store) *PostController {
	return &PostController{pc: pc, uploads: uploads}
}

func (ctl *PostController) ListFeed(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		respondError(c, post.ErrValidationFailed)
		return
	}
	res, err := ctl.pc.ListFeed(c.Request.Context(), page, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetched posts successfully.", "posts": res.Posts, "totalItems": res.TotalItems})
}

func (ctl *PostController) GetPost(c *gin.Context) {
	p, err := ctl.pc.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post fetched.", "post": p})
}

func (ctl *PostController) CreatePost(c *gin.Context) {
	imagePath, err := ctl.saveUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := ctl.pc.CreatePost(c.Request.Context(), c.GetString("userID"), c.PostForm("title"), c.PostForm("content"), imagePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully!", "post": res.Post, "creator": res.Creator})
}

// UpdatePost takes a new image file, or the current path in the image field.
func (ctl *PostController) UpdatePost(c *gin.Context) {
	imagePath, err := ctl.saveUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if imagePath == "" && c.PostForm("image") == "" {
		respondError(c, post.ErrValidationFailed)
		return
	}
	p, err := ctl.pc.UpdatePost(c.Request.Context(), c.GetString("userID"), c.Param("postId"), c.PostForm("title"), c.PostForm("content"), imagePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated!", "post": p})
}

func (ctl *PostController) DeletePost(c *gin.Context) {
	if err := ctl.pc.DeletePost(c.Request.Context(), c.GetString("userID"), c.Param("postId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted post."})
}

func (ctl *PostController) ListOwned(c *gin.Context) {
	ids, err := ctl.pc.ListOwned(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": ids})
}

// saveUpload stores the image form file and returns its path, or "" when
// there is no acceptable file.
func (ctl *PostController) saveUpload(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	if !allowedImageTypes[fh.Header.Get("Content-Type")] {
		config.Logger.Debug("upload ignored", zap.String("filename", fh.Filename), zap.String("type", fh.Header.Get("Content-Type")))
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ctl.uploads.Save(c.Request.Context(), fh.Filename, f)
}
