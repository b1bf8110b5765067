package httpapi

import (
	"context"
	"net/http"

	"postfeed/internal/adapters/httpapi/middleware"
	ws "postfeed/internal/adapters/websocket"
	assetPort "postfeed/internal/ports/asset"
	postPort "postfeed/internal/ports/post"
	userPort "postfeed/internal/ports/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// UserUseCase is the inbound port for signup and login.
type UserUseCase interface {
	LoginUser(ctx context.Context, email, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, email, name, password string) (*userPort.UserDTO, error)
}

// PostUseCase is the inbound port for the feed.
type PostUseCase interface {
	ListFeed(ctx context.Context, page, pageSize int) (*postPort.FeedPage, error)
	GetPost(ctx context.Context, postID string) (*postPort.PostDTO, error)
	CreatePost(ctx context.Context, requesterID, title, content, imagePath string) (*postPort.CreateResult, error)
	UpdatePost(ctx context.Context, requesterID, postID, title, content, newImagePath string) (*postPort.PostDTO, error)
	DeletePost(ctx context.Context, requesterID, postID string) error
	ListOwned(ctx context.Context, requesterID string) ([]string, error)
}

type RouterConfig struct {
	JWTSecret      []byte
	ImageDir       string
	AllowedOrigins []string
}

// SetupRoutes only routes. Use cases and adapters are injected from main.
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	uploads assetPort.Store,
	hub *ws.Hub,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.Default()
	uc := NewUserController(userUC)
	pc := NewPostController(postUC, uploads)
	sc := NewSocketController(hub, cfg.AllowedOrigins)
	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	if cfg.ImageDir != "" {
		r.Static("/images", cfg.ImageDir)
	}

	a := r.Group("/auth")
	a.PUT("/signup", uc.RegisterUser)
	a.POST("/login", uc.LoginUser)

	f := r.Group("/feed")
	f.GET("/posts", auth, pc.ListFeed)
	f.GET("/post/:postId", auth, pc.GetPost)
	f.POST("/post", auth, pc.CreatePost)
	f.PUT("/post/:postId", auth, pc.UpdatePost)
	f.DELETE("/post/:postId", auth, pc.DeletePost)
	f.GET("/mine", auth, pc.ListOwned)

	r.GET("/ws", sc.Connect)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": hub.GetClientCount()})
	})
	return r
}

// WithCORS lets browser clients on other origins call the API.
// An empty origin list allows any origin.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(h)
}
