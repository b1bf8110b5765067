package httpapi

import (
	"errors"
	"net/http"

	"postfeed/internal/config"
	"postfeed/internal/core/post"
	"postfeed/internal/core/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a use case error to a status and a stable message.
// Validation details go out in data; everything else stays in the log.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong."
	var data any

	switch {
	case errors.Is(err, post.ErrValidationFailed), errors.Is(err, user.ErrInvalidInput):
		status, message, data = http.StatusUnprocessableEntity, "Validation failed, entered data is incorrect.", err.Error()
	case errors.Is(err, user.ErrAlreadyExists):
		status, message = http.StatusUnprocessableEntity, "E-Mail address already exists!"
	case errors.Is(err, post.ErrNotFound):
		status, message = http.StatusNotFound, "Could not find post."
	case errors.Is(err, post.ErrForbidden):
		status, message = http.StatusForbidden, "Not authorized!"
	case errors.Is(err, user.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password."
	}

	if status >= http.StatusInternalServerError {
		config.Logger.Error("❌ Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		config.Logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message, "data": data})
}
