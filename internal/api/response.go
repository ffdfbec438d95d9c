package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pacta-backend/internal/apperr"
	"pacta-backend/pkg/logger"
)

// respondError renders a service error as the structured error body.
// Internal errors log their detail server-side and render a generic
// message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	appErr := apperr.As(err)

	if appErr.Kind == apperr.KindInternal {
		logger.WithTrace(c.Request.Context(), log).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(appErr.HTTPStatus(), gin.H{
		"status":  "error",
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// currentUserID reads the authenticated user's ID set by the auth
// middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"code":    "not_authenticated",
			"message": "user not authenticated",
		})
		return 0, false
	}

	id, ok := userID.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"code":    "internal_error",
			"message": "internal error",
		})
		return 0, false
	}
	return id, true
}
