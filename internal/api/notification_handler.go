package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/service"
)

// NotificationService is the operation surface the handlers expose.
type NotificationService interface {
	List(ctx context.Context, userID int64, opts service.ListOptions) (*service.NotificationPage, error)
	UnreadCount(ctx context.Context, userID int64, category string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID int64, category string) (int64, error)
	Delete(ctx context.Context, userID, notificationID int64) error
	CleanupOld(ctx context.Context, thresholdDays int) (int64, error)
}

type NotificationHandler struct {
	notifications           NotificationService
	defaultCleanupThreshold int
	logger                  *zap.Logger
}

func NewNotificationHandler(notifications NotificationService, defaultCleanupThreshold int, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications:           notifications,
		defaultCleanupThreshold: defaultCleanupThreshold,
		logger:                  logger,
	}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	opts := service.ListOptions{
		Category: c.Query("category"),
	}

	// A zero in ListOptions means "absent"; an explicit ?page=0 or
	// ?limit=0 is rejected here rather than coerced to the default.
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			respondError(c, h.logger, apperr.Validation("invalid_page", "page must be an integer >= 1"))
			return
		}
		opts.Page = page
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			respondError(c, h.logger, apperr.Validation("invalid_limit", "limit must be an integer >= 1"))
			return
		}
		opts.Limit = limit
	}

	page, err := h.notifications.List(c.Request.Context(), userID, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UnreadCount handles GET /notifications/unread
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkAsRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "notification id must be an integer"))
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MarkAllAsRead handles PUT /notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllAsRead(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "updated": updated})
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "notification id must be an integer"))
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Cleanup handles POST /notifications/cleanup (admin only, enforced by
// the router's RBAC middleware).
func (h *NotificationHandler) Cleanup(c *gin.Context) {
	var req struct {
		ThresholdDays int `json:"threshold_days"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.logger, apperr.Validation("invalid_body", "invalid request body"))
			return
		}
	}
	if req.ThresholdDays == 0 {
		req.ThresholdDays = h.defaultCleanupThreshold
	}

	deleted, err := h.notifications.CleanupOld(c.Request.Context(), req.ThresholdDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "deleted": deleted})
}
