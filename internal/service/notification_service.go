package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	mqcontracts "pacta-backend/contracts/mq"
	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
	"pacta-backend/pkg/metrics"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NotificationStore is the persistence surface the service needs.
type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID int64, limit, offset int, category string) ([]*model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID int64, category string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID int64, category string) (int64, error)
	Delete(ctx context.Context, userID, notificationID int64) error
	DeleteOldRead(ctx context.Context, cutoff time.Time) (int64, error)
}

// BadgeNotifier pushes unread-badge updates to real-time listeners.
type BadgeNotifier interface {
	PublishBadge(ctx context.Context, userID int64, event string, unread int64)
}

// EventPublisher publishes durable domain events.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type CreateNotificationInput struct {
	UserID    int64
	Type      model.NotificationType
	Priority  model.NotificationPriority
	Title     string
	Message   string
	Category  string
	Metadata  map[string]string
	ExpiresAt *time.Time
}

// ListOptions selects one page of notifications. Zero Page/Limit mean
// "absent" and fall back to the defaults; callers with explicit user
// input must reject zero before building the options.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
}

// NotificationPage is one page of notifications plus paging metadata.
type NotificationPage struct {
	Notifications []*model.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int64                 `json:"total_pages"`
}

type NotificationService struct {
	store     NotificationStore
	notifier  BadgeNotifier
	publisher EventPublisher
	logger    *zap.Logger
}

func NewNotificationService(
	store NotificationStore,
	notifier BadgeNotifier,
	publisher EventPublisher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores a new unread notification. Source tags where the
// notification came from (api, event, scheduler) for metrics only.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput, source string) (*model.Notification, error) {
	if input.UserID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}
	if !input.Type.Valid() {
		return nil, apperr.Validation("invalid_type", "unknown notification type")
	}
	if input.Priority == "" {
		input.Priority = model.NotificationPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperr.Validation("invalid_priority", "unknown notification priority")
	}
	if input.Title == "" || input.Message == "" {
		return nil, apperr.Validation("missing_content", "title and message are required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now()) {
		return nil, apperr.Validation("invalid_expiry", "expires_at must be in the future")
	}

	var metadata json.RawMessage
	if len(input.Metadata) > 0 {
		b, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, apperr.Validation("invalid_metadata", "metadata is not serializable")
		}
		metadata = b
	}

	n := &model.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Priority:  input.Priority,
		Title:     input.Title,
		Message:   input.Message,
		Category:  input.Category,
		Metadata:  metadata,
		ExpiresAt: input.ExpiresAt,
	}

	if err := s.store.Insert(ctx, n); err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.IncrementNotificationCreated(string(n.Type), source)
	s.publishBadge(ctx, n.UserID, "created")

	return n, nil
}

// List returns one page of the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, opts ListOptions) (*NotificationPage, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}
	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.Page < 1 {
		return nil, apperr.Validation("invalid_page", "page must be >= 1")
	}
	if opts.Limit == 0 {
		opts.Limit = defaultPageLimit
	}
	if opts.Limit < 1 || opts.Limit > maxPageLimit {
		return nil, apperr.Validation("invalid_limit", "limit must be between 1 and 100")
	}

	offset := (opts.Page - 1) * opts.Limit
	notifications, total, err := s.store.List(ctx, userID, opts.Limit, offset, opts.Category)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := total / int64(opts.Limit)
	if total%int64(opts.Limit) != 0 {
		totalPages++
	}

	return &NotificationPage{
		Notifications: notifications,
		Total:         total,
		Page:          opts.Page,
		Limit:         opts.Limit,
		TotalPages:    totalPages,
	}, nil
}

// UnreadCount counts the caller's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64, category string) (int64, error) {
	if userID <= 0 {
		return 0, apperr.Authorization("missing_user", "user not authenticated")
	}

	count, err := s.store.UnreadCount(ctx, userID, category)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// MarkAsRead flips one notification to read. A notification that does
// not exist and one owned by someone else fail the same way.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	if userID <= 0 {
		return apperr.Authorization("missing_user", "user not authenticated")
	}

	if err := s.store.MarkAsRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification_not_found", "notification not found")
		}
		return apperr.Internal(err)
	}

	metrics.NotificationReadCount.Inc()
	s.publishBadge(ctx, userID, "read")
	return nil
}

// MarkAllAsRead flips all of the caller's unread notifications to read
// and returns the number affected.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64, category string) (int64, error) {
	if userID <= 0 {
		return 0, apperr.Authorization("missing_user", "user not authenticated")
	}

	affected, err := s.store.MarkAllAsRead(ctx, userID, category)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	s.publishBadge(ctx, userID, "read_all")
	return affected, nil
}

// Delete removes one notification owned by the caller.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID int64) error {
	if userID <= 0 {
		return apperr.Authorization("missing_user", "user not authenticated")
	}

	if err := s.store.Delete(ctx, userID, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("notification_not_found", "notification not found")
		}
		return apperr.Internal(err)
	}

	s.publishBadge(ctx, userID, "deleted")
	return nil
}

// CleanupOld removes read notifications older than thresholdDays across
// all users. Elevated privilege is enforced by the routing layer, not
// here. The age predicate makes repeated runs idempotent.
func (s *NotificationService) CleanupOld(ctx context.Context, thresholdDays int) (int64, error) {
	if thresholdDays < 1 {
		return 0, apperr.Validation("invalid_threshold", "threshold_days must be >= 1")
	}

	cutoff := time.Now().AddDate(0, 0, -thresholdDays)
	deleted, err := s.store.DeleteOldRead(ctx, cutoff)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	metrics.NotificationCleanupDeleted.Add(float64(deleted))
	s.logger.Info("Notification cleanup completed",
		zap.Int("threshold_days", thresholdDays),
		zap.Int64("deleted", deleted),
	)

	if s.publisher != nil {
		payload := mqcontracts.NotificationCleanupPayload{
			ThresholdDays: thresholdDays,
			Deleted:       deleted,
			RanAt:         time.Now(),
		}
		if err := s.publisher.Publish("notification.cleanup", payload); err != nil {
			s.logger.Warn("Failed to publish notification.cleanup event", zap.Error(err))
		}
	}

	return deleted, nil
}

// publishBadge refreshes the owner's unread badge after a mutation.
func (s *NotificationService) publishBadge(ctx context.Context, userID int64, event string) {
	if s.notifier == nil {
		return
	}

	unread, err := s.store.UnreadCount(ctx, userID, "")
	if err != nil {
		s.logger.Warn("Failed to count unread for badge update",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	s.notifier.PublishBadge(ctx, userID, event, unread)
}
