package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "pacta-backend/contracts/mq"
	"pacta-backend/internal/model"
	"pacta-backend/internal/service"
	"pacta-backend/pkg/trace"
	"pacta-backend/pkg/util"
)

const maxHandlerRetries = 5

// NotificationCreator creates notification rows from event input.
type NotificationCreator interface {
	Create(ctx context.Context, input service.CreateNotificationInput, source string) (*model.Notification, error)
}

// EventDeduper gates events to exactly-once processing.
type EventDeduper interface {
	AcquireOnce(ctx context.Context, handler string, eventKey string) bool
	Release(ctx context.Context, handler string, eventKey string)
}

// RetryCounter tracks per-event retry budgets.
type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// DeadLetterPublisher parks messages whose retries are exhausted.
type DeadLetterPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// NotificationRequestedHandler turns notification.requested events into
// notification rows.
type NotificationRequestedHandler struct {
	notifications NotificationCreator
	deduper       EventDeduper
	retryCounter  RetryCounter
	publisher     DeadLetterPublisher
	logger        *zap.Logger
}

func NewNotificationRequestedHandler(
	notifications NotificationCreator,
	deduper EventDeduper,
	retryCounter RetryCounter,
	publisher DeadLetterPublisher,
	logger *zap.Logger,
) *NotificationRequestedHandler {
	return &NotificationRequestedHandler{
		notifications: notifications,
		deduper:       deduper,
		retryCounter:  retryCounter,
		publisher:     publisher,
		logger:        logger,
	}
}

func (h *NotificationRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in NotificationRequestedHandler",
				zap.Any("panic", r),
			)
		}
	}()

	var p mqcontracts.NotificationRequestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// malformed payload, retrying cannot help: ack
		h.logger.Error("Failed to unmarshal notification.requested payload (non-retryable)",
			zap.Error(err),
		)
		return nil
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}

	if !h.deduper.AcquireOnce(ctx, "notification.requested", p.EventID) {
		h.logger.Info("Duplicate notification.requested event skipped",
			zap.String("event_id", p.EventID),
			zap.Int64("user_id", p.UserID),
		)
		return nil
	}

	h.logger.Info("Creating notification from event",
		zap.String("event_id", p.EventID),
		zap.Int64("user_id", p.UserID),
		zap.String("type", p.Type),
	)

	input := service.CreateNotificationInput{
		UserID:   p.UserID,
		Type:     model.NotificationType(p.Type),
		Priority: model.NotificationPriority(p.Priority),
		Title:    p.Title,
		Message:  p.Message,
		Category: p.Category,
		Metadata: p.Metadata,
	}

	if _, err := h.notifications.Create(ctx, input, "event"); err != nil {
		isRetryable, errType := util.IsRetryableError(err)
		h.logger.Error("Failed to create notification from event",
			zap.String("event_id", p.EventID),
			zap.Int64("user_id", p.UserID),
			zap.String("error_type", errType),
			zap.Bool("retryable", isRetryable),
			zap.Error(err),
		)
		if !isRetryable {
			return nil
		}

		// Let the redelivered message through the dedup gate.
		h.deduper.Release(ctx, "notification.requested", p.EventID)

		retryKey := util.FormatRetryKey("notification.requested", p.EventID)
		count, counterErr := h.retryCounter.IncrementAndGet(ctx, retryKey)
		if counterErr != nil {
			h.logger.Warn("Retry counter unavailable, requeueing anyway",
				zap.String("event_id", p.EventID),
				zap.Error(counterErr),
			)
			return err
		}

		if !util.ShouldRetry(count, maxHandlerRetries, isRetryable) {
			// retries exhausted: park the message and ack
			h.logger.Error("Retries exhausted, publishing to DLQ",
				zap.String("event_id", p.EventID),
				zap.Int64("retry_count", count),
			)
			if dlqErr := h.publisher.PublishToDLQ("notification.requested", raw, err.Error()); dlqErr != nil {
				h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
			}
			return nil
		}

		return err
	}

	// Successful processing resets the retry budget for this event.
	_ = h.retryCounter.Reset(ctx, util.FormatRetryKey("notification.requested", p.EventID))

	h.logger.Info("Notification created from event",
		zap.String("event_id", p.EventID),
		zap.Int64("user_id", p.UserID),
	)
	return nil
}
