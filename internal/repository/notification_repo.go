package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "pacta-backend/contracts/mq"
	"pacta-backend/internal/model"
	"pacta-backend/pkg/outbox"
)

// ErrNotFound is returned when a row does not exist or is owned by a
// different user. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

type NotificationRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:         db,
		outboxRepo: outbox.NewRepository(db),
		logger:     logger,
	}
}

// Insert stores a notification and a notification.created outbox event
// in one transaction.
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	r.logger.Debug("Inserting notification",
		zap.Int64("user_id", n.UserID),
		zap.String("type", string(n.Type)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO notifications (user_id, type, priority, title, message, category, metadata, expires_at)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		n.UserID,
		n.Type,
		n.Priority,
		n.Title,
		n.Message,
		n.Category,
		n.Metadata,
		n.ExpiresAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return err
	}

	payload := mqcontracts.NotificationCreatedPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Category:       n.Category,
		CreatedAt:      n.CreatedAt,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "notification", &n.ID, "notification.created", payload); err != nil {
		r.logger.Error("Failed to insert notification.created to outbox", zap.Error(err))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Notification inserted successfully",
		zap.Int64("id", n.ID),
		zap.Int64("user_id", n.UserID),
	)
	return nil
}

// List returns one page of a user's notifications, newest first, plus
// the total count for the same filter.
func (r *NotificationRepository) List(ctx context.Context, userID int64, limit, offset int, category string) ([]*model.Notification, int64, error) {
	var total int64
	countQuery := `
        SELECT COUNT(*) FROM notifications
        WHERE user_id = $1 AND ($2 = '' OR category = $2)
    `
	if err := r.db.QueryRow(ctx, countQuery, userID, category).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, user_id, type, priority, title, message, COALESCE(category, ''), metadata,
               read, read_at, created_at, expires_at
        FROM notifications
        WHERE user_id = $1 AND ($2 = '' OR category = $2)
        ORDER BY created_at DESC, id DESC
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, userID, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]*model.Notification, 0, limit)
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Priority,
			&n.Title,
			&n.Message,
			&n.Category,
			&n.Metadata,
			&n.Read,
			&n.ReadAt,
			&n.CreatedAt,
			&n.ExpiresAt,
		)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, &n)
	}

	return notifications, total, rows.Err()
}

// UnreadCount counts a user's unread notifications, optionally
// restricted to one category.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64, category string) (int64, error) {
	query := `
        SELECT COUNT(*) FROM notifications
        WHERE user_id = $1 AND read = FALSE AND ($2 = '' OR category = $2)
    `
	var count int64
	err := r.db.QueryRow(ctx, query, userID, category).Scan(&count)
	return count, err
}

// MarkAsRead flips a notification to read. COALESCE keeps the original
// read_at on repeated calls, so the operation is idempotent.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	query := `
        UPDATE notifications
        SET read = TRUE, read_at = COALESCE(read_at, NOW())
        WHERE id = $1 AND user_id = $2
    `
	tag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead flips every unread notification of a user (optionally
// one category) to read and returns the number affected.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int64, category string) (int64, error) {
	query := `
        UPDATE notifications
        SET read = TRUE, read_at = NOW()
        WHERE user_id = $1 AND read = FALSE AND ($2 = '' OR category = $2)
    `
	tag, err := r.db.Exec(ctx, query, userID, category)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes a notification owned by userID.
func (r *NotificationRepository) Delete(ctx context.Context, userID, notificationID int64) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOldRead removes read notifications created before the cutoff,
// across all users. Unread rows survive regardless of age.
func (r *NotificationRepository) DeleteOldRead(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND created_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
