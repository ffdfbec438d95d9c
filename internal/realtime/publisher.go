// Package realtime pushes unread-badge updates to per-user redis
// channels. UI listeners subscribe to their own channel; the server
// never depends on anyone listening.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BadgeUpdate tells a listener to refresh its notification badge.
type BadgeUpdate struct {
	Event  string    `json:"event"` // created / read / read_all / deleted
	Unread int64     `json:"unread"`
	At     time.Time `json:"at"`
}

type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{
		rdb:    rdb,
		logger: logger,
	}
}

// ChannelForUser returns the pub/sub channel carrying one user's
// badge updates.
func ChannelForUser(userID int64) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishBadge publishes a badge update for a user. Failures are logged
// and swallowed: a missing badge refresh must never fail the mutation.
func (p *Publisher) PublishBadge(ctx context.Context, userID int64, event string, unread int64) {
	update := BadgeUpdate{
		Event:  event,
		Unread: unread,
		At:     time.Now(),
	}

	body, err := json.Marshal(update)
	if err != nil {
		p.logger.Error("Failed to marshal badge update", zap.Error(err))
		return
	}

	if err := p.rdb.Publish(ctx, ChannelForUser(userID), body).Err(); err != nil {
		p.logger.Warn("Failed to publish badge update",
			zap.Int64("user_id", userID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
