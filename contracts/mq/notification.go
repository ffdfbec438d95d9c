package mq

import "time"

// NotificationRequestedPayload asks the notification consumer to create
// a notification row for a user. EventID keys consumer-side dedup.
type NotificationRequestedPayload struct {
	EventID  string            `json:"event_id"`
	UserID   int64             `json:"user_id"`
	Type     string            `json:"type"`
	Priority string            `json:"priority,omitempty"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Category string            `json:"category,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
}

type NotificationCreatedPayload struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Type           string    `json:"type"`
	Category       string    `json:"category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type NotificationCleanupPayload struct {
	ThresholdDays int       `json:"threshold_days"`
	Deleted       int64     `json:"deleted"`
	RanAt         time.Time `json:"ran_at"`
}
