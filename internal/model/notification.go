package model

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationTypeInfo       NotificationType = "info"
	NotificationTypeSuccess    NotificationType = "success"
	NotificationTypeWarning    NotificationType = "warning"
	NotificationTypeError      NotificationType = "error"
	NotificationTypeContract   NotificationType = "contract"
	NotificationTypeSupplement NotificationType = "supplement"
	NotificationTypeSystem     NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning,
		NotificationTypeError, NotificationTypeContract, NotificationTypeSupplement,
		NotificationTypeSystem:
		return true
	}
	return false
}

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case NotificationPriorityLow, NotificationPriorityMedium,
		NotificationPriorityHigh, NotificationPriorityUrgent:
		return true
	}
	return false
}

// Notification is a user-owned message with a one-way unread -> read
// transition. Rows are immutable except Read/ReadAt and deletion.
type Notification struct {
	ID        int64                `json:"id"`
	UserID    int64                `json:"user_id"`
	Type      NotificationType     `json:"type"`
	Priority  NotificationPriority `json:"priority"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Category  string               `json:"category,omitempty"`
	Metadata  json.RawMessage      `json:"metadata,omitempty"`
	Read      bool                 `json:"read"`
	ReadAt    *time.Time           `json:"read_at,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}
