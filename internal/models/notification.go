package models

import "time"

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotifConnectionRequest  NotificationType = "connection_request"
	NotifConnectionAccepted NotificationType = "connection_accepted"
	NotifConnectionRejected NotificationType = "connection_rejected"
	NotifNewMessage         NotificationType = "new_message"
)

// Notification is a durable record created by the system in response to
// connection and message events. Only its owner may toggle the read flag
// or delete it.
type Notification struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:text;not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	RelatedUserID    *int64 `json:"related_user_id"`
	RelatedRequestID *int64 `json:"related_request_id"`
	RelatedMessageID *int64 `json:"related_message_id"`
}
