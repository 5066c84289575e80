package models

// Wire frames exchanged over a live channel. Inbound fields are pointers
// so a missing key can be told apart from a zero value.

// ChatInbound is the single frame shape clients send while a session is open.
type ChatInbound struct {
	ReceiverID *int64  `json:"receiver_id"`
	Content    *string `json:"content"`
}

// ChatFrame delivers a stored chat message to a live channel.
type ChatFrame struct {
	Type       string `json:"type"` // always "message"
	MessageID  int64  `json:"message_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"` // RFC 3339
}

// SentFrame reports to the sender whether the receiver's live delivery
// succeeded ("delivered") or the receiver was offline ("offline").
type SentFrame struct {
	Type      string `json:"type"` // always "message_sent"
	MessageID int64  `json:"message_id"`
	Status    string `json:"status"`
}

const (
	SentStatusDelivered = "delivered"
	SentStatusOffline   = "offline"
)

// ErrorFrame is a typed protocol error; the session stays open after it.
type ErrorFrame struct {
	Type    string `json:"type"` // always "error"
	Message string `json:"message"`
}

// NotificationFrame is the live-push copy of a persisted notification.
type NotificationFrame struct {
	Type             string           `json:"type"` // always "notification"
	NotificationID   int64            `json:"notification_id"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	NotificationType NotificationType `json:"notification_type"`
	RelatedUserID    int64            `json:"related_user_id"`
	RelatedUsername  string           `json:"related_username"`
}
