package models

import "time"

// Message is one chat message between two connected users. Messages are
// immutable once stored; history ordering is by CreatedAt with ID as the
// tie breaker.
type Message struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	SenderID   int64     `gorm:"not null;index:idx_msg_pair" json:"sender_id"`
	ReceiverID int64     `gorm:"not null;index:idx_msg_pair" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
