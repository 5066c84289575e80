package models

import "time"

// RequestStatus is the lifecycle state of a connection request.
// The only legal transitions are pending -> accepted and pending -> rejected;
// a resolved request never changes again.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// ConnectionRequest is a directional request from SenderID to ReceiverID.
// Two users count as connected when a request between them, in either
// direction, carries the accepted status.
type ConnectionRequest struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	SenderID   int64         `gorm:"not null;index:idx_request_pair" json:"sender_id"`
	ReceiverID int64         `gorm:"not null;index:idx_request_pair" json:"receiver_id"`
	Status     RequestStatus `gorm:"type:text;not null;default:pending" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
