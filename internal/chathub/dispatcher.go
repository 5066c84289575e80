package chathub

import (
	"time"

	"peerlink/backend/internal/metrics"
	"peerlink/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Outcome is the per-recipient result of one delivery attempt.
type Outcome int

const (
	// Delivered: the payload was written to the recipient's live channel.
	Delivered Outcome = iota
	// Absent: the recipient had no presence entry; nothing was attempted.
	Absent
	// Failed: the channel was present but the write failed; the entry has
	// been unregistered.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Absent:
		return "absent"
	default:
		return "failed"
	}
}

// Dispatcher pushes payloads to live channels. It never persists anything;
// durable fallbacks are the caller's separate responsibility.
type Dispatcher struct {
	registry *Registry
	log      zerolog.Logger
}

func NewDispatcher(registry *Registry, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// DeliverToUser attempts one live push. A transport failure is taken as
// evidence the channel is dead: the entry is unregistered on the spot and
// the broken channel closed, so later lookups see the user as offline.
func (d *Dispatcher) DeliverToUser(userID int64, payload any) Outcome {
	c, ok := d.registry.Lookup(userID)
	if !ok {
		metrics.LivePushesTotal.WithLabelValues(Absent.String()).Inc()
		return Absent
	}
	if err := c.Send(payload); err != nil {
		d.registry.Unregister(userID, c)
		c.Close(websocket.CloseAbnormalClosure, "send failed")
		d.log.Warn().Int64("user_id", userID).Err(err).Msg("send failed, presence entry removed")
		metrics.LivePushesTotal.WithLabelValues(Failed.String()).Inc()
		return Failed
	}
	metrics.LivePushesTotal.WithLabelValues(Delivered.String()).Inc()
	return Delivered
}

// DeliverChatMessage pushes a chat payload to the receiver, mirrors the
// same payload to the sender's own channel, then always reports the
// receiver outcome back to the sender as a message_sent frame. Returns the
// receiver's outcome.
func (d *Dispatcher) DeliverChatMessage(senderID, receiverID int64, content string, messageID int64, createdAt time.Time) Outcome {
	frame := models.ChatFrame{
		Type:       "message",
		MessageID:  messageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  createdAt.UTC().Format(time.RFC3339),
	}

	receiverOutcome := d.DeliverToUser(receiverID, frame)
	d.DeliverToUser(senderID, frame)

	status := models.SentStatusDelivered
	if receiverOutcome != Delivered {
		status = models.SentStatusOffline
	}
	d.DeliverToUser(senderID, models.SentFrame{
		Type:      "message_sent",
		MessageID: messageID,
		Status:    status,
	})

	return receiverOutcome
}

// DeliverNotification pushes a notification frame and reports whether the
// push succeeded. The result is informational only; the durable record
// already exists before this is called.
func (d *Dispatcher) DeliverNotification(userID int64, frame models.NotificationFrame) bool {
	return d.DeliverToUser(userID, frame) == Delivered
}
