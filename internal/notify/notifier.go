// Package notify implements the notification fallback policy: connection
// lifecycle events are always durably recorded and additionally pushed live
// when the recipient is online; chat messages are recorded only for an
// offline recipient, since an online one already gets the live chat frame.
package notify

import (
	"unicode/utf8"

	"peerlink/backend/internal/metrics"
	"peerlink/backend/internal/models"

	"github.com/rs/zerolog"
)

// previewLimit caps the chat content carried in a new_message notification.
const previewLimit = 50

// Store is the slice of the durable store the notifier writes to.
type Store interface {
	InsertNotification(n *models.Notification) error
}

// Presence answers point-in-time liveness questions.
type Presence interface {
	IsOnline(userID int64) bool
}

// Pusher attempts best-effort live delivery of a notification payload.
type Pusher interface {
	DeliverNotification(userID int64, frame models.NotificationFrame) bool
}

type Notifier struct {
	store    Store
	presence Presence
	pusher   Pusher
	log      zerolog.Logger
}

func NewNotifier(store Store, presence Presence, pusher Pusher, log zerolog.Logger) *Notifier {
	return &Notifier{
		store:    store,
		presence: presence,
		pusher:   pusher,
		log:      log.With().Str("component", "notifier").Logger(),
	}
}

// ConnectionEvent records a notification for a connection-request lifecycle
// event. The record is persisted regardless of presence; a live push is
// attempted only when the recipient is online, and its outcome never
// affects the persisted record.
func (n *Notifier) ConnectionEvent(kind models.NotificationType, recipientID int64, actor *models.User, requestID int64) (*models.Notification, error) {
	var title, body string
	switch kind {
	case models.NotifConnectionRequest:
		title = "New Connection Request"
		body = actor.Username + " wants to connect with you"
	case models.NotifConnectionAccepted:
		title = "Connection Request Accepted"
		body = actor.Username + " accepted your connection request"
	case models.NotifConnectionRejected:
		title = "Connection Request Rejected"
		body = actor.Username + " declined your connection request"
	}

	notif := &models.Notification{
		UserID:           recipientID,
		Type:             kind,
		Title:            title,
		Message:          body,
		RelatedUserID:    &actor.ID,
		RelatedRequestID: &requestID,
	}
	if err := n.store.InsertNotification(notif); err != nil {
		return nil, err
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()

	if n.presence.IsOnline(recipientID) {
		pushed := n.pusher.DeliverNotification(recipientID, models.NotificationFrame{
			Type:             "notification",
			NotificationID:   notif.ID,
			Title:            notif.Title,
			Message:          notif.Message,
			NotificationType: notif.Type,
			RelatedUserID:    actor.ID,
			RelatedUsername:  actor.Username,
		})
		if !pushed {
			n.log.Debug().Int64("user_id", recipientID).Msg("live push skipped or failed, record kept")
		}
	}
	return notif, nil
}

// ChatMessage records a new_message notification only when the recipient is
// offline at the moment of the check. An online recipient gets the live
// chat frame instead and no record. The check is not transactional with the
// later dispatch; a disconnect in between degrades to a missed live push
// while the Message row itself stays durable.
func (n *Notifier) ChatMessage(recipientID int64, sender *models.User, msg *models.Message) (*models.Notification, error) {
	if n.presence.IsOnline(recipientID) {
		return nil, nil
	}

	notif := &models.Notification{
		UserID:           recipientID,
		Type:             models.NotifNewMessage,
		Title:            "New message from " + sender.Username,
		Message:          truncate(msg.Content, previewLimit),
		RelatedUserID:    &sender.ID,
		RelatedMessageID: &msg.ID,
	}
	if err := n.store.InsertNotification(notif); err != nil {
		return nil, err
	}
	metrics.NotificationsTotal.WithLabelValues(string(models.NotifNewMessage)).Inc()
	return notif, nil
}

// truncate caps s at limit characters, appending an ellipsis when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
