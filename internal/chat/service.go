// Package chat carries a chat message through the full pipeline: access
// gate, durable Message write, offline-notification fallback, then
// best-effort live dispatch to both parties. The same pipeline backs the
// HTTP send endpoint and the live session protocol.
package chat

import (
	"errors"
	"strings"

	"peerlink/backend/internal/chathub"
	"peerlink/backend/internal/metrics"
	"peerlink/backend/internal/models"
	"peerlink/backend/internal/notify"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrNotConnected = errors.New("users are not connected")
	ErrUserNotFound = errors.New("user not found")
)

// Gate authorizes a chat attempt between two users.
type Gate interface {
	IsConnected(a, b int64) (bool, error)
}

// Store is the slice of the durable store this service depends on.
type Store interface {
	GetUser(id int64) (*models.User, error)
	InsertMessage(senderID, receiverID int64, content string) (*models.Message, error)
	MessagesBetween(a, b int64, offset, limit int) ([]models.Message, error)
	CountMessagesBetween(a, b int64) (int64, error)
}

type Service struct {
	store      Store
	gate       Gate
	notifier   *notify.Notifier
	dispatcher *chathub.Dispatcher
	log        zerolog.Logger
}

func NewService(store Store, gate Gate, notifier *notify.Notifier, dispatcher *chathub.Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		gate:       gate,
		notifier:   notifier,
		dispatcher: dispatcher,
		log:        log.With().Str("component", "chat").Logger(),
	}
}

// Relay runs the send pipeline for an already-validated sender. The
// Message write is the durability anchor: a failed notification or live
// delivery afterwards never undoes it.
func (s *Service) Relay(sender *models.User, receiverID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	ok, err := s.gate.IsConnected(sender.ID, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotConnected
	}

	msg, err := s.store.InsertMessage(sender.ID, receiverID, content)
	if err != nil {
		return nil, err
	}
	metrics.ChatMessagesTotal.Inc()

	if _, nerr := s.notifier.ChatMessage(receiverID, sender, msg); nerr != nil {
		s.log.Error().Err(nerr).Int64("message_id", msg.ID).Msg("offline notification not persisted")
	}
	s.dispatcher.DeliverChatMessage(sender.ID, receiverID, msg.Content, msg.ID, msg.CreatedAt)

	return msg, nil
}

// Send is the HTTP-style entry point: both users must exist, then the
// message takes the same pipeline as a live-session send.
func (s *Service) Send(senderID, receiverID int64, content string) (*models.Message, error) {
	sender, err := s.userByID(senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userByID(receiverID); err != nil {
		return nil, err
	}
	return s.Relay(sender, receiverID, content)
}

// History returns one ascending page of the conversation plus the exact
// total count. Both users must exist and be connected.
func (s *Service) History(currentID, otherID int64, page, limit int) ([]models.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	if _, err := s.userByID(currentID); err != nil {
		return nil, 0, err
	}
	if _, err := s.userByID(otherID); err != nil {
		return nil, 0, err
	}

	ok, err := s.gate.IsConnected(currentID, otherID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrNotConnected
	}

	offset := (page - 1) * limit
	msgs, err := s.store.MessagesBetween(currentID, otherID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountMessagesBetween(currentID, otherID)
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (s *Service) userByID(id int64) (*models.User, error) {
	user, err := s.store.GetUser(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
