// Package connections owns the connection-request workflow and the access
// gate derived from it: two users may chat iff an accepted request exists
// between them in either direction.
package connections

import (
	"errors"

	"peerlink/backend/internal/models"
	"peerlink/backend/internal/notify"

	"github.com/rs/zerolog"
)

var (
	ErrSelfRequest     = errors.New("cannot send a connection request to yourself")
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("connection request not found")
	ErrRequestResolved = errors.New("connection request already resolved")
)

// Store is the slice of the durable store this service depends on.
type Store interface {
	GetUser(id int64) (*models.User, error)
	CreateRequest(senderID, receiverID int64) (*models.ConnectionRequest, bool, error)
	GetRequest(id int64) (*models.ConnectionRequest, error)
	SetRequestStatus(id int64, status models.RequestStatus) (*models.ConnectionRequest, error)
	IsAcceptedBetween(a, b int64) (bool, error)
	ListSentRequests(userID int64) ([]models.ConnectionRequest, error)
	ListReceivedRequests(userID int64) ([]models.ConnectionRequest, error)
	ListConnectedUsers(userID int64) ([]models.User, error)
}

type Service struct {
	store    Store
	notifier *notify.Notifier
	log      zerolog.Logger
}

func NewService(store Store, notifier *notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      log.With().Str("component", "connections").Logger(),
	}
}

// SendRequest creates a pending request from sender to receiver. Self
// requests are refused before the store is touched. A duplicate send
// returns the existing record unchanged and fires no second notification.
func (s *Service) SendRequest(senderID, receiverID int64) (*models.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	sender, err := s.store.GetUser(senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}
	receiver, err := s.store.GetUser(receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	req, created, err := s.store.CreateRequest(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if created {
		if _, nerr := s.notifier.ConnectionEvent(models.NotifConnectionRequest, receiverID, sender, req.ID); nerr != nil {
			// The graph write is committed; the notification write is an
			// independent record, so its failure is reported, not rolled back.
			s.log.Error().Err(nerr).Int64("request_id", req.ID).Msg("request notification not persisted")
		}
	}
	return req, nil
}

// Accept resolves a pending request. Terminal statuses are immutable:
// accepting an already accepted or rejected request fails.
func (s *Service) Accept(requestID int64) (*models.ConnectionRequest, error) {
	return s.resolve(requestID, models.RequestAccepted, models.NotifConnectionAccepted)
}

// Reject resolves a pending request, mirroring Accept.
func (s *Service) Reject(requestID int64) (*models.ConnectionRequest, error) {
	return s.resolve(requestID, models.RequestRejected, models.NotifConnectionRejected)
}

func (s *Service) resolve(requestID int64, status models.RequestStatus, kind models.NotificationType) (*models.ConnectionRequest, error) {
	req, err := s.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestPending {
		return nil, ErrRequestResolved
	}

	updated, err := s.store.SetRequestStatus(requestID, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrRequestNotFound
	}

	// The original sender is notified; the acting receiver is the actor.
	receiver, err := s.store.GetUser(req.ReceiverID)
	if err == nil && receiver != nil {
		if _, nerr := s.notifier.ConnectionEvent(kind, req.SenderID, receiver, req.ID); nerr != nil {
			s.log.Error().Err(nerr).Int64("request_id", req.ID).Msg("resolution notification not persisted")
		}
	}
	return updated, nil
}

// IsConnected reports whether an accepted request exists between the pair,
// in either direction. Symmetric by construction.
func (s *Service) IsConnected(a, b int64) (bool, error) {
	return s.store.IsAcceptedBetween(a, b)
}

// SentRequests lists requests the user has sent.
func (s *Service) SentRequests(userID int64) ([]models.ConnectionRequest, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListSentRequests(userID)
}

// ReceivedRequests lists requests addressed to the user.
func (s *Service) ReceivedRequests(userID int64) ([]models.ConnectionRequest, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListReceivedRequests(userID)
}

// Peers lists the users this user holds an accepted connection with; this
// is also the chat-eligible peer set.
func (s *Service) Peers(userID int64) ([]models.User, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListConnectedUsers(userID)
}

func (s *Service) requireUser(userID int64) error {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
