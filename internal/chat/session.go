package chat

import (
	"encoding/json"
	"errors"
	"sync/atomic"

	"peerlink/backend/internal/chathub"
	"peerlink/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionState tracks where a session is in its life. Transitions are one
// way: Connecting -> Open -> Closed, or Connecting -> Closed when the
// handshake is refused. Closed is terminal; a reconnect starts a fresh
// session.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateOpen
	StateClosed
)

// SessionConn is the duplex channel a session drives: the shared Client
// write side plus the read side only the session touches.
type SessionConn interface {
	chathub.Client
	ReadFrame() ([]byte, error)
}

// Session is the per-connection protocol driver. One goroutine runs it:
// frames are read and handled strictly one at a time.
type Session struct {
	id       string
	userID   int64
	user     *models.User
	conn     SessionConn
	registry *chathub.Registry
	svc      *Service

	state atomic.Int32

	log zerolog.Logger
}

func NewSession(userID int64, conn SessionConn, registry *chathub.Registry, svc *Service, log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		userID:   userID,
		conn:     conn,
		registry: registry,
		svc:      svc,
		log: log.With().
			Str("component", "session").
			Str("session_id", id).
			Int64("user_id", userID).
			Logger(),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Run drives the session to completion and only returns once it is Closed
// and the presence entry is cleaned up.
func (s *Session) Run() {
	user, err := s.svc.userByID(s.userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.refuse(chathub.CloseUserNotFound, "user not found")
			return
		}
		s.refuse(websocket.CloseInternalServerErr, "handshake failed")
		return
	}
	s.user = user

	if prev := s.registry.Register(s.userID, s.conn); prev != nil {
		// The fresh session already owns all lookups; the stale channel is
		// told why it is going away.
		prev.Close(chathub.CloseSessionSuperseded, "session superseded")
	}
	s.state.Store(int32(StateOpen))
	s.log.Info().Msg("session open")

	defer s.close()
	for {
		data, err := s.conn.ReadFrame()
		if err != nil {
			return
		}
		s.handleFrame(data)
	}
}

// handleFrame validates one inbound frame and, when it passes, runs the
// send pipeline. Validation failures answer with an error frame and leave
// the session open.
func (s *Session) handleFrame(data []byte) {
	var in models.ChatInbound
	if err := json.Unmarshal(data, &in); err != nil || in.ReceiverID == nil || in.Content == nil {
		s.sendError("Invalid message format. Required fields: receiver_id, content")
		return
	}

	_, err := s.svc.Relay(s.user, *in.ReceiverID, *in.Content)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyContent):
		s.sendError("Message content cannot be empty")
	case errors.Is(err, ErrNotConnected):
		s.sendError("You can only chat with connected users")
	default:
		s.log.Error().Err(err).Msg("send pipeline failed")
		s.sendError("Failed to send message")
	}
}

func (s *Session) sendError(msg string) {
	// A dead channel shows up on the next read; nothing to do here.
	_ = s.conn.Send(models.ErrorFrame{Type: "error", Message: msg})
}

// refuse closes a session that never made it past Connecting.
func (s *Session) refuse(code int, reason string) {
	s.state.Store(int32(StateClosed))
	s.conn.Close(code, reason)
	s.log.Info().Str("reason", reason).Msg("handshake refused")
}

// close is the single cleanup path for an Open session: the state flips to
// Closed exactly once, and the presence entry is removed before the session
// is discarded. Client-scoped unregistration means a session superseded
// earlier cannot evict its successor here.
func (s *Session) close() {
	if !s.state.CompareAndSwap(int32(StateOpen), int32(StateClosed)) {
		return
	}
	s.registry.Unregister(s.userID, s.conn)
	s.conn.Close(websocket.CloseNormalClosure, "")
	s.log.Info().Msg("session closed")
}
