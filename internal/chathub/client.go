package chathub

import "errors"

// ErrClientClosed is returned by Send once a client has been closed.
var ErrClientClosed = errors.New("client closed")

// Client is one live delivery channel for one user. It abstracts the
// underlying transport so the registry and dispatcher can treat every
// channel type uniformly.
//
// Send must be safe for concurrent use: the owning session, HTTP request
// paths and the dispatcher all write to the same channel. A non-nil error
// from Send means the channel is dead and must not be retried.
type Client interface {
	// UserID returns the identity the channel was registered under.
	UserID() int64
	// Send marshals v and writes it to the channel.
	Send(v any) error
	// Close terminates the channel with a close code and reason. It is
	// idempotent; subsequent Send calls fail with ErrClientClosed.
	Close(code int, reason string)
}
