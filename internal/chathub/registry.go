package chathub

import (
	"sync"

	"peerlink/backend/internal/metrics"
)

// Registry is the process-wide presence map: at most one live channel per
// user at any instant. Registering a user who already has a channel
// replaces the prior entry; the supersedee is returned so the caller can
// close it explicitly. All access is serialized by one mutex so a
// reconnect racing a send-failure cleanup cannot lose an update.
type Registry struct {
	mu      sync.Mutex
	clients map[int64]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[int64]Client)}
}

// Register installs c as the user's sole live channel and returns the
// superseded one, if any. The prior channel is not closed here; closing it
// is the caller's responsibility.
func (r *Registry) Register(userID int64, c Client) (prev Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.clients[userID]
	r.clients[userID] = c
	if prev == nil {
		metrics.WsConnections.Inc()
	}
	return prev
}

// Unregister removes the user's entry only if it still is c. A stale
// session cleaning up after itself therefore cannot evict the fresh
// session that superseded it. Idempotent when the entry is absent.
func (r *Registry) Unregister(userID int64, c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.clients[userID]
	if !ok || cur != c {
		return false
	}
	delete(r.clients, userID)
	metrics.WsConnections.Dec()
	return true
}

// Lookup returns the user's live channel, if registered.
func (r *Registry) Lookup(userID int64) (Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[userID]
	return c, ok
}

func (r *Registry) IsOnline(userID int64) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Online returns the identities of all currently registered users.
func (r *Registry) Online() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Drain closes every registered channel. Used on process shutdown; the
// sessions driving the channels unregister themselves as they wind down.
func (r *Registry) Drain(code int, reason string) {
	r.mu.Lock()
	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		c.Close(code, reason)
	}
}
