package chat_test

import (
	"io"
	"sort"
	"sync"
	"time"

	"peerlink/backend/internal/models"
)

// fakeStore is an in-memory chat.Store.
type fakeStore struct {
	users  map[int64]*models.User
	msgs   []models.Message
	nextID int64
}

func newFakeStore(usernames ...string) *fakeStore {
	s := &fakeStore{users: make(map[int64]*models.User)}
	for i, name := range usernames {
		id := int64(i + 1)
		s.users[id] = &models.User{ID: id, Username: name}
	}
	return s
}

func (s *fakeStore) GetUser(id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *fakeStore) InsertMessage(senderID, receiverID int64, content string) (*models.Message, error) {
	s.nextID++
	msg := models.Message{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	s.msgs = append(s.msgs, msg)
	return &msg, nil
}

func (s *fakeStore) between(a, b int64) []models.Message {
	var out []models.Message
	for _, m := range s.msgs {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *fakeStore) MessagesBetween(a, b int64, offset, limit int) ([]models.Message, error) {
	all := s.between(a, b)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeStore) CountMessagesBetween(a, b int64) (int64, error) {
	return int64(len(s.between(a, b))), nil
}

// fakeGate authorizes exactly the configured unordered pairs.
type fakeGate struct {
	pairs map[[2]int64]bool
}

func newFakeGate() *fakeGate { return &fakeGate{pairs: make(map[[2]int64]bool)} }

func (g *fakeGate) connect(a, b int64) {
	if a > b {
		a, b = b, a
	}
	g.pairs[[2]int64{a, b}] = true
}

func (g *fakeGate) IsConnected(a, b int64) (bool, error) {
	if a > b {
		a, b = b, a
	}
	return g.pairs[[2]int64{a, b}], nil
}

// notifStore captures what the notifier persists.
type notifStore struct {
	inserted []*models.Notification
}

func (s *notifStore) InsertNotification(n *models.Notification) error {
	n.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, n)
	return nil
}

// mockClient is a recording chathub.Client.
type mockClient struct {
	userID int64

	mu        sync.Mutex
	sent      []any
	closed    bool
	closeCode int
}

func newMockClient(userID int64) *mockClient { return &mockClient{userID: userID} }

func (c *mockClient) UserID() int64 { return c.userID }

func (c *mockClient) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *mockClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.closeCode = code
	}
}

func (c *mockClient) Sent() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.sent))
	copy(out, c.sent)
	return out
}

// scriptConn feeds a session a fixed sequence of inbound frames, then
// reports the peer as gone. Implements chat.SessionConn.
type scriptConn struct {
	mockClient
	frames [][]byte
	idx    int
}

func newScriptConn(userID int64, frames ...string) *scriptConn {
	c := &scriptConn{mockClient: mockClient{userID: userID}}
	for _, f := range frames {
		c.frames = append(c.frames, []byte(f))
	}
	return c
}

func (c *scriptConn) ReadFrame() ([]byte, error) {
	if c.idx < len(c.frames) {
		f := c.frames[c.idx]
		c.idx++
		return f, nil
	}
	return nil, io.EOF
}
