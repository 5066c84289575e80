package chathub_test

import "sync"

// MockClient is a test double for the chathub.Client interface. It records
// every payload and close call, and can be told to fail sends.
type MockClient struct {
	userID int64

	mu          sync.Mutex
	sent        []any
	sendErr     error
	closed      bool
	closeCode   int
	closeReason string
}

func newMockClient(userID int64) *MockClient {
	return &MockClient{userID: userID}
}

func (c *MockClient) UserID() int64 { return c.userID }

func (c *MockClient) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, v)
	return nil
}

func (c *MockClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
}

func (c *MockClient) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

func (c *MockClient) Sent() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *MockClient) Closed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}
