package chathub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Close codes sent during or after the handshake.
const (
	CloseUserNotFound      = 4004
	CloseSessionSuperseded = 4001
)

// WebSocketClient implements Client over a gorilla/websocket connection.
// Writes are serialized with a mutex; reads stay with the owning session,
// which is the connection's single reader.
type WebSocketClient struct {
	userID int64
	conn   *websocket.Conn

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewWebSocketClient(userID int64, conn *websocket.Conn) *WebSocketClient {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c := &WebSocketClient{
		userID: userID,
		conn:   conn,
		done:   make(chan struct{}),
	}
	go c.pingLoop()
	return c
}

func (c *WebSocketClient) UserID() int64 { return c.userID }

func (c *WebSocketClient) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// ReadFrame blocks until the next inbound frame. The session goroutine is
// the only caller.
func (c *WebSocketClient) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close sends a close frame with the given code and tears the connection
// down. Safe to call from any goroutine and more than once.
func (c *WebSocketClient) Close(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	c.mu.Unlock()

	c.conn.Close()
}

// pingLoop keeps the transport alive; a failed ping stops the loop and the
// read side surfaces the broken connection to the session.
func (c *WebSocketClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
