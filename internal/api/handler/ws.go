package handler

import (
	"net/http"

	"peerlink/backend/internal/chat"
	"peerlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and hands it to a chat session,
// which owns the channel from here on. Unknown users are refused after the
// upgrade with the dedicated close code, so the client can tell "no such
// user" apart from other handshake failures.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(userID, conn)
	session := chat.NewSession(userID, client, h.Registry, h.Chat, h.Log)
	session.Run()
}
