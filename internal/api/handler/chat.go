package handler

import (
	"errors"
	"net/http"

	"peerlink/backend/internal/chat"
	"peerlink/backend/internal/connections"
	"peerlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type sendMessageIn struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

type chatHistoryOut struct {
	Messages   []models.Message `json:"messages"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// SendMessage is the request-style chat send: same gate, persistence,
// notification fallback and live dispatch as a session send.
func (h *Handler) SendMessage(c *gin.Context) {
	senderID, ok := queryID(c, "sender_id")
	if !ok {
		return
	}
	var in sendMessageIn
	if err := c.ShouldBindJSON(&in); err != nil || in.ReceiverID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id and content are required"})
		return
	}

	msg, err := h.Chat.Send(senderID, in.ReceiverID, in.Content)
	if err != nil {
		h.chatError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// ChatHistory returns one ascending page of the conversation between the
// requesting user and another connected user, plus the exact total count.
func (h *Handler) ChatHistory(c *gin.Context) {
	otherID, ok := pathID(c, "other_user_id")
	if !ok {
		return
	}
	currentID, ok := queryID(c, "current_user_id")
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	msgs, total, err := h.Chat.History(currentID, otherID, page, limit)
	if err != nil {
		h.chatError(c, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	c.JSON(http.StatusOK, chatHistoryOut{
		Messages:   msgs,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
	})
}

// ConnectedUsers lists the chat-eligible peers of a user.
func (h *Handler) ConnectedUsers(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	peers, err := h.Connections.Peers(userID)
	if err != nil {
		if errors.Is(err, connections.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.Log.Error().Err(err).Msg("list peers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, peers)
}

func (h *Handler) chatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, chat.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content cannot be empty"})
	case errors.Is(err, chat.ErrNotConnected):
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only chat with connected users"})
	default:
		h.Log.Error().Err(err).Msg("chat request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
