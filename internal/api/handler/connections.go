package handler

import (
	"errors"
	"net/http"

	"peerlink/backend/internal/connections"

	"github.com/gin-gonic/gin"
)

type sendRequestIn struct {
	ReceiverID int64 `json:"receiver_id"`
}

// SendConnectionRequest creates a pending connection request and notifies
// the receiver.
func (h *Handler) SendConnectionRequest(c *gin.Context) {
	senderID, ok := queryID(c, "sender_id")
	if !ok {
		return
	}
	var in sendRequestIn
	if err := c.ShouldBindJSON(&in); err != nil || in.ReceiverID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id is required"})
		return
	}

	req, err := h.Connections.SendRequest(senderID, in.ReceiverID)
	if err != nil {
		h.connectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// AcceptConnectionRequest resolves a pending request as accepted.
func (h *Handler) AcceptConnectionRequest(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	req, err := h.Connections.Accept(requestID)
	if err != nil {
		h.connectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// RejectConnectionRequest resolves a pending request as rejected.
func (h *Handler) RejectConnectionRequest(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}
	req, err := h.Connections.Reject(requestID)
	if err != nil {
		h.connectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// SentRequests lists the requests a user has sent.
func (h *Handler) SentRequests(c *gin.Context) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	reqs, err := h.Connections.SentRequests(userID)
	if err != nil {
		h.connectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// ReceivedRequests lists the requests addressed to a user.
func (h *Handler) ReceivedRequests(c *gin.Context) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	reqs, err := h.Connections.ReceivedRequests(userID)
	if err != nil {
		h.connectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handler) connectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, connections.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot send a request to yourself"})
	case errors.Is(err, connections.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, connections.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, connections.ErrRequestResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "request already resolved"})
	default:
		h.Log.Error().Err(err).Msg("connection request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
