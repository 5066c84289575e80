package handler

import (
	"net/http"
	"strconv"

	"peerlink/backend/internal/chat"
	"peerlink/backend/internal/chathub"
	"peerlink/backend/internal/connections"
	"peerlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler bundles the dependencies the HTTP and WebSocket endpoints share.
type Handler struct {
	Store       storage.Storage
	Connections *connections.Service
	Chat        *chat.Service
	Registry    *chathub.Registry
	Log         zerolog.Logger
}

func NewHandler(store storage.Storage, conns *connections.Service, chatSvc *chat.Service, registry *chathub.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		Store:       store,
		Connections: conns,
		Chat:        chatSvc,
		Registry:    registry,
		Log:         log.With().Str("component", "api").Logger(),
	}
}

// pathID parses a numeric path parameter, replying 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryID parses a required numeric query parameter.
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
