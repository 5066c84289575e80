package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createUserIn struct {
	Username string `json:"username"`
}

// CreateUser registers a new account with a unique username.
func (h *Handler) CreateUser(c *gin.Context) {
	var in createUserIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := h.Store.CreateUser(username)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
			return
		}
		h.Log.Error().Err(err).Msg("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers returns a page of registered users.
func (h *Handler) ListUsers(c *gin.Context) {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 100)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}

	users, err := h.Store.ListUsers(skip, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user by ID.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.Store.GetUser(id)
	if err != nil {
		h.Log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
