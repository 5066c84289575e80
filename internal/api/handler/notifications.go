package handler

import (
	"net/http"

	"peerlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type notificationOut struct {
	models.Notification
	RelatedUserUsername *string `json:"related_user_username"`
}

type notificationsOut struct {
	Notifications []notificationOut `json:"notifications"`
	TotalCount    int64             `json:"total_count"`
	UnreadCount   int64             `json:"unread_count"`
}

type markReadIn struct {
	NotificationIDs []int64 `json:"notification_ids"`
}

// ListNotifications returns a page of the owner's notifications, newest
// first, enriched with the related user's username where one exists.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 50)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	unreadOnly := c.Query("unread_only") == "true"

	notifs, err := h.Store.ListNotifications(userID, skip, limit, unreadOnly)
	if err != nil {
		h.Log.Error().Err(err).Msg("list notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	total, unread, err := h.Store.CountNotifications(userID)
	if err != nil {
		h.Log.Error().Err(err).Msg("count notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	usernames := make(map[int64]string)
	out := make([]notificationOut, 0, len(notifs))
	for _, n := range notifs {
		item := notificationOut{Notification: n}
		if n.RelatedUserID != nil {
			name, cached := usernames[*n.RelatedUserID]
			if !cached {
				if related, err := h.Store.GetUser(*n.RelatedUserID); err == nil && related != nil {
					name = related.Username
					usernames[*n.RelatedUserID] = name
				}
			}
			if name != "" {
				item.RelatedUserUsername = &name
			}
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, notificationsOut{
		Notifications: out,
		TotalCount:    total,
		UnreadCount:   unread,
	})
}

// NotificationCount returns the owner's total and unread counters.
func (h *Handler) NotificationCount(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	total, unread, err := h.Store.CountNotifications(userID)
	if err != nil {
		h.Log.Error().Err(err).Msg("count notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_count": total, "unread_count": unread})
}

// MarkNotificationsRead flags the listed notifications of the owner as read.
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var in markReadIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification_ids is required"})
		return
	}
	if err := h.Store.MarkNotificationsRead(userID, in.NotificationIDs); err != nil {
		h.Log.Error().Err(err).Msg("mark notifications read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications marked as read"})
}

// MarkAllNotificationsRead flags every notification of the owner as read.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	if err := h.Store.MarkAllNotificationsRead(userID); err != nil {
		h.Log.Error().Err(err).Msg("mark all notifications read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

// DeleteNotification removes one notification owned by the requester.
func (h *Handler) DeleteNotification(c *gin.Context) {
	notificationID, ok := pathID(c, "notification_id")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteNotification(userID, notificationID)
	if err != nil {
		h.Log.Error().Err(err).Msg("delete notification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// requireUser resolves the user_id query parameter to an existing user.
func (h *Handler) requireUser(c *gin.Context) (int64, bool) {
	userID, ok := queryID(c, "user_id")
	if !ok {
		return 0, false
	}
	user, err := h.Store.GetUser(userID)
	if err != nil {
		h.Log.Error().Err(err).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return 0, false
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return 0, false
	}
	return userID, true
}
