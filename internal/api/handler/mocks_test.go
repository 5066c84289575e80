package handler_test

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"peerlink/backend/internal/models"
)

// memStorage is an in-memory storage.Storage for the HTTP tests.
type memStorage struct {
	users      map[int64]*models.User
	byUsername map[string]int64
	requests   map[int64]*models.ConnectionRequest
	messages   []models.Message
	notifs     map[int64]*models.Notification

	nextUserID    int64
	nextRequestID int64
	nextMessageID int64
	nextNotifID   int64
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:      make(map[int64]*models.User),
		byUsername: make(map[string]int64),
		requests:   make(map[int64]*models.ConnectionRequest),
		notifs:     make(map[int64]*models.Notification),
	}
}

func (s *memStorage) CreateUser(username string) (*models.User, error) {
	if _, taken := s.byUsername[username]; taken {
		return nil, gorm.ErrDuplicatedKey
	}
	s.nextUserID++
	u := &models.User{ID: s.nextUserID, Username: username}
	s.users[u.ID] = u
	s.byUsername[username] = u.ID
	return u, nil
}

func (s *memStorage) GetUser(id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *memStorage) ListUsers(offset, limit int) ([]models.User, error) {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []models.User
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *memStorage) CreateRequest(senderID, receiverID int64) (*models.ConnectionRequest, bool, error) {
	for _, r := range s.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID {
			return r, false, nil
		}
	}
	s.nextRequestID++
	r := &models.ConnectionRequest{
		ID:         s.nextRequestID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}
	s.requests[r.ID] = r
	return r, true, nil
}

func (s *memStorage) GetRequest(id int64) (*models.ConnectionRequest, error) {
	return s.requests[id], nil
}

func (s *memStorage) SetRequestStatus(id int64, status models.RequestStatus) (*models.ConnectionRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	r.Status = status
	return r, nil
}

func (s *memStorage) IsAcceptedBetween(a, b int64) (bool, error) {
	for _, r := range s.requests {
		if r.Status != models.RequestAccepted {
			continue
		}
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStorage) ListSentRequests(userID int64) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	for _, r := range s.requests {
		if r.SenderID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStorage) ListReceivedRequests(userID int64) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	for _, r := range s.requests {
		if r.ReceiverID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStorage) ListConnectedUsers(userID int64) ([]models.User, error) {
	var out []models.User
	for _, r := range s.requests {
		if r.Status != models.RequestAccepted {
			continue
		}
		var peer int64
		switch userID {
		case r.SenderID:
			peer = r.ReceiverID
		case r.ReceiverID:
			peer = r.SenderID
		default:
			continue
		}
		if u, ok := s.users[peer]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStorage) InsertMessage(senderID, receiverID int64, content string) (*models.Message, error) {
	s.nextMessageID++
	m := models.Message{
		ID:         s.nextMessageID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	s.messages = append(s.messages, m)
	return &m, nil
}

func (s *memStorage) pairMessages(a, b int64) []models.Message {
	var out []models.Message
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out
}

func (s *memStorage) MessagesBetween(a, b int64, offset, limit int) ([]models.Message, error) {
	all := s.pairMessages(a, b)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStorage) CountMessagesBetween(a, b int64) (int64, error) {
	return int64(len(s.pairMessages(a, b))), nil
}

func (s *memStorage) InsertNotification(n *models.Notification) error {
	s.nextNotifID++
	n.ID = s.nextNotifID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	s.notifs[n.ID] = &cp
	return nil
}

func (s *memStorage) ownerNotifs(ownerID int64) []models.Notification {
	var out []models.Notification
	for _, n := range s.notifs {
		if n.UserID == ownerID {
			out = append(out, *n)
		}
	}
	// Newest first, matching the production query.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStorage) ListNotifications(ownerID int64, offset, limit int, unreadOnly bool) ([]models.Notification, error) {
	all := s.ownerNotifs(ownerID)
	if unreadOnly {
		filtered := all[:0]
		for _, n := range all {
			if !n.IsRead {
				filtered = append(filtered, n)
			}
		}
		all = filtered
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStorage) CountNotifications(ownerID int64) (int64, int64, error) {
	var total, unread int64
	for _, n := range s.notifs {
		if n.UserID != ownerID {
			continue
		}
		total++
		if !n.IsRead {
			unread++
		}
	}
	return total, unread, nil
}

func (s *memStorage) MarkNotificationsRead(ownerID int64, ids []int64) error {
	for _, id := range ids {
		if n, ok := s.notifs[id]; ok && n.UserID == ownerID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memStorage) MarkAllNotificationsRead(ownerID int64) error {
	for _, n := range s.notifs {
		if n.UserID == ownerID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memStorage) DeleteNotification(ownerID, id int64) (bool, error) {
	n, ok := s.notifs[id]
	if !ok || n.UserID != ownerID {
		return false, nil
	}
	delete(s.notifs, id)
	return true, nil
}
