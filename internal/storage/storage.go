package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peerlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the durable store consumed by the services. Lookups for a
// missing row return (nil, nil) so callers can map absence to their own
// not-found errors.
type Storage interface {
	CreateUser(username string) (*models.User, error)
	GetUser(id int64) (*models.User, error)
	ListUsers(offset, limit int) ([]models.User, error)

	// CreateRequest is idempotent per ordered (sender, receiver) pair: a
	// duplicate send returns the existing row unchanged and created=false.
	CreateRequest(senderID, receiverID int64) (req *models.ConnectionRequest, created bool, err error)
	GetRequest(id int64) (*models.ConnectionRequest, error)
	SetRequestStatus(id int64, status models.RequestStatus) (*models.ConnectionRequest, error)
	IsAcceptedBetween(a, b int64) (bool, error)
	ListSentRequests(userID int64) ([]models.ConnectionRequest, error)
	ListReceivedRequests(userID int64) ([]models.ConnectionRequest, error)
	ListConnectedUsers(userID int64) ([]models.User, error)

	InsertMessage(senderID, receiverID int64, content string) (*models.Message, error)
	MessagesBetween(a, b int64, offset, limit int) ([]models.Message, error)
	CountMessagesBetween(a, b int64) (int64, error)

	InsertNotification(n *models.Notification) error
	ListNotifications(ownerID int64, offset, limit int, unreadOnly bool) ([]models.Notification, error)
	CountNotifications(ownerID int64) (total, unread int64, err error)
	MarkNotificationsRead(ownerID int64, ids []int64) error
	MarkAllNotificationsRead(ownerID int64) error
	DeleteNotification(ownerID, id int64) (bool, error)
}

// Service implements Storage over PostgreSQL, with Redis in front of the
// notification counters.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Users ---

func (s *Service) CreateUser(username string) (*models.User, error) {
	user := models.User{Username: username}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUser(id int64) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ListUsers(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := s.DB.Order("id asc").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// --- Connection requests ---

func (s *Service) CreateRequest(senderID, receiverID int64) (*models.ConnectionRequest, bool, error) {
	var existing models.ConnectionRequest
	err := s.DB.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	req := models.ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
	}
	if err := s.DB.Create(&req).Error; err != nil {
		return nil, false, err
	}
	return &req, true, nil
}

func (s *Service) GetRequest(id int64) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := s.DB.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) SetRequestStatus(id int64, status models.RequestStatus) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := s.DB.First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	req.Status = status
	if err := s.DB.Save(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) IsAcceptedBetween(a, b int64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.ConnectionRequest{}).
		Where("status = ?", models.RequestAccepted).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) ListSentRequests(userID int64) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	err := s.DB.Where("sender_id = ?", userID).Order("created_at desc").Find(&reqs).Error
	return reqs, err
}

func (s *Service) ListReceivedRequests(userID int64) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	err := s.DB.Where("receiver_id = ?", userID).Order("created_at desc").Find(&reqs).Error
	return reqs, err
}

// ListConnectedUsers returns the peers the user holds an accepted request
// with, in either direction.
func (s *Service) ListConnectedUsers(userID int64) ([]models.User, error) {
	var reqs []models.ConnectionRequest
	err := s.DB.Where("status = ?", models.RequestAccepted).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}

	peerIDs := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		if r.SenderID == userID {
			peerIDs = append(peerIDs, r.ReceiverID)
		} else {
			peerIDs = append(peerIDs, r.SenderID)
		}
	}

	users := make([]models.User, 0, len(peerIDs))
	if len(peerIDs) == 0 {
		return users, nil
	}
	err = s.DB.Where("id IN ?", peerIDs).Order("id asc").Find(&users).Error
	return users, err
}

// --- Messages ---

func (s *Service) InsertMessage(senderID, receiverID int64, content string) (*models.Message, error) {
	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) betweenQuery(a, b int64) *gorm.DB {
	return s.DB.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
}

func (s *Service) MessagesBetween(a, b int64, offset, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.betweenQuery(a, b).
		Order("created_at asc, id asc").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (s *Service) CountMessagesBetween(a, b int64) (int64, error) {
	var count int64
	err := s.betweenQuery(a, b).Count(&count).Error
	return count, err
}

// --- Notifications ---

func notifCountKey(ownerID int64) string {
	return fmt.Sprintf("notif:count:%d", ownerID)
}

// invalidateNotifCount drops the cached counters after a notification
// write. A failed invalidation only costs staleness until the TTL expires.
func (s *Service) invalidateNotifCount(ownerID int64) {
	s.Redis.Del(s.Ctx, notifCountKey(ownerID))
}

func (s *Service) InsertNotification(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		return err
	}
	s.invalidateNotifCount(n.UserID)
	return nil
}

func (s *Service) ListNotifications(ownerID int64, offset, limit int, unreadOnly bool) ([]models.Notification, error) {
	q := s.DB.Where("user_id = ?", ownerID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var notifs []models.Notification
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&notifs).Error
	return notifs, err
}

func (s *Service) CountNotifications(ownerID int64) (int64, int64, error) {
	key := notifCountKey(ownerID)
	if cached, err := s.Redis.Get(s.Ctx, key).Result(); err == nil {
		var total, unread int64
		if _, scanErr := fmt.Sscanf(cached, "%d:%d", &total, &unread); scanErr == nil {
			return total, unread, nil
		}
	}

	var total, unread int64
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).Count(&unread).Error; err != nil {
		return 0, 0, err
	}

	s.Redis.Set(s.Ctx, key, fmt.Sprintf("%d:%d", total, unread), 5*time.Minute)
	return total, unread, nil
}

func (s *Service) MarkNotificationsRead(ownerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	s.invalidateNotifCount(ownerID)
	return nil
}

func (s *Service) MarkAllNotificationsRead(ownerID int64) error {
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ?", ownerID).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	s.invalidateNotifCount(ownerID)
	return nil
}

func (s *Service) DeleteNotification(ownerID, id int64) (bool, error) {
	res := s.DB.Where("user_id = ? AND id = ?", ownerID, id).
		Delete(&models.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.invalidateNotifCount(ownerID)
	return true, nil
}
