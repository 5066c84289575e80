package connections_test

import (
	"time"

	"peerlink/backend/internal/models"
)

// fakeStore is an in-memory implementation of connections.Store, close
// enough to the SQL semantics to exercise the full request workflow.
type fakeStore struct {
	users  map[int64]*models.User
	reqs   map[int64]*models.ConnectionRequest
	nextID int64
}

func newFakeStore(usernames ...string) *fakeStore {
	s := &fakeStore{
		users: make(map[int64]*models.User),
		reqs:  make(map[int64]*models.ConnectionRequest),
	}
	for i, name := range usernames {
		id := int64(i + 1)
		s.users[id] = &models.User{ID: id, Username: name}
	}
	return s
}

func (s *fakeStore) GetUser(id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *fakeStore) CreateRequest(senderID, receiverID int64) (*models.ConnectionRequest, bool, error) {
	for _, r := range s.reqs {
		if r.SenderID == senderID && r.ReceiverID == receiverID {
			return r, false, nil
		}
	}
	s.nextID++
	req := &models.ConnectionRequest{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}
	s.reqs[req.ID] = req
	return req, true, nil
}

func (s *fakeStore) GetRequest(id int64) (*models.ConnectionRequest, error) {
	return s.reqs[id], nil
}

func (s *fakeStore) SetRequestStatus(id int64, status models.RequestStatus) (*models.ConnectionRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return nil, nil
	}
	req.Status = status
	return req, nil
}

func (s *fakeStore) IsAcceptedBetween(a, b int64) (bool, error) {
	for _, r := range s.reqs {
		if r.Status != models.RequestAccepted {
			continue
		}
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListSentRequests(userID int64) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	for _, r := range s.reqs {
		if r.SenderID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListReceivedRequests(userID int64) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	for _, r := range s.reqs {
		if r.ReceiverID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListConnectedUsers(userID int64) ([]models.User, error) {
	var out []models.User
	for _, r := range s.reqs {
		if r.Status != models.RequestAccepted {
			continue
		}
		if r.SenderID == userID {
			out = append(out, *s.users[r.ReceiverID])
		} else if r.ReceiverID == userID {
			out = append(out, *s.users[r.SenderID])
		}
	}
	return out, nil
}

// notifStore captures what the notifier persists.
type notifStore struct {
	inserted []*models.Notification
}

func (s *notifStore) InsertNotification(n *models.Notification) error {
	n.ID = int64(len(s.inserted) + 1)
	s.inserted = append(s.inserted, n)
	return nil
}

type nobodyOnline struct{}

func (nobodyOnline) IsOnline(int64) bool { return false }

type noopPusher struct{}

func (noopPusher) DeliverNotification(int64, models.NotificationFrame) bool { return false }
