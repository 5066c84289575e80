package notify_test

import (
	"peerlink/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStore records notification inserts and assigns IDs the way the
// database would.
type MockStore struct {
	mock.Mock
	nextID int64
}

func (m *MockStore) InsertNotification(n *models.Notification) error {
	args := m.Called(n)
	if args.Error(0) == nil {
		m.nextID++
		n.ID = m.nextID
	}
	return args.Error(0)
}

// fakePresence reports the configured users as online.
type fakePresence struct {
	online map[int64]bool
}

func (p *fakePresence) IsOnline(userID int64) bool { return p.online[userID] }

// fakePusher records every pushed frame and returns a configurable result.
type fakePusher struct {
	pushed []models.NotificationFrame
	result bool
}

func (p *fakePusher) DeliverNotification(userID int64, frame models.NotificationFrame) bool {
	p.pushed = append(p.pushed, frame)
	return p.result
}
