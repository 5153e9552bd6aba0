package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-checkout/internal/notification"
)

// MockSink records every notification it receives
type MockSink struct {
	mu            sync.Mutex
	Notifications []notification.Notification

	// NotifyErr is returned from Notify when set
	NotifyErr error
}

func NewMockSink() *MockSink {
	return &MockSink{Notifications: make([]notification.Notification, 0)}
}

func (m *MockSink) Notify(ctx context.Context, n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
	return m.NotifyErr
}

// Count returns the number of notifications received
func (m *MockSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

// Last returns the most recent notification
func (m *MockSink) Last() (notification.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Notifications) == 0 {
		return notification.Notification{}, false
	}
	return m.Notifications[len(m.Notifications)-1], true
}
