package mocks

import (
	"context"

	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/email"
	"github.com/stretchr/testify/mock"
)

// MockNotifier records account notifications.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier returns a MockNotifier that accepts any notification.
// Tests that care about notifications assert with AssertCalled.
func NewMockNotifier() *MockNotifier {
	m := &MockNotifier{}
	m.On("NotifyWelcome", mock.Anything, mock.Anything).Maybe()
	m.On("NotifyCancellation", mock.Anything, mock.Anything).Maybe()
	return m
}

// NotifyWelcome records the call.
func (m *MockNotifier) NotifyWelcome(ctx context.Context, user *domain.User) {
	m.Called(ctx, user)
}

// NotifyCancellation records the call.
func (m *MockNotifier) NotifyCancellation(ctx context.Context, user *domain.User) {
	m.Called(ctx, user)
}

// MockEmailSender is a testify mock of email.Sender.
type MockEmailSender struct {
	mock.Mock
}

var _ email.Sender = (*MockEmailSender)(nil)

// Send records the call and returns the configured error.
func (m *MockEmailSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
