package mocks

import (
	"context"

	"github.com/dukex/nodeflow/pkg/broadcast"
	"github.com/stretchr/testify/mock"
)

// MockBroadcaster is a mock implementation of broadcast.Broadcaster.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Publish(ctx context.Context, channel, event string, payload any) error {
	args := m.Called(ctx, channel, event, payload)

	return args.Error(0)
}

func (m *MockBroadcaster) Subscribe(ctx context.Context, channel string) (<-chan broadcast.Message, error) {
	args := m.Called(ctx, channel)

	messages, _ := args.Get(0).(<-chan broadcast.Message)

	return messages, args.Error(1)
}

func (m *MockBroadcaster) Close() error {
	args := m.Called()

	return args.Error(0)
}
