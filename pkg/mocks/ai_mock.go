package mocks

import (
	"context"

	"github.com/dukex/nodeflow/pkg/providers/ai"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of ai.Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	args := m.Called(ctx, req)

	return args.String(0), args.Error(1)
}

// MockProviderSource hands out mocked providers by kind.
type MockProviderSource struct {
	mock.Mock
}

func (m *MockProviderSource) Provider(kind ai.Kind) (ai.Provider, error) {
	args := m.Called(kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(ai.Provider), args.Error(1)
}
