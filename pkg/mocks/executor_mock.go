package mocks

import (
	"context"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock implementation of protocol.Executor.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, input protocol.Input) (template.Context, error) {
	args := m.Called(ctx, input)

	result, _ := args.Get(0).(template.Context)

	return result, args.Error(1)
}

// MockLookup is a mock implementation of the executor lookup the engine uses.
type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Lookup(nodeType models.NodeType) (protocol.Executor, error) {
	args := m.Called(nodeType)

	executor, _ := args.Get(0).(protocol.Executor)

	return executor, args.Error(1)
}
