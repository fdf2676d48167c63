package mocks

import (
	"context"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.WorkflowRepository)

	return repo
}

func (m *MockPersistence) ExecutionRepository() persistence.ExecutionRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.ExecutionRepository)

	return repo
}

func (m *MockPersistence) CredentialRepository() persistence.CredentialRepository {
	args := m.Called()

	repo, _ := args.Get(0).(persistence.CredentialRepository)

	return repo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of persistence.ExecutionRepository.
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) Insert(ctx context.Context, workflowID, triggerEventID string) (string, error) {
	args := m.Called(ctx, workflowID, triggerEventID)

	return args.String(0), args.Error(1)
}

func (m *MockExecutionRepository) Update(ctx context.Context, triggerEventID, workflowID string, update models.ExecutionUpdate) error {
	args := m.Called(ctx, triggerEventID, workflowID, update)

	return args.Error(0)
}

func (m *MockExecutionRepository) GetByTriggerEvent(ctx context.Context, triggerEventID, workflowID string) (*models.ExecutionRecord, error) {
	args := m.Called(ctx, triggerEventID, workflowID)

	record, _ := args.Get(0).(*models.ExecutionRecord)

	return record, args.Error(1)
}

func (m *MockExecutionRepository) GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	args := m.Called(ctx, id)

	record, _ := args.Get(0).(*models.ExecutionRecord)

	return record, args.Error(1)
}

func (m *MockExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionRecord, error) {
	args := m.Called(ctx, workflowID, limit)

	records, _ := args.Get(0).([]*models.ExecutionRecord)

	return records, args.Error(1)
}
