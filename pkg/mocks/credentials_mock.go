package mocks

import (
	"context"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockCredentialStore is a mock implementation of protocol.CredentialStore interface.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Credential(ctx context.Context, credentialID, userID string) (*models.Credential, error) {
	args := m.Called(ctx, credentialID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Credential), args.Error(1)
}
