// Package persistence provides the storage abstraction for workflows,
// execution records and credentials.
package persistence

import (
	"context"

	"github.com/dukex/nodeflow/pkg/models"
)

// Persistence bundles the repositories of one storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	CredentialRepository() CredentialRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository loads and stores workflow graphs.
type WorkflowRepository interface {
	// GetByID returns the workflow with its nodes and connections, or an
	// error matching ErrWorkflowNotFound.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// Save inserts or replaces a workflow together with its nodes and connections.
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete removes a workflow and, with it, its nodes and connections.
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores one ExecutionRecord per (workflowID, triggerEventID).
type ExecutionRepository interface {
	// Insert creates a RUNNING record and returns its id. A second insert for
	// the same pair fails with ErrExecutionAlreadyExists.
	Insert(ctx context.Context, workflowID, triggerEventID string) (string, error)
	// Update applies the terminal transition. Only a RUNNING record can be
	// updated; anything else fails with ErrExecutionNotRunning.
	Update(ctx context.Context, triggerEventID, workflowID string, update models.ExecutionUpdate) error
	GetByTriggerEvent(ctx context.Context, triggerEventID, workflowID string) (*models.ExecutionRecord, error)
	GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error)
	// ListByWorkflow returns the most recent records first. A limit of zero
	// or less returns every record.
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionRecord, error)
}

// CredentialRepository stores user-scoped secrets.
type CredentialRepository interface {
	// GetByID returns the credential only when it belongs to userID.
	GetByID(ctx context.Context, id, userID string) (*models.Credential, error)
	Save(ctx context.Context, credential *models.Credential) error
}

// CredentialStore adapts a CredentialRepository to the lookup executors use.
type CredentialStore struct {
	Repository CredentialRepository
}

func (s CredentialStore) Credential(ctx context.Context, credentialID, userID string) (*models.Credential, error) {
	return s.Repository.GetByID(ctx, credentialID, userID)
}
