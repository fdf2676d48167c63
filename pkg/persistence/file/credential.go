package file

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
)

// CredentialRepository keeps one document per credential under <root>/credentials.
// Values are stored as given; encryption at rest is the caller's concern.
type CredentialRepository struct {
	store store
}

func NewCredentialRepository(root string) *CredentialRepository {
	return &CredentialRepository{store: store{dir: filepath.Join(root, "credentials")}}
}

// GetByID returns ErrCredentialNotFound both for missing ids and for credentials of another user.
func (cr *CredentialRepository) GetByID(_ context.Context, id, userID string) (*models.Credential, error) {
	cr.store.mu.RLock()
	defer cr.store.mu.RUnlock()

	var credential models.Credential

	found, err := cr.store.read(id, &credential)
	if err != nil {
		return nil, err
	}

	if !found || credential.UserID != userID {
		return nil, persistence.ErrCredentialNotFound
	}

	return &credential, nil
}

func (cr *CredentialRepository) Save(_ context.Context, credential *models.Credential) error {
	if credential.ID == "" || credential.UserID == "" {
		return errors.New("credential id and user id are required")
	}

	cr.store.mu.Lock()
	defer cr.store.mu.Unlock()

	now := time.Now().UTC()
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}

	credential.UpdatedAt = now

	return cr.store.write(credential.ID, credential)
}
