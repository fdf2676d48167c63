package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
)

// CredentialRepository stores user-scoped secrets in the credentials table.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) GetByID(ctx context.Context, id, userID string) (*models.Credential, error) {
	var (
		credential     models.Credential
		credentialType string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, value, created_at, updated_at
		FROM credentials
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&credential.ID,
		&credential.UserID,
		&credential.Name,
		&credentialType,
		&credential.Value,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrCredentialNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query credential %s: %w", id, err)
	}

	credential.Type = models.CredentialType(credentialType)

	return &credential, nil
}

func (r *CredentialRepository) Save(ctx context.Context, credential *models.Credential) error {
	if credential.ID == "" || credential.UserID == "" {
		return errors.New("credential id and user id are required")
	}

	now := time.Now().UTC()
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}

	credential.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_id, name, type, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		WHERE credentials.user_id = EXCLUDED.user_id
	`,
		credential.ID,
		credential.UserID,
		credential.Name,
		string(credential.Type),
		credential.Value,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential %s: %w", credential.ID, err)
	}

	return nil
}
