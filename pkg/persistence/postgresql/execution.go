package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// ExecutionRepository stores execution records in the executions table.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `id, workflow_id, trigger_event_id, status, started_at, completed_at, output, error, error_stack`

// Insert relies on the (workflow_id, trigger_event_id) unique constraint to
// reject duplicates, so concurrent inserts of the same pair cannot both win.
func (r *ExecutionRepository) Insert(ctx context.Context, workflowID, triggerEventID string) (string, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO executions (id, workflow_id, trigger_event_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, workflowID, triggerEventID, models.ExecutionStatusRunning, time.Now().UTC())

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return "", persistence.NewExecutionError("Insert", workflowID, triggerEventID, persistence.ErrExecutionAlreadyExists)
	}

	if err != nil {
		return "", persistence.NewExecutionError("Insert", workflowID, triggerEventID, err)
	}

	return id, nil
}

// Update only touches a RUNNING record. When nothing matches it tells a
// missing record apart from a finalized one.
func (r *ExecutionRepository) Update(ctx context.Context, triggerEventID, workflowID string, update models.ExecutionUpdate) error {
	output, err := marshalOutput(update.Output)
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE executions
		SET status = $1, completed_at = $2, output = $3, error = $4, error_stack = $5
		WHERE trigger_event_id = $6 AND workflow_id = $7 AND status = $8
	`,
		update.Status,
		update.CompletedAt,
		output,
		nullString(update.Error),
		nullString(update.ErrorStack),
		triggerEventID,
		workflowID,
		models.ExecutionStatusRunning,
	)
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	if affected > 0 {
		return nil
	}

	_, err = r.GetByTriggerEvent(ctx, triggerEventID, workflowID)
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	return persistence.NewExecutionError("Update", workflowID, triggerEventID, persistence.ErrExecutionNotRunning)
}

func (r *ExecutionRepository) GetByTriggerEvent(ctx context.Context, triggerEventID, workflowID string) (*models.ExecutionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE trigger_event_id = $1 AND workflow_id = $2`,
		triggerEventID, workflowID)

	record, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrExecutionNotFound
	}

	return record, err
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+executionColumns+` FROM executions WHERE id = $1`, id)

	record, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrExecutionNotFound
	}

	return record, err
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionRecord, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC, id`
	args := []any{workflowID}

	if limit > 0 {
		query += ` LIMIT $2`

		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	records := make([]*models.ExecutionRecord, 0)

	for rows.Next() {
		record, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return records, nil
}

func scanExecution(row rowScanner) (*models.ExecutionRecord, error) {
	var (
		record      models.ExecutionRecord
		status      string
		completedAt sql.NullTime
		output      []byte
		errMessage  sql.NullString
		errorStack  sql.NullString
	)

	err := row.Scan(
		&record.ID,
		&record.WorkflowID,
		&record.TriggerEventID,
		&status,
		&record.StartedAt,
		&completedAt,
		&output,
		&errMessage,
		&errorStack,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	record.Status = models.ExecutionStatus(status)
	record.Error = errMessage.String
	record.ErrorStack = errorStack.String

	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}

	if output != nil {
		err := json.Unmarshal(output, &record.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution output: %w", err)
		}
	}

	return &record, nil
}

func marshalOutput(output map[string]any) ([]byte, error) {
	if output == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution output: %w", err)
	}

	return encoded, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
