package file

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/google/uuid"
)

// ExecutionRepository keeps every record of a workflow in one document under
// <root>/executions/<workflowID>.json.
type ExecutionRepository struct {
	store store
	now   func() time.Time
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{
		store: store{dir: filepath.Join(root, "executions")},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (er *ExecutionRepository) load(workflowID string) ([]*models.ExecutionRecord, error) {
	var records []*models.ExecutionRecord

	_, err := er.store.read(workflowID, &records)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func findByTriggerEvent(records []*models.ExecutionRecord, triggerEventID string) *models.ExecutionRecord {
	for _, record := range records {
		if record.TriggerEventID == triggerEventID {
			return record
		}
	}

	return nil
}

// Insert creates a RUNNING record for the pair.
func (er *ExecutionRepository) Insert(_ context.Context, workflowID, triggerEventID string) (string, error) {
	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	records, err := er.load(workflowID)
	if err != nil {
		return "", persistence.NewExecutionError("Insert", workflowID, triggerEventID, err)
	}

	if findByTriggerEvent(records, triggerEventID) != nil {
		return "", persistence.NewExecutionError("Insert", workflowID, triggerEventID, persistence.ErrExecutionAlreadyExists)
	}

	record := &models.ExecutionRecord{
		ID:             uuid.NewString(),
		WorkflowID:     workflowID,
		TriggerEventID: triggerEventID,
		Status:         models.ExecutionStatusRunning,
		StartedAt:      er.now(),
	}

	err = er.store.write(workflowID, append(records, record))
	if err != nil {
		return "", persistence.NewExecutionError("Insert", workflowID, triggerEventID, err)
	}

	return record.ID, nil
}

// Update applies the terminal transition to a RUNNING record.
func (er *ExecutionRepository) Update(_ context.Context, triggerEventID, workflowID string, update models.ExecutionUpdate) error {
	er.store.mu.Lock()
	defer er.store.mu.Unlock()

	records, err := er.load(workflowID)
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	record := findByTriggerEvent(records, triggerEventID)
	if record == nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, persistence.ErrExecutionNotFound)
	}

	if record.Status != models.ExecutionStatusRunning {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, persistence.ErrExecutionNotRunning)
	}

	update.Apply(record)

	err = er.store.write(workflowID, records)
	if err != nil {
		return persistence.NewExecutionError("Update", workflowID, triggerEventID, err)
	}

	return nil
}

func (er *ExecutionRepository) GetByTriggerEvent(_ context.Context, triggerEventID, workflowID string) (*models.ExecutionRecord, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	records, err := er.load(workflowID)
	if err != nil {
		return nil, persistence.NewExecutionError("GetByTriggerEvent", workflowID, triggerEventID, err)
	}

	record := findByTriggerEvent(records, triggerEventID)
	if record == nil {
		return nil, persistence.NewExecutionError("GetByTriggerEvent", workflowID, triggerEventID, persistence.ErrExecutionNotFound)
	}

	return record, nil
}

// GetByID scans every workflow document for the record.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	workflowIDs, err := er.store.ids()
	if err != nil {
		return nil, err
	}

	for _, workflowID := range workflowIDs {
		records, err := er.load(workflowID)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			if record.ID == id {
				return record, nil
			}
		}
	}

	return nil, persistence.ErrExecutionNotFound
}

func (er *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string, limit int) ([]*models.ExecutionRecord, error) {
	er.store.mu.RLock()
	defer er.store.mu.RUnlock()

	records, err := er.load(workflowID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	if records == nil {
		records = []*models.ExecutionRecord{}
	}

	return records, nil
}
