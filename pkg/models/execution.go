package models

import "time"

// ExecutionStatus is the durable state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "RUNNING"
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"
	ExecutionStatusFailed  ExecutionStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// ExecutionRecord is the persisted outcome of a run. It is created RUNNING and
// mutated exactly once more to a terminal status.
type ExecutionRecord struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	TriggerEventID string          `json:"trigger_event_id"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Output         map[string]any  `json:"output,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorStack     string          `json:"error_stack,omitempty"`
}

// ExecutionUpdate carries the terminal transition of a record.
type ExecutionUpdate struct {
	Status      ExecutionStatus
	CompletedAt time.Time
	Output      map[string]any
	Error       string
	ErrorStack  string
}

// Apply writes the update onto the record.
func (u ExecutionUpdate) Apply(record *ExecutionRecord) {
	completedAt := u.CompletedAt
	record.Status = u.Status
	record.CompletedAt = &completedAt
	record.Output = u.Output
	record.Error = u.Error
	record.ErrorStack = u.ErrorStack
}

// NodeStatus is the transient per-node state broadcast during a run.
type NodeStatus string

const (
	NodeStatusInitial NodeStatus = "INITIAL"
	NodeStatusLoading NodeStatus = "LOADING"
	NodeStatusSuccess NodeStatus = "SUCCESS"
	NodeStatusError   NodeStatus = "ERROR"
)

// NodeExecution is one entry of the status snapshot published to observers.
type NodeExecution struct {
	NodeID      string     `json:"nodeId"`
	Status      NodeStatus `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}
