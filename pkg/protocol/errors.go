package protocol

import (
	"errors"
	"fmt"
)

// ErrWorkflow is matched by every WorkflowError.
var ErrWorkflow = errors.New("node execution failed")

// WorkflowError is the failure type executors return. It terminates the run.
type WorkflowError struct {
	NodeID  string
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Message, e.Err)
	}

	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return target == ErrWorkflow
}

// NewWorkflowError builds a WorkflowError for nodeID.
func NewWorkflowError(nodeID, message string, err error) *WorkflowError {
	return &WorkflowError{NodeID: nodeID, Message: message, Err: err}
}

// IsWorkflowError checks if an error is a node execution failure.
func IsWorkflowError(err error) bool {
	return errors.Is(err, ErrWorkflow)
}
