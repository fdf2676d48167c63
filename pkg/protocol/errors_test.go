package protocol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewWorkflowError("node-1", "request failed", cause)

	assert.Equal(t, "node node-1: request failed: connection refused", err.Error())
	assert.True(t, errors.Is(err, ErrWorkflow))
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("run: %w", err)
	assert.True(t, IsWorkflowError(wrapped))

	var target *WorkflowError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "node-1", target.NodeID)
}

func TestWorkflowError_WithoutCause(t *testing.T) {
	err := NewWorkflowError("node-2", "variableName is required", nil)

	assert.Equal(t, "node node-2: variableName is required", err.Error())
	assert.Nil(t, errors.Unwrap(err))
	assert.False(t, IsWorkflowError(errors.New("other")))
}

func TestDirectStepRunner(t *testing.T) {
	calls := 0
	err := DirectStepRunner.Run(context.Background(), "step", func(context.Context) error {
		calls++

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
