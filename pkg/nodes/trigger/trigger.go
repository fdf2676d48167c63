// Package trigger provides the executors for trigger nodes and the helpers
// that turn external events into a run's initial data.
package trigger

import (
	"context"
	"fmt"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
)

// Executor handles every trigger node type. The trigger's payload is already
// in the context as initial data, so the node passes it through unchanged.
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

func (e *Executor) Execute(_ context.Context, input protocol.Input) (template.Context, error) {
	if _, ok := input.Data.(models.TriggerData); !ok && input.Data != nil {
		return nil, protocol.NewWorkflowError(input.NodeID, fmt.Sprintf("unexpected node data %T", input.Data), nil)
	}

	if input.Context == nil {
		return template.Context{}, nil
	}

	return input.Context, nil
}

// Schema returns the JSON schema shared by all trigger node types.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cronExpression": map[string]any{
				"type":        "string",
				"description": "Standard five-field cron expression. When set, the scheduler starts the workflow on this schedule",
				"examples":    []string{"*/5 * * * *", "0 9 * * MON-FRI"},
			},
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA time zone the cron expression is evaluated in",
				"default":     "UTC",
			},
		},
	}
}
