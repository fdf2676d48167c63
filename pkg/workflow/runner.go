package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Execer runs one workflow execution.
type Execer interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// Runner starts runs in the background for triggers that do not wait for the
// outcome (HTTP, webhooks, cron). Each run is an independent goroutine.
type Runner struct {
	executor Execer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewRunner(executor Execer, logger *slog.Logger) *Runner {
	return &Runner{
		executor: executor,
		logger:   logger.With("module", "workflow_runner"),
	}
}

// Start launches the run and returns its trigger event id right away. The
// run outlives ctx cancellation but keeps its values.
func (r *Runner) Start(ctx context.Context, req Request) string {
	if req.TriggerEventID == "" {
		req.TriggerEventID = uuid.NewString()
	}

	runCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		_, err := r.executor.Execute(runCtx, req)
		if err != nil {
			r.logger.ErrorContext(runCtx, "Background run failed",
				"workflow_id", req.WorkflowID,
				"trigger_event_id", req.TriggerEventID,
				"error", err,
			)
		}
	}()

	return req.TriggerEventID
}

// Wait blocks until every started run has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
