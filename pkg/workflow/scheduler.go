package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/nodeflow/pkg/metrics"
	"github.com/dukex/nodeflow/pkg/nodes/trigger"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// Starter launches a run without waiting for it.
type Starter interface {
	Start(ctx context.Context, req Request) string
}

// Scheduler starts workflows whose trigger node carries a cron expression.
type Scheduler struct {
	workflows persistence.WorkflowRepository
	starter   Starter
	cron      *cron.Cron
	metrics   *metrics.Engine
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(workflows persistence.WorkflowRepository, starter Starter, engine *metrics.Engine, logger *slog.Logger) *Scheduler {
	if engine == nil {
		engine = metrics.NewEngine(nil)
	}

	return &Scheduler{
		workflows: workflows,
		starter:   starter,
		cron:      cron.New(),
		metrics:   engine,
		logger:    logger.With("module", "workflow_scheduler"),
		now:       time.Now,
	}
}

// Load registers every valid schedule of the stored workflows and returns
// how many were registered. Invalid schedules are logged and skipped.
func (s *Scheduler) Load(ctx context.Context) (int, error) {
	workflows, err := s.workflows.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch workflows: %w", err)
	}

	schedules, errs := trigger.Schedules(workflows)
	for _, err := range errs {
		s.logger.WarnContext(ctx, "Skipping invalid schedule", "error", err)
	}

	for _, schedule := range schedules {
		s.cron.Schedule(schedule.Schedule, cron.FuncJob(func() {
			s.fire(ctx, schedule)
		}))

		s.logger.InfoContext(ctx, "Scheduled workflow",
			"workflow_id", schedule.WorkflowID,
			"node_id", schedule.NodeID,
			"cron", schedule.Spec,
			"timezone", schedule.Location.String(),
		)
	}

	return len(schedules), nil
}

func (s *Scheduler) fire(ctx context.Context, schedule trigger.Schedule) string {
	s.metrics.ScheduledTriggersRun.Inc()

	return s.starter.Start(ctx, Request{
		WorkflowID:  schedule.WorkflowID,
		InitialData: trigger.ScheduleSeed(schedule, s.now()),
	})
}

// Entries lists the next activation of every registered schedule.
func (s *Scheduler) Entries() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))

	for _, entry := range entries {
		next = append(next, entry.Schedule.Next(s.now()))
	}

	return next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops firing new runs. The returned context is done once running jobs returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
