// Package workflow runs persisted workflow graphs: it orders the nodes, runs
// each executor in turn while threading the execution context, broadcasts
// node status, and records the outcome of every run.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/nodeflow/pkg/broadcast"
	"github.com/dukex/nodeflow/pkg/graph"
	nflog "github.com/dukex/nodeflow/pkg/log"
	"github.com/dukex/nodeflow/pkg/metrics"
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/otelhelper"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExecutorLookup resolves the executor of a node type.
type ExecutorLookup interface {
	Lookup(nodeType models.NodeType) (protocol.Executor, error)
}

// Request starts one run. An empty TriggerEventID gets a generated one.
type Request struct {
	WorkflowID     string
	TriggerEventID string
	InitialData    map[string]any
}

// Result is the outcome of a successful run.
type Result struct {
	WorkflowID     string
	TriggerEventID string
	ExecutionID    string
	FinalContext   template.Context
}

// Executor is the workflow execution orchestrator. It is safe for concurrent
// use; every call to Execute owns its own context and status board.
type Executor struct {
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	registry   ExecutorLookup
	publisher  broadcast.Publisher
	templates  *template.Resolver
	tracer     trace.Tracer
	metrics    *metrics.Engine
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Executor)

func WithPublisher(publisher broadcast.Publisher) Option {
	return func(e *Executor) { e.publisher = publisher }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

func WithMetrics(engine *metrics.Engine) Option {
	return func(e *Executor) { e.metrics = engine }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

func WithTemplates(resolver *template.Resolver) Option {
	return func(e *Executor) { e.templates = resolver }
}

// WithClock replaces time.Now for status and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func NewExecutor(p persistence.Persistence, registry ExecutorLookup, opts ...Option) *Executor {
	e := &Executor{
		workflows:  p.WorkflowRepository(),
		executions: p.ExecutionRepository(),
		registry:   registry,
		publisher:  broadcast.Discard{},
		templates:  template.NewResolver(),
		tracer:     otelhelper.NewNoopTracer(),
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = metrics.NewEngine(nil)
	}

	e.logger = e.logger.With("module", "workflow_executor")

	return e
}

// Execute performs one run of the workflow. Any error after the execution
// record was created leaves that record FAILED.
func (e *Executor) Execute(ctx context.Context, req Request) (_ *Result, err error) {
	if req.TriggerEventID == "" {
		req.TriggerEventID = uuid.NewString()
	}

	logger := e.logger.With("workflow_id", req.WorkflowID, "trigger_event_id", req.TriggerEventID)
	ctx = nflog.WithContext(ctx, logger)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID),
		attribute.String(otelhelper.TriggerEventIDKey, req.TriggerEventID),
	)
	defer span.End()

	logger.InfoContext(ctx, "Starting workflow execution")

	wf, err := e.workflows.GetByID(ctx, req.WorkflowID)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Failed to load workflow", "error", err)

		return nil, fmt.Errorf("failed to load workflow %s: %w", req.WorkflowID, err)
	}

	executionID, err := e.executions.Insert(ctx, wf.ID, req.TriggerEventID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, executionID))

	finish := e.metrics.RunStarted()

	defer func() {
		if err == nil {
			finish(string(models.ExecutionStatusSuccess))

			return
		}

		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "Workflow execution failed", "error", err)
		e.markFailed(context.WithoutCancel(ctx), req.TriggerEventID, wf.ID, err)
		finish(string(models.ExecutionStatusFailed))
	}()

	sorted, err := graph.Sort(wf.Nodes, wf.Connections)
	if err != nil {
		return nil, err
	}

	board := newStatusBoard(sorted)
	e.publish(ctx, wf.ID, board)

	current := template.New(req.InitialData)

	for _, node := range sorted {
		current, err = e.executeNode(ctx, wf, node, board, current)
		if err != nil {
			return nil, err
		}
	}

	err = e.executions.Update(ctx, req.TriggerEventID, wf.ID, models.ExecutionUpdate{
		Status:      models.ExecutionStatusSuccess,
		CompletedAt: e.now(),
		Output:      current,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finalize execution record: %w", err)
	}

	logger.InfoContext(ctx, "Workflow execution completed", "nodes", len(sorted))

	return &Result{
		WorkflowID:     wf.ID,
		TriggerEventID: req.TriggerEventID,
		ExecutionID:    executionID,
		FinalContext:   current,
	}, nil
}

func (e *Executor) executeNode(
	ctx context.Context,
	wf *models.Workflow,
	node *models.Node,
	board *statusBoard,
	current template.Context,
) (template.Context, error) {
	logger := nflog.FromContext(ctx).With("node_id", node.ID, "node_type", string(node.Type))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "node.execute",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	started := e.now()
	board.start(node.ID, started)
	e.publish(ctx, wf.ID, board)

	next, err := e.invoke(ctx, wf, node, current)
	completed := e.now()

	if err != nil {
		otelhelper.SetError(span, err)
		board.fail(node.ID, completed, err)
		e.publish(ctx, wf.ID, board)
		e.metrics.NodeFinished(string(node.Type), string(models.NodeStatusError), completed.Sub(started))
		logger.ErrorContext(ctx, "Node execution failed", "error", err)

		return nil, err
	}

	board.succeed(node.ID, completed)
	e.publish(ctx, wf.ID, board)
	e.metrics.NodeFinished(string(node.Type), string(models.NodeStatusSuccess), completed.Sub(started))
	logger.DebugContext(ctx, "Node executed")

	return next, nil
}

func (e *Executor) invoke(ctx context.Context, wf *models.Workflow, node *models.Node, current template.Context) (template.Context, error) {
	executor, err := e.registry.Lookup(node.Type)
	if err != nil {
		return nil, err
	}

	next, err := executor.Execute(ctx, protocol.Input{
		NodeID:    node.ID,
		NodeType:  node.Type,
		Data:      node.Data,
		Context:   current,
		Step:      tracedSteps{tracer: e.tracer, nodeID: node.ID},
		UserID:    wf.UserID,
		Templates: e.templates,
	})
	if err != nil {
		return nil, err
	}

	if next == nil {
		return current, nil
	}

	return next, nil
}

// publish sends the full status snapshot. Failures are logged and dropped.
func (e *Executor) publish(ctx context.Context, workflowID string, board *statusBoard) {
	err := e.publisher.Publish(ctx, broadcast.WorkflowChannel(workflowID), broadcast.NodesEvent, board.snapshot())
	if err != nil {
		e.metrics.BroadcastFailures.Inc()
		nflog.FromContext(ctx).WarnContext(ctx, "Failed to publish node status", "error", err)
	}
}

// markFailed is the failure hook: it locates the record by its composite key
// and moves it to FAILED.
func (e *Executor) markFailed(ctx context.Context, triggerEventID, workflowID string, cause error) {
	err := e.executions.Update(ctx, triggerEventID, workflowID, models.ExecutionUpdate{
		Status:      models.ExecutionStatusFailed,
		CompletedAt: e.now(),
		Error:       cause.Error(),
		ErrorStack:  ErrorStack(cause),
	})
	if err != nil {
		nflog.FromContext(ctx).ErrorContext(ctx, "Failed to mark execution as failed", "error", err)
	}
}
