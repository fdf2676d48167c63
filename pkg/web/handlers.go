// Package web provides HTTP handlers for triggering workflows and reading their executions.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dukex/nodeflow/pkg/metrics"
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/nodes/trigger"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/dukex/nodeflow/pkg/registry"
	"github.com/dukex/nodeflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

const (
	sourceGoogleForm = "google_form"
	sourceStripe     = "stripe"
)

type APIHandlers struct {
	persistence persistence.Persistence
	executor    workflow.Execer
	runner      workflow.Starter
	validator   *validator.Validate
	metrics     *metrics.Engine
	logger      *slog.Logger
}

func NewAPIHandlers(
	persistence persistence.Persistence,
	executor workflow.Execer,
	runner workflow.Starter,
	validator *validator.Validate,
	engine *metrics.Engine,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		persistence: persistence,
		executor:    executor,
		runner:      runner,
		validator:   validator,
		metrics:     engine,
		logger:      logger.With("module", "web"),
	}
}

// ExecuteWorkflow starts a manual run. With ?wait=true the response carries the
// final context, otherwise the run continues in the background.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	workflowID := c.Params("id")

	var req ExecuteWorkflowRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	_, err := h.persistence.WorkflowRepository().GetByID(c.Context(), workflowID)
	if err != nil {
		return handleError(c, err)
	}

	run := workflow.Request{
		WorkflowID:     workflowID,
		TriggerEventID: req.TriggerEventID,
		InitialData:    req.InitialData,
	}

	if c.Query("wait") == "true" {
		result, err := h.executor.Execute(c.Context(), run)
		if err != nil {
			return handleError(c, err)
		}

		return c.JSON(ExecutionResultResponse{
			WorkflowID:     result.WorkflowID,
			TriggerEventID: result.TriggerEventID,
			ExecutionID:    result.ExecutionID,
			Output:         result.FinalContext,
		})
	}

	// The run outlives the request, which fiber recycles once the handler returns.
	triggerEventID := h.runner.Start(context.Background(), run)

	return c.Status(fiber.StatusAccepted).JSON(ExecuteWorkflowResponse{
		WorkflowID:     workflowID,
		TriggerEventID: triggerEventID,
	})
}

func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	req, err := h.parseListExecutionsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	workflowID := c.Params("id")

	_, err = h.persistence.WorkflowRepository().GetByID(c.Context(), workflowID)
	if err != nil {
		return handleError(c, err)
	}

	executions, err := h.persistence.ExecutionRepository().ListByWorkflow(c.Context(), workflowID, req.Limit)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(ListExecutionsResponse{
		Executions: executions,
		TotalCount: len(executions),
	})
}

func (h *APIHandlers) parseListExecutionsRequest(c fiber.Ctx) (*ListExecutionsRequest, error) {
	req := &ListExecutionsRequest{Limit: 20}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return req, nil
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	record, err := h.persistence.ExecutionRepository().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(record)
}

// GoogleFormWebhook starts the workflow named by ?workflowId= with the form
// submission as initial data. The response id, when present, is the trigger
// event id so a redelivered submission is not run twice.
func (h *APIHandlers) GoogleFormWebhook(c fiber.Ctx) error {
	return h.webhook(c, sourceGoogleForm, models.NodeTypeGoogleFormTrigger, "responseId", trigger.GoogleFormSeed)
}

// StripeWebhook starts the workflow named by ?workflowId= with the Stripe
// event as initial data, keyed by the Stripe event id.
func (h *APIHandlers) StripeWebhook(c fiber.Ctx) error {
	return h.webhook(c, sourceStripe, models.NodeTypeStripeTrigger, "id", trigger.StripeSeed)
}

func (h *APIHandlers) webhook(
	c fiber.Ctx,
	source string,
	triggerType models.NodeType,
	idField string,
	seed func(map[string]any) map[string]any,
) error {
	workflowID := c.Query("workflowId")
	if workflowID == "" {
		return badRequest(c, "Missing required query parameter: workflowId")
	}

	var body map[string]any
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), workflowID)
	if err != nil {
		return handleError(c, err)
	}

	if !hasNodeOfType(wf, triggerType) {
		return unprocessable(c, "trigger_not_configured",
			fmt.Sprintf("workflow %s has no %s node", workflowID, triggerType))
	}

	triggerEventID, _ := body[idField].(string)

	triggerEventID = h.runner.Start(context.Background(), workflow.Request{
		WorkflowID:     workflowID,
		TriggerEventID: triggerEventID,
		InitialData:    seed(body),
	})

	if h.metrics != nil {
		h.metrics.WebhookEventsTotal.WithLabelValues(source).Inc()
	}

	h.logger.InfoContext(c.Context(), "Webhook accepted",
		"source", source,
		"workflow_id", workflowID,
		"trigger_event_id", triggerEventID,
	)

	return c.JSON(WebhookAcceptedResponse{
		Success:        true,
		WorkflowID:     workflowID,
		TriggerEventID: triggerEventID,
	})
}

func hasNodeOfType(wf *models.Workflow, nodeType models.NodeType) bool {
	for _, node := range wf.Nodes {
		if node.Type == nodeType {
			return true
		}
	}

	return false
}

// NodeTypes lists every node type with the JSON schema of its data.
func (h *APIHandlers) NodeTypes(c fiber.Ctx) error {
	return c.JSON(registry.Catalogue())
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		problem := problems.NewStatusProblem(503).
			WithInstance(c.Path()).
			WithType("unhealthy").
			WithDetail(err.Error())

		return c.Status(fiber.StatusServiceUnavailable).JSON(problem)
	}

	return c.JSON(HealthResponse{Status: "ok"})
}
