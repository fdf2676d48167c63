// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/dukex/nodeflow/pkg/models"

// ExecuteWorkflowRequest is the optional body of a manual execution. An empty
// trigger event id gets a generated one.
type ExecuteWorkflowRequest struct {
	TriggerEventID string         `json:"triggerEventId" validate:"omitempty,max=255"`
	InitialData    map[string]any `json:"initialData"`
}

// ExecuteWorkflowResponse acknowledges a run started in the background.
type ExecuteWorkflowResponse struct {
	WorkflowID     string `json:"workflowId"`
	TriggerEventID string `json:"triggerEventId"`
}

// ExecutionResultResponse is returned when the caller waits for the run.
type ExecutionResultResponse struct {
	WorkflowID     string         `json:"workflowId"`
	TriggerEventID string         `json:"triggerEventId"`
	ExecutionID    string         `json:"executionId"`
	Output         map[string]any `json:"output"`
}

// ListExecutionsRequest holds the query parameters of an execution listing.
type ListExecutionsRequest struct {
	Limit int `validate:"min=0,max=100"`
}

// ListExecutionsResponse lists the runs of one workflow, newest first.
type ListExecutionsResponse struct {
	Executions []*models.ExecutionRecord `json:"executions"`
	TotalCount int                       `json:"total_count"`
}

// WebhookAcceptedResponse acknowledges a webhook delivery.
type WebhookAcceptedResponse struct {
	Success        bool   `json:"success"`
	WorkflowID     string `json:"workflowId"`
	TriggerEventID string `json:"triggerEventId"`
}

// HealthResponse reports the state of the store.
type HealthResponse struct {
	Status string `json:"status"`
}
