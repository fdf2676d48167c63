package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/protocol"
	"github.com/dukex/nodeflow/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_PassesContextThrough(t *testing.T) {
	ctx := template.Context{"googleForm": map[string]any{"formId": "f-1"}}

	out, err := NewExecutor().Execute(context.Background(), protocol.Input{
		NodeID:  "trigger",
		Data:    models.TriggerData{},
		Context: ctx,
	})
	require.NoError(t, err)
	assert.Equal(t, ctx, out)
}

func TestExecutor_NilContext(t *testing.T) {
	out, err := NewExecutor().Execute(context.Background(), protocol.Input{NodeID: "trigger", Data: models.TriggerData{}})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestExecutor_RejectsForeignData(t *testing.T) {
	_, err := NewExecutor().Execute(context.Background(), protocol.Input{NodeID: "trigger", Data: models.SlackData{}})
	require.ErrorIs(t, err, protocol.ErrWorkflow)
}

func TestParseSchedule(t *testing.T) {
	schedule, location, err := ParseSchedule(models.TriggerData{CronExpression: "0 9 * * *", Timezone: "UTC"})
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, time.UTC, location)

	next := schedule.Next(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	assert.True(t, next.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)), "got %s", next)
}

func TestParseSchedule_Empty(t *testing.T) {
	schedule, location, err := ParseSchedule(models.TriggerData{})
	require.NoError(t, err)
	assert.Nil(t, schedule)
	assert.Nil(t, location)
}

func TestParseSchedule_Invalid(t *testing.T) {
	_, _, err := ParseSchedule(models.TriggerData{CronExpression: "every minute"})
	require.Error(t, err)

	_, _, err = ParseSchedule(models.TriggerData{CronExpression: "* * * * *", Timezone: "Mars/Olympus"})
	require.Error(t, err)
}

func TestSchedules(t *testing.T) {
	workflows := []*models.Workflow{
		{
			ID: "wf-1",
			Nodes: []*models.Node{
				{ID: "t1", Type: models.NodeTypeManualTrigger, Data: models.TriggerData{CronExpression: "@hourly"}},
				{ID: "t2", Type: models.NodeTypeInitial, Data: models.TriggerData{}},
				{ID: "h1", Type: models.NodeTypeHTTPRequest, Data: models.HTTPRequestData{}},
			},
		},
		{
			ID: "wf-2",
			Nodes: []*models.Node{
				{ID: "bad", Type: models.NodeTypeManualTrigger, Data: models.TriggerData{CronExpression: "nope"}},
			},
		},
	}

	schedules, errs := Schedules(workflows)
	require.Len(t, schedules, 1)
	assert.Equal(t, "wf-1", schedules[0].WorkflowID)
	assert.Equal(t, "t1", schedules[0].NodeID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "wf-2")
}

func TestScheduleSeed(t *testing.T) {
	seed := ScheduleSeed(Schedule{NodeID: "t1", Spec: "@daily", Location: time.UTC}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, map[string]any{
		"schedule": map[string]any{
			"nodeId":         "t1",
			"cronExpression": "@daily",
			"firedAt":        "2024-05-01T00:00:00Z",
		},
	}, seed)
}

func TestGoogleFormSeed(t *testing.T) {
	body := map[string]any{
		"formId":          "form-1",
		"formTitle":       "Signup",
		"responseId":      "resp-1",
		"timestamp":       "2024-01-01T00:00:00Z",
		"respondentEmail": "a@example.com",
		"responses":       map[string]any{"Name": "Ada"},
	}

	seed := GoogleFormSeed(body)
	form := seed["googleForm"].(map[string]any)

	assert.Equal(t, "form-1", form["formId"])
	assert.Equal(t, "a@example.com", form["respondentEmail"])
	assert.Equal(t, map[string]any{"Name": "Ada"}, form["responses"])
	assert.Equal(t, body, form["raw"])
}

func TestStripeSeed(t *testing.T) {
	event := map[string]any{
		"id":       "evt_1",
		"type":     "checkout.session.completed",
		"created":  float64(1700000000),
		"livemode": false,
		"data":     map[string]any{"object": map[string]any{"amount_total": float64(500)}},
	}

	seed := StripeSeed(event)
	assert.Equal(t, map[string]any{
		"stripe": map[string]any{
			"eventId":   "evt_1",
			"eventType": "checkout.session.completed",
			"timestamp": float64(1700000000),
			"livemode":  false,
			"raw":       map[string]any{"amount_total": float64(500)},
		},
	}, seed)
}
