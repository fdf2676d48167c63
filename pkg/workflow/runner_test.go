package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/testutil"
	"github.com/dukex/nodeflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_StartAndWait(t *testing.T) {
	h := newHarness(t)

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode())
	h.save(t, wf)

	runner := workflow.NewRunner(h.executor(table{models.NodeTypeManualTrigger: writes("a", 1)}), discardLogger())

	ctx, cancel := context.WithCancel(t.Context())

	ids := make([]string, 0, 3)
	for range 3 {
		ids = append(ids, runner.Start(ctx, workflow.Request{WorkflowID: wf.ID}))
	}

	// Runs outlive the caller's context.
	cancel()
	runner.Wait()

	for _, id := range ids {
		assert.NotEmpty(t, id)
		assert.Equal(t, models.ExecutionStatusSuccess, h.record(t, wf, id).Status)
	}
}

func TestRunner_KeepsGivenTriggerEventID(t *testing.T) {
	h := newHarness(t)

	runner := workflow.NewRunner(h.executor(table{}), discardLogger())

	id := runner.Start(t.Context(), workflow.Request{WorkflowID: "missing", TriggerEventID: "evt-7"})
	runner.Wait()

	assert.Equal(t, "evt-7", id)
}

type starts struct {
	mu       sync.Mutex
	requests []workflow.Request
}

func (s *starts) Start(_ context.Context, req workflow.Request) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	return "evt"
}

func TestScheduler_LoadsCronTriggers(t *testing.T) {
	h := newHarness(t)

	scheduled := testutil.CreateTestWorkflow(testutil.CreateTestNode(
		testutil.WithID("cron"),
		testutil.WithData(models.TriggerData{CronExpression: "0 9 * * 1", Timezone: "Europe/Lisbon"}),
	))
	manual := testutil.CreateTestWorkflow(testutil.CreateTestNode())
	broken := testutil.CreateTestWorkflow(testutil.CreateTestNode(
		testutil.WithData(models.TriggerData{CronExpression: "every tuesday"}),
	))

	h.save(t, scheduled)
	h.save(t, manual)
	h.save(t, broken)

	scheduler := workflow.NewScheduler(h.store.WorkflowRepository(), &starts{}, nil, discardLogger())

	count, err := scheduler.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	next := scheduler.Entries()
	require.Len(t, next, 1)

	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)

	local := next[0].In(lisbon)
	assert.Equal(t, time.Monday, local.Weekday())
	assert.Equal(t, 9, local.Hour())
}

func TestScheduler_FiresThroughStarter(t *testing.T) {
	h := newHarness(t)

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode(
		testutil.WithID("cron"),
		testutil.WithData(models.TriggerData{CronExpression: "@every 1s"}),
	))
	h.save(t, wf)

	starter := &starts{}
	scheduler := workflow.NewScheduler(h.store.WorkflowRepository(), starter, nil, discardLogger())

	_, err := scheduler.Load(t.Context())
	require.NoError(t, err)

	scheduler.Start()

	assert.Eventually(t, func() bool {
		starter.mu.Lock()
		defer starter.mu.Unlock()

		return len(starter.requests) > 0
	}, 5*time.Second, 50*time.Millisecond)

	<-scheduler.Stop().Done()

	starter.mu.Lock()
	defer starter.mu.Unlock()

	req := starter.requests[0]
	assert.Equal(t, wf.ID, req.WorkflowID)

	seed, ok := req.InitialData["schedule"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cron", seed["nodeId"])
	assert.Equal(t, "@every 1s", seed["cronExpression"])
}
