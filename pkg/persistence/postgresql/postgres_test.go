package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/dukex/nodeflow/pkg/persistence/postgresql"
	"github.com/dukex/nodeflow/pkg/testutil"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"credentials", "executions", "workflow_connections", "workflow_nodes", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("nodeflow_test"),
			postgres.WithUsername("nodeflow"),
			postgres.WithPassword("nodeflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"workflows", "workflow_nodes", "workflow_connections", "executions", "credentials"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestNewPersistence_ReopenSkipsAppliedMigrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	again, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)
	require.NoError(t, again.Close(ctx))
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestWorkflowRepository_SaveAndRetrieve(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.Chain(testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithID("trigger"), testutil.WithData(models.TriggerData{
			CronExpression: "*/5 * * * *",
			Timezone:       "UTC",
		})),
		testutil.CreateTestNode(
			testutil.WithID("fetch"),
			testutil.WithHTTPRequest("todo", "POST", "https://example.com/todos"),
		),
		testutil.CreateTestNode(testutil.WithID("notify"), testutil.WithData(models.SlackData{
			VariableName: "notify",
			WebhookURL:   "https://hooks.slack.com/services/x",
			Content:      "{{todo.httpRequestResponse.status}}",
		}), func(n *models.Node) { n.Type = models.NodeTypeSlack }),
	))

	require.NoError(t, repo.Save(ctx, workflow))

	loaded, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, workflow.UserID, loaded.UserID)
	require.Len(t, loaded.Nodes, 3)
	assert.Equal(t, []string{"trigger", "fetch", "notify"}, []string{loaded.Nodes[0].ID, loaded.Nodes[1].ID, loaded.Nodes[2].ID})
	assert.Equal(t, models.TriggerData{CronExpression: "*/5 * * * *", Timezone: "UTC"}, loaded.Nodes[0].Data)
	assert.Equal(t, workflow.Nodes[2].Data, loaded.Nodes[2].Data)
	require.Len(t, loaded.Connections, 2)
	assert.Equal(t, "fetch", loaded.Connections[1].FromNodeID)
	assert.Equal(t, "notify", loaded.Connections[1].ToNodeID)

	loaded.Nodes = loaded.Nodes[:2]
	loaded.Connections = loaded.Connections[:1]
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Nodes, 2)
	assert.Len(t, reloaded.Connections, 1)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWorkflowRepository_NotFoundAndDelete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	workflow := testutil.Chain(testutil.CreateTestWorkflow(testutil.CreateTestNode(), testutil.CreateTestNode()))
	require.NoError(t, repo.Save(ctx, workflow))
	require.NoError(t, repo.Delete(ctx, workflow.ID))

	_, err = repo.GetByID(ctx, workflow.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflowRepository_RejectsDanglingConnection(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := testutil.CreateTestWorkflow(testutil.CreateTestNode(testutil.WithID("a")))
	testutil.Connect(workflow, "a", "ghost")

	require.Error(t, repo.Save(ctx, workflow))

	_, err := repo.GetByID(ctx, workflow.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestExecutionRepository_Lifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.ExecutionRepository()

	id, err := repo.Insert(ctx, "wf-1", "evt-1")
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "wf-1", "evt-1")
	require.ErrorIs(t, err, persistence.ErrExecutionAlreadyExists)

	record, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, record.Status)
	assert.Nil(t, record.CompletedAt)
	assert.Nil(t, record.Output)

	err = repo.Update(ctx, "evt-1", "wf-1", models.ExecutionUpdate{
		Status:      models.ExecutionStatusFailed,
		CompletedAt: time.Now().UTC(),
		Error:       "boom",
		ErrorStack:  "WorkflowError: boom",
	})
	require.NoError(t, err)

	record, err = repo.GetByTriggerEvent(ctx, "evt-1", "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, record.Status)
	assert.Equal(t, "boom", record.Error)
	assert.Equal(t, "WorkflowError: boom", record.ErrorStack)
	assert.NotNil(t, record.CompletedAt)

	err = repo.Update(ctx, "evt-1", "wf-1", models.ExecutionUpdate{Status: models.ExecutionStatusSuccess, CompletedAt: time.Now()})
	require.ErrorIs(t, err, persistence.ErrExecutionNotRunning)

	err = repo.Update(ctx, "evt-404", "wf-1", models.ExecutionUpdate{Status: models.ExecutionStatusSuccess, CompletedAt: time.Now()})
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestExecutionRepository_ListByWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.ExecutionRepository()

	for _, evt := range []string{"a", "b", "c"} {
		_, err := repo.Insert(ctx, "wf", evt)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	err := repo.Update(ctx, "c", "wf", models.ExecutionUpdate{
		Status:      models.ExecutionStatusSuccess,
		CompletedAt: time.Now().UTC(),
		Output:      map[string]any{"k": "v"},
	})
	require.NoError(t, err)

	records, err := repo.ListByWorkflow(ctx, "wf", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].TriggerEventID)
	assert.Equal(t, map[string]any{"k": "v"}, records[0].Output)

	records, err = repo.ListByWorkflow(ctx, "wf", 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCredentialRepository(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.CredentialRepository()

	require.NoError(t, repo.Save(ctx, &models.Credential{
		ID:     "cred-1",
		UserID: "user-1",
		Name:   "Anthropic",
		Type:   models.CredentialTypeAnthropic,
		Value:  "sk-ant",
	}))

	credential, err := repo.GetByID(ctx, "cred-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.CredentialTypeAnthropic, credential.Type)
	assert.Equal(t, "sk-ant", credential.Value)

	_, err = repo.GetByID(ctx, "cred-1", "user-2")
	require.ErrorIs(t, err, persistence.ErrCredentialNotFound)
}
