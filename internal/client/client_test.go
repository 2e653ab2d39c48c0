package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskflow/internal/client"
	"github.com/mtlprog/taskflow/internal/database"
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler"
	"github.com/mtlprog/taskflow/internal/repository/sqlite"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunSQLiteMigrations(ctx, db))

	mux := http.NewServeMux()
	handler.New(sqlite.NewTaskRepository(db), sqlite.NewRuleRepository(db)).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func ptr[T any](v T) *T { return &v }

func TestTasks_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tasks := newServer(t).Tasks()

	created, err := tasks.Create(ctx, domain.TaskPatch{
		Title: ptr("Ship release"),
		Tags:  &[]string{"release"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ship release", created.Title)
	assert.Equal(t, domain.TaskStatusTodo, created.Status)

	status := domain.TaskStatusInProgress
	updated, err := tasks.Update(ctx, created.ID, domain.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
	assert.Equal(t, []string{"release"}, updated.Tags)

	require.NoError(t, tasks.SoftDelete(ctx, created.ID))

	active, err := tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	trash, err := tasks.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, created.ID, trash[0].ID)

	restored, err := tasks.Restore(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, restored.ID)

	require.NoError(t, tasks.SoftDelete(ctx, created.ID))
	require.NoError(t, tasks.PermanentDelete(ctx, created.ID))

	trash, err = tasks.ListTrash(ctx)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestTasks_NotFoundKeepsSentinel(t *testing.T) {
	ctx := context.Background()
	tasks := newServer(t).Tasks()

	err := tasks.SoftDelete(ctx, "00000000-0000-0000-0000-000000000001")
	require.ErrorIs(t, err, domain.ErrRemoteFailure)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Contains(t, err.Error(), "00000000-0000-0000-0000-000000000001")
}

func TestTasks_ValidationError(t *testing.T) {
	ctx := context.Background()
	tasks := newServer(t).Tasks()

	priority := domain.TaskPriority("Urgent")
	_, err := tasks.Create(ctx, domain.TaskPatch{Priority: &priority})
	require.ErrorIs(t, err, domain.ErrRemoteFailure)
	assert.Contains(t, err.Error(), "invalid task priority")
}

func TestRules_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rules := newServer(t).Rules()

	rule, err := rules.CreateRule(ctx, domain.AutomationRule{
		Name:         "Escalate",
		IsActive:     true,
		TriggerType:  domain.TriggerStatusChange,
		TriggerValue: domain.TaskStatusReview,
		ActionType:   domain.ActionSetPriority,
		ActionValue:  "High",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rule.ID)

	rule.IsActive = false
	updated, err := rules.UpdateRule(ctx, rule.ID, rule)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	list, err := rules.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AutomationRule{updated}, list)

	require.NoError(t, rules.DeleteRule(ctx, rule.ID))
	err = rules.DeleteRule(ctx, rule.ID)
	require.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).Tasks().List(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteFailure)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.New(url).Rules().ListRules(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteFailure)
}
