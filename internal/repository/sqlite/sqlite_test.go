package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskflow/internal/database"
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/repository/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunSQLiteMigrations(ctx, db))
	return db
}

func ptr[T any](v T) *T { return &v }

func TestTaskRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTaskRepository(openDB(t))

	due := time.Date(2026, 5, 1, 17, 0, 0, 0, time.FixedZone("CET", 3600))
	a, err := repo.Create(ctx, domain.TaskPatch{
		Title:         ptr("First"),
		DueDate:       &due,
		Tags:          &[]string{"ops"},
		EstimatedTime: ptr(2.0),
	})
	require.NoError(t, err)
	b, err := repo.Create(ctx, domain.TaskPatch{})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "First", a.Title)
	assert.True(t, due.Equal(a.DueDate))
	assert.Equal(t, time.UTC, a.DueDate.Location())
	assert.Equal(t, domain.DefaultTitle, b.Title)
	require.NotNil(t, b.Assignee)
	assert.Equal(t, domain.DefaultAssignee, *b.Assignee)
	assert.Nil(t, b.EstimatedTime)

	active, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{a, b}, active)
}

func TestTaskRepository_UpdateRoundTripsComments(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTaskRepository(openDB(t))

	task, err := repo.Create(ctx, domain.TaskPatch{})
	require.NoError(t, err)

	comments := []domain.Comment{{
		ID:        "c1",
		Author:    "Automation",
		Text:      "moved to done",
		CreatedAt: time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		Reactions: map[string]domain.Reaction{"🚀": {Count: 1, UserReacted: true}},
	}}
	updated, err := repo.Update(ctx, task.ID, domain.TaskPatch{
		Priority: ptr(domain.TaskPriorityHigh),
		Comments: &comments,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TaskPriorityHigh, updated.Priority)
	assert.Equal(t, comments, updated.Comments)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	_, err = repo.Update(ctx, "missing", domain.TaskPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = repo.Update(ctx, task.ID, domain.TaskPatch{Status: ptr(domain.TaskStatus("Nope"))})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestTaskRepository_TrashLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTaskRepository(openDB(t))

	a, err := repo.Create(ctx, domain.TaskPatch{Title: ptr("a")})
	require.NoError(t, err)
	b, err := repo.Create(ctx, domain.TaskPatch{Title: ptr("b")})
	require.NoError(t, err)
	c, err := repo.Create(ctx, domain.TaskPatch{Title: ptr("c")})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, a.ID))
	require.NoError(t, repo.SoftDelete(ctx, b.ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, b.ID), domain.ErrTaskNotFound)

	trash, err := repo.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 2)
	assert.Equal(t, b.ID, trash[0].ID)
	assert.Equal(t, a.ID, trash[1].ID)

	restored, err := repo.Restore(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, restored)

	active, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, c.ID, active[0].ID)
	assert.Equal(t, a.ID, active[1].ID, "restored tasks go to the end")

	assert.ErrorIs(t, repo.PermanentDelete(ctx, c.ID), domain.ErrTaskNotFound)
	require.NoError(t, repo.PermanentDelete(ctx, b.ID))
	_, err = repo.Restore(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	trash, err = repo.ListTrash(ctx)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestRuleRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewRuleRepository(openDB(t))

	rule := domain.AutomationRule{
		Name:         "Auto-Archive Done Tasks",
		IsActive:     true,
		TriggerType:  domain.TriggerStatusChange,
		TriggerValue: domain.TaskStatusDone,
		ActionType:   domain.ActionSetPriority,
		ActionValue:  "Low",
	}
	first, err := repo.CreateRule(ctx, rule)
	require.NoError(t, err)

	rule.Name = "Comment on review"
	rule.TriggerValue = domain.TaskStatusReview
	rule.ActionType = domain.ActionAddComment
	rule.ActionValue = "Please review"
	second, err := repo.CreateRule(ctx, rule)
	require.NoError(t, err)

	first.IsActive = false
	_, err = repo.UpdateRule(ctx, first.ID, first)
	require.NoError(t, err)

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AutomationRule{first, second}, rules)

	_, err = repo.UpdateRule(ctx, "missing", first)
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)

	bad := first
	bad.TriggerType = "DUE_DATE"
	_, err = repo.CreateRule(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidTrigger)

	require.NoError(t, repo.DeleteRule(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteRule(ctx, first.ID), domain.ErrRuleNotFound)

	rules, err = repo.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AutomationRule{second}, rules)
}
