package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/taskflow/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "status", "priority", "due_date",
	"assignee", "tags", "estimated_time", "blocked_by", "comments", "created_at",
}

var _ domain.TaskRepository = (*TaskRepository)(nil)

// TaskRepository stores tasks in PostgreSQL. Trashed tasks keep their row
// with deleted_at set.
type TaskRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool, now: time.Now}
}

// scanTask scans a single row into a Task.
func scanTask(row pgx.Row) (domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.Assignee,
		&task.Tags,
		&task.EstimatedTime,
		&task.BlockedBy,
		&task.Comments,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	normalize(&task)
	return task, nil
}

// scanTasks scans multiple rows into a slice of tasks.
func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// normalize turns NULL-ish collections into empty ones and pins times to UTC.
func normalize(t *domain.Task) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.BlockedBy == nil {
		t.BlockedBy = []string{}
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	for i := range t.Comments {
		if t.Comments[i].Reactions == nil {
			t.Comments[i].Reactions = map[string]domain.Reaction{}
		}
	}
	t.DueDate = t.DueDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
}

func (r *TaskRepository) query(ctx context.Context, b sq.SelectBuilder, what string) ([]domain.Task, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", what, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return scanTasks(rows)
}

// List returns active tasks in creation order.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("seq ASC"), "active tasks")
}

// ListTrash returns trashed tasks, most recently deleted first.
func (r *TaskRepository) ListTrash(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.NotEq{"deleted_at": nil}).
		OrderBy("deleted_at DESC", "seq DESC"), "trashed tasks")
}

// Create inserts a task built from p with a server-assigned id and creation time.
func (r *TaskRepository) Create(ctx context.Context, p domain.TaskPatch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	task := domain.NewTask(uuid.NewString(), r.now().UTC(), p)

	query, args, err := psql.
		Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.DueDate,
			task.Assignee,
			task.Tags,
			task.EstimatedTime,
			task.BlockedBy,
			task.Comments,
			task.CreatedAt,
		).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Create query for task: %w", err)
	}

	created, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// Update overwrites the fields set in p on an active task.
func (r *TaskRepository) Update(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	set := patchColumns(p)
	if len(set) == 0 {
		return r.getActive(ctx, id)
	}

	query, args, err := psql.
		Update("tasks").
		SetMap(set).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Update query for task %s: %w", id, err)
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) getActive(ctx context.Context, id string) (domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build get query for task %s: %w", id, err)
	}
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// SoftDelete moves an active task to the trash.
func (r *TaskRepository) SoftDelete(ctx context.Context, id string) error {
	query, args, err := psql.
		Update("tasks").
		Set("deleted_at", sq.Expr("clock_timestamp()")).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SoftDelete query for task %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("soft delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

// Restore moves a trashed task back to the end of the active list.
func (r *TaskRepository) Restore(ctx context.Context, id string) (domain.Task, error) {
	query, args, err := psql.
		Update("tasks").
		Set("deleted_at", nil).
		Set("seq", sq.Expr("DEFAULT")).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"deleted_at": nil}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Restore query for task %s: %w", id, err)
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Task{}, fmt.Errorf("restore task %s: %w", id, err)
	}
	return task, nil
}

// PermanentDelete removes a trashed task.
func (r *TaskRepository) PermanentDelete(ctx context.Context, id string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build PermanentDelete query for task %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("permanently delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

// patchColumns maps the set fields of p to column values.
func patchColumns(p domain.TaskPatch) map[string]any {
	set := map[string]any{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		set["due_date"] = p.DueDate.UTC()
	}
	if p.Assignee != nil {
		set["assignee"] = *p.Assignee
	}
	if p.Tags != nil {
		set["tags"] = nonNil(*p.Tags)
	}
	if p.EstimatedTime != nil {
		set["estimated_time"] = *p.EstimatedTime
	}
	if p.BlockedBy != nil {
		set["blocked_by"] = nonNil(*p.BlockedBy)
	}
	if p.Comments != nil {
		comments := *p.Comments
		if comments == nil {
			comments = []domain.Comment{}
		}
		set["comments"] = comments
	}
	return set
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func columnList() string {
	return strings.Join(taskColumns, ", ")
}
