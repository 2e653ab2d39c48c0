package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mtlprog/taskflow/internal/domain"
)

var taskColumns = []string{
	"id", "title", "description", "status", "priority", "due_date",
	"assignee", "tags", "estimated_time", "blocked_by", "comments", "created_at",
}

var _ domain.TaskRepository = (*TaskRepository)(nil)

// TaskRepository stores tasks in SQLite. Trashed tasks keep their row with
// deleted_at set.
type TaskRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		task                         domain.Task
		due, created                 string
		assignee                     sql.NullString
		estimate                     sql.NullFloat64
		tags, blockedBy, commentsRaw string
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&due,
		&assignee,
		&tags,
		&estimate,
		&blockedBy,
		&commentsRaw,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}

	if task.DueDate, err = parseTime(due); err != nil {
		return domain.Task{}, err
	}
	if task.CreatedAt, err = parseTime(created); err != nil {
		return domain.Task{}, err
	}
	if assignee.Valid {
		task.Assignee = &assignee.String
	}
	if estimate.Valid {
		task.EstimatedTime = &estimate.Float64
	}
	task.Tags, task.BlockedBy, task.Comments = []string{}, []string{}, []domain.Comment{}
	if err := decodeJSON(tags, &task.Tags); err != nil {
		return domain.Task{}, err
	}
	if err := decodeJSON(blockedBy, &task.BlockedBy); err != nil {
		return domain.Task{}, err
	}
	if err := decodeJSON(commentsRaw, &task.Comments); err != nil {
		return domain.Task{}, err
	}
	for i := range task.Comments {
		if task.Comments[i].Reactions == nil {
			task.Comments[i].Reactions = map[string]domain.Reaction{}
		}
	}
	return task, nil
}

func (r *TaskRepository) query(ctx context.Context, b sq.SelectBuilder, what string) ([]domain.Task, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", what, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
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

// List returns active tasks in creation order.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, lite.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("seq ASC"), "active tasks")
}

// ListTrash returns trashed tasks, most recently deleted first.
func (r *TaskRepository) ListTrash(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, lite.
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

	values, err := columnValues(task)
	if err != nil {
		return domain.Task{}, err
	}

	query, args, err := lite.
		Insert("tasks").
		Columns(taskColumns...).
		Values(values...).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Create query for task: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return r.get(ctx, sq.Eq{"id": task.ID})
}

// Update overwrites the fields set in p on an active task.
func (r *TaskRepository) Update(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	active := sq.Eq{"id": id, "deleted_at": nil}
	set, err := patchColumns(p)
	if err != nil {
		return domain.Task{}, err
	}
	if len(set) == 0 {
		return r.get(ctx, active)
	}

	query, args, err := lite.
		Update("tasks").
		SetMap(set).
		Where(active).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Update query for task %s: %w", id, err)
	}

	if err := r.execOne(ctx, query, args, id); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return r.get(ctx, sq.Eq{"id": id})
}

// SoftDelete moves an active task to the trash.
func (r *TaskRepository) SoftDelete(ctx context.Context, id string) error {
	query, args, err := lite.
		Update("tasks").
		Set("deleted_at", formatTime(r.now())).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SoftDelete query for task %s: %w", id, err)
	}
	if err := r.execOne(ctx, query, args, id); err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	return nil
}

// Restore moves a trashed task back to the active list. The restored task
// goes to the end of the board, matching the in-memory lifecycle.
func (r *TaskRepository) Restore(ctx context.Context, id string) (domain.Task, error) {
	query, args, err := lite.
		Update("tasks").
		Set("deleted_at", nil).
		Set("seq", sq.Expr("(SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks)")).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build Restore query for task %s: %w", id, err)
	}
	if err := r.execOne(ctx, query, args, id); err != nil {
		return domain.Task{}, fmt.Errorf("restore task: %w", err)
	}
	return r.get(ctx, sq.Eq{"id": id})
}

// PermanentDelete removes a trashed task.
func (r *TaskRepository) PermanentDelete(ctx context.Context, id string) error {
	query, args, err := lite.
		Delete("tasks").
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"deleted_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build PermanentDelete query for task %s: %w", id, err)
	}
	if err := r.execOne(ctx, query, args, id); err != nil {
		return fmt.Errorf("permanently delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) get(ctx context.Context, where sq.Sqlizer) (domain.Task, error) {
	query, args, err := lite.
		Select(taskColumns...).
		From("tasks").
		Where(where).
		ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build get query for task: %w", err)
	}
	return scanTask(r.db.QueryRowContext(ctx, query, args...))
}

// execOne runs a statement that must touch exactly one task row.
func (r *TaskRepository) execOne(ctx context.Context, query string, args []any, id string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

func columnValues(t domain.Task) ([]any, error) {
	tags, err := encodeJSON(t.Tags)
	if err != nil {
		return nil, err
	}
	blockedBy, err := encodeJSON(t.BlockedBy)
	if err != nil {
		return nil, err
	}
	comments, err := encodeJSON(t.Comments)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		formatTime(t.DueDate),
		t.Assignee,
		tags,
		t.EstimatedTime,
		blockedBy,
		comments,
		formatTime(t.CreatedAt),
	}, nil
}

// patchColumns maps the set fields of p to column values.
func patchColumns(p domain.TaskPatch) (map[string]any, error) {
	set := map[string]any{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.DueDate != nil {
		set["due_date"] = formatTime(*p.DueDate)
	}
	if p.Assignee != nil {
		set["assignee"] = *p.Assignee
	}
	if p.EstimatedTime != nil {
		set["estimated_time"] = *p.EstimatedTime
	}

	lists := map[string]any{}
	if p.Tags != nil {
		lists["tags"] = orEmpty(*p.Tags)
	}
	if p.BlockedBy != nil {
		lists["blocked_by"] = orEmpty(*p.BlockedBy)
	}
	if p.Comments != nil {
		comments := *p.Comments
		if comments == nil {
			comments = []domain.Comment{}
		}
		lists["comments"] = comments
	}
	for col, v := range lists {
		encoded, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", col, err)
		}
		set[col] = encoded
	}
	return set, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
