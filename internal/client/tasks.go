package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler/dto"
)

// Tasks adapts a Client to domain.TaskRepository.
type Tasks struct {
	c *Client
}

// Tasks returns the task repository view of the client.
func (c *Client) Tasks() *Tasks {
	return &Tasks{c: c}
}

func taskPath(id string, suffix string) string {
	return "/api/tasks/" + url.PathEscape(id) + suffix
}

func (t *Tasks) list(ctx context.Context, path string) ([]domain.Task, error) {
	var resp []dto.TaskResponse
	if err := t.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, len(resp))
	for i, r := range resp {
		tasks[i] = r.ToTask()
	}
	return tasks, nil
}

// List returns active tasks.
func (t *Tasks) List(ctx context.Context) ([]domain.Task, error) {
	return t.list(ctx, "/api/tasks")
}

// ListTrash returns trashed tasks.
func (t *Tasks) ListTrash(ctx context.Context) ([]domain.Task, error) {
	return t.list(ctx, "/api/tasks/trash")
}

// Create creates a task from the set fields of p.
func (t *Tasks) Create(ctx context.Context, p domain.TaskPatch) (domain.Task, error) {
	var resp dto.TaskResponse
	if err := t.c.do(ctx, http.MethodPost, "/api/tasks", dto.NewTaskRequest(p), &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.ToTask(), nil
}

// Update sends the set fields of p.
func (t *Tasks) Update(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	var resp dto.TaskResponse
	if err := t.c.do(ctx, http.MethodPut, taskPath(id, ""), dto.NewTaskRequest(p), &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.ToTask(), nil
}

// SoftDelete moves a task to the trash.
func (t *Tasks) SoftDelete(ctx context.Context, id string) error {
	return t.c.do(ctx, http.MethodDelete, taskPath(id, ""), nil, nil)
}

// Restore moves a task out of the trash.
func (t *Tasks) Restore(ctx context.Context, id string) (domain.Task, error) {
	var resp dto.TaskResponse
	if err := t.c.do(ctx, http.MethodPut, taskPath(id, "/restore"), nil, &resp); err != nil {
		return domain.Task{}, err
	}
	return resp.ToTask(), nil
}

// PermanentDelete removes a trashed task.
func (t *Tasks) PermanentDelete(ctx context.Context, id string) error {
	return t.c.do(ctx, http.MethodDelete, taskPath(id, "/permanent"), nil, nil)
}
