package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler/dto"
)

var timeNow = time.Now

// handleListTasks lists active tasks.
// @Summary List active tasks
// @Description Returns every task on the board in creation order.
// @Tags tasks
// @Produce json
// @Success 200 {array} dto.TaskResponse
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ToTaskResponses(tasks))
}

// handleListTrash lists trashed tasks.
// @Summary List trashed tasks
// @Description Returns soft-deleted tasks, most recently deleted first.
// @Tags tasks
// @Produce json
// @Success 200 {array} dto.TaskResponse
// @Router /tasks/trash [get]
func (h *Handler) handleListTrash(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTrash(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ToTaskResponses(tasks))
}

// handleCreateTask creates a task.
// @Summary Create a task
// @Description Creates a task. Omitted fields get defaults: title "Untitled", status "To Do", priority "Medium", assignee "You".
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.TaskRequest true "Task fields"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		respondDomainError(w, domain.ErrEmptyTitle)
		return
	}

	task, err := h.tasks.Create(ctx, req.ToPatch())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.publish(ctx, domain.NotificationTaskChanged, task.ID, fmt.Sprintf("Task %q created", task.Title))
	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleUpdateTask updates fields of an active task.
// @Summary Update a task
// @Description Overwrites the given fields. Arrays replace the stored ones. Trashed tasks cannot be updated.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.TaskRequest true "Fields to change"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id} [put]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	var req dto.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(ctx, id, req.ToPatch())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.publish(ctx, domain.NotificationTaskChanged, task.ID, fmt.Sprintf("Task %q updated", task.Title))
	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleSoftDeleteTask moves a task to the trash.
// @Summary Move a task to the trash
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *Handler) handleSoftDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	if err := h.tasks.SoftDelete(ctx, id); err != nil {
		respondDomainError(w, err)
		return
	}

	h.publish(ctx, domain.NotificationTaskRemoved, id, "Task moved to trash")
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreTask moves a task out of the trash.
// @Summary Restore a trashed task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id}/restore [put]
func (h *Handler) handleRestoreTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	task, err := h.tasks.Restore(ctx, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.publish(ctx, domain.NotificationTaskChanged, task.ID, fmt.Sprintf("Task %q restored", task.Title))
	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handlePermanentDeleteTask deletes a trashed task for good.
// @Summary Permanently delete a trashed task
// @Description Only tasks in the trash can be deleted. There is no recovery.
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id}/permanent [delete]
func (h *Handler) handlePermanentDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	if err := h.tasks.PermanentDelete(ctx, id); err != nil {
		respondDomainError(w, err)
		return
	}

	h.publish(ctx, domain.NotificationTaskRemoved, id, "Task permanently deleted")
	w.WriteHeader(http.StatusNoContent)
}
