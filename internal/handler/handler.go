// Package handler serves the task and rule stores over REST. The server
// stores whatever it is sent; automation runs only on the board side.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/mtlprog/taskflow/docs" // Import generated docs
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler/dto"
)

// Subscriber streams raw event payloads, as published by notify.Redis.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, func(), error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	tasks    domain.TaskRepository
	rules    domain.RuleRepository
	ping     func(context.Context) error
	notifier domain.Notifier
	events   Subscriber
}

// Option configures a Handler.
type Option func(*Handler)

// WithHealthCheck sets the probe used by /healthz.
func WithHealthCheck(ping func(context.Context) error) Option {
	return func(h *Handler) { h.ping = ping }
}

// WithNotifier publishes task_changed and task_removed events after writes.
func WithNotifier(n domain.Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithEvents enables the /api/events websocket stream.
func WithEvents(s Subscriber) Option {
	return func(h *Handler) { h.events = s }
}

// New creates a new Handler over the given stores.
func New(tasks domain.TaskRepository, rules domain.RuleRepository, opts ...Option) *Handler {
	h := &Handler{tasks: tasks, rules: rules}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Tasks
	mux.HandleFunc("GET /api/tasks", h.handleListTasks)
	mux.HandleFunc("GET /api/tasks/trash", h.handleListTrash)
	mux.HandleFunc("POST /api/tasks", h.handleCreateTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.handleSoftDeleteTask)
	mux.HandleFunc("PUT /api/tasks/{id}/restore", h.handleRestoreTask)
	mux.HandleFunc("DELETE /api/tasks/{id}/permanent", h.handlePermanentDeleteTask)

	// Automation rules
	mux.HandleFunc("GET /api/rules", h.handleListRules)
	mux.HandleFunc("GET /api/rules/export", h.handleExportRules)
	mux.HandleFunc("POST /api/rules", h.handleCreateRule)
	mux.HandleFunc("PUT /api/rules/{id}", h.handleUpdateRule)
	mux.HandleFunc("DELETE /api/rules/{id}", h.handleDeleteRule)

	if h.events != nil {
		mux.HandleFunc("GET /api/events", h.handleEvents)
	}
}

// handleHealthz returns 200 OK if the store is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			slog.Error("database health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) publish(ctx context.Context, kind domain.NotificationKind, taskID, message string) {
	if h.notifier == nil {
		return
	}
	h.notifier.Notify(ctx, domain.Notification{
		Kind:    kind,
		TaskID:  taskID,
		Message: message,
		At:      timeNow(),
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err through dto.MapDomainError.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates the {id} path parameter.
// Returns ("", false) if invalid; the error response has already been sent.
func extractID(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", what+" id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", what+" id must be a valid UUID")
		return "", false
	}

	return id, true
}

// decodeJSON decodes the request body into v.
// Returns false if the body is malformed; the error response has already been sent.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}
