// Package board holds the in-memory task board and the lifecycle operations
// that move tasks between the active list and the trash.
package board

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/domain"
)

// Manager applies lifecycle operations to a Store. Every operation is
// synchronous and atomic with respect to the others; persistence is the
// caller's concern.
type Manager struct {
	store  *Store
	engine *automation.Engine
	now    func() time.Time
	newID  func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source for createdAt and due date defaults.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDs sets the id source for locally created and duplicated tasks.
func WithIDs(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// NewManager creates a Manager over store that evaluates rules with engine.
func NewManager(store *Store, engine *automation.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		engine: engine,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active returns the visible tasks.
func (m *Manager) Active() []domain.Task { return m.store.Active() }

// Trash returns the soft-deleted tasks.
func (m *Manager) Trash() []domain.Task { return m.store.Trash() }

// Get returns the active task with the given id.
func (m *Manager) Get(id string) (domain.Task, error) {
	var (
		task  domain.Task
		found bool
	)
	m.store.read(func(c *collections) {
		if i := c.activeIndex(id); i >= 0 {
			task, found = c.active[i].Clone(), true
		}
	})
	if !found {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return task, nil
}

// Create adds a new task to the active list, filling omitted fields with
// defaults. It never fails.
func (m *Manager) Create(p domain.TaskPatch) domain.Task {
	task := domain.NewTask(m.newID(), m.now(), p)
	_ = m.store.write(func(c *collections) error {
		c.appendActive(task)
		return nil
	})
	return task.Clone()
}

// Update overwrites the fields set in p on an active task. Slice fields are
// replaced wholesale. A status change made here does not run automation.
func (m *Manager) Update(id string, p domain.TaskPatch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	var updated domain.Task
	err := m.store.write(func(c *collections) error {
		i := c.activeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		updated = c.active[i].Clone()
		p.Apply(&updated)
		c.replaceActive(i, updated)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated.Clone(), nil
}

// MoveStatus sets the status of an active task and commits it after running
// rules against the new status. This is the only operation that runs automation.
func (m *Manager) MoveStatus(id string, status domain.TaskStatus, rules []domain.AutomationRule) (automation.Result, error) {
	if !status.IsValid() {
		return automation.Result{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	var result automation.Result
	err := m.store.write(func(c *collections) error {
		i := c.activeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		moved := c.active[i].Clone()
		moved.Status = status
		result = m.engine.Evaluate(moved, rules)
		c.replaceActive(i, result.Task)
		return nil
	})
	if err != nil {
		return automation.Result{}, err
	}

	if len(result.Fired) > 0 {
		slog.Debug("automation fired",
			"task_id", id,
			"status", status,
			"rules", result.RuleIDs(),
		)
	}

	result.Task = result.Task.Clone()
	return result, nil
}

// SoftDelete moves an active task to the front of the trash unchanged.
func (m *Manager) SoftDelete(id string) (domain.Task, error) {
	var task domain.Task
	err := m.store.write(func(c *collections) error {
		i := c.activeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		task = c.removeActive(i)
		c.prependTrash(task)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task.Clone(), nil
}

// Restore moves a trashed task back to the end of the active list unchanged.
func (m *Manager) Restore(id string) (domain.Task, error) {
	var task domain.Task
	err := m.store.write(func(c *collections) error {
		i := c.trashIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		task = c.removeTrash(i)
		c.appendActive(task)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task.Clone(), nil
}

// PermanentDelete removes a task from the trash. There is no way back.
func (m *Manager) PermanentDelete(id string) (domain.Task, error) {
	var task domain.Task
	err := m.store.write(func(c *collections) error {
		i := c.trashIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		task = c.removeTrash(i)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task.Clone(), nil
}

// EmptyTrash permanently deletes every trashed task and returns them. This is
// the all-or-nothing local variant; syncer.Controller.EmptyTrash removes tasks
// one by one as their remote deletes succeed.
func (m *Manager) EmptyTrash() []domain.Task {
	var removed []domain.Task
	_ = m.store.write(func(c *collections) error {
		removed = c.trash
		c.trash = nil
		return nil
	})
	return cloneAll(removed)
}

// ClearDone soft-deletes every active task whose status is Done and returns
// them in board order. Each lands on top of the trash in turn, the same order
// the remote store reports after deleting them one by one.
func (m *Manager) ClearDone() []domain.Task {
	var cleared []domain.Task
	_ = m.store.write(func(c *collections) error {
		keep := make([]domain.Task, 0, len(c.active))
		for _, t := range c.active {
			if t.Status == domain.TaskStatusDone {
				cleared = append(cleared, t)
				continue
			}
			keep = append(keep, t)
		}
		c.active = keep
		for _, t := range cleared {
			c.prependTrash(t)
		}
		return nil
	})
	return cloneAll(cleared)
}

// Duplicate appends a copy of an active task with a fresh id, a suffixed
// title, createdAt set to now and no comments.
func (m *Manager) Duplicate(id string) (domain.Task, error) {
	var dup domain.Task
	err := m.store.write(func(c *collections) error {
		i := c.activeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		dup = c.active[i].Clone()
		dup.ID = m.newID()
		dup.Title += domain.CopySuffix
		dup.CreatedAt = m.now()
		dup.Comments = []domain.Comment{}
		c.appendActive(dup)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return dup.Clone(), nil
}

// Adopt gives a locally created task the id and creation time the remote
// store assigned, keeping its position and any edits made since. It reports
// false if the local task is gone, which happens when it was deleted before
// the remote create finished.
func (m *Manager) Adopt(localID string, remote domain.Task) bool {
	var adopted bool
	_ = m.store.write(func(c *collections) error {
		if i := c.activeIndex(localID); i >= 0 {
			task := c.active[i].Clone()
			task.ID, task.CreatedAt = remote.ID, remote.CreatedAt
			c.replaceActive(i, task)
			adopted = true
			return nil
		}
		if i := c.trashIndex(localID); i >= 0 {
			c.trash = append([]domain.Task(nil), c.trash...)
			c.trash[i] = c.trash[i].Clone()
			c.trash[i].ID, c.trash[i].CreatedAt = remote.ID, remote.CreatedAt
			adopted = true
		}
		return nil
	})
	return adopted
}

// Reset replaces both collections, used after a full reload from the remote store.
func (m *Manager) Reset(active, trash []domain.Task) {
	_ = m.store.write(func(c *collections) error {
		c.active = cloneAll(active)
		c.trash = cloneAll(trash)
		return nil
	})
}
