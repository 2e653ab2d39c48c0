// Package syncer keeps the local board and rule book in step with the remote
// stores. Local state changes first; the matching remote call runs in the
// background, and any rejected call is recovered by reloading everything.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/board"
	"github.com/mtlprog/taskflow/internal/comment"
	"github.com/mtlprog/taskflow/internal/domain"
)

// Controller applies board intents optimistically and reconciles them with
// the remote task and rule stores.
type Controller struct {
	board    *board.Manager
	tasks    domain.TaskRepository
	rules    domain.RuleRepository
	notifier domain.Notifier
	now      func() time.Time
	newID    func() string

	rulesMu  sync.RWMutex
	ruleBook []domain.AutomationRule

	inflight sync.WaitGroup
	taskIDs  *idTracker
	ruleIDs  *idTracker
	adoptMu  sync.RWMutex // held for writing while a task changes id on the board
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source for comments and notifications.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs sets the id source for comments and locally created rules.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// New creates a Controller. The board starts empty until Reload is called.
func New(
	manager *board.Manager,
	tasks domain.TaskRepository,
	rules domain.RuleRepository,
	notifier domain.Notifier,
	opts ...Option,
) *Controller {
	c := &Controller{
		board:    manager,
		tasks:    tasks,
		rules:    rules,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
		taskIDs:  newIDTracker(),
		ruleIDs:  newIDTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Active returns the visible tasks.
func (c *Controller) Active() []domain.Task { return c.board.Active() }

// Trash returns the soft-deleted tasks.
func (c *Controller) Trash() []domain.Task { return c.board.Trash() }

// Get returns one active task.
func (c *Controller) Get(id string) (domain.Task, error) {
	_, task, err := onBoard(c, id, c.board.Get)
	return task, err
}

// Wait blocks until every background remote call, and any reload it
// triggered, has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// ResolveID returns the server id for a task created locally, or id itself
// when the store has not answered yet or the task was never local.
func (c *Controller) ResolveID(id string) string {
	return c.taskIDs.resolve(id)
}

func (c *Controller) adopt(localID string, remote domain.Task) {
	c.adoptMu.Lock()
	defer c.adoptMu.Unlock()
	c.taskIDs.adopt(localID, remote.ID)
	c.board.Adopt(localID, remote)
}

// onBoard runs a board operation under the current id for a task. A caller
// may still hold the local id of a task the store has since answered for.
func onBoard[T any](c *Controller, id string, op func(id string) (T, error)) (string, T, error) {
	c.adoptMu.RLock()
	defer c.adoptMu.RUnlock()
	id = c.ResolveID(id)
	v, err := op(id)
	return id, v, err
}

// Reload replaces local tasks and rules with the remote copies. On error the
// local state is left as it was.
func (c *Controller) Reload(ctx context.Context) error {
	active, err := c.tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	trash, err := c.tasks.ListTrash(ctx)
	if err != nil {
		return fmt.Errorf("list trash: %w", err)
	}
	rules, err := c.rules.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	c.board.Reset(active, trash)
	c.setRules(rules)

	slog.Debug("board reloaded",
		"active", len(active),
		"trash", len(trash),
		"rules", len(rules),
	)
	return nil
}

// Create adds a task locally and asks the remote store to create it. When the
// store answers, the local task takes the server id. Writes issued under the
// local id in the meantime are held back until then.
func (c *Controller) Create(ctx context.Context, p domain.TaskPatch) domain.Task {
	local := c.board.Create(p)

	c.async(ctx, "create", local.ID, func(ctx context.Context, _ string) error {
		remote, err := c.tasks.Create(ctx, domain.PatchFrom(local))
		if err != nil {
			c.taskIDs.drop(local.ID)
			return err
		}
		c.adopt(local.ID, remote)
		slog.Info("task created", "task_id", remote.ID, "local_id", local.ID)
		return nil
	})

	return local
}

// Update edits fields of an active task. Status changes made here do not run
// automation; use MoveStatus for that.
func (c *Controller) Update(ctx context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	id, task, err := onBoard(c, id, func(id string) (domain.Task, error) { return c.board.Update(id, p) })
	if err != nil {
		return domain.Task{}, err
	}

	patch := p.Clone()
	c.async(ctx, "update", id, func(ctx context.Context, remoteID string) error {
		if _, err := c.tasks.Update(ctx, remoteID, patch); err != nil {
			return err
		}
		slog.Info("task updated", "task_id", remoteID)
		return nil
	})

	return task, nil
}

// MoveStatus moves a task to a new column, runs active rules against the new
// status and pushes the amended task to the remote store. One notification is
// sent per fired rule.
func (c *Controller) MoveStatus(ctx context.Context, id string, status domain.TaskStatus) (automation.Result, error) {
	rules := c.Rules()
	id, result, err := onBoard(c, id, func(id string) (automation.Result, error) {
		return c.board.MoveStatus(id, status, rules)
	})
	if err != nil {
		return automation.Result{}, err
	}

	for _, f := range result.Fired {
		c.notify(ctx, domain.Notification{
			Kind:    domain.NotificationRuleFired,
			TaskID:  id,
			RuleID:  f.RuleID,
			Message: fmt.Sprintf("Automation %q: %s", f.RuleName, f.Action.Describe()),
		})
	}

	amended := result.Task
	c.async(ctx, "move", id, func(ctx context.Context, remoteID string) error {
		if _, err := c.tasks.Update(ctx, remoteID, domain.PatchFrom(amended)); err != nil {
			return err
		}
		slog.Info("task moved",
			"task_id", remoteID,
			"status", status,
			"rules_fired", len(result.Fired),
		)
		return nil
	})

	return result, nil
}

// SoftDelete moves a task to the trash.
func (c *Controller) SoftDelete(ctx context.Context, id string) error {
	id, _, err := onBoard(c, id, c.board.SoftDelete)
	if err != nil {
		return err
	}

	c.async(ctx, "soft delete", id, func(ctx context.Context, remoteID string) error {
		if err := c.tasks.SoftDelete(ctx, remoteID); err != nil {
			return err
		}
		slog.Info("task moved to trash", "task_id", remoteID)
		return nil
	})
	return nil
}

// Restore moves a task out of the trash.
func (c *Controller) Restore(ctx context.Context, id string) (domain.Task, error) {
	id, task, err := onBoard(c, id, c.board.Restore)
	if err != nil {
		return domain.Task{}, err
	}

	c.async(ctx, "restore", id, func(ctx context.Context, remoteID string) error {
		if _, err := c.tasks.Restore(ctx, remoteID); err != nil {
			return err
		}
		slog.Info("task restored", "task_id", remoteID)
		return nil
	})
	return task, nil
}

// PermanentDelete removes a trashed task for good.
func (c *Controller) PermanentDelete(ctx context.Context, id string) error {
	id, _, err := onBoard(c, id, c.board.PermanentDelete)
	if err != nil {
		return err
	}

	c.async(ctx, "permanent delete", id, func(ctx context.Context, remoteID string) error {
		if err := c.tasks.PermanentDelete(ctx, remoteID); err != nil {
			return err
		}
		slog.Info("task permanently deleted", "task_id", remoteID)
		return nil
	})
	return nil
}

// BulkResult reports the outcome of a best-effort bulk operation.
type BulkResult struct {
	Deleted []string
	Failed  []string
}

// EmptyTrash permanently deletes every trashed task, one remote call at a
// time. A task leaves the local trash only once its delete succeeded; failed
// ones stay and are reported, never raised.
func (c *Controller) EmptyTrash(ctx context.Context) BulkResult {
	var res BulkResult

	for _, task := range c.board.Trash() {
		wait, leave := c.taskIDs.enter(task.ID)
		<-wait
		var err error
		if !c.taskIDs.isDropped(task.ID) {
			err = c.tasks.PermanentDelete(ctx, c.ResolveID(task.ID))
		}
		leave()
		if err != nil {
			slog.Error("failed to permanently delete task",
				"task_id", task.ID,
				"error", err,
			)
			c.notify(ctx, domain.Notification{
				Kind:    domain.NotificationSyncFailed,
				TaskID:  task.ID,
				Message: fmt.Sprintf("Could not delete %q: %v", task.Title, err),
			})
			res.Failed = append(res.Failed, task.ID)
			continue
		}
		// May already be gone after a reload.
		_, _, _ = onBoard(c, task.ID, c.board.PermanentDelete)
		res.Deleted = append(res.Deleted, task.ID)
	}

	slog.Info("trash emptied",
		"total", len(res.Deleted)+len(res.Failed),
		"successful", len(res.Deleted),
		"failed", len(res.Failed),
	)
	return res
}

// ClearDone moves every Done task to the trash. Remote deletes run in the
// background; any failure triggers a single reload.
func (c *Controller) ClearDone(ctx context.Context) []domain.Task {
	cleared := c.board.ClearDone()
	if len(cleared) == 0 {
		return cleared
	}

	type turn struct {
		wait  <-chan struct{}
		leave func()
	}
	turns := make([]turn, len(cleared))
	for i, task := range cleared {
		turns[i].wait, turns[i].leave = c.taskIDs.enter(task.ID)
	}

	c.async(ctx, "clear done", "", func(ctx context.Context, _ string) error {
		var failed int
		for i, task := range cleared {
			<-turns[i].wait
			var err error
			if !c.taskIDs.isDropped(task.ID) {
				err = c.tasks.SoftDelete(ctx, c.ResolveID(task.ID))
			}
			turns[i].leave()
			if err != nil {
				slog.Error("failed to move task to trash",
					"task_id", task.ID,
					"error", err,
				)
				failed++
			}
		}
		slog.Info("done tasks cleared",
			"total", len(cleared),
			"successful", len(cleared)-failed,
			"failed", failed,
		)
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d tasks not moved to trash", domain.ErrRemoteFailure, failed, len(cleared))
		}
		return nil
	})

	return cleared
}

// Duplicate copies a task locally and creates the copy remotely.
func (c *Controller) Duplicate(ctx context.Context, id string) (domain.Task, error) {
	id, dup, err := onBoard(c, id, c.board.Duplicate)
	if err != nil {
		return domain.Task{}, err
	}

	c.async(ctx, "duplicate", dup.ID, func(ctx context.Context, _ string) error {
		remote, err := c.tasks.Create(ctx, domain.PatchFrom(dup))
		if err != nil {
			c.taskIDs.drop(dup.ID)
			return err
		}
		c.adopt(dup.ID, remote)
		slog.Info("task duplicated", "task_id", remote.ID, "source_id", id)
		return nil
	})
	return dup, nil
}

// AddComment appends a comment by the board user to a task.
//
// The comment list is read, extended and written back as a whole, so two
// comment writes on the same task that overlap remotely can overwrite each other.
func (c *Controller) AddComment(ctx context.Context, taskID, text string) (domain.Comment, error) {
	if text == "" {
		return domain.Comment{}, domain.ErrEmptyComment
	}

	taskID, task, err := onBoard(c, taskID, c.board.Get)
	if err != nil {
		return domain.Comment{}, err
	}

	cm := comment.New(c.newID(), comment.UserAuthor, text, c.now())
	comments := comment.Append(task.Comments, cm)
	if err := c.pushComments(ctx, "comment", taskID, comments); err != nil {
		return domain.Comment{}, err
	}
	return cm, nil
}

// AddReaction bumps an emoji reaction on a comment and returns the new tally.
func (c *Controller) AddReaction(ctx context.Context, taskID, commentID, emoji string) (domain.Reaction, error) {
	taskID, task, err := onBoard(c, taskID, c.board.Get)
	if err != nil {
		return domain.Reaction{}, err
	}

	comments, reaction, err := comment.React(task.Comments, commentID, emoji)
	if err != nil {
		return domain.Reaction{}, err
	}
	if err := c.pushComments(ctx, "reaction", taskID, comments); err != nil {
		return domain.Reaction{}, err
	}
	return reaction, nil
}

func (c *Controller) pushComments(ctx context.Context, op, taskID string, comments []domain.Comment) error {
	p := domain.TaskPatch{Comments: &comments}
	taskID, _, err := onBoard(c, taskID, func(id string) (domain.Task, error) { return c.board.Update(id, p) })
	if err != nil {
		return err
	}

	c.async(ctx, op, taskID, func(ctx context.Context, remoteID string) error {
		if _, err := c.tasks.Update(ctx, remoteID, p); err != nil {
			return err
		}
		slog.Info("task comments saved", "task_id", remoteID, "comments", len(comments))
		return nil
	})
	return nil
}

// async runs a remote call in the background. Calls for the same task reach
// the store in the order they were issued, under the store id once the create
// has been answered. The call outlives the caller's context cancellation; a
// failure is logged, notified and followed by a reload. Calls queued behind a
// failed create are dropped, the reload already covers them.
func (c *Controller) async(ctx context.Context, op, taskID string, call func(ctx context.Context, remoteID string) error) {
	ctx = context.WithoutCancel(ctx)
	wait, leave := c.taskIDs.enter(taskID)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer leave()
		<-wait
		if c.taskIDs.isDropped(taskID) {
			slog.Debug("skipping remote call for task that was never created",
				"op", op,
				"task_id", taskID,
			)
			return
		}
		if err := call(ctx, c.taskIDs.resolve(taskID)); err != nil {
			c.rollback(ctx, op, taskID, err)
		}
	}()
}

func (c *Controller) rollback(ctx context.Context, op, taskID string, cause error) {
	slog.Error("remote call failed, reloading board",
		"op", op,
		"task_id", taskID,
		"error", cause,
	)
	c.notify(ctx, domain.Notification{
		Kind:    domain.NotificationSyncFailed,
		TaskID:  taskID,
		Message: fmt.Sprintf("Failed to %s: %v", op, cause),
	})
	if err := c.Reload(ctx); err != nil {
		slog.Error("failed to reload board", "error", err)
	}
}

func (c *Controller) notify(ctx context.Context, n domain.Notification) {
	if c.notifier == nil {
		return
	}
	n.At = c.now()
	c.notifier.Notify(ctx, n)
}
