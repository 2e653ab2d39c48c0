// Package automation evaluates "when status becomes X, do Y" rules against a
// task. Evaluation is pure: it returns an amended copy and never performs I/O.
package automation

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/taskflow/internal/comment"
	"github.com/mtlprog/taskflow/internal/domain"
)

// Firing records one rule that changed the task.
type Firing struct {
	RuleID   string
	RuleName string
	Action   Action
}

// Result is the outcome of evaluating a rule set.
type Result struct {
	Task  domain.Task
	Fired []Firing
}

// RuleIDs returns the ids of fired rules in application order.
func (r Result) RuleIDs() []string {
	ids := make([]string, len(r.Fired))
	for i, f := range r.Fired {
		ids[i] = f.RuleID
	}
	return ids
}

// Engine applies automation rules. The clock and id source only matter for
// comments added by ADD_COMMENT actions.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for automation comments.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs sets the id source used for automation comments.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an Engine using wall-clock time and random UUIDs by default.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs rules in stored order against the task's current status.
// Only the status is examined, so an action can never enable another rule
// and a single pass always terminates. When two active rules write the same
// field, the later one wins.
func (e *Engine) Evaluate(task domain.Task, rules []domain.AutomationRule) Result {
	result := Result{Task: task.Clone()}

	for _, rule := range rules {
		if !matches(rule, task.Status) {
			continue
		}

		action := Decode(rule)
		if !e.apply(&result.Task, action) {
			continue
		}

		result.Fired = append(result.Fired, Firing{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Action:   action,
		})
	}

	return result
}

func matches(rule domain.AutomationRule, status domain.TaskStatus) bool {
	return rule.IsActive &&
		rule.TriggerType == domain.TriggerStatusChange &&
		rule.TriggerValue == status
}

// apply mutates t according to the action and reports whether anything was applied.
func (e *Engine) apply(t *domain.Task, action Action) bool {
	switch a := action.(type) {
	case SetPriority:
		t.Priority = a.Priority
	case AssignUser:
		user := a.User
		t.Assignee = &user
	case AddComment:
		c := comment.New(e.newID(), comment.AutomationAuthor, a.Text, e.now())
		t.Comments = comment.Append(t.Comments, c)
	case Unknown:
		return false
	default:
		panic("automation: unhandled action variant")
	}
	return true
}
