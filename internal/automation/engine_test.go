package automation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/comment"
	"github.com/mtlprog/taskflow/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEngine() *automation.Engine {
	n := 0
	return automation.NewEngine(
		automation.WithClock(func() time.Time { return fixedNow }),
		automation.WithIDs(func() string {
			n++
			return fmt.Sprintf("auto-%d", n)
		}),
	)
}

func rule(id string, trigger domain.TaskStatus, action domain.ActionType, value string) domain.AutomationRule {
	return domain.AutomationRule{
		ID:           id,
		Name:         "rule " + id,
		IsActive:     true,
		TriggerType:  domain.TriggerStatusChange,
		TriggerValue: trigger,
		ActionType:   action,
		ActionValue:  value,
	}
}

func taskIn(status domain.TaskStatus) domain.Task {
	return domain.NewTask("t1", fixedNow, domain.TaskPatch{Status: &status})
}

func TestEvaluate_DoneSetsLowPriority(t *testing.T) {
	t.Parallel()

	task := taskIn(domain.TaskStatusDone)
	rules := []domain.AutomationRule{rule("r1", domain.TaskStatusDone, domain.ActionSetPriority, "Low")}

	res := newEngine().Evaluate(task, rules)

	assert.Equal(t, domain.TaskStatusDone, res.Task.Status)
	assert.Equal(t, domain.TaskPriorityLow, res.Task.Priority)
	assert.Equal(t, []string{"r1"}, res.RuleIDs())
}

func TestEvaluate_Actions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rule   domain.AutomationRule
		check  func(t *testing.T, got domain.Task)
		fires  bool
	}{
		{
			name: "assign user",
			rule: rule("r1", domain.TaskStatusReview, domain.ActionAssignUser, "Jordan"),
			check: func(t *testing.T, got domain.Task) {
				require.NotNil(t, got.Assignee)
				assert.Equal(t, "Jordan", *got.Assignee)
			},
			fires: true,
		},
		{
			name: "add comment",
			rule: rule("r1", domain.TaskStatusReview, domain.ActionAddComment, "Ready for review"),
			check: func(t *testing.T, got domain.Task) {
				require.Len(t, got.Comments, 1)
				assert.Equal(t, comment.AutomationAuthor, got.Comments[0].Author)
				assert.Equal(t, "Ready for review", got.Comments[0].Text)
				assert.Equal(t, "auto-1", got.Comments[0].ID)
				assert.Equal(t, fixedNow, got.Comments[0].CreatedAt)
			},
			fires: true,
		},
		{
			name: "unknown action type is a no-op",
			rule: rule("r1", domain.TaskStatusReview, domain.ActionType("ARCHIVE"), "now"),
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, taskIn(domain.TaskStatusReview), got)
			},
			fires: false,
		},
		{
			name: "unknown priority value is a no-op",
			rule: rule("r1", domain.TaskStatusReview, domain.ActionSetPriority, "Urgent"),
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, domain.TaskPriorityMedium, got.Priority)
			},
			fires: false,
		},
		{
			name: "trigger on another status",
			rule: rule("r1", domain.TaskStatusDone, domain.ActionSetPriority, "High"),
			check: func(t *testing.T, got domain.Task) {
				assert.Equal(t, domain.TaskPriorityMedium, got.Priority)
			},
			fires: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := newEngine().Evaluate(taskIn(domain.TaskStatusReview), []domain.AutomationRule{tc.rule})
			tc.check(t, res.Task)
			if tc.fires {
				assert.Equal(t, []string{"r1"}, res.RuleIDs())
			} else {
				assert.Empty(t, res.Fired)
			}
		})
	}
}

func TestEvaluate_InactiveRuleNeverFires(t *testing.T) {
	t.Parallel()

	r := rule("r1", domain.TaskStatusDone, domain.ActionSetPriority, "High")
	r.IsActive = false

	res := newEngine().Evaluate(taskIn(domain.TaskStatusDone), []domain.AutomationRule{r})

	assert.Equal(t, domain.TaskPriorityMedium, res.Task.Priority)
	assert.Empty(t, res.Fired)
}

func TestEvaluate_ConflictingRulesLastRegisteredWins(t *testing.T) {
	t.Parallel()

	rules := []domain.AutomationRule{
		rule("first", domain.TaskStatusDone, domain.ActionSetPriority, "High"),
		rule("second", domain.TaskStatusDone, domain.ActionSetPriority, "Low"),
	}

	res := newEngine().Evaluate(taskIn(domain.TaskStatusDone), rules)

	assert.Equal(t, domain.TaskPriorityLow, res.Task.Priority)
	assert.Equal(t, []string{"first", "second"}, res.RuleIDs())
}

func TestEvaluate_AllMatchingActionsApplyInOrder(t *testing.T) {
	t.Parallel()

	rules := []domain.AutomationRule{
		rule("c1", domain.TaskStatusDone, domain.ActionAddComment, "one"),
		rule("p", domain.TaskStatusDone, domain.ActionSetPriority, "Low"),
		rule("c2", domain.TaskStatusDone, domain.ActionAddComment, "two"),
	}

	res := newEngine().Evaluate(taskIn(domain.TaskStatusDone), rules)

	require.Len(t, res.Task.Comments, 2)
	assert.Equal(t, "one", res.Task.Comments[0].Text)
	assert.Equal(t, "two", res.Task.Comments[1].Text)
	assert.Equal(t, domain.TaskPriorityLow, res.Task.Priority)
	assert.Equal(t, []string{"c1", "p", "c2"}, res.RuleIDs())
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	task := taskIn(domain.TaskStatusDone)
	before := task.Clone()
	rules := []domain.AutomationRule{
		rule("c", domain.TaskStatusDone, domain.ActionAddComment, "done"),
		rule("a", domain.TaskStatusDone, domain.ActionAssignUser, "Sam"),
	}

	_ = newEngine().Evaluate(task, rules)

	assert.Equal(t, before, task)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule domain.AutomationRule
		want automation.Action
	}{
		{"set priority", rule("r", domain.TaskStatusDone, domain.ActionSetPriority, "High"), automation.SetPriority{Priority: domain.TaskPriorityHigh}},
		{"assign", rule("r", domain.TaskStatusDone, domain.ActionAssignUser, "Ana"), automation.AssignUser{User: "Ana"}},
		{"comment", rule("r", domain.TaskStatusDone, domain.ActionAddComment, "hi"), automation.AddComment{Text: "hi"}},
		{"unknown", rule("r", domain.TaskStatusDone, "NOTIFY", "x"), automation.Unknown{Type: "NOTIFY", Value: "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, automation.Decode(tc.rule))
		})
	}
}
