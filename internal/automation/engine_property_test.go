package automation_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/domain"
)

func statusGen() *rapid.Generator[domain.TaskStatus] {
	return rapid.SampledFrom(domain.TaskStatuses())
}

func ruleGen() *rapid.Generator[domain.AutomationRule] {
	return rapid.Custom(func(t *rapid.T) domain.AutomationRule {
		action := rapid.SampledFrom([]domain.ActionType{
			domain.ActionSetPriority, domain.ActionAssignUser, domain.ActionAddComment,
		}).Draw(t, "action")

		var value string
		switch action {
		case domain.ActionSetPriority:
			value = string(rapid.SampledFrom([]domain.TaskPriority{
				domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh,
			}).Draw(t, "priority"))
		default:
			value = rapid.StringMatching(`[A-Za-z ]{1,12}`).Draw(t, "value")
		}

		return domain.AutomationRule{
			ID:           rapid.StringMatching(`r[0-9]{1,4}`).Draw(t, "id"),
			Name:         "generated",
			IsActive:     rapid.Bool().Draw(t, "active"),
			TriggerType:  domain.TriggerStatusChange,
			TriggerValue: statusGen().Draw(t, "trigger"),
			ActionType:   action,
			ActionValue:  value,
		}
	})
}

// For any task and rule set, every active rule matching the task's status is
// reflected in the result, and no inactive or non-matching rule fires.
func TestProperty_MatchingActiveRulesApply(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := statusGen().Draw(rt, "status")
		rules := rapid.SliceOfN(ruleGen(), 0, 8).Draw(rt, "rules")
		task := taskIn(status)

		res := newEngine().Evaluate(task, rules)

		var (
			expectFired    int
			lastPriority   *domain.TaskPriority
			lastAssignee   *string
			expectComments []string
		)
		for _, r := range rules {
			if !r.IsActive || r.TriggerValue != status {
				continue
			}
			expectFired++
			switch r.ActionType {
			case domain.ActionSetPriority:
				p := domain.TaskPriority(r.ActionValue)
				lastPriority = &p
			case domain.ActionAssignUser:
				v := r.ActionValue
				lastAssignee = &v
			case domain.ActionAddComment:
				expectComments = append(expectComments, r.ActionValue)
			}
		}

		if len(res.Fired) != expectFired {
			rt.Fatalf("expected %d fired rules, got %d", expectFired, len(res.Fired))
		}
		if lastPriority != nil && res.Task.Priority != *lastPriority {
			rt.Fatalf("expected priority %s, got %s", *lastPriority, res.Task.Priority)
		}
		if lastPriority == nil && res.Task.Priority != task.Priority {
			rt.Fatalf("priority changed without a matching rule")
		}
		if lastAssignee != nil && (res.Task.Assignee == nil || *res.Task.Assignee != *lastAssignee) {
			rt.Fatalf("expected assignee %s", *lastAssignee)
		}
		if len(res.Task.Comments) != len(expectComments) {
			rt.Fatalf("expected %d comments, got %d", len(expectComments), len(res.Task.Comments))
		}
		for i, text := range expectComments {
			if res.Task.Comments[i].Text != text {
				rt.Fatalf("comment %d: expected %q, got %q", i, text, res.Task.Comments[i].Text)
			}
		}
		if res.Task.Status != status {
			rt.Fatalf("status must never be changed by automation")
		}
	})
}

// Evaluation is idempotent in its choice of rules: since triggers only look at
// status and actions never change status, re-running fires the same rules.
func TestProperty_SinglePassIsStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := statusGen().Draw(rt, "status")
		rules := rapid.SliceOfN(ruleGen(), 0, 8).Draw(rt, "rules")
		engine := automation.NewEngine()

		first := engine.Evaluate(taskIn(status), rules)
		second := engine.Evaluate(first.Task, rules)

		a, b := first.RuleIDs(), second.RuleIDs()
		if len(a) != len(b) {
			rt.Fatalf("fired sets differ: %v vs %v", a, b)
		}
		for i := range a {
			if a[i] != b[i] {
				rt.Fatalf("fired sets differ: %v vs %v", a, b)
			}
		}
	})
}
