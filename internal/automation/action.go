package automation

import (
	"fmt"

	"github.com/mtlprog/taskflow/internal/domain"
)

// Action is the decoded form of a rule's action. The set of variants is
// closed: SetPriority, AssignUser, AddComment and Unknown.
type Action interface {
	isAction()
	// Describe returns a short human-readable summary for notifications.
	Describe() string
}

// SetPriority overwrites the task priority.
type SetPriority struct {
	Priority domain.TaskPriority
}

// AssignUser overwrites the task assignee.
type AssignUser struct {
	User string
}

// AddComment appends a comment authored by the automation.
type AddComment struct {
	Text string
}

// Unknown is any action the engine does not understand. Applying it is a no-op.
type Unknown struct {
	Type  domain.ActionType
	Value string
}

func (SetPriority) isAction() {}
func (AssignUser) isAction()  {}
func (AddComment) isAction()  {}
func (Unknown) isAction()     {}

func (a SetPriority) Describe() string { return fmt.Sprintf("Set priority to %s", a.Priority) }
func (a AssignUser) Describe() string  { return fmt.Sprintf("Assigned to %s", a.User) }
func (a AddComment) Describe() string  { return fmt.Sprintf("Added comment %q", a.Text) }
func (a Unknown) Describe() string     { return fmt.Sprintf("Ignored unknown action %s", a.Type) }

// Decode converts a stored rule's action type and value into a variant.
// A SET_PRIORITY rule whose value is not a known priority decodes to
// Unknown so it can never write an invalid priority onto a task.
func Decode(rule domain.AutomationRule) Action {
	switch rule.ActionType {
	case domain.ActionSetPriority:
		p := domain.TaskPriority(rule.ActionValue)
		if !p.IsValid() {
			return Unknown{Type: rule.ActionType, Value: rule.ActionValue}
		}
		return SetPriority{Priority: p}
	case domain.ActionAssignUser:
		return AssignUser{User: rule.ActionValue}
	case domain.ActionAddComment:
		return AddComment{Text: rule.ActionValue}
	default:
		return Unknown{Type: rule.ActionType, Value: rule.ActionValue}
	}
}
