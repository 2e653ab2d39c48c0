package domain

// TriggerType names the event that activates a rule.
type TriggerType string

const (
	TriggerStatusChange TriggerType = "STATUS_CHANGE"
)

// ActionType names what a rule does once triggered. The value is kept as an
// open string so rules written by newer clients round-trip untouched.
type ActionType string

const (
	ActionSetPriority ActionType = "SET_PRIORITY"
	ActionAssignUser  ActionType = "ASSIGN_USER"
	ActionAddComment  ActionType = "ADD_COMMENT"
)

// AutomationRule is a single-condition, single-action trigger:
// "when status becomes TriggerValue, do ActionType with ActionValue".
type AutomationRule struct {
	ID           string
	Name         string
	IsActive     bool
	TriggerType  TriggerType
	TriggerValue TaskStatus
	ActionType   ActionType
	ActionValue  string
}

// Validate checks the fields a rule store requires before persisting.
// Unknown action types are accepted; the engine treats them as no-ops.
func (r AutomationRule) Validate() error {
	if r.Name == "" {
		return ErrEmptyRuleName
	}
	if r.TriggerType != TriggerStatusChange {
		return ErrInvalidTrigger
	}
	if !r.TriggerValue.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
