package domain

import "context"

// TaskRepository is the remote task store contract. Every call may fail;
// failures carry only a human-readable message.
type TaskRepository interface {
	List(ctx context.Context) ([]Task, error)
	ListTrash(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, p TaskPatch) (Task, error)
	Update(ctx context.Context, id string, p TaskPatch) (Task, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (Task, error)
	PermanentDelete(ctx context.Context, id string) error
}

// RuleRepository is the automation rule store contract, independent of task storage.
// ListRules returns rules in registration order.
type RuleRepository interface {
	ListRules(ctx context.Context) ([]AutomationRule, error)
	CreateRule(ctx context.Context, r AutomationRule) (AutomationRule, error)
	UpdateRule(ctx context.Context, id string, r AutomationRule) (AutomationRule, error)
	DeleteRule(ctx context.Context, id string) error
}
