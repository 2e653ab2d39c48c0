package dto

import (
	"time"

	"github.com/mtlprog/taskflow/internal/domain"
)

// TaskRequest is the body for POST /tasks and PUT /tasks/{id}. Omitted
// fields are left untouched on update and defaulted on create. Arrays
// replace the stored ones.
type TaskRequest struct {
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Status        *string           `json:"status,omitempty" example:"In Progress"`
	Priority      *string           `json:"priority,omitempty" example:"High"`
	DueDate       *time.Time        `json:"dueDate,omitempty"`
	Assignee      *string           `json:"assignee,omitempty"`
	Tags          *[]string         `json:"tags,omitempty"`
	EstimatedTime *float64          `json:"estimatedTime,omitempty"`
	BlockedBy     *[]string         `json:"blockedBy,omitempty"`
	Comments      *[]domain.Comment `json:"comments,omitempty"`
}

// ToPatch converts the request into a domain patch.
func (r TaskRequest) ToPatch() domain.TaskPatch {
	p := domain.TaskPatch{
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		Assignee:      r.Assignee,
		Tags:          r.Tags,
		EstimatedTime: r.EstimatedTime,
		BlockedBy:     r.BlockedBy,
		Comments:      r.Comments,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		p.Status = &s
	}
	if r.Priority != nil {
		pr := domain.TaskPriority(*r.Priority)
		p.Priority = &pr
	}
	return p
}

// NewTaskRequest builds a request body from a domain patch.
func NewTaskRequest(p domain.TaskPatch) TaskRequest {
	r := TaskRequest{
		Title:         p.Title,
		Description:   p.Description,
		DueDate:       p.DueDate,
		Assignee:      p.Assignee,
		Tags:          p.Tags,
		EstimatedTime: p.EstimatedTime,
		BlockedBy:     p.BlockedBy,
		Comments:      p.Comments,
	}
	if p.Status != nil {
		s := string(*p.Status)
		r.Status = &s
	}
	if p.Priority != nil {
		pr := string(*p.Priority)
		r.Priority = &pr
	}
	return r
}

// RuleRequest is the body for POST /rules and PUT /rules/{id}.
type RuleRequest struct {
	Name         string `json:"name" example:"Auto-Archive Done Tasks"`
	IsActive     *bool  `json:"isActive,omitempty"`
	TriggerType  string `json:"triggerType" example:"STATUS_CHANGE"`
	TriggerValue string `json:"triggerValue" example:"Done"`
	ActionType   string `json:"actionType" example:"SET_PRIORITY"`
	ActionValue  string `json:"actionValue" example:"Low"`
}

// ToRule converts the request into a rule. Rules are active unless the
// request says otherwise.
func (r RuleRequest) ToRule() domain.AutomationRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	trigger := domain.TriggerType(r.TriggerType)
	if trigger == "" {
		trigger = domain.TriggerStatusChange
	}
	return domain.AutomationRule{
		Name:         r.Name,
		IsActive:     active,
		TriggerType:  trigger,
		TriggerValue: domain.TaskStatus(r.TriggerValue),
		ActionType:   domain.ActionType(r.ActionType),
		ActionValue:  r.ActionValue,
	}
}

// NewRuleRequest builds a request body from a rule.
func NewRuleRequest(rule domain.AutomationRule) RuleRequest {
	active := rule.IsActive
	return RuleRequest{
		Name:         rule.Name,
		IsActive:     &active,
		TriggerType:  string(rule.TriggerType),
		TriggerValue: string(rule.TriggerValue),
		ActionType:   string(rule.ActionType),
		ActionValue:  rule.ActionValue,
	}
}
