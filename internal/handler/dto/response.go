package dto

import (
	"time"

	"github.com/mtlprog/taskflow/internal/domain"
)

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Status        string           `json:"status" example:"To Do"`
	Priority      string           `json:"priority" example:"Medium"`
	DueDate       time.Time        `json:"dueDate"`
	Assignee      *string          `json:"assignee"`
	Tags          []string         `json:"tags"`
	EstimatedTime *float64         `json:"estimatedTime"`
	BlockedBy     []string         `json:"blockedBy"`
	Comments      []domain.Comment `json:"comments"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ToTaskResponse converts a domain task for the wire.
func ToTaskResponse(t domain.Task) TaskResponse {
	t = t.Clone()
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.BlockedBy == nil {
		t.BlockedBy = []string{}
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		DueDate:       t.DueDate,
		Assignee:      t.Assignee,
		Tags:          t.Tags,
		EstimatedTime: t.EstimatedTime,
		BlockedBy:     t.BlockedBy,
		Comments:      t.Comments,
		CreatedAt:     t.CreatedAt,
	}
}

// ToTaskResponses converts a list of tasks, never returning nil.
func ToTaskResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}

// ToTask converts the wire form back into a domain task.
func (r TaskResponse) ToTask() domain.Task {
	t := domain.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Status:        domain.TaskStatus(r.Status),
		Priority:      domain.TaskPriority(r.Priority),
		DueDate:       r.DueDate,
		Assignee:      r.Assignee,
		Tags:          r.Tags,
		EstimatedTime: r.EstimatedTime,
		BlockedBy:     r.BlockedBy,
		Comments:      r.Comments,
		CreatedAt:     r.CreatedAt,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.BlockedBy == nil {
		t.BlockedBy = []string{}
	}
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	for i := range t.Comments {
		if t.Comments[i].Reactions == nil {
			t.Comments[i].Reactions = map[string]domain.Reaction{}
		}
	}
	return t
}

// RuleResponse is the wire form of an automation rule.
type RuleResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsActive     bool   `json:"isActive"`
	TriggerType  string `json:"triggerType" example:"STATUS_CHANGE"`
	TriggerValue string `json:"triggerValue" example:"Done"`
	ActionType   string `json:"actionType" example:"SET_PRIORITY"`
	ActionValue  string `json:"actionValue" example:"Low"`
}

// ToRuleResponse converts a rule for the wire.
func ToRuleResponse(r domain.AutomationRule) RuleResponse {
	return RuleResponse{
		ID:           r.ID,
		Name:         r.Name,
		IsActive:     r.IsActive,
		TriggerType:  string(r.TriggerType),
		TriggerValue: string(r.TriggerValue),
		ActionType:   string(r.ActionType),
		ActionValue:  r.ActionValue,
	}
}

// ToRuleResponses converts a list of rules, never returning nil.
func ToRuleResponses(rules []domain.AutomationRule) []RuleResponse {
	out := make([]RuleResponse, len(rules))
	for i, r := range rules {
		out[i] = ToRuleResponse(r)
	}
	return out
}

// ToRule converts the wire form back into a rule.
func (r RuleResponse) ToRule() domain.AutomationRule {
	return domain.AutomationRule{
		ID:           r.ID,
		Name:         r.Name,
		IsActive:     r.IsActive,
		TriggerType:  domain.TriggerType(r.TriggerType),
		TriggerValue: domain.TaskStatus(r.TriggerValue),
		ActionType:   domain.ActionType(r.ActionType),
		ActionValue:  r.ActionValue,
	}
}
