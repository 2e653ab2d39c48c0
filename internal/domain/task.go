package domain

import (
	"maps"
	"slices"
	"time"
)

// TaskStatus represents the board column a task sits in.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses returns all statuses in board order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}
}

// IsValid checks if the status is one of the allowed values.
// Any valid status may transition to any other; there is no enforced workflow.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

const (
	// DefaultTitle is used when a task is created without a title.
	DefaultTitle = "Untitled"

	// DefaultAssignee is the assignee given to tasks created without one.
	DefaultAssignee = "You"

	// CopySuffix is appended to the title of a duplicated task.
	CopySuffix = " (Copy)"
)

// Task represents a card on the board.
type Task struct {
	ID            string
	Title         string
	Description   string
	Status        TaskStatus
	Priority      TaskPriority
	DueDate       time.Time
	Assignee      *string
	Tags          []string
	EstimatedTime *float64 // hours
	BlockedBy     []string // display only, never enforced
	Comments      []Comment
	CreatedAt     time.Time
}

// Clone returns a deep copy so callers can never alias store-owned slices or maps.
func (t Task) Clone() Task {
	c := t
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	if t.EstimatedTime != nil {
		e := *t.EstimatedTime
		c.EstimatedTime = &e
	}
	c.Tags = slices.Clone(t.Tags)
	c.BlockedBy = slices.Clone(t.BlockedBy)
	if t.Comments != nil {
		c.Comments = make([]Comment, len(t.Comments))
		for i, cm := range t.Comments {
			c.Comments[i] = cm.Clone()
		}
	}
	return c
}

// NewTask builds a task from a partial, filling every omitted field with its default.
func NewTask(id string, now time.Time, p TaskPatch) Task {
	t := Task{
		ID:        id,
		Title:     DefaultTitle,
		Status:    TaskStatusTodo,
		Priority:  TaskPriorityMedium,
		DueDate:   now,
		Tags:      []string{},
		BlockedBy: []string{},
		Comments:  []Comment{},
		CreatedAt: now,
	}
	assignee := DefaultAssignee
	t.Assignee = &assignee

	p.Apply(&t)
	if t.Title == "" {
		t.Title = DefaultTitle
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.BlockedBy == nil {
		t.BlockedBy = []string{}
	}
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	return t
}

// TaskPatch is a partial task. Nil fields are left untouched; slice fields
// replace the whole collection rather than merging into it.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *TaskStatus
	Priority      *TaskPriority
	DueDate       *time.Time
	Assignee      *string
	Tags          *[]string
	EstimatedTime *float64
	BlockedBy     *[]string
	Comments      *[]Comment
}

// Apply overwrites the fields of t that are set in the patch.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Assignee != nil {
		a := *p.Assignee
		t.Assignee = &a
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(*p.Tags)
	}
	if p.EstimatedTime != nil {
		e := *p.EstimatedTime
		t.EstimatedTime = &e
	}
	if p.BlockedBy != nil {
		t.BlockedBy = slices.Clone(*p.BlockedBy)
	}
	if p.Comments != nil {
		comments := make([]Comment, len(*p.Comments))
		for i, c := range *p.Comments {
			comments[i] = c.Clone()
		}
		t.Comments = comments
	}
}

// Clone returns a patch that shares no memory with p.
func (p TaskPatch) Clone() TaskPatch {
	return TaskPatch{
		Title:         clonePtr(p.Title),
		Description:   clonePtr(p.Description),
		Status:        clonePtr(p.Status),
		Priority:      clonePtr(p.Priority),
		DueDate:       clonePtr(p.DueDate),
		Assignee:      clonePtr(p.Assignee),
		Tags:          cloneSlicePtr(p.Tags, func(s string) string { return s }),
		EstimatedTime: clonePtr(p.EstimatedTime),
		BlockedBy:     cloneSlicePtr(p.BlockedBy, func(s string) string { return s }),
		Comments:      cloneSlicePtr(p.Comments, Comment.Clone),
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneSlicePtr[T any](v *[]T, clone func(T) T) *[]T {
	if v == nil {
		return nil
	}
	out := make([]T, len(*v))
	for i, e := range *v {
		out[i] = clone(e)
	}
	return &out
}

// Validate checks the enumerated fields of the patch.
func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// PatchFrom returns a patch that sets every field of t. Used when a whole
// task is pushed back to the remote store.
func PatchFrom(t Task) TaskPatch {
	c := t.Clone()
	p := TaskPatch{
		Title:       &c.Title,
		Description: &c.Description,
		Status:      &c.Status,
		Priority:    &c.Priority,
		DueDate:     &c.DueDate,
		Tags:        &c.Tags,
		BlockedBy:   &c.BlockedBy,
		Comments:    &c.Comments,
	}
	if c.Assignee != nil {
		p.Assignee = c.Assignee
	}
	if c.EstimatedTime != nil {
		p.EstimatedTime = c.EstimatedTime
	}
	return p
}

// Reaction is the tally for one emoji on a comment.
type Reaction struct {
	Count       int  `json:"count"`
	UserReacted bool `json:"userReacted"`
}

// Comment is an entry in a task's append-only discussion log.
// Comments are persisted as JSON documents, hence the tags.
type Comment struct {
	ID        string              `json:"id"`
	Author    string              `json:"author"`
	Text      string              `json:"text"`
	CreatedAt time.Time           `json:"createdAt"`
	Reactions map[string]Reaction `json:"reactions"`
}

// Clone returns a copy with its own reactions map.
func (c Comment) Clone() Comment {
	cp := c
	if c.Reactions != nil {
		cp.Reactions = maps.Clone(c.Reactions)
	}
	return cp
}
