package domain

import "errors"

// Domain-specific errors for lifecycle and rule operations.
var (
	// Task errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Rule errors
	ErrRuleNotFound = errors.New("automation rule not found")

	// Remote store errors
	ErrRemoteFailure = errors.New("remote store failure")

	// Validation errors
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidTrigger  = errors.New("invalid rule trigger")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyComment    = errors.New("comment is required")
	ErrEmptyRuleName   = errors.New("rule name is required")
)
