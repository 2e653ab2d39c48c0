package domain

import (
	"context"
	"time"
)

// NotificationKind classifies user-facing board notifications.
type NotificationKind string

const (
	NotificationRuleFired   NotificationKind = "rule_fired"
	NotificationSyncFailed  NotificationKind = "sync_failed"
	NotificationTaskChanged NotificationKind = "task_changed"
	NotificationTaskRemoved NotificationKind = "task_removed"
)

// Notification is a toast-style event for the UI layer.
type Notification struct {
	Kind    NotificationKind
	TaskID  string
	RuleID  string // set for rule events only
	Message string
	At      time.Time
}

// Notifier delivers notifications. Delivery is best-effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
