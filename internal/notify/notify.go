// Package notify delivers board notifications: to the log, to a Redis
// pub/sub channel for websocket clients, or to several sinks at once.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/taskflow/internal/domain"
)

// Event is the JSON form of a notification on the wire.
type Event struct {
	Kind    string    `json:"kind" example:"rule_fired"`
	TaskID  string    `json:"taskId,omitempty"`
	RuleID  string    `json:"ruleId,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Encode serializes a notification as an Event.
func Encode(n domain.Notification) ([]byte, error) {
	b, err := json.Marshal(Event{
		Kind:    string(n.Kind),
		TaskID:  n.TaskID,
		RuleID:  n.RuleID,
		Message: n.Message,
		At:      n.At,
	})
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return b, nil
}

// Decode parses an Event payload.
func Decode(payload []byte) (domain.Notification, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return domain.Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	return domain.Notification{
		Kind:    domain.NotificationKind(e.Kind),
		TaskID:  e.TaskID,
		RuleID:  e.RuleID,
		Message: e.Message,
		At:      e.At,
	}, nil
}

// Log writes notifications to the default slog logger.
type Log struct{}

// Notify implements domain.Notifier.
func (Log) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelInfo
	if n.Kind == domain.NotificationSyncFailed {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, n.Message,
		"kind", n.Kind,
		"task_id", n.TaskID,
		"rule_id", n.RuleID,
	)
}

// Multi fans a notification out to every sink in order.
type Multi []domain.Notifier

// Notify implements domain.Notifier.
func (m Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, sink := range m {
		sink.Notify(ctx, n)
	}
}

// Func adapts a plain function to domain.Notifier.
type Func func(ctx context.Context, n domain.Notification)

// Notify implements domain.Notifier.
func (f Func) Notify(ctx context.Context, n domain.Notification) { f(ctx, n) }
