package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/notify"
)

func sample() domain.Notification {
	return domain.Notification{
		Kind:    domain.NotificationRuleFired,
		TaskID:  "t1",
		RuleID:  "r1",
		Message: `Automation "Auto-Archive Done Tasks": Set priority to Low`,
		At:      time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	payload, err := notify.Encode(sample())
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"kind":"rule_fired"`)
	assert.Contains(t, string(payload), `"taskId":"t1"`)

	got, err := notify.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	_, err = notify.Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestMulti_FansOutInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	sink := func(name string) domain.Notifier {
		return notify.Func(func(_ context.Context, n domain.Notification) {
			order = append(order, name+":"+n.TaskID)
		})
	}

	notify.Multi{sink("a"), sink("b")}.Notify(context.Background(), sample())

	assert.Equal(t, []string{"a:t1", "b:t1"}, order)
}

func TestLog_WritesStructuredEntry(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	n := sample()
	n.Kind = domain.NotificationSyncFailed
	notify.Log{}.Notify(context.Background(), n)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "sync_failed", entry["kind"])
	assert.Equal(t, "t1", entry["task_id"])
}

func TestRedis_PublishSubscribe(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := notify.NewRedis(ctx, url, "taskflow:test:"+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	messages, cleanup, err := r.Subscribe(ctx)
	require.NoError(t, err)
	defer cleanup()

	r.Notify(ctx, sample())

	select {
	case payload := <-messages:
		got, err := notify.Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, sample(), got)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	t.Parallel()

	_, err := notify.NewRedis(context.Background(), "://nope", "x")
	assert.Error(t, err)
}
