package syncer_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/notify"
)

var errRejected = fmt.Errorf("%w: server said no", domain.ErrRemoteFailure)

// fakeStore is an in-memory task and rule store with injectable failures.
type fakeStore struct {
	mu     sync.Mutex
	active []domain.Task
	trash  []domain.Task
	rules  []domain.AutomationRule
	seq    int

	// fail maps "op:id" (or "op:*") to whether the call should be rejected.
	fail  map[string]bool
	calls []string

	// creates blocks task and rule creates until closed, when set.
	creates chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{fail: map[string]bool{}}
}

func (f *fakeStore) failOn(op, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op+":"+id] = true
}

// holdCreates keeps creates pending until the returned func is called.
func (f *fakeStore) holdCreates() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = make(chan struct{})
	return func() { close(f.creates) }
}

func (f *fakeStore) awaitCreate() {
	f.mu.Lock()
	gate := f.creates
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeStore) record(op, id string) error {
	f.calls = append(f.calls, op+":"+id)
	if f.fail[op+":"+id] || f.fail[op+":*"] {
		return errRejected
	}
	return nil
}

func (f *fakeStore) callsTo(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) > len(op) && c[:len(op)+1] == op+":" {
			out = append(out, c[len(op)+1:])
		}
	}
	return out
}

func (f *fakeStore) seed(active, trash []domain.Task, rules []domain.AutomationRule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = cloneTasks(active)
	f.trash = cloneTasks(trash)
	f.rules = slices.Clone(rules)
}

func cloneTasks(in []domain.Task) []domain.Task {
	out := make([]domain.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func (f *fakeStore) List(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list", ""); err != nil {
		return nil, err
	}
	return cloneTasks(f.active), nil
}

func (f *fakeStore) ListTrash(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_trash", ""); err != nil {
		return nil, err
	}
	return cloneTasks(f.trash), nil
}

func (f *fakeStore) Create(_ context.Context, p domain.TaskPatch) (domain.Task, error) {
	f.awaitCreate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create", ""); err != nil {
		return domain.Task{}, err
	}
	f.seq++
	t := domain.NewTask(fmt.Sprintf("srv-%d", f.seq), time.Now(), p)
	f.active = append(f.active, t)
	return t.Clone(), nil
}

func (f *fakeStore) Update(_ context.Context, id string, p domain.TaskPatch) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update", id); err != nil {
		return domain.Task{}, err
	}
	i := slices.IndexFunc(f.active, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	p.Apply(&f.active[i])
	return f.active[i].Clone(), nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("soft_delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(f.active, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	t := f.active[i]
	f.active = slices.Delete(f.active, i, i+1)
	f.trash = append([]domain.Task{t}, f.trash...)
	return nil
}

func (f *fakeStore) Restore(_ context.Context, id string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("restore", id); err != nil {
		return domain.Task{}, err
	}
	i := slices.IndexFunc(f.trash, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	t := f.trash[i]
	f.trash = slices.Delete(f.trash, i, i+1)
	f.active = append(f.active, t)
	return t.Clone(), nil
}

func (f *fakeStore) PermanentDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("permanent_delete", id); err != nil {
		return err
	}
	i := slices.IndexFunc(f.trash, func(t domain.Task) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	f.trash = slices.Delete(f.trash, i, i+1)
	return nil
}

func (f *fakeStore) ListRules(context.Context) ([]domain.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list_rules", ""); err != nil {
		return nil, err
	}
	return slices.Clone(f.rules), nil
}

func (f *fakeStore) CreateRule(_ context.Context, r domain.AutomationRule) (domain.AutomationRule, error) {
	f.awaitCreate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create_rule", ""); err != nil {
		return domain.AutomationRule{}, err
	}
	f.seq++
	r.ID = fmt.Sprintf("rule-%d", f.seq)
	f.rules = append(f.rules, r)
	return r, nil
}

func (f *fakeStore) UpdateRule(_ context.Context, id string, r domain.AutomationRule) (domain.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update_rule", id); err != nil {
		return domain.AutomationRule{}, err
	}
	i := slices.IndexFunc(f.rules, func(x domain.AutomationRule) bool { return x.ID == id })
	if i < 0 {
		return domain.AutomationRule{}, domain.ErrRuleNotFound
	}
	r.ID = id
	f.rules[i] = r
	return r, nil
}

func (f *fakeStore) DeleteRule(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete_rule", id); err != nil {
		return err
	}
	i := slices.IndexFunc(f.rules, func(x domain.AutomationRule) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrRuleNotFound
	}
	f.rules = slices.Delete(f.rules, i, i+1)
	return nil
}

// publishedEvents is a Redis client that keeps what was published instead of
// sending it anywhere. Only Publish is implemented.
type publishedEvents struct {
	redis.UniversalClient

	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *publishedEvents) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, message.([]byte))
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func (p *publishedEvents) decoded() ([]domain.Notification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Notification, 0, len(p.payloads))
	for _, payload := range p.payloads {
		n, err := notify.Decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *recordingNotifier) ofKind(kind domain.NotificationKind) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, s := range n.sent {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
