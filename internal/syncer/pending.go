package syncer

import "sync"

// idTracker orders remote calls per entity and follows locally assigned ids
// until the store answers a create with its own id. Calls for one id run one
// after another in the order they were issued, so follow-up writes never
// reach the store before the create they depend on.
type idTracker struct {
	mu      sync.Mutex
	tails   map[string]chan struct{}
	remote  map[string]string // local id -> store id
	dropped map[string]bool   // local ids whose create was rejected
}

func newIDTracker() *idTracker {
	return &idTracker{
		tails:   make(map[string]chan struct{}),
		remote:  make(map[string]string),
		dropped: make(map[string]bool),
	}
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// enter queues a call for id, or for its store id once known. The caller
// blocks on wait before talking to the store and calls leave once done.
func (t *idTracker) enter(id string) (wait <-chan struct{}, leave func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if remote, ok := t.remote[id]; ok {
		id = remote
	}
	prev, ok := t.tails[id]
	if !ok {
		prev = closedChan
	}
	done := make(chan struct{})
	t.tails[id] = done

	return prev, func() {
		close(done)
		t.mu.Lock()
		defer t.mu.Unlock()
		for _, key := range []string{id, t.remote[id]} {
			if t.tails[key] == done {
				delete(t.tails, key)
			}
		}
	}
}

// resolve returns the store id for id, or id itself.
func (t *idTracker) resolve(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if remote, ok := t.remote[id]; ok {
		return remote
	}
	return id
}

// adopt records the store id for a local one. Calls issued later under the
// store id queue behind those still pending under the local id.
func (t *idTracker) adopt(local, remote string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remote[local] = remote
	if tail, ok := t.tails[local]; ok {
		t.tails[remote] = tail
	}
}

// drop marks a local id whose create failed; queued calls for it are skipped.
func (t *idTracker) drop(local string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropped[local] = true
}

func (t *idTracker) isDropped(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped[id]
}
