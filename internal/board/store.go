package board

import (
	"slices"
	"sync"

	"github.com/mtlprog/taskflow/internal/domain"
)

// Store owns the two board collections. A task id lives in at most one of
// them. Only Manager mutates a Store; readers get deep copies.
type Store struct {
	mu     sync.RWMutex
	active []domain.Task
	trash  []domain.Task
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Active returns the visible tasks in board order.
func (s *Store) Active() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.active)
}

// Trash returns the soft-deleted tasks, most recently deleted first.
func (s *Store) Trash() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.trash)
}

// write runs fn with exclusive access to the collections.
func (s *Store) write(fn func(c *collections) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := collections{active: s.active, trash: s.trash}
	if err := fn(&c); err != nil {
		return err
	}
	s.active, s.trash = c.active, c.trash
	return nil
}

func (s *Store) read(fn func(c *collections)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&collections{active: s.active, trash: s.trash})
}

type collections struct {
	active []domain.Task
	trash  []domain.Task
}

func (c *collections) activeIndex(id string) int {
	return slices.IndexFunc(c.active, func(t domain.Task) bool { return t.ID == id })
}

func (c *collections) trashIndex(id string) int {
	return slices.IndexFunc(c.trash, func(t domain.Task) bool { return t.ID == id })
}

// removeActive takes the task at i out of the active list.
func (c *collections) removeActive(i int) domain.Task {
	t := c.active[i]
	c.active = slices.Delete(slices.Clone(c.active), i, i+1)
	return t
}

func (c *collections) removeTrash(i int) domain.Task {
	t := c.trash[i]
	c.trash = slices.Delete(slices.Clone(c.trash), i, i+1)
	return t
}

func (c *collections) appendActive(t domain.Task) {
	c.active = append(slices.Clone(c.active), t)
}

func (c *collections) prependTrash(t domain.Task) {
	c.trash = append([]domain.Task{t}, c.trash...)
}

func (c *collections) replaceActive(i int, t domain.Task) {
	c.active = slices.Clone(c.active)
	c.active[i] = t
}

func cloneAll(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
