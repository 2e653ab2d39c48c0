package board_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/board"
	"github.com/mtlprog/taskflow/internal/domain"
)

// A random sequence of lifecycle operations never leaves an id in both
// collections, and never loses or invents a task.
func TestProperty_TaskLivesInOneCollection(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := 0
		m := board.NewManager(board.NewStore(), automation.NewEngine(),
			board.WithIDs(func() string {
				n++
				return fmt.Sprintf("t%d", n)
			}),
		)
		purged := map[string]bool{}

		pick := func(tasks []domain.Task, label string) (string, bool) {
			if len(tasks) == 0 {
				return "", false
			}
			return tasks[rapid.IntRange(0, len(tasks)-1).Draw(rt, label)].ID, true
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for range steps {
			switch rapid.IntRange(0, 7).Draw(rt, "op") {
			case 0:
				m.Create(domain.TaskPatch{})
			case 1:
				if id, ok := pick(m.Active(), "soft"); ok {
					_, _ = m.SoftDelete(id)
				}
			case 2:
				if id, ok := pick(m.Trash(), "restore"); ok {
					_, _ = m.Restore(id)
				}
			case 3:
				if id, ok := pick(m.Trash(), "purge"); ok {
					_, _ = m.PermanentDelete(id)
					purged[id] = true
				}
			case 4:
				if id, ok := pick(m.Active(), "move"); ok {
					status := rapid.SampledFrom(domain.TaskStatuses()).Draw(rt, "status")
					_, _ = m.MoveStatus(id, status, nil)
				}
			case 5:
				m.ClearDone()
			case 6:
				if id, ok := pick(m.Active(), "dup"); ok {
					_, _ = m.Duplicate(id)
				}
			case 7:
				for _, t := range m.EmptyTrash() {
					purged[t.ID] = true
				}
			}

			seen := map[string]bool{}
			for _, t := range append(m.Active(), m.Trash()...) {
				if seen[t.ID] {
					rt.Fatalf("task %s present twice", t.ID)
				}
				if purged[t.ID] {
					rt.Fatalf("purged task %s came back", t.ID)
				}
				seen[t.ID] = true
			}
			if len(seen)+len(purged) != n {
				rt.Fatalf("expected %d tasks accounted for, got %d live + %d purged", n, len(seen), len(purged))
			}
		}
	})
}

// softDelete followed by restore returns exactly the task that was deleted.
func TestProperty_SoftDeleteRestoreIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := board.NewManager(board.NewStore(), automation.NewEngine())

		est := rapid.Float64Range(0, 100).Draw(rt, "estimate")
		task := m.Create(domain.TaskPatch{
			Title:         ptr(rapid.String().Draw(rt, "title")),
			Status:        ptr(rapid.SampledFrom(domain.TaskStatuses()).Draw(rt, "status")),
			Tags:          ptr(rapid.SliceOf(rapid.StringMatching(`[a-z]{1,6}`)).Draw(rt, "tags")),
			EstimatedTime: &est,
			DueDate:       ptr(time.Unix(rapid.Int64Range(0, 1<<32).Draw(rt, "due"), 0).UTC()),
		})

		if _, err := m.SoftDelete(task.ID); err != nil {
			rt.Fatal(err)
		}
		restored, err := m.Restore(task.ID)
		if err != nil {
			rt.Fatal(err)
		}
		if !reflect.DeepEqual(task, restored) {
			rt.Fatalf("restore changed the task:\n%+v\n%+v", task, restored)
		}
	})
}
