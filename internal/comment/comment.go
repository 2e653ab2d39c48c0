// Package comment implements the append-only comment log and emoji reactions
// attached to a task. Functions here never mutate their input slices; callers
// push the returned list back through the task update path.
package comment

import (
	"fmt"
	"time"

	"github.com/mtlprog/taskflow/internal/domain"
)

const (
	// UserAuthor is the author recorded for comments typed by the board user.
	UserAuthor = "You"

	// AutomationAuthor is the author recorded for comments added by rules.
	AutomationAuthor = "Automation"
)

// New builds a comment with an empty reaction set.
func New(id, author, text string, createdAt time.Time) domain.Comment {
	return domain.Comment{
		ID:        id,
		Author:    author,
		Text:      text,
		CreatedAt: createdAt,
		Reactions: map[string]domain.Reaction{},
	}
}

// Append returns a new list with c added at the end.
func Append(comments []domain.Comment, c domain.Comment) []domain.Comment {
	out := make([]domain.Comment, 0, len(comments)+1)
	for _, existing := range comments {
		out = append(out, existing.Clone())
	}
	return append(out, c)
}

// React returns a new list where the given emoji on commentID is incremented
// and marked as reacted by the user. There is no toggle-off: repeated
// reactions keep counting up.
func React(comments []domain.Comment, commentID, emoji string) ([]domain.Comment, domain.Reaction, error) {
	out := make([]domain.Comment, len(comments))
	var (
		found  bool
		result domain.Reaction
	)
	for i, c := range comments {
		cp := c.Clone()
		if cp.ID == commentID {
			if cp.Reactions == nil {
				cp.Reactions = map[string]domain.Reaction{}
			}
			r, ok := cp.Reactions[emoji]
			if !ok {
				r = domain.Reaction{Count: 0, UserReacted: false}
			}
			r.Count++
			r.UserReacted = true
			cp.Reactions[emoji] = r
			result = r
			found = true
		}
		out[i] = cp
	}
	if !found {
		return nil, domain.Reaction{}, fmt.Errorf("%w: %s", domain.ErrCommentNotFound, commentID)
	}
	return out, result, nil
}
