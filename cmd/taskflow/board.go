package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskflow/internal/automation"
	"github.com/mtlprog/taskflow/internal/board"
	"github.com/mtlprog/taskflow/internal/client"
	"github.com/mtlprog/taskflow/internal/config"
	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/notify"
	"github.com/mtlprog/taskflow/internal/syncer"
)

// session is one board command run: a controller loaded from the server
// plus a count of background writes the server rejected.
type session struct {
	ctrl   *syncer.Controller
	failed atomic.Int32
	out    io.Writer
	events *notify.Redis
}

func openSession(c *cli.Context) (*session, error) {
	api := client.New(c.String("api-url"))
	s := &session{out: c.App.Writer}

	failures := notify.Func(func(_ context.Context, n domain.Notification) {
		if n.Kind == domain.NotificationSyncFailed {
			s.failed.Add(1)
		}
	})

	sinks := notify.Multi{notify.Log{}, failures}
	if redisURL := c.String("redis-url"); redisURL != "" {
		events, err := notify.NewRedis(c.Context, redisURL, config.EventsChannel)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.events = events
		sinks = append(sinks, events)
	}

	manager := board.NewManager(board.NewStore(), automation.NewEngine())
	s.ctrl = syncer.New(manager, api.Tasks(), api.Rules(), sinks)

	if err := s.ctrl.Reload(c.Context); err != nil {
		s.close()
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return s, nil
}

func (s *session) close() {
	if s.events == nil {
		return
	}
	if err := s.events.Close(); err != nil {
		slog.Warn("failed to close redis", "error", err)
	}
}

// finish waits for background writes and reports any the server rejected.
func (s *session) finish() error {
	s.ctrl.Wait()
	s.close()
	if n := s.failed.Load(); n > 0 {
		return fmt.Errorf("%w: %d change(s) rejected, board reloaded", domain.ErrRemoteFailure, n)
	}
	return nil
}

func (s *session) printTasks(tasks []domain.Task) {
	for _, t := range tasks {
		s.printTask(t)
	}
}

func (s *session) printTask(t domain.Task) {
	assignee := ""
	if t.Assignee != nil {
		assignee = *t.Assignee
	}
	fmt.Fprintf(s.out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		t.ID,
		t.Status,
		t.Priority,
		assignee,
		t.DueDate.Format(time.DateOnly),
		strings.Join(t.Tags, ","),
		t.Title,
	)
}

// withSession wraps a board action with session setup and teardown.
func withSession(run func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		if err := run(c, s); err != nil {
			s.ctrl.Wait()
			s.close()
			return err
		}
		return s.finish()
	}
}

func requireArgs(c *cli.Context, names ...string) error {
	if c.NArg() < len(names) {
		return fmt.Errorf("usage: %s %s", c.Command.HelpName, strings.Join(names, " "))
	}
	return nil
}

func taskFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Task title"},
		&cli.StringFlag{Name: "description", Usage: "Task description"},
		&cli.StringFlag{Name: "status", Usage: "To Do, In Progress, Review or Done"},
		&cli.StringFlag{Name: "priority", Usage: "Low, Medium or High"},
		&cli.StringFlag{Name: "due", Usage: "Due date (YYYY-MM-DD or RFC 3339)"},
		&cli.StringFlag{Name: "assignee", Usage: "Assignee name"},
		&cli.StringSliceFlag{Name: "tag", Usage: "Tag (repeatable, replaces existing tags)"},
		&cli.Float64Flag{Name: "estimate", Usage: "Estimated time in hours"},
		&cli.StringSliceFlag{Name: "blocked-by", Usage: "Blocking task id (repeatable)"},
	}
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(c *cli.Context) (domain.TaskPatch, error) {
	var p domain.TaskPatch

	if c.IsSet("title") {
		v := c.String("title")
		p.Title = &v
	}
	if c.IsSet("description") {
		v := c.String("description")
		p.Description = &v
	}
	if c.IsSet("status") {
		v := domain.TaskStatus(c.String("status"))
		p.Status = &v
	}
	if c.IsSet("priority") {
		v := domain.TaskPriority(c.String("priority"))
		p.Priority = &v
	}
	if c.IsSet("due") {
		due, err := parseDue(c.String("due"))
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.DueDate = &due
	}
	if c.IsSet("assignee") {
		v := c.String("assignee")
		p.Assignee = &v
	}
	if c.IsSet("tag") {
		v := c.StringSlice("tag")
		p.Tags = &v
	}
	if c.IsSet("estimate") {
		v := c.Float64("estimate")
		p.EstimatedTime = &v
	}
	if c.IsSet("blocked-by") {
		v := c.StringSlice("blocked-by")
		p.BlockedBy = &v
	}

	return p, p.Validate()
}

func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", s)
	}
	return t, nil
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Work with tasks on a running server",
		Flags: []cli.Flag{apiFlag(), redisFlag()},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List active tasks",
				Action: withSession(func(_ *cli.Context, s *session) error {
					s.printTasks(s.ctrl.Active())
					return nil
				}),
			},
			{
				Name:  "trash",
				Usage: "List trashed tasks, most recently deleted first",
				Action: withSession(func(_ *cli.Context, s *session) error {
					s.printTasks(s.ctrl.Trash())
					return nil
				}),
			},
			{
				Name:  "create",
				Usage: "Create a task",
				Flags: taskFlags(),
				Action: withSession(func(c *cli.Context, s *session) error {
					p, err := patchFromFlags(c)
					if err != nil {
						return err
					}
					local := s.ctrl.Create(c.Context, p)
					s.ctrl.Wait()
					return s.printCurrent(local.ID)
				}),
			},
			{
				Name:      "edit",
				Usage:     "Edit task fields (status changes here do not run automation)",
				ArgsUsage: "ID",
				Flags:     taskFlags(),
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					p, err := patchFromFlags(c)
					if err != nil {
						return err
					}
					task, err := s.ctrl.Update(c.Context, c.Args().First(), p)
					if err != nil {
						return err
					}
					s.printTask(task)
					return nil
				}),
			},
			{
				Name:      "move",
				Usage:     "Move a task to a status and run automation rules",
				ArgsUsage: "ID STATUS",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID", "STATUS"); err != nil {
						return err
					}
					res, err := s.ctrl.MoveStatus(c.Context, c.Args().Get(0), domain.TaskStatus(c.Args().Get(1)))
					if err != nil {
						return err
					}
					s.printTask(res.Task)
					for _, f := range res.Fired {
						fmt.Fprintf(s.out, "fired\t%s\t%s\t%s\n", f.RuleID, f.RuleName, f.Action.Describe())
					}
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Move a task to the trash",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					return s.ctrl.SoftDelete(c.Context, c.Args().First())
				}),
			},
			{
				Name:      "restore",
				Usage:     "Restore a trashed task",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					task, err := s.ctrl.Restore(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					s.printTask(task)
					return nil
				}),
			},
			{
				Name:      "purge",
				Usage:     "Permanently delete a trashed task",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					return s.ctrl.PermanentDelete(c.Context, c.Args().First())
				}),
			},
			{
				Name:  "empty-trash",
				Usage: "Permanently delete every trashed task",
				Action: withSession(func(c *cli.Context, s *session) error {
					res := s.ctrl.EmptyTrash(c.Context)
					for _, id := range res.Deleted {
						fmt.Fprintf(s.out, "deleted\t%s\n", id)
					}
					for _, id := range res.Failed {
						fmt.Fprintf(s.out, "failed\t%s\n", id)
					}
					if len(res.Failed) > 0 {
						return fmt.Errorf("%w: %d of %d tasks not deleted",
							domain.ErrRemoteFailure, len(res.Failed), len(res.Deleted)+len(res.Failed))
					}
					return nil
				}),
			},
			{
				Name:  "clear-done",
				Usage: "Move every Done task to the trash",
				Action: withSession(func(c *cli.Context, s *session) error {
					s.printTasks(s.ctrl.ClearDone(c.Context))
					return nil
				}),
			},
			{
				Name:      "duplicate",
				Usage:     "Copy a task without its comments",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					dup, err := s.ctrl.Duplicate(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					s.ctrl.Wait()
					return s.printCurrent(dup.ID)
				}),
			},
			{
				Name:      "comment",
				Usage:     "Add a comment to a task",
				ArgsUsage: "ID TEXT",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID", "TEXT"); err != nil {
						return err
					}
					text := strings.Join(c.Args().Tail(), " ")
					cm, err := s.ctrl.AddComment(c.Context, c.Args().First(), text)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "%s\t%s\t%s\n", cm.ID, cm.Author, cm.Text)
					return nil
				}),
			},
			{
				Name:      "react",
				Usage:     "Add an emoji reaction to a comment",
				ArgsUsage: "ID COMMENT_ID EMOJI",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID", "COMMENT_ID", "EMOJI"); err != nil {
						return err
					}
					args := c.Args()
					r, err := s.ctrl.AddReaction(c.Context, args.Get(0), args.Get(1), args.Get(2))
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "%s\t%d\n", args.Get(2), r.Count)
					return nil
				}),
			},
		},
	}
}

// printCurrent prints the task created locally as localID, under the id the
// server gave it.
func (s *session) printCurrent(localID string) error {
	task, err := s.ctrl.Get(s.ctrl.ResolveID(localID))
	if errors.Is(err, domain.ErrTaskNotFound) {
		return fmt.Errorf("%w: task was not created", domain.ErrRemoteFailure)
	}
	if err != nil {
		return err
	}
	s.printTask(task)
	return nil
}
