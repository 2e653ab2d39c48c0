package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/ruleset"
)

func (s *session) printRule(r domain.AutomationRule) {
	state := "inactive"
	if r.IsActive {
		state = "active"
	}
	fmt.Fprintf(s.out, "%s\t%s\t%s\t%s\t%s\t%s\n",
		r.ID,
		state,
		r.TriggerValue,
		r.ActionType,
		r.ActionValue,
		r.Name,
	)
}

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Manage automation rules on a running server",
		Flags: []cli.Flag{apiFlag(), redisFlag()},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List rules in evaluation order",
				Action: withSession(func(_ *cli.Context, s *session) error {
					for _, r := range s.ctrl.Rules() {
						s.printRule(r)
					}
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add a rule: when a task moves to --when, do --action with --value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Rule name"},
					&cli.StringFlag{Name: "when", Required: true, Usage: "Status that triggers the rule"},
					&cli.StringFlag{Name: "action", Required: true, Usage: "SET_PRIORITY, ASSIGN_USER or ADD_COMMENT"},
					&cli.StringFlag{Name: "value", Usage: "Priority, user name or comment text"},
					&cli.BoolFlag{Name: "inactive", Usage: "Create the rule switched off"},
				},
				Action: withSession(func(c *cli.Context, s *session) error {
					_, err := s.ctrl.CreateRule(c.Context, domain.AutomationRule{
						Name:         c.String("name"),
						IsActive:     !c.Bool("inactive"),
						TriggerType:  domain.TriggerStatusChange,
						TriggerValue: domain.TaskStatus(c.String("when")),
						ActionType:   domain.ActionType(c.String("action")),
						ActionValue:  c.String("value"),
					})
					if err != nil {
						return err
					}
					s.ctrl.Wait()
					if rules := s.ctrl.Rules(); len(rules) > 0 {
						s.printRule(rules[len(rules)-1])
					}
					return nil
				}),
			},
			{
				Name:      "toggle",
				Usage:     "Switch a rule on or off",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					r, err := s.ctrl.ToggleRule(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					s.printRule(r)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a rule",
				ArgsUsage: "ID",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "ID"); err != nil {
						return err
					}
					return s.ctrl.DeleteRule(c.Context, c.Args().First())
				}),
			},
			{
				Name:      "import",
				Usage:     "Append the rules of a YAML rule set",
				ArgsUsage: "FILE",
				Action: withSession(func(c *cli.Context, s *session) error {
					if err := requireArgs(c, "FILE"); err != nil {
						return err
					}
					rules, err := ruleset.Load(c.Args().First())
					if err != nil {
						return err
					}
					for _, r := range rules {
						if _, err := s.ctrl.CreateRule(c.Context, r); err != nil {
							return err
						}
						// Keep registration order on the server.
						s.ctrl.Wait()
					}
					fmt.Fprintf(s.out, "imported\t%d\n", len(rules))
					return nil
				}),
			},
			{
				Name:      "export",
				Usage:     "Write the rule set as YAML to FILE, or stdout",
				ArgsUsage: "[FILE]",
				Action: withSession(func(c *cli.Context, s *session) error {
					data, err := ruleset.Marshal(s.ctrl.Rules())
					if err != nil {
						return err
					}
					if path := c.Args().First(); path != "" {
						return os.WriteFile(path, data, 0o644)
					}
					_, err = s.out.Write(data)
					return err
				}),
			},
		},
	}
}
