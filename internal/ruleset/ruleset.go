// Package ruleset reads and writes automation rules as YAML documents so
// rule sets can be seeded, exported and shared between boards.
package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/static"
)

// File is the on-disk layout of a rule set.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// Rule is one automation rule. IDs are not stored; the receiving store assigns them.
type Rule struct {
	Name    string  `yaml:"name"`
	Active  *bool   `yaml:"active,omitempty"`
	Trigger Trigger `yaml:"trigger"`
	Action  Action  `yaml:"action"`
}

// Trigger is the condition half of a rule.
type Trigger struct {
	Type  string `yaml:"type,omitempty"`
	Value string `yaml:"value"`
}

// Action is the effect half of a rule.
type Action struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Parse decodes a YAML rule set. Rules default to active with a
// STATUS_CHANGE trigger; each rule must pass domain validation.
func Parse(data []byte) ([]domain.AutomationRule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rule set: %w", err)
	}

	rules := make([]domain.AutomationRule, 0, len(f.Rules))
	for i, r := range f.Rules {
		rule := r.toDomain()
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i+1, r.Name, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Load reads and parses the rule set at path.
func Load(path string) ([]domain.AutomationRule, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in rule set.
func Default() ([]domain.AutomationRule, error) {
	return Parse(static.DefaultRulesYAML)
}

// Marshal encodes rules as a YAML rule set.
func Marshal(rules []domain.AutomationRule) ([]byte, error) {
	f := File{Rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		f.Rules = append(f.Rules, fromDomain(r))
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding rule set: %w", err)
	}
	return data, nil
}

// Seed registers rules in order when the store has none yet. It returns
// the number of rules created; a non-empty store is left alone.
func Seed(ctx context.Context, repo domain.RuleRepository, rules []domain.AutomationRule) (int, error) {
	existing, err := repo.ListRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing rules: %w", err)
	}
	if len(existing) > 0 {
		slog.Debug("rule store already populated, skipping seed", "rules", len(existing))
		return 0, nil
	}

	for i, r := range rules {
		if _, err := repo.CreateRule(ctx, r); err != nil {
			return i, fmt.Errorf("seeding rule %q: %w", r.Name, err)
		}
	}

	slog.Info("seeded automation rules", "count", len(rules))
	return len(rules), nil
}

func (r Rule) toDomain() domain.AutomationRule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	trigger := domain.TriggerType(r.Trigger.Type)
	if trigger == "" {
		trigger = domain.TriggerStatusChange
	}
	return domain.AutomationRule{
		Name:         r.Name,
		IsActive:     active,
		TriggerType:  trigger,
		TriggerValue: domain.TaskStatus(r.Trigger.Value),
		ActionType:   domain.ActionType(r.Action.Type),
		ActionValue:  r.Action.Value,
	}
}

func fromDomain(r domain.AutomationRule) Rule {
	active := r.IsActive
	return Rule{
		Name:    r.Name,
		Active:  &active,
		Trigger: Trigger{Type: string(r.TriggerType), Value: string(r.TriggerValue)},
		Action:  Action{Type: string(r.ActionType), Value: r.ActionValue},
	}
}
