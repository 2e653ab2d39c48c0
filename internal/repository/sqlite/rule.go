package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mtlprog/taskflow/internal/domain"
)

var ruleColumns = []string{
	"id", "name", "is_active", "trigger_type", "trigger_value", "action_type", "action_value",
}

var _ domain.RuleRepository = (*RuleRepository)(nil)

// RuleRepository stores automation rules in SQLite in registration order.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func scanRule(row rowScanner) (domain.AutomationRule, error) {
	var rule domain.AutomationRule
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.IsActive,
		&rule.TriggerType,
		&rule.TriggerValue,
		&rule.ActionType,
		&rule.ActionValue,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AutomationRule{}, domain.ErrRuleNotFound
		}
		return domain.AutomationRule{}, fmt.Errorf("scan rule: %w", err)
	}
	return rule, nil
}

// ListRules returns all rules in the order they were created.
func (r *RuleRepository) ListRules(ctx context.Context) ([]domain.AutomationRule, error) {
	query, args, err := lite.
		Select(ruleColumns...).
		From("automation_rules").
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListRules query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query automation rules: %w", err)
	}
	defer rows.Close()

	rules := []domain.AutomationRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rules, nil
}

// CreateRule appends a rule with a server-assigned id.
func (r *RuleRepository) CreateRule(ctx context.Context, rule domain.AutomationRule) (domain.AutomationRule, error) {
	if err := rule.Validate(); err != nil {
		return domain.AutomationRule{}, err
	}
	rule.ID = uuid.NewString()

	query, args, err := lite.
		Insert("automation_rules").
		Columns(ruleColumns...).
		Values(
			rule.ID,
			rule.Name,
			rule.IsActive,
			string(rule.TriggerType),
			string(rule.TriggerValue),
			string(rule.ActionType),
			rule.ActionValue,
		).
		ToSql()
	if err != nil {
		return domain.AutomationRule{}, fmt.Errorf("build CreateRule query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return domain.AutomationRule{}, fmt.Errorf("create automation rule: %w", err)
	}
	return rule, nil
}

// UpdateRule replaces every field of a rule except its id and position.
func (r *RuleRepository) UpdateRule(ctx context.Context, id string, rule domain.AutomationRule) (domain.AutomationRule, error) {
	if err := rule.Validate(); err != nil {
		return domain.AutomationRule{}, err
	}

	query, args, err := lite.
		Update("automation_rules").
		SetMap(map[string]any{
			"name":          rule.Name,
			"is_active":     rule.IsActive,
			"trigger_type":  string(rule.TriggerType),
			"trigger_value": string(rule.TriggerValue),
			"action_type":   string(rule.ActionType),
			"action_value":  rule.ActionValue,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.AutomationRule{}, fmt.Errorf("build UpdateRule query for rule %s: %w", id, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.AutomationRule{}, fmt.Errorf("update automation rule %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.AutomationRule{}, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return domain.AutomationRule{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}

	rule.ID = id
	return rule, nil
}

// DeleteRule removes a rule. Tasks it already changed keep those changes.
func (r *RuleRepository) DeleteRule(ctx context.Context, id string) error {
	query, args, err := lite.
		Delete("automation_rules").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build DeleteRule query for rule %s: %w", id, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete automation rule %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return nil
}
