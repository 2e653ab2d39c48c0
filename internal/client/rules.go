package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mtlprog/taskflow/internal/domain"
	"github.com/mtlprog/taskflow/internal/handler/dto"
)

// Rules adapts a Client to domain.RuleRepository.
type Rules struct {
	c *Client
}

// Rules returns the rule repository view of the client.
func (c *Client) Rules() *Rules {
	return &Rules{c: c}
}

// ListRules returns rules in registration order.
func (r *Rules) ListRules(ctx context.Context) ([]domain.AutomationRule, error) {
	var resp []dto.RuleResponse
	if err := r.c.do(ctx, http.MethodGet, "/api/rules", nil, &resp); err != nil {
		return nil, err
	}
	rules := make([]domain.AutomationRule, len(resp))
	for i, rr := range resp {
		rules[i] = rr.ToRule()
	}
	return rules, nil
}

// CreateRule registers a rule.
func (r *Rules) CreateRule(ctx context.Context, rule domain.AutomationRule) (domain.AutomationRule, error) {
	var resp dto.RuleResponse
	if err := r.c.do(ctx, http.MethodPost, "/api/rules", dto.NewRuleRequest(rule), &resp); err != nil {
		return domain.AutomationRule{}, err
	}
	return resp.ToRule(), nil
}

// UpdateRule replaces a rule.
func (r *Rules) UpdateRule(ctx context.Context, id string, rule domain.AutomationRule) (domain.AutomationRule, error) {
	var resp dto.RuleResponse
	if err := r.c.do(ctx, http.MethodPut, "/api/rules/"+url.PathEscape(id), dto.NewRuleRequest(rule), &resp); err != nil {
		return domain.AutomationRule{}, err
	}
	return resp.ToRule(), nil
}

// DeleteRule removes a rule.
func (r *Rules) DeleteRule(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/api/rules/"+url.PathEscape(id), nil, nil)
}
