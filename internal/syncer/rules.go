package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mtlprog/taskflow/internal/domain"
)

// Rules returns the rule book in registration order.
func (c *Controller) Rules() []domain.AutomationRule {
	c.rulesMu.RLock()
	defer c.rulesMu.RUnlock()
	return slices.Clone(c.ruleBook)
}

func (c *Controller) setRules(rules []domain.AutomationRule) {
	c.rulesMu.Lock()
	defer c.rulesMu.Unlock()
	c.ruleBook = slices.Clone(rules)
}

// editRule runs fn on the rule with the given id under the rule book lock.
// A local id is followed to the store id once the create has been answered.
func (c *Controller) editRule(id string, fn func(book []domain.AutomationRule, i int) []domain.AutomationRule) (domain.AutomationRule, error) {
	c.rulesMu.Lock()
	defer c.rulesMu.Unlock()

	id = c.ruleIDs.resolve(id)
	i := slices.IndexFunc(c.ruleBook, func(r domain.AutomationRule) bool { return r.ID == id })
	if i < 0 {
		return domain.AutomationRule{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	rule := c.ruleBook[i]
	c.ruleBook = fn(slices.Clone(c.ruleBook), i)
	if i < len(c.ruleBook) && c.ruleBook[i].ID == id {
		rule = c.ruleBook[i]
	}
	return rule, nil
}

// CreateRule registers a rule at the end of the rule book. The remote store
// assigns the final id; edits made under the local id before then are sent
// once it has.
func (c *Controller) CreateRule(ctx context.Context, r domain.AutomationRule) (domain.AutomationRule, error) {
	if err := r.Validate(); err != nil {
		return domain.AutomationRule{}, err
	}

	r.ID = c.newID()
	c.rulesMu.Lock()
	c.ruleBook = append(slices.Clone(c.ruleBook), r)
	c.rulesMu.Unlock()

	local := r
	c.asyncRules(ctx, "create rule", local.ID, func(ctx context.Context, _ string) error {
		remote, err := c.rules.CreateRule(ctx, local)
		if err != nil {
			c.ruleIDs.drop(local.ID)
			return err
		}
		_, err = c.editRule(local.ID, func(book []domain.AutomationRule, i int) []domain.AutomationRule {
			book[i].ID = remote.ID
			c.ruleIDs.adopt(local.ID, remote.ID)
			return book
		})
		if err != nil {
			// Deleted locally in the meantime; the queued delete still needs the store id.
			c.ruleIDs.adopt(local.ID, remote.ID)
		}
		slog.Info("automation rule created", "rule_id", remote.ID, "name", remote.Name)
		return nil
	})

	return r, nil
}

// UpdateRule replaces a rule's fields, keeping its id and position.
func (c *Controller) UpdateRule(ctx context.Context, id string, r domain.AutomationRule) (domain.AutomationRule, error) {
	if err := r.Validate(); err != nil {
		return domain.AutomationRule{}, err
	}
	updated, err := c.editRule(id, func(book []domain.AutomationRule, i int) []domain.AutomationRule {
		r.ID = book[i].ID
		book[i] = r
		return book
	})
	if err != nil {
		return domain.AutomationRule{}, err
	}

	c.asyncRules(ctx, "update rule", updated.ID, func(ctx context.Context, remoteID string) error {
		updated.ID = remoteID
		if _, err := c.rules.UpdateRule(ctx, remoteID, updated); err != nil {
			return err
		}
		slog.Info("automation rule updated", "rule_id", remoteID)
		return nil
	})
	return updated, nil
}

// ToggleRule flips a rule between active and inactive.
func (c *Controller) ToggleRule(ctx context.Context, id string) (domain.AutomationRule, error) {
	toggled, err := c.editRule(id, func(book []domain.AutomationRule, i int) []domain.AutomationRule {
		book[i].IsActive = !book[i].IsActive
		return book
	})
	if err != nil {
		return domain.AutomationRule{}, err
	}

	c.asyncRules(ctx, "toggle rule", toggled.ID, func(ctx context.Context, remoteID string) error {
		toggled.ID = remoteID
		if _, err := c.rules.UpdateRule(ctx, remoteID, toggled); err != nil {
			return err
		}
		slog.Info("automation rule toggled", "rule_id", remoteID, "is_active", toggled.IsActive)
		return nil
	})
	return toggled, nil
}

// DeleteRule removes a rule. Past automation results are not touched.
func (c *Controller) DeleteRule(ctx context.Context, id string) error {
	deleted, err := c.editRule(id, func(book []domain.AutomationRule, i int) []domain.AutomationRule {
		return slices.Delete(book, i, i+1)
	})
	if err != nil {
		return err
	}

	c.asyncRules(ctx, "delete rule", deleted.ID, func(ctx context.Context, remoteID string) error {
		if err := c.rules.DeleteRule(ctx, remoteID); err != nil {
			return err
		}
		slog.Info("automation rule deleted", "rule_id", remoteID)
		return nil
	})
	return nil
}

// asyncRules is async for rule writes: on failure only the rule book is reloaded.
func (c *Controller) asyncRules(ctx context.Context, op, ruleID string, call func(ctx context.Context, remoteID string) error) {
	ctx = context.WithoutCancel(ctx)
	wait, leave := c.ruleIDs.enter(ruleID)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer leave()
		<-wait
		if c.ruleIDs.isDropped(ruleID) {
			return
		}
		err := call(ctx, c.ruleIDs.resolve(ruleID))
		if err == nil {
			return
		}

		slog.Error("remote rule call failed, reloading rules",
			"op", op,
			"rule_id", ruleID,
			"error", err,
		)
		c.notify(ctx, domain.Notification{
			Kind:    domain.NotificationSyncFailed,
			RuleID:  ruleID,
			Message: fmt.Sprintf("Failed to %s: %v", op, err),
		})

		rules, err := c.rules.ListRules(ctx)
		if err != nil {
			slog.Error("failed to reload rules", "error", err)
			return
		}
		c.setRules(rules)
	}()
}
