package handler

import (
	"net/http"

	"github.com/mtlprog/taskflow/internal/handler/dto"
	"github.com/mtlprog/taskflow/internal/ruleset"
)

// handleListRules lists automation rules.
// @Summary List automation rules
// @Description Returns rules in registration order, which is also evaluation order.
// @Tags rules
// @Produce json
// @Success 200 {array} dto.RuleResponse
// @Router /rules [get]
func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListRules(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ToRuleResponses(rules))
}

// handleExportRules returns the rule set as YAML.
// @Summary Export automation rules
// @Tags rules
// @Produce application/yaml
// @Success 200 {string} string "YAML rule set"
// @Router /rules/export [get]
func (h *Handler) handleExportRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.ListRules(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	data, err := ruleset.Marshal(rules)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleCreateRule registers a rule at the end of the rule list.
// @Summary Create an automation rule
// @Tags rules
// @Accept json
// @Produce json
// @Param request body dto.RuleRequest true "Rule"
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /rules [post]
func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.rules.CreateRule(r.Context(), req.ToRule())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.ToRuleResponse(rule))
}

// handleUpdateRule replaces a rule, including its active flag.
// @Summary Update an automation rule
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body dto.RuleRequest true "Rule"
// @Success 200 {object} dto.RuleResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /rules/{id} [put]
func (h *Handler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r, "rule")
	if !ok {
		return
	}

	var req dto.RuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.rules.UpdateRule(r.Context(), id, req.ToRule())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ToRuleResponse(rule))
}

// handleDeleteRule deletes a rule. Past automation results are kept.
// @Summary Delete an automation rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /rules/{id} [delete]
func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r, "rule")
	if !ok {
		return
	}

	if err := h.rules.DeleteRule(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
