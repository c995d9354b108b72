package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util"
)

// RulesHandler manages the classifier's keyword rule table.
type RulesHandler struct {
	rules repository.PriorityRuleRepository
}

// NewRulesHandler returns a new handler instance.
func NewRulesHandler(rules repository.PriorityRuleRepository) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// List returns all rules in classifier order.
func (h *RulesHandler) List(c *fiber.Ctx) error {
	rules, err := h.rules.List(c.UserContext())
	if err != nil {
		return util.MapError(err)
	}
	return c.JSON(fiber.Map{"rules": dto.PriorityRuleListFromDomain(rules)})
}

// Create inserts a new keyword rule. The next classification pass picks it
// up without a restart since rules are read per request.
func (h *RulesHandler) Create(c *fiber.Ctx) error {
	var req dto.PriorityRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.Keyword) == "" {
		return util.NewValidationError("keyword is required", nil)
	}
	priority := domain.TicketPriority(req.Priority)
	if domain.PriorityRank(priority) == 0 {
		return util.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	rule := &domain.PriorityRule{
		ID:       "RULE-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		Keyword:  strings.TrimSpace(req.Keyword),
		Category: req.Category,
		Priority: priority,
	}
	if err := h.rules.Create(c.UserContext(), rule); err != nil {
		return util.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PriorityRuleFromDomain(rule))
}

// Delete removes a rule by id.
func (h *RulesHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if strings.TrimSpace(id) == "" {
		return util.NewValidationError("rule id is required", nil)
	}
	if err := h.rules.Delete(c.UserContext(), id); err != nil {
		return util.MapError(err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
