package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util"
)

// FeedbackHandler exposes recorded conversation feedback.
type FeedbackHandler struct {
	feedback service.FeedbackService
}

// NewFeedbackHandler returns a new handler instance.
func NewFeedbackHandler(feedback service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// ListBySession returns the per-step verdicts for one conversation.
func (h *FeedbackHandler) ListBySession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if strings.TrimSpace(sessionID) == "" {
		return util.NewValidationError("session_id is required", nil)
	}
	entries, err := h.feedback.ListBySession(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"feedback": dto.SolutionFeedbackListFromDomain(entries)})
}
