// Package handlers contains the fiber HTTP handlers.
package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/conversation"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/pkg/util"
)

// ChatHandler exposes the conversation engine over HTTP.
type ChatHandler struct {
	engine  *conversation.Engine
	metrics *observability.Metrics
}

// NewChatHandler returns a new handler instance.
func NewChatHandler(engine *conversation.Engine, metrics *observability.Metrics) *ChatHandler {
	return &ChatHandler{engine: engine, metrics: metrics}
}

// Turn processes one conversation action.
func (h *ChatHandler) Turn(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return util.NewValidationError("session_id is required", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return util.NewValidationError("user_id is required", nil)
	}
	if req.Action == "" {
		req.Action = string(conversation.ActionStart)
	}

	turn := h.engine.HandleTurn(c.UserContext(), conversation.TurnInput{
		Action:          req.Action,
		Value:           req.Value,
		Message:         req.Message,
		SessionID:       req.SessionID,
		UserID:          req.UserID,
		UserName:        req.UserName,
		UserEmail:       req.UserEmail,
		AttachmentURLs:  req.AttachmentURLs,
		SelectedOptions: req.SelectedOptions,
	})
	h.metrics.RecordTurn(turn.State)
	return c.JSON(dto.ChatResponseFromTurn(turn))
}

// Reset discards the stored session.
func (h *ChatHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return util.NewValidationError("session_id is required", nil)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return util.NewValidationError("user_id is required", nil)
	}

	h.engine.Reset(c.UserContext(), req.UserID, req.SessionID)
	return c.JSON(fiber.Map{"status": "reset"})
}
