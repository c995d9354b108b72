package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler exposes read access to tickets.
type TicketsHandler struct {
	tickets service.TicketService
}

// NewTicketsHandler returns a new handler instance.
func NewTicketsHandler(tickets service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List returns tickets matching the query filters.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if requester := strings.TrimSpace(c.Query("requester_id")); requester != "" {
		filter.RequesterID = &requester
	}
	if assignee := strings.TrimSpace(c.Query("assignee_id")); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filter.SearchTerm = &term
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}
	if priority := strings.TrimSpace(c.Query("priority")); priority != "" {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(priority))
	}

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.TicketListFromDomain(tickets)})
}

// Get returns one ticket by id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if strings.TrimSpace(id) == "" {
		return util.NewValidationError("ticket id is required", nil)
	}
	ticket, err := h.tickets.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}
