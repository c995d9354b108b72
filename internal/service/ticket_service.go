// Package service holds the application services between the conversation
// engine and persistence: ticket creation, feedback recording, approvals
// and notifications.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/routing"
	"github.com/spec-kit/support-desk/pkg/util"
)

// CreateTicketInput is everything the conversation engine hands over when
// the user confirms a draft. Nothing here has touched storage yet.
type CreateTicketInput struct {
	RequesterID    string
	RequesterName  string
	RequesterEmail string
	Type           domain.TicketType
	Category       string
	Subcategory    string
	Subject        string
	Description    string
	AttachmentURLs []string
	SessionID      string
}

// TicketService owns the ticket lifecycle.
type TicketService interface {
	CreateFromConversation(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListForRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Ticket, error)
	List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, next domain.TicketStatus, comment string) (*domain.Ticket, error)
}

type ticketService struct {
	tickets     repository.TicketRepository
	technicians repository.TechnicianRepository
	users       repository.UserRepository
	router      *routing.Engine
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketServiceDependencies bundles collaborators. Technicians and Users are
// optional; without them resolution counters and requester enrichment are
// skipped.
type TicketServiceDependencies struct {
	Tickets     repository.TicketRepository
	Technicians repository.TechnicianRepository
	Users       repository.UserRepository
	Router      *routing.Engine
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService builds the service.
func NewTicketService(deps TicketServiceDependencies) TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ticketService{
		tickets:     deps.Tickets,
		technicians: deps.Technicians,
		users:       deps.Users,
		router:      deps.Router,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// CreateFromConversation classifies, deadlines and assigns the draft, then
// persists it. now is captured once so created_at and the SLA deadline share
// the same basis.
func (s *ticketService) CreateFromConversation(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, util.NewValidationError("subject is required", nil)
	}
	if strings.TrimSpace(input.RequesterID) == "" {
		return nil, util.NewValidationError("requester id is required", nil)
	}
	ticketType := input.Type
	if ticketType == "" {
		ticketType = domain.TicketTypeIncident
	}

	// Turns that arrive without identity details fall back to the stored
	// requester row, so tickets created from a bare user id still carry
	// name and email. Lookup failure is non-fatal.
	if input.RequesterEmail == "" && s.users != nil {
		if user, err := s.users.GetByID(ctx, input.RequesterID); err == nil {
			input.RequesterName = user.Name
			input.RequesterEmail = user.Email
		}
	}

	now := time.Now().UTC()
	priority, deadline, assignee := s.router.Route(ctx, input.Subject, input.Description, input.Category, now)

	ticket := &domain.Ticket{
		ExternalKey:    newExternalKey(),
		RequesterID:    input.RequesterID,
		RequesterName:  input.RequesterName,
		RequesterEmail: input.RequesterEmail,
		Type:           ticketType,
		Category:       input.Category,
		Subcategory:    input.Subcategory,
		Subject:        input.Subject,
		Description:    input.Description,
		Status:         domain.TicketStatusOpen,
		Priority:       priority,
		SLADeadline:    deadline,
		AttachmentURLs: input.AttachmentURLs,
		SessionID:      input.SessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if assignee != nil {
		ticket.AssigneeID = &assignee.ID
		ticket.AssigneeName = &assignee.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("external_key", ticket.ExternalKey),
		zap.String("priority", string(ticket.Priority)),
		zap.Bool("assigned", assignee != nil),
	)

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		SessionID: ticket.SessionID,
		UserID:    ticket.RequesterID,
		Timestamp: now,
		Payload: events.TicketCreatedPayload{
			ExternalKey: ticket.ExternalKey,
			Type:        ticket.Type,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			SLADeadline: ticket.SLADeadline,
			Subject:     ticket.Subject,
		},
	})
	if assignee != nil {
		s.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketAssigned,
			TicketID:  ticket.ID,
			SessionID: ticket.SessionID,
			UserID:    ticket.RequesterID,
			Timestamp: now,
			Payload: events.TicketAssignedPayload{
				AssigneeID:   assignee.ID,
				AssigneeName: assignee.Name,
			},
		})
	}

	return ticket, nil
}

func (s *ticketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	return ticket, nil
}

func (s *ticketService) ListForRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Ticket, error) {
	return s.List(ctx, repository.TicketFilter{
		RequesterID: &requesterID,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *ticketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus moves a ticket along its lifecycle. Invalid moves are
// rejected as conflicts before any write.
func (s *ticketService) UpdateStatus(ctx context.Context, id string, next domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}

	if !domain.ValidStatusTransition(ticket.Status, next) {
		return nil, util.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}

	old := ticket.Status
	now := time.Now().UTC()
	ticket.Status = next
	ticket.UpdatedAt = now
	switch next {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	// Credit the assignee's resolution counter; a failed bump never rolls
	// back the status change.
	if next == domain.TicketStatusResolved && ticket.AssigneeID != nil && s.technicians != nil {
		if err := s.technicians.MarkResolved(ctx, *ticket.AssigneeID); err != nil {
			s.logger.Warn("resolved counter bump failed",
				zap.String("technician_id", *ticket.AssigneeID), zap.Error(err))
		}
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		SessionID: ticket.SessionID,
		UserID:    ticket.RequesterID,
		Timestamp: now,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: next,
			Comment:   comment,
		},
	})

	return ticket, nil
}

func (s *ticketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// newExternalKey generates the user-facing ticket key, e.g. TKT-9F2C41AB.
func newExternalKey() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TKT-" + strings.ToUpper(raw[:8])
}
