package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketResponse is the outbound ticket shape.
type TicketResponse struct {
	ID             string     `json:"id"`
	ExternalKey    string     `json:"external_key"`
	RequesterID    string     `json:"requester_id"`
	RequesterName  string     `json:"requester_name,omitempty"`
	Type           string     `json:"type"`
	Category       string     `json:"category"`
	Subcategory    string     `json:"subcategory,omitempty"`
	Subject        string     `json:"subject"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	SLADeadline    time.Time  `json:"sla_deadline"`
	SLABreached    bool       `json:"sla_breached"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	AssigneeName   *string    `json:"assignee_name,omitempty"`
	AttachmentURLs []string   `json:"attachment_urls,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// TicketFromDomain maps a domain ticket to its wire shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		ExternalKey:    ticket.ExternalKey,
		RequesterID:    ticket.RequesterID,
		RequesterName:  ticket.RequesterName,
		Type:           string(ticket.Type),
		Category:       ticket.Category,
		Subcategory:    ticket.Subcategory,
		Subject:        ticket.Subject,
		Description:    ticket.Description,
		Status:         string(ticket.Status),
		Priority:       string(ticket.Priority),
		SLADeadline:    ticket.SLADeadline,
		SLABreached:    ticket.SLABreached,
		AssigneeID:     ticket.AssigneeID,
		AssigneeName:   ticket.AssigneeName,
		AttachmentURLs: ticket.AttachmentURLs,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}

// TicketListFromDomain maps a slice of tickets.
func TicketListFromDomain(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, TicketFromDomain(&tickets[i]))
	}
	return out
}
