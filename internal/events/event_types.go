package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventRequestSubmitted    EventType = "request_submitted"
	EventFeedbackRecorded    EventType = "feedback_recorded"
	EventSLABreached         EventType = "sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ExternalKey string                `json:"external_key"`
	Type        domain.TicketType     `json:"type"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	SLADeadline time.Time             `json:"sla_deadline"`
	Subject     string                `json:"subject"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	RequestItem   string `json:"request_item"`
	Justification string `json:"justification"`
	ApproverName  string `json:"approver_name"`
}

// FeedbackRecordedPayload payload.
type FeedbackRecordedPayload struct {
	FlowType  string `json:"flow_type"`
	Rating    *int   `json:"rating,omitempty"`
	StepCount int    `json:"step_count"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	TicketIDs []string `json:"ticket_ids"`
}
