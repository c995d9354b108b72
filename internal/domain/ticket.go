package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency tiers, P1 highest.
type TicketPriority string

const (
	TicketPriorityP1 TicketPriority = "P1"
	TicketPriorityP2 TicketPriority = "P2"
	TicketPriorityP3 TicketPriority = "P3"
	TicketPriorityP4 TicketPriority = "P4"
)

// PriorityRank orders priorities for comparison; higher means more urgent.
// Unknown values rank below every real tier.
func PriorityRank(p TicketPriority) int {
	switch p {
	case TicketPriorityP1:
		return 4
	case TicketPriorityP2:
		return 3
	case TicketPriorityP3:
		return 2
	case TicketPriorityP4:
		return 1
	default:
		return 0
	}
}

// TicketType distinguishes incidents from service requests.
type TicketType string

const (
	TicketTypeIncident TicketType = "Incident"
	TicketTypeRequest  TicketType = "Request"
)

// Ticket is the aggregate for support cases created from conversations.
type Ticket struct {
	ID             string
	ExternalKey    string
	RequesterID    string
	RequesterName  string
	RequesterEmail string
	Type           TicketType
	Category       string
	Subcategory    string
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	SLADeadline    time.Time
	SLABreached    bool
	AssigneeID     *string
	AssigneeName   *string
	AttachmentURLs []string
	SessionID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusInProgress: {TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed},
	TicketStatusClosed:     {},
}

// ValidStatusTransition reports whether a status move is allowed. Resolved and
// Closed are terminal for this core; reopening is outside its ownership.
func ValidStatusTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
