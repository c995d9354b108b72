package domain

import (
	"strings"
	"time"
)

// PriorityRule maps a keyword (optionally scoped to a category) to a priority.
// The classifier reads the table per request, so rule changes apply to the
// next classification without a restart.
type PriorityRule struct {
	ID        string
	Keyword   string
	Category  *string
	Priority  TicketPriority
	CreatedAt time.Time
}

// Matches reports whether the rule applies to the given lowercased text and
// category. A scoped rule is skipped when the category differs.
func (r PriorityRule) Matches(text, category string) bool {
	if r.Category != nil && *r.Category != category {
		return false
	}
	return r.Keyword != "" && strings.Contains(text, strings.ToLower(r.Keyword))
}

// SLAPolicy maps a priority to its committed resolution window.
type SLAPolicy struct {
	ID          string
	Priority    TicketPriority
	Hours       int
	Description string
	UpdatedAt   time.Time
}
