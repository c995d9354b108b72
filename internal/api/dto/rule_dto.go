package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// PriorityRuleRequest is the inbound shape for creating a classifier rule.
type PriorityRuleRequest struct {
	Keyword  string  `json:"keyword"`
	Category *string `json:"category,omitempty"`
	Priority string  `json:"priority"`
}

// PriorityRuleResponse is the outbound rule shape.
type PriorityRuleResponse struct {
	ID        string    `json:"id"`
	Keyword   string    `json:"keyword"`
	Category  *string   `json:"category,omitempty"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// PriorityRuleFromDomain maps a domain rule to its wire shape.
func PriorityRuleFromDomain(rule *domain.PriorityRule) PriorityRuleResponse {
	return PriorityRuleResponse{
		ID:        rule.ID,
		Keyword:   rule.Keyword,
		Category:  rule.Category,
		Priority:  string(rule.Priority),
		CreatedAt: rule.CreatedAt,
	}
}

// PriorityRuleListFromDomain maps a slice of rules.
func PriorityRuleListFromDomain(rules []domain.PriorityRule) []PriorityRuleResponse {
	out := make([]PriorityRuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, PriorityRuleFromDomain(&rules[i]))
	}
	return out
}

// SolutionFeedbackResponse is the outbound per-step feedback shape.
type SolutionFeedbackResponse struct {
	ID            string    `json:"id"`
	TicketID      *string   `json:"ticket_id,omitempty"`
	SessionID     string    `json:"session_id"`
	SolutionIndex int       `json:"solution_index"`
	SolutionText  string    `json:"solution_text"`
	Tag           string    `json:"tag"`
	CreatedAt     time.Time `json:"created_at"`
}

// SolutionFeedbackListFromDomain maps a slice of feedback entries.
func SolutionFeedbackListFromDomain(entries []domain.SolutionFeedback) []SolutionFeedbackResponse {
	out := make([]SolutionFeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, SolutionFeedbackResponse{
			ID:            entry.ID,
			TicketID:      entry.TicketID,
			SessionID:     entry.SessionID,
			SolutionIndex: entry.SolutionIndex,
			SolutionText:  entry.SolutionText,
			Tag:           string(entry.Tag),
			CreatedAt:     entry.CreatedAt,
		})
	}
	return out
}
