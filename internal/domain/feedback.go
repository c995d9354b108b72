package domain

import "time"

// FeedbackTag is the per-step feedback vocabulary. Stage one records
// tried/not_tried; helpful/not_helpful are only valid after tried.
type FeedbackTag string

const (
	FeedbackTried      FeedbackTag = "tried"
	FeedbackNotTried   FeedbackTag = "not_tried"
	FeedbackHelpful    FeedbackTag = "helpful"
	FeedbackNotHelpful FeedbackTag = "not_helpful"
)

// ValidFeedbackTag reports whether the tag is one of the closed set.
func ValidFeedbackTag(tag FeedbackTag) bool {
	switch tag {
	case FeedbackTried, FeedbackNotTried, FeedbackHelpful, FeedbackNotHelpful:
		return true
	}
	return false
}

// SolutionFeedback is one append-only per-step feedback entry. SolutionIndex
// is 1-based and matches the numbered step the user saw.
type SolutionFeedback struct {
	ID            string
	TicketID      *string
	SessionID     string
	SolutionIndex int
	SolutionText  string
	Tag           FeedbackTag
	CreatedAt     time.Time
}

// FlowFeedback is the end-of-flow record: an optional 1 to 5 rating and an
// optional comment, written once when the conversation completes.
type FlowFeedback struct {
	ID        string
	TicketID  *string
	SessionID string
	FlowType  string
	Rating    *int
	Comment   *string
	CreatedAt time.Time
}
