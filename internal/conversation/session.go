package conversation

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// NavEntry is one committed taxonomy selection, kept in order so back
// navigation can pop exactly one level at a time.
type NavEntry struct {
	Level string `json:"level"`
	Value string `json:"value"`
}

// Navigation level names, in drill-down order. Clearing a level clears
// everything after it too.
const (
	levelTicketType = "ticket_type"
	levelSmartCat   = "smart_category"
	levelCategory   = "category"
	levelType       = "type"
	levelItem       = "item"
	levelIssue      = "issue"
)

var levelOrder = []string{levelTicketType, levelSmartCat, levelCategory, levelType, levelItem, levelIssue}

// TicketDraft is the pending ticket synthesized for preview. It never
// touches storage; only confirmation turns it into a ticket.
type TicketDraft struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Session is the per-(user, session) conversation record. All fields are
// owned by the turn currently holding the store's per-key lock.
type Session struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	State     State  `json:"state"`

	Nav        []NavEntry `json:"nav"`
	TicketType string     `json:"ticket_type"`
	SmartCat   string     `json:"smart_category"`
	Category   string     `json:"category"`
	TypeName   string     `json:"type"`
	Item       string     `json:"item"`
	IssueIndex *int       `json:"issue_index"`
	IssueText  string     `json:"issue_text"`

	FreeText    string   `json:"free_text"`
	History     []string `json:"history"`
	Attachments []string `json:"attachments"`

	Draft     TicketDraft `json:"draft"`
	TicketID  string      `json:"ticket_id"`
	TicketKey string      `json:"ticket_key"`

	RequestCategory    string   `json:"request_category"`
	RequestItem        string   `json:"request_item"`
	HardwareBrand      string   `json:"hardware_brand"`
	SoftwareAction     string   `json:"software_action"`
	AccessType         string   `json:"access_type"`
	InternetSelections []string `json:"internet_selections"`
	FolderPath         string   `json:"folder_path"`
	FolderPermission   string   `json:"folder_permission"`
	Justification      string   `json:"justification"`
	ApprovedBy         string   `json:"approved_by"`

	SolutionSteps    []string                   `json:"solution_steps"`
	StepFeedback     map[int]domain.FeedbackTag `json:"step_feedback"`
	Rating           *int                       `json:"rating"`
	Comment          *string                    `json:"comment"`
	FeedbackRecorded bool                       `json:"feedback_recorded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession initializes a fresh session in the initial state.
func NewSession(userID, sessionID string) *Session {
	now := time.Now().UTC()
	return &Session{
		UserID:       userID,
		SessionID:    sessionID,
		State:        StateInitial,
		StepFeedback: map[int]domain.FeedbackTag{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// pushNav records a committed selection for one level.
func (s *Session) pushNav(level, value string) {
	s.Nav = append(s.Nav, NavEntry{Level: level, Value: value})
}

// popNav removes the most recent selection and clears its field together
// with every deeper level, so a re-selection starts clean.
func (s *Session) popNav() (NavEntry, bool) {
	if len(s.Nav) == 0 {
		return NavEntry{}, false
	}
	top := s.Nav[len(s.Nav)-1]
	s.Nav = s.Nav[:len(s.Nav)-1]
	s.clearFromLevel(top.Level)
	return top, true
}

func (s *Session) clearFromLevel(level string) {
	clearing := false
	for _, name := range levelOrder {
		if name == level {
			clearing = true
		}
		if !clearing {
			continue
		}
		switch name {
		case levelTicketType:
			s.TicketType = ""
		case levelSmartCat:
			s.SmartCat = ""
		case levelCategory:
			s.Category = ""
		case levelType:
			s.TypeName = ""
		case levelItem:
			s.Item = ""
		case levelIssue:
			s.IssueIndex = nil
			s.IssueText = ""
			s.SolutionSteps = nil
		}
	}
}

// appendHistory records one line of conversation context for the ticket
// description.
func (s *Session) appendHistory(line string) {
	s.History = append(s.History, line)
}
