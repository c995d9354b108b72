package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util"
)

// StepFeedback is one per-solution-step verdict from the conversation.
type StepFeedback struct {
	Index int
	Text  string
	Tag   domain.FeedbackTag
}

// ConversationFeedback is the full accumulator flushed once when the
// conversation completes.
type ConversationFeedback struct {
	SessionID string
	UserID    string
	TicketID  *string
	FlowType  string
	Steps     []StepFeedback
	Rating    *int
	Comment   *string
}

// FeedbackService persists end-of-conversation feedback.
type FeedbackService interface {
	Record(ctx context.Context, feedback ConversationFeedback) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.SolutionFeedback, error)
}

type feedbackService struct {
	repo       repository.FeedbackRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// FeedbackServiceDependencies bundles collaborators.
type FeedbackServiceDependencies struct {
	Repo       repository.FeedbackRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewFeedbackService builds the service.
func NewFeedbackService(deps FeedbackServiceDependencies) FeedbackService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &feedbackService{repo: deps.Repo, dispatcher: deps.Dispatcher, logger: logger}
}

// Record writes one row per step plus a single flow row. Feedback loss must
// never break the conversation, so row failures are logged and skipped.
func (s *feedbackService) Record(ctx context.Context, feedback ConversationFeedback) error {
	for _, step := range feedback.Steps {
		if !domain.ValidFeedbackTag(step.Tag) {
			s.logger.Warn("skipping feedback entry with unknown tag",
				zap.String("session_id", feedback.SessionID), zap.Int("index", step.Index))
			continue
		}
		entry := &domain.SolutionFeedback{
			TicketID:      feedback.TicketID,
			SessionID:     feedback.SessionID,
			SolutionIndex: step.Index,
			SolutionText:  step.Text,
			Tag:           step.Tag,
		}
		if err := s.repo.CreateSolutionFeedback(ctx, entry); err != nil {
			s.logger.Warn("solution feedback write failed",
				zap.String("session_id", feedback.SessionID), zap.Int("index", step.Index), zap.Error(err))
		}
	}

	flow := &domain.FlowFeedback{
		TicketID:  feedback.TicketID,
		SessionID: feedback.SessionID,
		FlowType:  feedback.FlowType,
		Rating:    feedback.Rating,
		Comment:   feedback.Comment,
	}
	if err := s.repo.CreateFlowFeedback(ctx, flow); err != nil {
		s.logger.Warn("flow feedback write failed",
			zap.String("session_id", feedback.SessionID), zap.Error(err))
		return nil
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFeedbackRecorded,
			SessionID: feedback.SessionID,
			UserID:    feedback.UserID,
			Timestamp: time.Now().UTC(),
			Payload: events.FeedbackRecordedPayload{
				FlowType:  feedback.FlowType,
				Rating:    feedback.Rating,
				StepCount: len(feedback.Steps),
			},
		}
		if feedback.TicketID != nil {
			event.TicketID = *feedback.TicketID
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
	return nil
}

// ListBySession returns the per-step verdicts recorded for one conversation.
func (s *feedbackService) ListBySession(ctx context.Context, sessionID string) ([]domain.SolutionFeedback, error) {
	entries, err := s.repo.ListSolutionFeedbackBySession(ctx, sessionID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return entries, nil
}
