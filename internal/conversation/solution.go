package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// showSolution is the single seam through which every solution reaches the
// user, whether it came from a taxonomy issue, similarity search or the
// fallback responder. It resets the feedback accumulator for the new steps.
func (e *Engine) showSolution(session *Session, issue, solution string) *TurnResponse {
	session.IssueText = issue
	session.SolutionSteps = SplitSolutionSteps(solution)
	session.StepFeedback = map[int]domain.FeedbackTag{}
	session.State = StateShowingSolution
	return e.renderSolution(session)
}

func (e *Engine) renderSolution(session *Session) *TurnResponse {
	if len(session.SolutionSteps) == 0 {
		return e.offerTicket(session, "I couldn't find a solution for that. Would you like to create a support ticket?")
	}

	var sb strings.Builder
	if session.IssueText != "" {
		fmt.Fprintf(&sb, "Here's what usually resolves \"%s\":\n", session.IssueText)
	} else {
		sb.WriteString("Here's what I found:\n")
	}
	for idx, step := range session.SolutionSteps {
		fmt.Fprintf(&sb, "%d. %s\n", idx+1, step)
	}
	sb.WriteString("\nLet me know how each step went, then tell me if your issue is resolved.")

	buttons := e.stepButtons(session)
	buttons = append(buttons,
		Button{Label: "Issue resolved", Action: string(ActionSolutionResolved)},
		Button{Label: "Issue not resolved", Action: string(ActionSolutionNotResolved)})
	return e.respond(session, sb.String(), buttons)
}

// stepButtons renders the next pending choice for each step: tried/not
// tried first, then helpful/not helpful once a step was tried.
func (e *Engine) stepButtons(session *Session) []Button {
	var buttons []Button
	for idx := range session.SolutionSteps {
		index := idx + 1
		switch session.StepFeedback[index] {
		case "":
			buttons = append(buttons,
				Button{Label: fmt.Sprintf("Step %d: Tried", index), Action: string(ActionStepFeedback), Value: fmt.Sprintf("%d:%s", index, domain.FeedbackTried)},
				Button{Label: fmt.Sprintf("Step %d: Not tried", index), Action: string(ActionStepFeedback), Value: fmt.Sprintf("%d:%s", index, domain.FeedbackNotTried)})
		case domain.FeedbackTried:
			buttons = append(buttons,
				Button{Label: fmt.Sprintf("Step %d: Helpful", index), Action: string(ActionStepFeedback), Value: fmt.Sprintf("%d:%s", index, domain.FeedbackHelpful)},
				Button{Label: fmt.Sprintf("Step %d: Not helpful", index), Action: string(ActionStepFeedback), Value: fmt.Sprintf("%d:%s", index, domain.FeedbackNotHelpful)})
		}
	}
	return buttons
}

// handleStepFeedback records one per-step verdict. Each index is tracked
// independently; recording for one step never touches another.
func (e *Engine) handleStepFeedback(session *Session, value string) *TurnResponse {
	if session.State != StateShowingSolution {
		return e.renderState(session)
	}
	index, tag, err := ParseStepFeedback(value, len(session.SolutionSteps))
	if err != nil {
		e.logger.Warn("rejected step feedback", zap.String("session_id", session.SessionID), zap.Error(err))
		return e.renderState(session)
	}
	// Helpful verdicts are only valid after the step was tried.
	if (tag == domain.FeedbackHelpful || tag == domain.FeedbackNotHelpful) &&
		session.StepFeedback[index] != domain.FeedbackTried {
		return e.renderState(session)
	}
	session.StepFeedback[index] = tag

	buttons := e.stepButtons(session)
	buttons = append(buttons,
		Button{Label: "Issue resolved", Action: string(ActionSolutionResolved)},
		Button{Label: "Issue not resolved", Action: string(ActionSolutionNotResolved)})
	return e.respond(session, fmt.Sprintf("Got it, noted for step %d.", index), buttons)
}

func (e *Engine) handleSolutionResolved(session *Session) *TurnResponse {
	if session.State != StateShowingSolution {
		return e.renderState(session)
	}
	session.State = StateEndRating
	resp := e.respond(session, "Great! Glad that helped. How would you rate this support experience?", []Button{
		{Label: "Skip", Action: string(ActionSkipRating)},
	})
	resp.ShowStarRating = true
	return resp
}

func (e *Engine) handleSolutionNotResolved(session *Session) *TurnResponse {
	if session.State != StateShowingSolution && session.State != StateAwaitingFreeText {
		return e.renderState(session)
	}
	return e.offerTicket(session, "Sorry that didn't help. Would you like to create a support ticket so a technician can look into it?")
}

// offerTicket presents the create-or-decline choice while staying in the
// solution context.
func (e *Engine) offerTicket(session *Session, message string) *TurnResponse {
	session.State = StateShowingSolution
	return e.respond(session, message, []Button{
		{Label: "Create ticket", Action: string(ActionPreviewTicket)},
		{Label: "No thanks", Action: string(ActionDeclineTicket)},
	})
}

func (e *Engine) renderRatingPrompt(session *Session) *TurnResponse {
	resp := e.respond(session, "How would you rate this support experience?", []Button{
		{Label: "Skip", Action: string(ActionSkipRating)},
	})
	resp.ShowStarRating = true
	return resp
}

func (e *Engine) renderCommentPrompt(session *Session) *TurnResponse {
	resp := e.respond(session, "Any additional comments? Type them below, or skip.", []Button{
		{Label: "Skip", Action: string(ActionSkipComment)},
	})
	resp.ShowTextInput = true
	return resp
}

func (e *Engine) handleSubmitRating(ctx context.Context, session *Session, value string) *TurnResponse {
	if session.State != StateEndRating && session.State != StateTicketCreated && session.State != StateRequestComplete {
		return e.renderState(session)
	}
	rating, err := ParseRating(value)
	if err != nil {
		e.logger.Warn("rejected rating", zap.String("session_id", session.SessionID), zap.Error(err))
		return e.renderRatingPrompt(session)
	}
	session.Rating = &rating
	session.State = StateEndFeedbackText
	return e.renderCommentPrompt(session)
}

func (e *Engine) handleSkipRating(ctx context.Context, session *Session) *TurnResponse {
	if session.State != StateEndRating && session.State != StateTicketCreated && session.State != StateRequestComplete {
		return e.renderState(session)
	}
	return e.complete(ctx, session)
}

// handleSkipComment declines the optional comment. Only the comment prompt
// offers this action; from any other state it reissues the current prompt
// so an out-of-band skip cannot end a live flow early.
func (e *Engine) handleSkipComment(ctx context.Context, session *Session) *TurnResponse {
	if session.State != StateEndFeedbackText {
		return e.renderState(session)
	}
	return e.complete(ctx, session)
}

// handleFeedbackComment receives the optional free-text comment.
func (e *Engine) handleFeedbackComment(ctx context.Context, session *Session, message string) *TurnResponse {
	comment := strings.TrimSpace(message)
	if comment != "" {
		session.Comment = &comment
	}
	return e.complete(ctx, session)
}

func (e *Engine) handleEnd(session *Session) *TurnResponse {
	switch session.State {
	case StateTicketCreated, StateRequestComplete:
		session.State = StateEndRating
		return e.renderRatingPrompt(session)
	}
	return e.renderState(session)
}

// complete finishes the conversation and flushes the feedback accumulator
// exactly once. Feedback loss never blocks the completion response.
func (e *Engine) complete(ctx context.Context, session *Session) *TurnResponse {
	if !session.FeedbackRecorded {
		session.FeedbackRecorded = true
		e.recordFeedback(ctx, session)
	}
	session.State = StateCompleted

	message := "Thank you! This conversation is complete."
	if session.TicketKey != "" {
		message = fmt.Sprintf("Thank you! You can track your ticket %s with the support team.", session.TicketKey)
	}
	return e.respond(session, message, []Button{
		{Label: "Start over", Action: string(ActionRestart)},
	})
}

func (e *Engine) recordFeedback(ctx context.Context, session *Session) {
	if e.feedback == nil {
		return
	}
	if len(session.StepFeedback) == 0 && session.Rating == nil && session.Comment == nil {
		return
	}

	flowType := "incident"
	if session.TicketType == requestTicketType {
		flowType = "request"
	}

	var ticketID *string
	if session.TicketID != "" {
		id := session.TicketID
		ticketID = &id
	}

	var steps []service.StepFeedback
	for idx, step := range session.SolutionSteps {
		index := idx + 1
		tag, ok := session.StepFeedback[index]
		if !ok {
			continue
		}
		steps = append(steps, service.StepFeedback{Index: index, Text: step, Tag: tag})
	}

	if err := e.feedback.Record(ctx, service.ConversationFeedback{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		TicketID:  ticketID,
		FlowType:  flowType,
		Steps:     steps,
		Rating:    session.Rating,
		Comment:   session.Comment,
	}); err != nil {
		e.logger.Warn("feedback recording failed", zap.String("session_id", session.SessionID), zap.Error(err))
	}
}
