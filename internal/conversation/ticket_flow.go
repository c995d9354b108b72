package conversation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

const maxSubjectLength = 80

// truncateSubject caps the subject without splitting a multi-byte rune,
// so free-text subjects stay valid UTF-8 after the cut.
func truncateSubject(subject string) string {
	if len(subject) <= maxSubjectLength {
		return subject
	}
	cut := maxSubjectLength
	for cut > 0 && !utf8.RuneStart(subject[cut]) {
		cut--
	}
	return subject[:cut]
}

// buildDraft synthesizes the pending ticket from accumulated context. It is
// a pure function of the session's selections and free text, so backing up
// and replaying the same choices always yields the same draft.
func buildDraft(session *Session) TicketDraft {
	subject := strings.TrimSpace(session.IssueText)
	if subject == "" {
		subject = strings.TrimSpace(session.FreeText)
	}
	if subject == "" {
		subject = "IT support request"
	}
	subject = truncateSubject(subject)

	var lines []string
	if session.TicketType != "" {
		lines = append(lines, "Ticket Type: "+session.TicketType)
	}
	if session.SmartCat != "" {
		lines = append(lines, "Area: "+session.SmartCat)
	}
	if session.Category != "" {
		lines = append(lines, "Category: "+session.Category)
	}
	if session.TypeName != "" {
		lines = append(lines, "Type: "+session.TypeName)
	}
	if session.Item != "" {
		lines = append(lines, "Item: "+session.Item)
	}
	if session.IssueText != "" {
		lines = append(lines, "Issue: "+session.IssueText)
	}
	lines = append(lines, session.History...)

	category := session.Category
	if category == "" {
		category = inferCategory(session.FreeText)
	}
	if category == "" {
		category = "General"
	}
	subcategory := session.TypeName
	if subcategory == "" {
		subcategory = session.Item
	}

	return TicketDraft{
		Subject:     subject,
		Description: strings.Join(lines, "\n"),
		Category:    category,
		Subcategory: subcategory,
	}
}

func (e *Engine) handlePreviewTicket(session *Session) *TurnResponse {
	switch session.State {
	case StateShowingSolution, StateAwaitingFreeText, StateAwaitingConfirm:
	default:
		return e.renderState(session)
	}
	session.Draft = buildDraft(session)
	session.State = StateAwaitingConfirm
	return e.renderTicketPreview(session)
}

func (e *Engine) renderTicketPreview(session *Session) *TurnResponse {
	draft := session.Draft
	message := fmt.Sprintf(
		"Here's your ticket preview:\n\nSubject: %s\nCategory: %s\n\n%s\n\nShall I create this ticket?",
		draft.Subject, draft.Category, draft.Description)
	return e.respond(session, message, []Button{
		{Label: "Confirm", Action: string(ActionConfirmTicket)},
		{Label: "Cancel", Action: string(ActionDeclineTicket)},
	})
}

// handleConfirmTicket is the only place ticket creation fires. On failure
// the session stays in the confirmation state so the user can retry.
func (e *Engine) handleConfirmTicket(ctx context.Context, session *Session, input TurnInput) *TurnResponse {
	if session.State != StateAwaitingConfirm {
		return e.renderState(session)
	}
	if session.TicketID != "" {
		// Already created; a repeated confirm must not duplicate the ticket.
		session.State = StateTicketCreated
		return e.renderState(session)
	}

	e.ensureRequester(ctx, input)

	draft := session.Draft
	ticket, err := e.tickets.CreateFromConversation(ctx, service.CreateTicketInput{
		RequesterID:    input.UserID,
		RequesterName:  input.UserName,
		RequesterEmail: input.UserEmail,
		Type:           domain.TicketTypeIncident,
		Category:       draft.Category,
		Subcategory:    draft.Subcategory,
		Subject:        draft.Subject,
		Description:    draft.Description,
		AttachmentURLs: session.Attachments,
		SessionID:      session.SessionID,
	})
	if err != nil {
		e.logger.Error("ticket creation failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return e.respond(session, "We couldn't create your ticket right now. Please try again.", []Button{
			{Label: "Try again", Action: string(ActionConfirmTicket)},
			{Label: "Start over", Action: string(ActionRestart)},
		})
	}

	session.TicketID = ticket.ID
	session.TicketKey = ticket.ExternalKey
	session.State = StateTicketCreated

	message := fmt.Sprintf("Your ticket %s has been created with priority %s. Expected resolution by %s.",
		ticket.ExternalKey, ticket.Priority, ticket.SLADeadline.Format("Mon, 02 Jan 2006 15:04 MST"))
	if ticket.AssigneeName != nil {
		message += fmt.Sprintf(" It has been assigned to %s (auto-assigned based on shift availability).", *ticket.AssigneeName)
	} else {
		message += " It is currently unassigned and will be picked up by the next available technician."
	}
	message += "\n\nHow would you rate this support experience?"

	resp := e.respond(session, message, []Button{
		{Label: "Skip", Action: string(ActionSkipRating)},
	})
	resp.ShowStarRating = true
	return resp
}

// handleDeclineTicket ends the ticket branch with no persisted artifact,
// but still runs the rating flow so feedback can be recorded.
func (e *Engine) handleDeclineTicket(session *Session) *TurnResponse {
	switch session.State {
	case StateShowingSolution, StateAwaitingConfirm:
	default:
		return e.renderState(session)
	}
	session.State = StateEndRating
	resp := e.respond(session, "No problem. How would you rate this support experience?", []Button{
		{Label: "Skip", Action: string(ActionSkipRating)},
	})
	resp.ShowStarRating = true
	return resp
}

// ensureRequester persists the requester row on first contact. Failure is
// non-fatal; the ticket still carries the identity fields.
func (e *Engine) ensureRequester(ctx context.Context, input TurnInput) {
	if e.users == nil || input.UserEmail == "" {
		return
	}
	user := &domain.User{
		ID:    input.UserID,
		Name:  input.UserName,
		Email: input.UserEmail,
		Role:  "requester",
	}
	if _, err := e.users.GetOrCreate(ctx, user); err != nil {
		e.logger.Warn("requester upsert failed", zap.String("user_id", input.UserID), zap.Error(err))
	}
}
