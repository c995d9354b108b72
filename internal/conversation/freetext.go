package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// categoryKeywords infers a ticket category from free text when no taxonomy
// category was selected. First hit in table order wins; order matters
// because "vpn" must win over the generic network words.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"VPN", []string{"vpn", "remote access", "tunnel"}},
	{"Email", []string{"email", "outlook", "mailbox", "inbox"}},
	{"Zoom", []string{"zoom", "video call", "meeting link"}},
	{"Windows", []string{"windows", "blue screen", "bsod", "boot"}},
	{"Network", []string{"network", "wifi", "wi-fi", "internet", "ethernet", "connection"}},
	{"Hardware", []string{"laptop", "desktop", "monitor", "keyboard", "mouse", "printer", "screen"}},
	{"Software", []string{"software", "application", "install", "crash", "update"}},
	{"Account", []string{"password", "account", "login", "locked", "sign in"}},
}

func inferCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.category
			}
		}
	}
	return ""
}

// handleFreeText routes typed input by state: problem descriptions go
// through search and fallback, the other allow-listed states capture a
// single field.
func (e *Engine) handleFreeText(ctx context.Context, session *Session, message string) *TurnResponse {
	switch session.State {
	case StateEndFeedbackText:
		return e.handleFeedbackComment(ctx, session, message)
	case StateRequestFolderPath:
		return e.handleFolderPath(session, message)
	case StateRequestSoftwareType:
		return e.handleCustomSoftware(session, message)
	case StateRequestHardwareMake:
		return e.handleCustomBrand(session, message)
	}

	text := strings.TrimSpace(message)
	if text == "" {
		resp := e.respond(session, "Please describe your issue in a few words.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	}

	session.FreeText = text
	session.appendHistory("User: " + text)
	if session.Category == "" {
		if inferred := inferCategory(text); inferred != "" {
			session.Category = inferred
		}
	}

	if e.searcher != nil {
		match, ok, err := e.searcher.Search(ctx, text)
		if err != nil {
			e.logger.Warn("similarity search failed", zap.String("session_id", session.SessionID), zap.Error(err))
		} else if ok && match.Confidence >= e.cfg.SearchConfidenceThreshold {
			if session.Category == "" {
				session.Category = match.Category
			}
			return e.showSolution(session, match.Issue, match.Solution)
		}
	}

	if e.responder != nil {
		answer, err := e.responder.Respond(ctx, text)
		if err != nil {
			e.logger.Warn("fallback responder failed", zap.String("session_id", session.SessionID), zap.Error(err))
		} else {
			return e.showSolution(session, "", answer)
		}
	}

	return e.offerTicket(session, "I couldn't find a solution for that. Would you like to create a support ticket?")
}
