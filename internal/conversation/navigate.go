package conversation

import (
	"fmt"
	"strconv"
	"strings"
)

const requestTicketType = "Request"

var backButton = Button{Label: "Back", Action: string(ActionGoBack)}

func (e *Engine) handleStart(session *Session) *TurnResponse {
	fresh := NewSession(session.UserID, session.SessionID)
	*session = *fresh
	session.State = StateAwaitingTicketType
	return e.renderState(session)
}

func (e *Engine) handleSelectTicketType(session *Session, value string) *TurnResponse {
	if value == requestTicketType {
		session.TicketType = requestTicketType
		session.pushNav(levelTicketType, value)
		return e.startRequestFlow(session)
	}
	if !contains(e.catalog.TicketTypes(), value) {
		return e.renderState(session)
	}
	session.TicketType = value
	session.pushNav(levelTicketType, value)
	session.State = StateAwaitingSmartCat
	return e.renderState(session)
}

func (e *Engine) handleSelectSmartCategory(session *Session, value string) *TurnResponse {
	if !contains(e.catalog.SmartCategories(session.TicketType), value) {
		return e.renderState(session)
	}
	session.SmartCat = value
	session.pushNav(levelSmartCat, value)
	session.State = StateAwaitingCategory
	return e.renderState(session)
}

func (e *Engine) handleSelectCategory(session *Session, value string) *TurnResponse {
	if !contains(e.catalog.Categories(session.TicketType, session.SmartCat), value) {
		return e.renderState(session)
	}
	session.Category = value
	session.pushNav(levelCategory, value)
	session.State = StateAwaitingType
	return e.renderState(session)
}

func (e *Engine) handleSelectType(session *Session, value string) *TurnResponse {
	if !contains(e.catalog.Types(session.TicketType, session.SmartCat, session.Category), value) {
		return e.renderState(session)
	}
	session.TypeName = value
	session.pushNav(levelType, value)
	session.State = StateAwaitingItem
	return e.renderState(session)
}

func (e *Engine) handleSelectItem(session *Session, value string) *TurnResponse {
	if !contains(e.catalog.Items(session.TicketType, session.SmartCat, session.Category, session.TypeName), value) {
		return e.renderState(session)
	}
	session.Item = value
	session.pushNav(levelItem, value)
	session.State = StateAwaitingIssue
	return e.renderState(session)
}

func (e *Engine) handleSelectIssue(session *Session, value string) *TurnResponse {
	index, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return e.renderState(session)
	}
	issue, ok := e.catalog.IssueSolution(session.TicketType, session.SmartCat, session.Category, session.TypeName, session.Item, index)
	if !ok {
		return e.renderState(session)
	}
	session.IssueIndex = &index
	session.pushNav(levelIssue, strconv.Itoa(index))
	return e.showSolution(session, issue.Issue, issue.Solution)
}

func (e *Engine) handleDescribeIssue(session *Session) *TurnResponse {
	session.State = StateAwaitingFreeText
	return e.renderState(session)
}

// handleGoBack pops one committed selection and re-renders the menu for
// that level. It only moves through menus, so replaying the same choices
// afterwards cannot duplicate any side effect.
func (e *Engine) handleGoBack(session *Session) *TurnResponse {
	if isRequestState(session.State) {
		return e.requestGoBack(session)
	}

	top, ok := session.popNav()
	if !ok {
		session.State = StateAwaitingTicketType
		return e.renderState(session)
	}
	switch top.Level {
	case levelTicketType:
		session.State = StateAwaitingTicketType
	case levelSmartCat:
		session.State = StateAwaitingSmartCat
	case levelCategory:
		session.State = StateAwaitingCategory
	case levelType:
		session.State = StateAwaitingType
	case levelItem:
		session.State = StateAwaitingItem
	case levelIssue:
		session.State = StateAwaitingIssue
	default:
		session.State = StateAwaitingTicketType
	}
	return e.renderState(session)
}

// renderState reissues the prompt for the session's current state without
// mutating anything, so invalid input is an idempotent no-op.
func (e *Engine) renderState(session *Session) *TurnResponse {
	switch session.State {
	case StateInitial, StateAwaitingTicketType:
		session.State = StateAwaitingTicketType
		return e.startMenu(session)
	case StateAwaitingSmartCat:
		return e.levelMenu(session, "What area best matches your issue?",
			e.catalog.SmartCategories(session.TicketType), ActionSelectSmartCategory)
	case StateAwaitingCategory:
		return e.levelMenu(session, "Please choose a category.",
			e.catalog.Categories(session.TicketType, session.SmartCat), ActionSelectCategory)
	case StateAwaitingType:
		return e.levelMenu(session, "Please choose a type.",
			e.catalog.Types(session.TicketType, session.SmartCat, session.Category), ActionSelectType)
	case StateAwaitingItem:
		return e.levelMenu(session, "Which item is affected?",
			e.catalog.Items(session.TicketType, session.SmartCat, session.Category, session.TypeName), ActionSelectItem)
	case StateAwaitingIssue:
		return e.issueMenu(session)
	case StateShowingSolution:
		return e.renderSolution(session)
	case StateAwaitingFreeText:
		resp := e.respond(session, "Please describe your issue in a few words.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	case StateAwaitingConfirm:
		return e.renderTicketPreview(session)
	case StateTicketCreated, StateEndRating:
		return e.renderRatingPrompt(session)
	case StateEndFeedbackText:
		return e.renderCommentPrompt(session)
	case StateCompleted:
		return e.respond(session, "This conversation is complete. Start a new one anytime.",
			[]Button{{Label: "Start over", Action: string(ActionRestart)}})
	default:
		if isRequestState(session.State) {
			return e.renderRequestState(session)
		}
		session.State = StateAwaitingTicketType
		return e.startMenu(session)
	}
}

func (e *Engine) startMenu(session *Session) *TurnResponse {
	greeting := fmt.Sprintf("Hi! I'm %s, your IT support assistant. How can I help you today?", e.cfg.AssistantName)

	var buttons []Button
	for _, ticketType := range e.catalog.TicketTypes() {
		buttons = append(buttons, Button{Label: ticketType, Action: string(ActionSelectTicketType), Value: ticketType})
	}
	if !contains(e.catalog.TicketTypes(), requestTicketType) {
		buttons = append(buttons, Button{Label: "Service Request", Action: string(ActionSelectTicketType), Value: requestTicketType})
	}
	buttons = append(buttons, Button{Label: "Describe your issue", Action: string(ActionDescribeIssue)})
	return e.respond(session, greeting, buttons)
}

// levelMenu renders one taxonomy level. An empty level degrades to free
// text instead of a dead end.
func (e *Engine) levelMenu(session *Session, prompt string, options []string, action Action) *TurnResponse {
	if len(options) == 0 {
		session.State = StateAwaitingFreeText
		resp := e.respond(session, "No subcategories found. Please describe your issue instead.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	}
	buttons := make([]Button, 0, len(options)+1)
	for _, option := range options {
		buttons = append(buttons, Button{Label: option, Action: string(action), Value: option})
	}
	buttons = append(buttons, backButton)
	return e.respond(session, prompt, buttons)
}

func (e *Engine) issueMenu(session *Session) *TurnResponse {
	issues := e.catalog.Issues(session.TicketType, session.SmartCat, session.Category, session.TypeName, session.Item)
	if len(issues) == 0 {
		session.State = StateAwaitingFreeText
		resp := e.respond(session, "No known issues found for this item. Please describe your issue instead.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	}
	buttons := make([]Button, 0, len(issues)+2)
	for idx, issue := range issues {
		buttons = append(buttons, Button{Label: issue.Issue, Action: string(ActionSelectIssue), Value: strconv.Itoa(idx)})
	}
	buttons = append(buttons,
		Button{Label: "My issue is not listed", Action: string(ActionDescribeIssue)},
		backButton)
	return e.respond(session, "Select the issue you're facing.", buttons)
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
