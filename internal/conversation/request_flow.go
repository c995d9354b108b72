package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/service"
)

// Service-request catalogs. These are scripted menus, not taxonomy data.
const (
	requestCategoryHardware = "Hardware"
	requestCategorySoftware = "Software"
	requestCategoryAccess   = "Access"

	accessInternet = "Internet Access"
	accessFolder   = "Shared Folder Access"
	accessVPN      = "VPN Access"

	otherOption = "Other"
)

var hardwareItems = []string{"Laptop", "Desktop", "Monitor", "Keyboard", "Mouse", "Headset", "Docking Station", "Printer"}

var hardwareBrands = map[string][]string{
	"Laptop":  {"HP", "Dell", "Lenovo", "Apple MacBook", otherOption},
	"Desktop": {"HP", "Dell", "Lenovo", otherOption},
	"Monitor": {"HP", "Dell", "Samsung", "LG", otherOption},
}

var defaultBrands = []string{"HP", "Dell", "Logitech", otherOption}

var softwareActions = []string{"Install", "Remove"}

var softwareCatalog = []string{"Adobe Acrobat Pro", "MS Visio", "MS Project", "AutoCAD", "Zoom", "Slack", otherOption}

var accessTypes = []string{accessInternet, accessFolder, accessVPN}

var internetOptions = []string{"Social Media", "Streaming Sites", "Cloud Storage", "Personal Email", "File Sharing Sites"}

var folderPermissions = []string{"Read", "Write", "Read-Write"}

func isRequestState(s State) bool {
	switch s {
	case StateRequestCategory, StateRequestHardwareType, StateRequestHardwareMake,
		StateRequestSoftwareAct, StateRequestSoftwareType, StateRequestAccessType,
		StateRequestInternetOpts, StateRequestFolderPath, StateRequestFolderPerm,
		StateRequestPreview, StateManagerApproval, StateRequestComplete:
		return true
	}
	return false
}

func (e *Engine) startRequestFlow(session *Session) *TurnResponse {
	session.State = StateRequestCategory
	return e.renderRequestState(session)
}

func (e *Engine) renderRequestState(session *Session) *TurnResponse {
	switch session.State {
	case StateRequestCategory:
		return e.respond(session, "What would you like to request?", withBack(optionButtons(ActionSelectRequestCategory,
			requestCategoryHardware, requestCategorySoftware, requestCategoryAccess)))
	case StateRequestHardwareType:
		return e.respond(session, "Which hardware do you need?", withBack(optionButtons(ActionSelectRequestItem, hardwareItems...)))
	case StateRequestHardwareMake:
		resp := e.respond(session, fmt.Sprintf("Which brand of %s would you prefer?", session.RequestItem),
			withBack(optionButtons(ActionSelectHardwareBrand, brandsFor(session.RequestItem)...)))
		resp.ShowTextInput = true
		return resp
	case StateRequestSoftwareAct:
		return e.respond(session, "Would you like to install or remove software?", withBack(optionButtons(ActionSelectSoftwareAction, softwareActions...)))
	case StateRequestSoftwareType:
		resp := e.respond(session, fmt.Sprintf("Which software would you like to %s?", strings.ToLower(session.SoftwareAction)),
			withBack(optionButtons(ActionSelectSoftwareType, softwareCatalog...)))
		resp.ShowTextInput = true
		return resp
	case StateRequestAccessType:
		return e.respond(session, "What kind of access do you need?", withBack(optionButtons(ActionSelectAccessType, accessTypes...)))
	case StateRequestInternetOpts:
		resp := e.respond(session, "Select the sites you need access to.", []Button{
			{Label: "Submit", Action: string(ActionSubmitInternetOptions)},
			backButton,
		})
		resp.ShowCheckboxes = true
		resp.Checkboxes = internetOptions
		return resp
	case StateRequestFolderPath:
		resp := e.respond(session, "Please enter the shared folder path you need access to.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	case StateRequestFolderPerm:
		return e.respond(session, fmt.Sprintf("What permission do you need on %s?", session.FolderPath),
			withBack(optionButtons(ActionSelectFolderPerm, folderPermissions...)))
	case StateRequestPreview:
		return e.renderRequestPreview(session)
	case StateManagerApproval:
		return e.respond(session, fmt.Sprintf("Your request is awaiting approval from Manager %s.", e.cfg.ApproverName), []Button{
			{Label: "Check approval status", Action: string(ActionCheckApproval)},
		})
	case StateRequestComplete:
		return e.respond(session, "Your request has been approved and is being processed.", []Button{
			{Label: "Done", Action: string(ActionEnd)},
		})
	}
	session.State = StateRequestCategory
	return e.renderRequestState(session)
}

// requestGoBack steps one menu back through the request flow. Submitted
// requests cannot be backed out of; past the preview, back re-renders.
func (e *Engine) requestGoBack(session *Session) *TurnResponse {
	switch session.State {
	case StateRequestCategory:
		session.popNav()
		session.State = StateAwaitingTicketType
		return e.renderState(session)
	case StateRequestHardwareType, StateRequestSoftwareAct, StateRequestAccessType:
		session.RequestCategory = ""
		session.RequestItem = ""
		session.SoftwareAction = ""
		session.AccessType = ""
		session.State = StateRequestCategory
	case StateRequestHardwareMake:
		session.RequestItem = ""
		session.HardwareBrand = ""
		session.State = StateRequestHardwareType
	case StateRequestSoftwareType:
		session.SoftwareAction = ""
		session.RequestItem = ""
		session.State = StateRequestSoftwareAct
	case StateRequestInternetOpts, StateRequestFolderPath:
		session.AccessType = ""
		session.InternetSelections = nil
		session.FolderPath = ""
		session.State = StateRequestAccessType
	case StateRequestFolderPerm:
		session.FolderPath = ""
		session.FolderPermission = ""
		session.State = StateRequestFolderPath
	case StateRequestPreview:
		session.Justification = ""
		session.State = StateRequestCategory
	}
	return e.renderRequestState(session)
}

func (e *Engine) handleSelectRequestCategory(session *Session, value string) *TurnResponse {
	if session.State != StateRequestCategory {
		return e.renderState(session)
	}
	switch value {
	case requestCategoryHardware:
		session.RequestCategory = value
		session.State = StateRequestHardwareType
	case requestCategorySoftware:
		session.RequestCategory = value
		session.State = StateRequestSoftwareAct
	case requestCategoryAccess:
		session.RequestCategory = value
		session.State = StateRequestAccessType
	default:
		return e.renderState(session)
	}
	return e.renderRequestState(session)
}

func (e *Engine) handleSelectRequestItem(session *Session, value string) *TurnResponse {
	if session.State != StateRequestHardwareType || !contains(hardwareItems, value) {
		return e.renderState(session)
	}
	session.RequestItem = value
	session.State = StateRequestHardwareMake
	return e.renderRequestState(session)
}

func (e *Engine) handleSelectHardwareBrand(session *Session, value string) *TurnResponse {
	if session.State != StateRequestHardwareMake || !contains(brandsFor(session.RequestItem), value) {
		return e.renderState(session)
	}
	if value == otherOption {
		resp := e.respond(session, fmt.Sprintf("Please type the brand of %s you need.", session.RequestItem), []Button{backButton})
		resp.ShowTextInput = true
		return resp
	}
	return e.commitHardwareBrand(session, value)
}

// handleCustomBrand receives a typed brand after the Other choice.
func (e *Engine) handleCustomBrand(session *Session, message string) *TurnResponse {
	brand := strings.TrimSpace(message)
	if brand == "" {
		return e.renderRequestState(session)
	}
	return e.commitHardwareBrand(session, brand)
}

func (e *Engine) commitHardwareBrand(session *Session, brand string) *TurnResponse {
	session.HardwareBrand = brand
	session.Justification = fmt.Sprintf("Requesting %s %s", brand, session.RequestItem)
	session.State = StateRequestPreview
	return e.renderRequestPreview(session)
}

func (e *Engine) handleSelectSoftwareAction(session *Session, value string) *TurnResponse {
	if session.State != StateRequestSoftwareAct || !contains(softwareActions, value) {
		return e.renderState(session)
	}
	session.SoftwareAction = value
	session.State = StateRequestSoftwareType
	return e.renderRequestState(session)
}

func (e *Engine) handleSelectSoftwareType(session *Session, value string) *TurnResponse {
	if session.State != StateRequestSoftwareType || !contains(softwareCatalog, value) {
		return e.renderState(session)
	}
	if value == otherOption {
		resp := e.respond(session, "Please type the name of the software you need.", []Button{backButton})
		resp.ShowTextInput = true
		return resp
	}
	return e.commitSoftware(session, value)
}

// handleCustomSoftware receives a typed software name after the Other choice.
func (e *Engine) handleCustomSoftware(session *Session, message string) *TurnResponse {
	software := strings.TrimSpace(message)
	if software == "" {
		return e.renderRequestState(session)
	}
	return e.commitSoftware(session, software)
}

func (e *Engine) commitSoftware(session *Session, software string) *TurnResponse {
	session.RequestItem = software
	session.Justification = fmt.Sprintf("Requesting %s of %s", strings.ToLower(session.SoftwareAction), software)
	session.State = StateRequestPreview
	return e.renderRequestPreview(session)
}

func (e *Engine) handleSelectAccessType(session *Session, value string) *TurnResponse {
	if session.State != StateRequestAccessType || !contains(accessTypes, value) {
		return e.renderState(session)
	}
	session.AccessType = value
	switch value {
	case accessInternet:
		session.State = StateRequestInternetOpts
		return e.renderRequestState(session)
	case accessFolder:
		session.State = StateRequestFolderPath
		return e.renderRequestState(session)
	case accessVPN:
		session.RequestItem = accessVPN
		session.Justification = "VPN access required for remote work"
		session.State = StateRequestPreview
		return e.renderRequestPreview(session)
	}
	return e.renderState(session)
}

func (e *Engine) handleSubmitInternetOptions(session *Session, selected []string) *TurnResponse {
	if session.State != StateRequestInternetOpts {
		return e.renderState(session)
	}
	var chosen []string
	for _, option := range selected {
		if contains(internetOptions, option) {
			chosen = append(chosen, option)
		}
	}
	if len(chosen) == 0 {
		return e.renderRequestState(session)
	}
	session.InternetSelections = chosen
	session.RequestItem = accessInternet
	session.Justification = "Requesting internet access to " + strings.Join(chosen, ", ")
	session.State = StateRequestPreview
	return e.renderRequestPreview(session)
}

// handleFolderPath receives the typed shared-folder path.
func (e *Engine) handleFolderPath(session *Session, message string) *TurnResponse {
	path := strings.TrimSpace(message)
	if path == "" {
		return e.renderRequestState(session)
	}
	session.FolderPath = path
	session.State = StateRequestFolderPerm
	return e.renderRequestState(session)
}

func (e *Engine) handleSelectFolderPermission(session *Session, value string) *TurnResponse {
	if session.State != StateRequestFolderPerm || !contains(folderPermissions, value) {
		return e.renderState(session)
	}
	session.FolderPermission = value
	session.RequestItem = accessFolder
	session.Justification = fmt.Sprintf("Requesting %s access to %s", value, session.FolderPath)
	session.State = StateRequestPreview
	return e.renderRequestPreview(session)
}

func (e *Engine) renderRequestPreview(session *Session) *TurnResponse {
	message := fmt.Sprintf(
		"Here's your request summary:\n\nRequest: %s\nJustification: %s\n\nSubmit this request for approval?",
		session.RequestItem, session.Justification)
	return e.respond(session, message, []Button{
		{Label: "Submit request", Action: string(ActionSubmitRequest)},
		{Label: "Cancel", Action: string(ActionGoBack)},
	})
}

// handleSubmitRequest creates the Request ticket and hands it to the
// approval gate. Creation failure keeps the preview so the user can retry.
func (e *Engine) handleSubmitRequest(ctx context.Context, session *Session, input TurnInput) *TurnResponse {
	if session.State != StateRequestPreview {
		return e.renderState(session)
	}
	if session.TicketID != "" {
		session.State = StateManagerApproval
		return e.renderRequestState(session)
	}

	e.ensureRequester(ctx, input)

	ticket, err := e.tickets.CreateFromConversation(ctx, service.CreateTicketInput{
		RequesterID:    input.UserID,
		RequesterName:  input.UserName,
		RequesterEmail: input.UserEmail,
		Type:           domain.TicketTypeRequest,
		Category:       "Service Request",
		Subcategory:    session.RequestCategory,
		Subject:        "Service Request: " + session.RequestItem,
		Description:    session.Justification,
		AttachmentURLs: session.Attachments,
		SessionID:      session.SessionID,
	})
	if err != nil {
		e.logger.Error("request ticket creation failed", zap.String("session_id", session.SessionID), zap.Error(err))
		return e.respond(session, "We couldn't submit your request right now. Please try again.", []Button{
			{Label: "Try again", Action: string(ActionSubmitRequest)},
			{Label: "Start over", Action: string(ActionRestart)},
		})
	}

	session.TicketID = ticket.ID
	session.TicketKey = ticket.ExternalKey
	session.State = StateManagerApproval

	if e.approvals != nil {
		if err := e.approvals.Submit(ctx, ticket.ID, session.RequestItem, session.Justification); err != nil {
			e.logger.Warn("approval submission failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	if e.dispatcher != nil {
		_ = e.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRequestSubmitted,
			TicketID:  ticket.ID,
			SessionID: session.SessionID,
			UserID:    session.UserID,
			Timestamp: time.Now().UTC(),
			Payload: events.RequestSubmittedPayload{
				RequestItem:   session.RequestItem,
				Justification: session.Justification,
				ApproverName:  e.cfg.ApproverName,
			},
		})
	}

	message := fmt.Sprintf("Your request %s has been submitted and forwarded to Manager %s for approval.",
		ticket.ExternalKey, e.cfg.ApproverName)
	return e.respond(session, message, []Button{
		{Label: "Check approval status", Action: string(ActionCheckApproval)},
	})
}

func (e *Engine) handleCheckApproval(ctx context.Context, session *Session) *TurnResponse {
	if session.State != StateManagerApproval {
		return e.renderState(session)
	}

	decision, err := e.approvals.Check(ctx, session.TicketID)
	if err != nil {
		e.logger.Warn("approval check failed", zap.String("ticket_id", session.TicketID), zap.Error(err))
		return e.renderRequestState(session)
	}
	if !decision.Approved {
		return e.renderRequestState(session)
	}

	session.ApprovedBy = decision.ApproverName
	if _, err := e.tickets.UpdateStatus(ctx, session.TicketID, domain.TicketStatusInProgress,
		"approved by "+decision.ApproverName); err != nil {
		e.logger.Warn("approval status update failed", zap.String("ticket_id", session.TicketID), zap.Error(err))
	}
	session.State = StateRequestComplete

	message := fmt.Sprintf("Good news! Your request was approved by %s. Ticket %s is now in progress.",
		decision.ApproverName, session.TicketKey)
	return e.respond(session, message, []Button{
		{Label: "Done", Action: string(ActionEnd)},
	})
}

func brandsFor(item string) []string {
	if brands, ok := hardwareBrands[item]; ok {
		return brands
	}
	return defaultBrands
}

func optionButtons(action Action, options ...string) []Button {
	buttons := make([]Button, 0, len(options))
	for _, option := range options {
		buttons = append(buttons, Button{Label: option, Action: string(action), Value: option})
	}
	return buttons
}

func withBack(buttons []Button) []Button {
	return append(buttons, backButton)
}
