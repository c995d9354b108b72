// Package conversation implements the button-driven support dialogue: taxonomy
// navigation, free-text routing, solution feedback, the ticket preview/confirm
// flow and the service-request sub-flow.
package conversation

// State is the conversation position. Every turn leaves the session in
// exactly one of these values.
type State string

const (
	StateInitial             State = "initial"
	StateAwaitingTicketType  State = "awaiting_ticket_type"
	StateAwaitingSmartCat    State = "awaiting_smart_category"
	StateAwaitingCategory    State = "awaiting_category"
	StateAwaitingType        State = "awaiting_type"
	StateAwaitingItem        State = "awaiting_item"
	StateAwaitingIssue       State = "awaiting_issue"
	StateShowingSolution     State = "showing_solution"
	StateAwaitingFreeText    State = "awaiting_free_text"
	StateAwaitingConfirm     State = "awaiting_ticket_confirmation"
	StateTicketCreated       State = "ticket_created"
	StateEndRating           State = "end_rating"
	StateEndFeedbackText     State = "end_feedback_text"
	StateCompleted           State = "completed"
	StateRequestCategory     State = "request_category"
	StateRequestHardwareType State = "request_hardware_type"
	StateRequestHardwareMake State = "request_hardware_brand"
	StateRequestSoftwareAct  State = "request_software_action"
	StateRequestSoftwareType State = "request_software_type"
	StateRequestAccessType   State = "request_access_type"
	StateRequestInternetOpts State = "request_internet_options"
	StateRequestFolderPath   State = "request_shared_folder_path"
	StateRequestFolderPerm   State = "request_folder_permission"
	StateRequestPreview      State = "request_preview"
	StateManagerApproval     State = "manager_approval"
	StateRequestComplete     State = "request_complete"
)

// ValidState reports membership in the closed state set.
func ValidState(s State) bool {
	switch s {
	case StateInitial, StateAwaitingTicketType, StateAwaitingSmartCat,
		StateAwaitingCategory, StateAwaitingType, StateAwaitingItem,
		StateAwaitingIssue, StateShowingSolution, StateAwaitingFreeText,
		StateAwaitingConfirm, StateTicketCreated, StateEndRating,
		StateEndFeedbackText, StateCompleted, StateRequestCategory,
		StateRequestHardwareType, StateRequestHardwareMake,
		StateRequestSoftwareAct, StateRequestSoftwareType,
		StateRequestAccessType, StateRequestInternetOpts,
		StateRequestFolderPath, StateRequestFolderPerm,
		StateRequestPreview, StateManagerApproval, StateRequestComplete:
		return true
	}
	return false
}

// Action is a transition trigger from the client.
type Action string

const (
	ActionStart               Action = "start"
	ActionRestart             Action = "restart"
	ActionSelectTicketType    Action = "select_ticket_type"
	ActionSelectSmartCategory Action = "select_smart_category"
	ActionSelectCategory      Action = "select_category"
	ActionSelectType          Action = "select_type"
	ActionSelectItem          Action = "select_item"
	ActionSelectIssue         Action = "select_issue"
	ActionDescribeIssue       Action = "describe_issue"
	ActionFreeText            Action = "free_text"
	ActionGoBack              Action = "go_back"
	ActionStepFeedback        Action = "step_feedback"
	ActionSolutionResolved    Action = "solution_resolved"
	ActionSolutionNotResolved Action = "solution_not_resolved"
	ActionPreviewTicket       Action = "preview_ticket"
	ActionConfirmTicket       Action = "confirm_ticket"
	ActionDeclineTicket       Action = "decline_ticket"
	ActionSubmitRating        Action = "submit_rating"
	ActionSkipRating          Action = "skip_rating"
	ActionSkipComment         Action = "skip_comment"
	ActionEnd                 Action = "end"

	ActionSelectRequestCategory Action = "select_request_category"
	ActionSelectRequestItem     Action = "select_request_item"
	ActionSelectHardwareBrand   Action = "select_hardware_brand"
	ActionSelectSoftwareAction  Action = "select_software_action"
	ActionSelectSoftwareType    Action = "select_software_type"
	ActionSelectAccessType      Action = "select_access_type"
	ActionSubmitInternetOptions Action = "submit_internet_options"
	ActionSelectFolderPerm      Action = "select_folder_permission"
	ActionSubmitRequest         Action = "submit_request"
	ActionCheckApproval         Action = "check_approval"
)

// ParseAction maps the wire string to an Action. ok is false for anything
// outside the closed vocabulary.
func ParseAction(raw string) (Action, bool) {
	action := Action(raw)
	switch action {
	case ActionStart, ActionRestart, ActionSelectTicketType,
		ActionSelectSmartCategory, ActionSelectCategory, ActionSelectType,
		ActionSelectItem, ActionSelectIssue, ActionDescribeIssue,
		ActionFreeText, ActionGoBack, ActionStepFeedback,
		ActionSolutionResolved, ActionSolutionNotResolved,
		ActionPreviewTicket, ActionConfirmTicket, ActionDeclineTicket,
		ActionSubmitRating, ActionSkipRating, ActionSkipComment, ActionEnd,
		ActionSelectRequestCategory, ActionSelectRequestItem,
		ActionSelectHardwareBrand, ActionSelectSoftwareAction,
		ActionSelectSoftwareType, ActionSelectAccessType,
		ActionSubmitInternetOptions, ActionSelectFolderPerm,
		ActionSubmitRequest, ActionCheckApproval:
		return action, true
	}
	return "", false
}

// freeTextStates is the allow-list of states where typed input is a valid
// action. Everywhere else a free_text turn reissues the current prompt.
var freeTextStates = map[State]bool{
	StateAwaitingFreeText:    true,
	StateRequestFolderPath:   true,
	StateRequestSoftwareType: true,
	StateRequestHardwareMake: true,
	StateEndFeedbackText:     true,
}

// AcceptsFreeText reports whether typed input is valid in the given state.
func AcceptsFreeText(s State) bool {
	return freeTextStates[s]
}
