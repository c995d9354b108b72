package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/search"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/taxonomy"
)

// Button is one selectable option returned with a turn.
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// TurnInput is one inbound conversation action.
type TurnInput struct {
	Action          string
	Value           string
	Message         string
	SessionID       string
	UserID          string
	UserName        string
	UserEmail       string
	AttachmentURLs  []string
	SelectedOptions []string
}

// TurnResponse is the engine's reply: text, the next options, and which
// auxiliary inputs the client should render.
type TurnResponse struct {
	Response       string   `json:"response"`
	Buttons        []Button `json:"buttons"`
	ShowTextInput  bool     `json:"show_text_input"`
	ShowStarRating bool     `json:"show_star_rating"`
	ShowCheckboxes bool     `json:"show_checkboxes"`
	Checkboxes     []string `json:"checkboxes,omitempty"`
	State          string   `json:"state"`
	TicketID       string   `json:"ticket_id,omitempty"`
}

// Engine is the conversation state machine orchestrator. It owns dispatch
// and delegates to the navigation, free-text, request, ticket and feedback
// handlers.
type Engine struct {
	store      *Store
	catalog    *taxonomy.Catalog
	searcher   search.Searcher
	responder  search.Responder
	tickets    service.TicketService
	feedback   service.FeedbackService
	approvals  service.ApprovalGate
	users      repository.UserRepository
	dispatcher events.Dispatcher
	cfg        config.ChatConfig
	logger     *zap.Logger
}

// Dependencies bundles engine collaborators.
type Dependencies struct {
	Store      *Store
	Catalog    *taxonomy.Catalog
	Searcher   search.Searcher
	Responder  search.Responder
	Tickets    service.TicketService
	Feedback   service.FeedbackService
	Approvals  service.ApprovalGate
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Config     config.ChatConfig
	Logger     *zap.Logger
}

// NewEngine builds the conversation engine.
func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:      deps.Store,
		catalog:    deps.Catalog,
		searcher:   deps.Searcher,
		responder:  deps.Responder,
		tickets:    deps.Tickets,
		feedback:   deps.Feedback,
		approvals:  deps.Approvals,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     logger,
	}
}

// HandleTurn processes one inbound action under the session's lock. A panic
// anywhere in dispatch is converted into a start-over response with a fresh
// session, so no input can leave the key wedged.
func (e *Engine) HandleTurn(ctx context.Context, input TurnInput) (resp *TurnResponse) {
	session, release := e.store.Acquire(ctx, input.UserID, input.SessionID)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn dispatch panicked",
				zap.String("session_id", input.SessionID),
				zap.String("action", input.Action),
				zap.Any("panic", r))
			fresh := e.store.ReplaceLocked(input.UserID, input.SessionID)
			resp = &TurnResponse{
				Response: "Something went wrong. Please try again.",
				Buttons:  []Button{{Label: "Start over", Action: string(ActionRestart)}},
				State:    string(fresh.State),
			}
		}
	}()

	if len(input.AttachmentURLs) > 0 {
		session.Attachments = append(session.Attachments, input.AttachmentURLs...)
	}

	return e.dispatch(ctx, session, input)
}

// Reset discards the stored session entirely.
func (e *Engine) Reset(ctx context.Context, userID, sessionID string) {
	e.store.Reset(ctx, userID, sessionID)
}

func (e *Engine) dispatch(ctx context.Context, session *Session, input TurnInput) *TurnResponse {
	action, ok := ParseAction(input.Action)
	if !ok {
		e.logger.Warn("unknown action, restarting conversation",
			zap.String("session_id", session.SessionID),
			zap.String("action", input.Action))
		return e.handleStart(session)
	}

	if action == ActionFreeText && !AcceptsFreeText(session.State) {
		return e.renderState(session)
	}

	switch action {
	case ActionStart, ActionRestart:
		return e.handleStart(session)
	case ActionSelectTicketType:
		return e.handleSelectTicketType(session, input.Value)
	case ActionSelectSmartCategory:
		return e.handleSelectSmartCategory(session, input.Value)
	case ActionSelectCategory:
		return e.handleSelectCategory(session, input.Value)
	case ActionSelectType:
		return e.handleSelectType(session, input.Value)
	case ActionSelectItem:
		return e.handleSelectItem(session, input.Value)
	case ActionSelectIssue:
		return e.handleSelectIssue(session, input.Value)
	case ActionDescribeIssue:
		return e.handleDescribeIssue(session)
	case ActionFreeText:
		return e.handleFreeText(ctx, session, input.Message)
	case ActionGoBack:
		return e.handleGoBack(session)
	case ActionStepFeedback:
		return e.handleStepFeedback(session, input.Value)
	case ActionSolutionResolved:
		return e.handleSolutionResolved(session)
	case ActionSolutionNotResolved:
		return e.handleSolutionNotResolved(session)
	case ActionPreviewTicket:
		return e.handlePreviewTicket(session)
	case ActionConfirmTicket:
		return e.handleConfirmTicket(ctx, session, input)
	case ActionDeclineTicket:
		return e.handleDeclineTicket(session)
	case ActionSubmitRating:
		return e.handleSubmitRating(ctx, session, input.Value)
	case ActionSkipRating:
		return e.handleSkipRating(ctx, session)
	case ActionSkipComment:
		return e.handleSkipComment(ctx, session)
	case ActionEnd:
		return e.handleEnd(session)
	case ActionSelectRequestCategory:
		return e.handleSelectRequestCategory(session, input.Value)
	case ActionSelectRequestItem:
		return e.handleSelectRequestItem(session, input.Value)
	case ActionSelectHardwareBrand:
		return e.handleSelectHardwareBrand(session, input.Value)
	case ActionSelectSoftwareAction:
		return e.handleSelectSoftwareAction(session, input.Value)
	case ActionSelectSoftwareType:
		return e.handleSelectSoftwareType(session, input.Value)
	case ActionSelectAccessType:
		return e.handleSelectAccessType(session, input.Value)
	case ActionSubmitInternetOptions:
		return e.handleSubmitInternetOptions(session, input.SelectedOptions)
	case ActionSelectFolderPerm:
		return e.handleSelectFolderPermission(session, input.Value)
	case ActionSubmitRequest:
		return e.handleSubmitRequest(ctx, session, input)
	case ActionCheckApproval:
		return e.handleCheckApproval(ctx, session)
	}

	// ParseAction guarantees this is unreachable; fail safe anyway.
	e.logger.Warn("unhandled action, restarting conversation", zap.String("action", input.Action))
	return e.handleStart(session)
}

func (e *Engine) respond(session *Session, response string, buttons []Button) *TurnResponse {
	return &TurnResponse{
		Response: response,
		Buttons:  buttons,
		State:    string(session.State),
		TicketID: session.TicketID,
	}
}
