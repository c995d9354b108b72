package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/search"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/taxonomy"
)

const testTaxonomy = `{
  "Incident": {
    "Network": {
      "Hardware": {
        "Network": {
          "Port": [
            {"issue": "Network port not working", "solution": "1. Check the cable is plugged in\n2. Try a different wall port\n3. Restart your computer"},
            {"issue": "Port connector is loose", "solution": "Secure the cable in the port"}
          ]
        }
      }
    }
  }
}`

type fakeTicketService struct {
	created     []service.CreateTicketInput
	transitions []domain.TicketStatus
	failCreate  bool
	assigneeOn  bool
}

func (f *fakeTicketService) CreateFromConversation(ctx context.Context, input service.CreateTicketInput) (*domain.Ticket, error) {
	if f.failCreate {
		return nil, errors.New("ledger unavailable")
	}
	f.created = append(f.created, input)
	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          "db-ticket-1",
		ExternalKey: "TKT-TEST0001",
		Type:        input.Type,
		Category:    input.Category,
		Subject:     input.Subject,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityP3,
		SLADeadline: now.Add(72 * time.Hour),
		SessionID:   input.SessionID,
		CreatedAt:   now,
	}
	if f.assigneeOn {
		name := "Avery"
		ticket.AssigneeName = &name
	}
	return ticket, nil
}

func (f *fakeTicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTicketService) ListForRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketService) UpdateStatus(ctx context.Context, id string, next domain.TicketStatus, comment string) (*domain.Ticket, error) {
	f.transitions = append(f.transitions, next)
	return &domain.Ticket{ID: id, Status: next}, nil
}

type fakeFeedbackService struct {
	recorded []service.ConversationFeedback
}

func (f *fakeFeedbackService) Record(ctx context.Context, feedback service.ConversationFeedback) error {
	f.recorded = append(f.recorded, feedback)
	return nil
}

func (f *fakeFeedbackService) ListBySession(ctx context.Context, sessionID string) ([]domain.SolutionFeedback, error) {
	return nil, nil
}

type staticResponder struct {
	answer string
	err    error
}

func (r *staticResponder) Respond(ctx context.Context, query string) (string, error) {
	return r.answer, r.err
}

func newTestCatalog(t *testing.T) *taxonomy.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(testTaxonomy), 0o644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}
	catalog, err := taxonomy.Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("load taxonomy: %v", err)
	}
	return catalog
}

type testHarness struct {
	engine   *Engine
	tickets  *fakeTicketService
	feedback *fakeFeedbackService
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	catalog := newTestCatalog(t)
	tickets := &fakeTicketService{assigneeOn: true}
	feedback := &fakeFeedbackService{}
	engine := NewEngine(Dependencies{
		Store:      NewStore(time.Hour, nil, zap.NewNop()),
		Catalog:    catalog,
		Searcher:   search.NewTaxonomySearcher(catalog, "Incident"),
		Responder:  &staticResponder{err: errors.New("offline")},
		Tickets:    tickets,
		Feedback:   feedback,
		Approvals:  service.NewManagerApprovalGate("Maheshwar"),
		Dispatcher: events.NewInMemoryDispatcher(),
		Config: config.ChatConfig{
			AssistantName:             "Eve",
			SearchConfidenceThreshold: 0.35,
			ApproverName:              "Maheshwar",
		},
		Logger: zap.NewNop(),
	})
	return &testHarness{engine: engine, tickets: tickets, feedback: feedback}
}

func (h *testHarness) turn(t *testing.T, action, value, message string) *TurnResponse {
	t.Helper()
	resp := h.engine.HandleTurn(context.Background(), TurnInput{
		Action:    action,
		Value:     value,
		Message:   message,
		SessionID: "sess-1",
		UserID:    "user-1",
		UserName:  "Jordan",
		UserEmail: "jordan@example.com",
	})
	if resp == nil {
		t.Fatal("nil turn response")
	}
	if !ValidState(State(resp.State)) {
		t.Fatalf("turn left unrecognized state %q", resp.State)
	}
	return resp
}

func (h *testHarness) navigateToIssueMenu(t *testing.T) {
	t.Helper()
	h.turn(t, "start", "", "")
	h.turn(t, "select_ticket_type", "Incident", "")
	h.turn(t, "select_smart_category", "Network", "")
	h.turn(t, "select_category", "Hardware", "")
	h.turn(t, "select_type", "Network", "")
	h.turn(t, "select_item", "Port", "")
}

func TestEndToEndIncidentTicket(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)

	resp := h.turn(t, "select_issue", "0", "")
	if resp.State != string(StateShowingSolution) {
		t.Fatalf("expected showing_solution, got %s", resp.State)
	}

	resp = h.turn(t, "solution_not_resolved", "", "")
	resp = h.turn(t, "preview_ticket", "", "")
	if resp.State != string(StateAwaitingConfirm) {
		t.Fatalf("expected confirmation state, got %s", resp.State)
	}
	if len(h.tickets.created) != 0 {
		t.Fatal("preview must not persist anything")
	}

	resp = h.turn(t, "confirm_ticket", "", "")
	if resp.State != string(StateTicketCreated) {
		t.Fatalf("expected ticket_created, got %s", resp.State)
	}
	if len(h.tickets.created) != 1 {
		t.Fatalf("expected exactly one creation call, got %d", len(h.tickets.created))
	}
	created := h.tickets.created[0]
	if created.Subject != "Network port not working" {
		t.Fatalf("unexpected subject %q", created.Subject)
	}
	if created.Type != domain.TicketTypeIncident {
		t.Fatalf("unexpected ticket type %s", created.Type)
	}
	if resp.TicketID == "" {
		t.Fatal("expected ticket id in response")
	}
}

func TestConfirmTwiceCreatesOneTicket(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "solution_not_resolved", "", "")
	h.turn(t, "preview_ticket", "", "")
	h.turn(t, "confirm_ticket", "", "")
	h.turn(t, "confirm_ticket", "", "")

	if len(h.tickets.created) != 1 {
		t.Fatalf("expected one ticket despite repeated confirm, got %d", len(h.tickets.created))
	}
}

func TestTicketCreationFailureStaysRetryable(t *testing.T) {
	h := newTestHarness(t)
	h.tickets.failCreate = true
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "solution_not_resolved", "", "")
	h.turn(t, "preview_ticket", "", "")

	resp := h.turn(t, "confirm_ticket", "", "")
	if resp.State != string(StateAwaitingConfirm) {
		t.Fatalf("expected to stay in confirmation on failure, got %s", resp.State)
	}

	h.tickets.failCreate = false
	resp = h.turn(t, "confirm_ticket", "", "")
	if resp.State != string(StateTicketCreated) {
		t.Fatalf("expected retry to succeed, got %s", resp.State)
	}
}

func TestBackNavigationReplayYieldsSameDraft(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "solution_not_resolved", "", "")
	h.turn(t, "preview_ticket", "", "")

	session, release := h.engine.store.Acquire(context.Background(), "user-1", "sess-1")
	first := session.Draft
	release()

	// Back out of the confirmation and two taxonomy levels, then replay.
	h.turn(t, "decline_ticket", "", "")
	h.turn(t, "start", "", "")
	h.turn(t, "select_ticket_type", "Incident", "")
	h.turn(t, "select_smart_category", "Network", "")
	h.turn(t, "select_category", "Hardware", "")
	h.turn(t, "go_back", "", "")
	h.turn(t, "go_back", "", "")
	h.turn(t, "select_smart_category", "Network", "")
	h.turn(t, "select_category", "Hardware", "")
	h.turn(t, "select_type", "Network", "")
	h.turn(t, "select_item", "Port", "")
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "solution_not_resolved", "", "")
	h.turn(t, "preview_ticket", "", "")

	session, release = h.engine.store.Acquire(context.Background(), "user-1", "sess-1")
	second := session.Draft
	release()

	if first != second {
		t.Fatalf("draft changed after back navigation replay:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(h.tickets.created) != 0 {
		t.Fatal("back navigation must not create tickets")
	}
}

func TestDeclinePathRecordsFeedbackWithoutTicket(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "step_feedback", "1:tried", "")
	h.turn(t, "step_feedback", "1:helpful", "")
	h.turn(t, "solution_not_resolved", "", "")

	resp := h.turn(t, "decline_ticket", "", "")
	if resp.State != string(StateEndRating) {
		t.Fatalf("expected rating prompt after decline, got %s", resp.State)
	}

	h.turn(t, "submit_rating", "4", "")
	resp = h.turn(t, "free_text", "", "quick and clear")
	if resp.State != string(StateCompleted) {
		t.Fatalf("expected completed, got %s", resp.State)
	}

	if len(h.tickets.created) != 0 {
		t.Fatal("declined path must not create a ticket")
	}
	if len(h.feedback.recorded) != 1 {
		t.Fatalf("expected one feedback record, got %d", len(h.feedback.recorded))
	}
	record := h.feedback.recorded[0]
	if record.TicketID != nil {
		t.Fatal("feedback should key to the session, not a ticket")
	}
	if record.Rating == nil || *record.Rating != 4 {
		t.Fatalf("expected rating 4, got %+v", record.Rating)
	}
	if record.Comment == nil || *record.Comment != "quick and clear" {
		t.Fatalf("expected comment, got %+v", record.Comment)
	}
}

func TestStepFeedbackIndependentPerIndex(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")

	h.turn(t, "step_feedback", "1:tried", "")
	h.turn(t, "step_feedback", "1:helpful", "")
	h.turn(t, "step_feedback", "2:tried", "")
	h.turn(t, "step_feedback", "2:not_helpful", "")

	h.turn(t, "solution_resolved", "", "")
	h.turn(t, "skip_rating", "", "")

	if len(h.feedback.recorded) != 1 {
		t.Fatalf("expected one feedback record, got %d", len(h.feedback.recorded))
	}
	steps := h.feedback.recorded[0].Steps
	byIndex := map[int]domain.FeedbackTag{}
	for _, step := range steps {
		byIndex[step.Index] = step.Tag
	}
	if byIndex[1] != domain.FeedbackHelpful {
		t.Fatalf("expected index 1 helpful, got %s", byIndex[1])
	}
	if byIndex[2] != domain.FeedbackNotHelpful {
		t.Fatalf("expected index 2 not_helpful, got %s", byIndex[2])
	}
}

func TestHelpfulRequiresTriedFirst(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")

	h.turn(t, "step_feedback", "1:helpful", "")
	h.turn(t, "solution_resolved", "", "")
	h.turn(t, "skip_rating", "", "")

	if len(h.feedback.recorded) != 0 {
		t.Fatalf("expected no feedback entries, helpful without tried must be rejected")
	}
}

func TestFreeTextOutsideAllowListIsIdempotent(t *testing.T) {
	h := newTestHarness(t)
	h.turn(t, "start", "", "")
	h.turn(t, "select_ticket_type", "Incident", "")

	before := h.turn(t, "go_back", "", "")
	after := h.turn(t, "free_text", "", "adversarial input")
	if after.State != before.State {
		t.Fatalf("free text outside allow-list changed state: %s -> %s", before.State, after.State)
	}
	again := h.turn(t, "free_text", "", "more of it")
	if again.State != after.State || again.Response != after.Response {
		t.Fatal("repeated invalid free text should reissue the same prompt")
	}
}

func TestSkipCommentOnlyValidAtCommentPrompt(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)
	h.turn(t, "select_issue", "0", "")
	h.turn(t, "step_feedback", "1:tried", "")

	resp := h.turn(t, "skip_comment", "", "")
	if resp.State != string(StateShowingSolution) {
		t.Fatalf("skip_comment mid-solution must reissue the prompt, got state %s", resp.State)
	}
	if len(h.feedback.recorded) != 0 {
		t.Fatalf("skip_comment mid-solution flushed %d feedback records early", len(h.feedback.recorded))
	}

	h.turn(t, "solution_resolved", "", "")
	h.turn(t, "submit_rating", "5", "")
	resp = h.turn(t, "skip_comment", "", "")
	if resp.State != string(StateCompleted) {
		t.Fatalf("skip at the comment prompt should complete, got %s", resp.State)
	}
	if len(h.feedback.recorded) != 1 {
		t.Fatalf("expected exactly one feedback record at completion, got %d", len(h.feedback.recorded))
	}
}

func TestUnknownActionRoutesToStart(t *testing.T) {
	h := newTestHarness(t)
	h.navigateToIssueMenu(t)

	resp := h.turn(t, "drop_tables", "", "")
	if resp.State != string(StateAwaitingTicketType) {
		t.Fatalf("unknown action should restart, got state %s", resp.State)
	}
}

func TestFreeTextSearchHitShowsSolution(t *testing.T) {
	h := newTestHarness(t)
	h.turn(t, "start", "", "")
	h.turn(t, "describe_issue", "", "")

	resp := h.turn(t, "free_text", "", "my network port is not working")
	if resp.State != string(StateShowingSolution) {
		t.Fatalf("expected solution from similarity search, got %s", resp.State)
	}
}

func TestFreeTextDegradesToTicketOffer(t *testing.T) {
	h := newTestHarness(t)
	h.turn(t, "start", "", "")
	h.turn(t, "describe_issue", "", "")

	// No taxonomy match and the fallback responder is failing.
	resp := h.turn(t, "free_text", "", "quantum flux capacitor misaligned")
	if resp.State != string(StateShowingSolution) {
		t.Fatalf("expected ticket offer state, got %s", resp.State)
	}
	foundOffer := false
	for _, button := range resp.Buttons {
		if button.Action == string(ActionPreviewTicket) {
			foundOffer = true
		}
	}
	if !foundOffer {
		t.Fatal("expected a create-ticket offer after search and fallback both miss")
	}
}

func TestServiceRequestHardwareFlow(t *testing.T) {
	h := newTestHarness(t)
	h.turn(t, "start", "", "")
	h.turn(t, "select_ticket_type", "Request", "")
	h.turn(t, "select_request_category", "Hardware", "")
	h.turn(t, "select_request_item", "Laptop", "")

	resp := h.turn(t, "select_hardware_brand", "Dell", "")
	if resp.State != string(StateRequestPreview) {
		t.Fatalf("expected request preview, got %s", resp.State)
	}

	resp = h.turn(t, "submit_request", "", "")
	if resp.State != string(StateManagerApproval) {
		t.Fatalf("expected manager approval state, got %s", resp.State)
	}
	if len(h.tickets.created) != 1 {
		t.Fatalf("expected request ticket created, got %d", len(h.tickets.created))
	}
	created := h.tickets.created[0]
	if created.Type != domain.TicketTypeRequest {
		t.Fatalf("expected Request ticket type, got %s", created.Type)
	}
	if created.Description != "Requesting Dell Laptop" {
		t.Fatalf("unexpected justification %q", created.Description)
	}

	resp = h.turn(t, "check_approval", "", "")
	if resp.State != string(StateRequestComplete) {
		t.Fatalf("expected request complete, got %s", resp.State)
	}
	if len(h.tickets.transitions) != 1 || h.tickets.transitions[0] != domain.TicketStatusInProgress {
		t.Fatalf("expected transition to in progress, got %v", h.tickets.transitions)
	}
}

func TestServiceRequestFolderAccessFlow(t *testing.T) {
	h := newTestHarness(t)
	h.turn(t, "start", "", "")
	h.turn(t, "select_ticket_type", "Request", "")
	h.turn(t, "select_request_category", "Access", "")
	h.turn(t, "select_access_type", "Shared Folder Access", "")
	h.turn(t, "free_text", "", `\\fileserver\finance`)
	resp := h.turn(t, "select_folder_permission", "Read-Write", "")
	if resp.State != string(StateRequestPreview) {
		t.Fatalf("expected request preview, got %s", resp.State)
	}

	h.turn(t, "submit_request", "", "")
	if len(h.tickets.created) != 1 {
		t.Fatal("expected request ticket created")
	}
	want := `Requesting Read-Write access to \\fileserver\finance`
	if h.tickets.created[0].Description != want {
		t.Fatalf("unexpected justification %q", h.tickets.created[0].Description)
	}
}

func TestStateClosureUnderArbitrarySequences(t *testing.T) {
	h := newTestHarness(t)
	sequence := []struct{ action, value, message string }{
		{"start", "", ""},
		{"select_issue", "7", ""},
		{"go_back", "", ""},
		{"select_ticket_type", "Incident", ""},
		{"confirm_ticket", "", ""},
		{"select_smart_category", "Nope", ""},
		{"select_smart_category", "Network", ""},
		{"free_text", "", "ignored here"},
		{"go_back", "", ""},
		{"go_back", "", ""},
		{"go_back", "", ""},
		{"submit_rating", "5", ""},
		{"mystery_action", "", ""},
		{"select_ticket_type", "Request", ""},
		{"select_access_type", "VPN Access", ""},
		{"go_back", "", ""},
	}
	for _, step := range sequence {
		h.turn(t, step.action, step.value, step.message)
	}
	if len(h.tickets.created) != 0 {
		t.Fatal("no sequence step should have created a ticket")
	}
}
