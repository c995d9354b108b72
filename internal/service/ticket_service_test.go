package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/routing"
	"github.com/spec-kit/support-desk/pkg/util"
)

type memTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (m *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", m.nextID)
	stored := *ticket
	m.tickets[ticket.ID] = &stored
	return nil
}

func (m *memTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return errors.New("missing row")
	}
	stored := *ticket
	m.tickets[ticket.ID] = &stored
	return nil
}

func (m *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	stored, ok := m.tickets[id]
	if !ok {
		return nil, errors.New("missing row")
	}
	copied := *stored
	return &copied, nil
}

func (m *memTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, stored := range m.tickets {
		out = append(out, *stored)
	}
	return out, nil
}

func (m *memTicketRepo) MarkSLABreaches(ctx context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

type emptyRules struct{}

func (emptyRules) List(ctx context.Context) ([]domain.PriorityRule, error) { return nil, nil }

type fixedPolicies struct{ hours map[domain.TicketPriority]int }

func (f fixedPolicies) GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	hours, ok := f.hours[priority]
	if !ok {
		return nil, nil
	}
	return &domain.SLAPolicy{Priority: priority, Hours: hours}, nil
}

type emptyPool struct{}

func (emptyPool) ListActive(ctx context.Context) ([]domain.Technician, error) { return nil, nil }
func (emptyPool) MarkAssigned(ctx context.Context, id string, at time.Time) error {
	return nil
}

type recordingTechRepo struct {
	resolved []string
}

func (r *recordingTechRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return nil, errors.New("not found")
}

func (r *recordingTechRepo) ListActive(ctx context.Context) ([]domain.Technician, error) {
	return nil, nil
}

func (r *recordingTechRepo) MarkAssigned(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (r *recordingTechRepo) MarkResolved(ctx context.Context, id string) error {
	r.resolved = append(r.resolved, id)
	return nil
}

type staticUserRepo struct {
	user *domain.User
}

func (r *staticUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, errors.New("not found")
	}
	copied := *r.user
	return &copied, nil
}

func (r *staticUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, errors.New("not found")
}

func (r *staticUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (r *staticUserRepo) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	return user, nil
}

func newServiceUnderTest(repo *memTicketRepo, dispatcher events.Dispatcher) TicketService {
	router := routing.NewEngine(routing.Dependencies{
		Rules:       emptyRules{},
		Policies:    fixedPolicies{hours: map[domain.TicketPriority]int{domain.TicketPriorityP3: 72}},
		Technicians: emptyPool{},
	})
	return NewTicketService(TicketServiceDependencies{
		Tickets:    repo,
		Router:     router,
		Dispatcher: dispatcher,
	})
}

func TestCreateSetsPriorityAndDeadlineAtomically(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newServiceUnderTest(repo, events.NewInMemoryDispatcher())

	ticket, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{
		RequesterID: "user-1",
		Subject:     "Monitor flickers",
		Description: "screen flickers during meetings",
		Category:    "Hardware",
		SessionID:   "sess-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.Priority == "" {
		t.Fatal("priority must never be empty at creation")
	}
	if ticket.SLADeadline.IsZero() {
		t.Fatal("deadline must never be zero at creation")
	}
	if got := ticket.SLADeadline.Sub(ticket.CreatedAt); got != 72*time.Hour {
		t.Fatalf("expected 72h between creation and deadline, got %s", got)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected open status, got %s", ticket.Status)
	}
	if !strings.HasPrefix(ticket.ExternalKey, "TKT-") || len(ticket.ExternalKey) != 12 {
		t.Fatalf("unexpected external key %q", ticket.ExternalKey)
	}
}

func TestCreateSucceedsUnassignedWithEmptyPool(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newServiceUnderTest(repo, nil)

	ticket, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{
		RequesterID: "user-1",
		Subject:     "Printer jam",
		SessionID:   "sess-1",
	})
	if err != nil {
		t.Fatalf("creation must succeed without technicians: %v", err)
	}
	if ticket.AssigneeID != nil {
		t.Fatal("expected unassigned ticket")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newServiceUnderTest(newMemTicketRepo(), nil)

	if _, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{RequesterID: "user-1"}); err == nil {
		t.Fatal("expected validation error for empty subject")
	}
	if _, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{Subject: "x"}); err == nil {
		t.Fatal("expected validation error for empty requester")
	}
}

func TestCreatePublishesEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	svc := newServiceUnderTest(newMemTicketRepo(), dispatcher)
	if _, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{
		RequesterID: "user-1",
		Subject:     "Printer jam",
		SessionID:   "sess-1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != events.EventTicketCreated {
		t.Fatalf("expected ticket_created event, got %v", seen)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newServiceUnderTest(repo, nil)

	ticket, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{
		RequesterID: "user-1",
		Subject:     "Printer jam",
		SessionID:   "sess-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed, ""); err == nil {
		t.Fatal("open -> closed must be rejected")
	} else {
		var domainErr *util.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
			t.Fatalf("expected conflict error, got %v", err)
		}
	}

	updated, err := svc.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, "picked up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected in progress, got %s", updated.Status)
	}
}

func TestResolveCreditsAssignee(t *testing.T) {
	repo := newMemTicketRepo()
	techs := &recordingTechRepo{}
	assignee := "TECH-001"
	repo.tickets["ticket-7"] = &domain.Ticket{
		ID:         "ticket-7",
		Status:     domain.TicketStatusInProgress,
		AssigneeID: &assignee,
	}
	svc := NewTicketService(TicketServiceDependencies{
		Tickets:     repo,
		Technicians: techs,
	})

	if _, err := svc.UpdateStatus(context.Background(), "ticket-7", domain.TicketStatusResolved, "fixed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(techs.resolved) != 1 || techs.resolved[0] != assignee {
		t.Fatalf("expected resolved credit for %s, got %v", assignee, techs.resolved)
	}

	// Unassigned tickets resolve without touching technician counters.
	repo.tickets["ticket-8"] = &domain.Ticket{ID: "ticket-8", Status: domain.TicketStatusOpen}
	if _, err := svc.UpdateStatus(context.Background(), "ticket-8", domain.TicketStatusResolved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(techs.resolved) != 1 {
		t.Fatalf("unassigned resolve must not credit anyone, got %v", techs.resolved)
	}
}

func TestCreateFillsRequesterFromStoredUser(t *testing.T) {
	repo := newMemTicketRepo()
	users := &staticUserRepo{user: &domain.User{ID: "user-9", Name: "Priya Nair", Email: "priya@corp.example"}}
	router := routing.NewEngine(routing.Dependencies{
		Rules:       emptyRules{},
		Policies:    fixedPolicies{},
		Technicians: emptyPool{},
	})
	svc := NewTicketService(TicketServiceDependencies{
		Tickets: repo,
		Users:   users,
		Router:  router,
	})

	ticket, err := svc.CreateFromConversation(context.Background(), CreateTicketInput{
		RequesterID: "user-9",
		Subject:     "Badge reader offline",
		SessionID:   "sess-9",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.RequesterEmail != "priya@corp.example" || ticket.RequesterName != "Priya Nair" {
		t.Fatalf("expected requester enriched from the user row, got %q %q", ticket.RequesterName, ticket.RequesterEmail)
	}
}
