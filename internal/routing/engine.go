// Package routing turns a confirmed case into a classified, deadlined and
// assigned ticket: priority from keyword rules, SLA deadline from the policy
// table, technician from shift-aware round robin.
package routing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// RuleSource supplies the keyword-to-priority lookup table.
type RuleSource interface {
	List(ctx context.Context) ([]domain.PriorityRule, error)
}

// PolicySource supplies the per-priority SLA commitment.
type PolicySource interface {
	GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
}

// TechnicianPool supplies assignment candidates and records assignments.
type TechnicianPool interface {
	ListActive(ctx context.Context) ([]domain.Technician, error)
	MarkAssigned(ctx context.Context, id string, at time.Time) error
}

// Engine computes priority, SLA deadline and assignee for new tickets.
type Engine struct {
	rules           RuleSource
	policies        PolicySource
	technicians     TechnicianPool
	defaultSLAHours int
	logger          *zap.Logger

	// Serializes select-then-update across concurrent assignments so two
	// tickets cannot both land on the same longest-idle technician.
	assignMu sync.Mutex
}

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Rules           RuleSource
	Policies        PolicySource
	Technicians     TechnicianPool
	DefaultSLAHours int
	Logger          *zap.Logger
}

// NewEngine constructs the routing engine.
func NewEngine(deps Dependencies) *Engine {
	hours := deps.DefaultSLAHours
	if hours <= 0 {
		hours = 24
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rules:           deps.Rules,
		policies:        deps.Policies,
		technicians:     deps.Technicians,
		defaultSLAHours: hours,
		logger:          logger,
	}
}

// Route runs classification, SLA calculation and assignment in order.
// now is captured once by the caller so the creation timestamp and the
// deadline share the same basis. Assignment is best effort; a missing
// technician is reported as a nil assignee, not an error.
func (e *Engine) Route(ctx context.Context, subject, description, category string, now time.Time) (domain.TicketPriority, time.Time, *domain.Technician) {
	priority := e.Classify(ctx, subject, description, category)
	deadline := e.Deadline(ctx, priority, now)

	assignee, err := e.Assign(ctx, category, now)
	if err != nil {
		e.logger.Warn("assignment failed, leaving ticket unassigned", zap.Error(err))
		assignee = nil
	}
	return priority, deadline, assignee
}
