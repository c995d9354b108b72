package routing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Assign picks a technician by shift-aware strict round robin: candidates
// are active and on shift at now; among them, the one idle longest wins,
// with never-assigned technicians first and id as the stable tie-break.
// No candidate is a valid outcome, returned as (nil, nil).
func (e *Engine) Assign(ctx context.Context, category string, now time.Time) (*domain.Technician, error) {
	e.assignMu.Lock()
	defer e.assignMu.Unlock()

	techs, err := e.technicians.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var chosen *domain.Technician
	for i := range techs {
		tech := &techs[i]
		if !tech.OnShift(now) {
			continue
		}
		if chosen == nil || lessRecentlyAssigned(tech, chosen) {
			chosen = tech
		}
	}
	if chosen == nil {
		e.logger.Info("no technician on shift", zap.String("category", category), zap.Time("at", now))
		return nil, nil
	}

	if err := e.technicians.MarkAssigned(ctx, chosen.ID, now); err != nil {
		return nil, err
	}
	chosen.AssignedCount++
	assignedAt := now
	chosen.LastAssignedAt = &assignedAt

	return chosen, nil
}

// lessRecentlyAssigned orders candidates for round robin: nil timestamps
// (never assigned) come first, then older timestamps, then smaller ids.
func lessRecentlyAssigned(a, b *domain.Technician) bool {
	switch {
	case a.LastAssignedAt == nil && b.LastAssignedAt == nil:
		return a.ID < b.ID
	case a.LastAssignedAt == nil:
		return true
	case b.LastAssignedAt == nil:
		return false
	case !a.LastAssignedAt.Equal(*b.LastAssignedAt):
		return a.LastAssignedAt.Before(*b.LastAssignedAt)
	default:
		return a.ID < b.ID
	}
}
