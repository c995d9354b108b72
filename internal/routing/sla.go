package routing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Deadline computes the SLA deadline as now plus the configured window for
// the priority. Unknown priorities and policy-table failures fall back to
// the default window so the deadline is never left unset.
func (e *Engine) Deadline(ctx context.Context, priority domain.TicketPriority, now time.Time) time.Time {
	hours := e.defaultSLAHours

	policy, err := e.policies.GetByPriority(ctx, priority)
	switch {
	case err != nil:
		e.logger.Warn("sla policy lookup failed, using default window",
			zap.String("priority", string(priority)), zap.Error(err))
	case policy != nil && policy.Hours > 0:
		hours = policy.Hours
	}

	return now.Add(time.Duration(hours) * time.Hour)
}
