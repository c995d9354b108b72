package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// SLABreachWorker periodically flags tickets past their SLA deadline.
type SLABreachWorker struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

// NewSLABreachWorker builds the sweeper.
func NewSLABreachWorker(tickets repository.TicketRepository, dispatcher events.Dispatcher, interval time.Duration, logger *zap.Logger) *SLABreachWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLABreachWorker{
		tickets:    tickets,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
	}
}

// Run sweeps on a ticker until the context is cancelled. It runs one sweep
// immediately so breaches do not wait a full interval after startup.
func (w *SLABreachWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SLABreachWorker) sweep(ctx context.Context) {
	now := time.Now().UTC()
	ids, err := w.tickets.MarkSLABreaches(ctx, now)
	if err != nil {
		w.logger.Warn("sla breach sweep failed", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, id := range ids {
		w.logger.Warn("sla deadline breached", zap.String("ticket_id", id))
	}
	if w.dispatcher != nil {
		_ = w.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventSLABreached,
			Timestamp: now,
			Payload:   events.SLABreachedPayload{TicketIDs: ids},
		})
	}
}
