package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

// AutoCloseWorker closes Replied tickets that have sat untouched for the
// configured number of days. Closures run through the normal status-change
// path so the agreement tracker sees them like any other transition.
type AutoCloseWorker struct {
	tickets    repository.TicketRepository
	ticketSvc  *service.TicketService
	dispatcher events.Dispatcher
	clock      sla.Clock
	cfg        config.WorkerConfig
	logger     *zap.Logger
}

// NewAutoCloseWorker constructs the worker.
func NewAutoCloseWorker(tickets repository.TicketRepository, ticketSvc *service.TicketService, dispatcher events.Dispatcher, clock sla.Clock, cfg config.WorkerConfig, logger *zap.Logger) *AutoCloseWorker {
	if clock == nil {
		clock = sla.SystemClock()
	}
	return &AutoCloseWorker{
		tickets:    tickets,
		ticketSvc:  ticketSvc,
		dispatcher: dispatcher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run ticks until the context is cancelled.
func (w *AutoCloseWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.AutoCloseInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.Error("auto-close sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep closes one batch of stale Replied tickets.
func (w *AutoCloseWorker) Sweep(ctx context.Context) error {
	afterDays := w.cfg.AutoCloseAfterDays
	if afterDays <= 0 {
		afterDays = 7
	}
	cutoff := w.clock.Now().AddDate(0, 0, -afterDays)

	stale, err := w.tickets.ListRepliedBefore(ctx, cutoff, w.cfg.AutoCloseBatchSize)
	if err != nil {
		return err
	}
	for i := range stale {
		ticket := &stale[i]
		idleSince := ticket.UpdatedAt
		if _, err := w.ticketSvc.ChangeStatus(ctx, domain.SystemActor(), ticket.ID, domain.TicketStatusClosed); err != nil {
			w.logger.Warn("auto-close skipped ticket",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
			continue
		}
		w.publish(ctx, events.Event{
			Type:     events.EventTicketAutoClosed,
			TicketID: ticket.ID,
			Actor:    events.Actor{Type: domain.SubjectTypeSystem, ID: "system"},
			Payload:  events.TicketAutoClosedPayload{IdleSince: idleSince},
		})
	}
	if len(stale) > 0 {
		w.logger.Info("auto-close sweep done", zap.Int("closed", len(stale)))
	}
	return nil
}

func (w *AutoCloseWorker) publish(ctx context.Context, event events.Event) {
	if w.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = w.clock.Now()
	}
	_ = w.dispatcher.Publish(ctx, event)
}
