package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// SLAService is the deadline engine's surface: the surrounding system calls
// it when a ticket is created, when its priority changes and when its status
// changes. It owns the SLA fields on the ticket and nothing else.
type SLAService struct {
	tickets    repository.TicketRepository
	levels     repository.ServiceLevelRepository
	holidays   repository.HolidayListRepository
	tracker    *sla.Tracker
	clock      sla.Clock
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	TicketRepo    repository.TicketRepository
	ServiceLevels repository.ServiceLevelRepository
	HolidayLists  repository.HolidayListRepository
	Clock         sla.Clock
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	clock := deps.Clock
	if clock == nil {
		clock = sla.SystemClock()
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		levels:     deps.ServiceLevels,
		holidays:   deps.HolidayLists,
		tracker:    sla.NewTracker(clock),
		clock:      clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// PrepareTicket resolves the active agreement for a not-yet-persisted ticket
// and stamps both deadlines on the in-memory struct. Nothing is written; a
// calculation error aborts before the ticket ever reaches the store. A
// ticket with no matching agreement keeps its deadline fields unset; that is
// not an error.
func (s *SLAService) PrepareTicket(ctx context.Context, ticket *domain.Ticket) error {
	level, snap, err := s.resolveActive(ctx, ticket.CustomerID, ticket.Priority)
	if err != nil {
		return err
	}
	if snap == nil {
		s.logger.Debug("no active service level for ticket",
			zap.String("priority", string(ticket.Priority)))
		return nil
	}

	responseBy, resolutionBy, err := s.computeBoth(*snap, s.clock.Now())
	if err != nil {
		return err
	}
	ticket.ServiceLevelID = &level.ID
	ticket.ResponseBy = &responseBy
	ticket.ResolutionBy = &resolutionBy
	return nil
}

// OnTicketCreated announces the deadlines stamped by PrepareTicket once the
// ticket row exists.
func (s *SLAService) OnTicketCreated(ctx context.Context, actor domain.Actor, ticket *domain.Ticket) {
	if !ticket.HasServiceLevel() || ticket.ResponseBy == nil || ticket.ResolutionBy == nil {
		return
	}
	s.publish(ctx, events.Event{
		Type:     events.EventDeadlinesSet,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.DeadlinesSetPayload{
			ServiceLevelID: *ticket.ServiceLevelID,
			Priority:       ticket.Priority,
			ResponseBy:     *ticket.ResponseBy,
			ResolutionBy:   *ticket.ResolutionBy,
		},
	})
}

// OnPriorityChanged recomputes both deadlines under the new priority,
// overwriting the stored pair. First-response and resolution stamps reflect
// what already happened and are never touched here. When no agreement covers
// the new priority the existing deadlines stay in place.
func (s *SLAService) OnPriorityChanged(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, newPriority domain.TicketPriority) error {
	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.assignDeadlines(ctx, actor, ticket, ticket.CreatedAt); err != nil {
		ticket.Priority = oldPriority
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return nil
}

// OnStatusChanged runs the agreement tracker for an old -> new status change
// and persists the resulting lifecycle state in one statement.
func (s *SLAService) OnStatusChanged(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus) error {
	ticket.Status = newStatus
	transition := s.tracker.ApplyStatusChange(ticket, oldStatus, newStatus)

	if err := s.tickets.SetLifecycleState(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	if transition.FirstResponse && ticket.FirstRespondedAt != nil {
		s.publish(ctx, events.Event{
			Type:     events.EventFirstResponseRecorded,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.FirstResponsePayload{
				RespondedAt: *ticket.FirstRespondedAt,
				ResponseBy:  ticket.ResponseBy,
			},
		})
	}
	if transition.AgreementEvaluated && ticket.ResolvedAt != nil {
		s.metrics.RecordAgreement(string(ticket.AgreementStatus))
		s.publish(ctx, events.Event{
			Type:     events.EventAgreementEvaluated,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Payload: events.AgreementEvaluatedPayload{
				Status:       ticket.AgreementStatus,
				ResolvedAt:   *ticket.ResolvedAt,
				ResponseBy:   ticket.ResponseBy,
				ResolutionBy: ticket.ResolutionBy,
			},
		})
	}
	return nil
}

// PreviewDeadlines runs the calculator against a stored service level for a
// hypothetical start time without touching any ticket.
func (s *SLAService) PreviewDeadlines(ctx context.Context, serviceLevelID string, priority domain.TicketPriority, start time.Time) (responseBy, resolutionBy time.Time, err error) {
	level, err := s.levels.GetByID(ctx, serviceLevelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, time.Time{}, apperrors.NewNotFound("service level", map[string]any{"service_level_id": serviceLevelID})
		}
		return time.Time{}, time.Time{}, apperrors.MapError(err)
	}
	snap, err := s.snapshotFor(ctx, level, priority)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if snap == nil {
		return time.Time{}, time.Time{}, apperrors.NewNotFound("service level priority", map[string]any{
			"service_level_id": serviceLevelID,
			"priority":         string(priority),
		})
	}
	return s.computeBoth(*snap, start)
}

// assignDeadlines computes both deadlines for the ticket's current priority
// and persists them as a pair. Both are computed before anything is written,
// so a calculation error leaves the ticket untouched.
func (s *SLAService) assignDeadlines(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, start time.Time) error {
	level, snap, err := s.resolveActive(ctx, ticket.CustomerID, ticket.Priority)
	if err != nil {
		return err
	}
	if snap == nil {
		s.logger.Debug("no active service level for ticket",
			zap.String("ticket_id", ticket.ID),
			zap.String("priority", string(ticket.Priority)))
		if err := s.tickets.SetDeadlines(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		return nil
	}

	responseBy, resolutionBy, err := s.computeBoth(*snap, start)
	if err != nil {
		return err
	}

	prevLevel, prevResponse, prevResolution := ticket.ServiceLevelID, ticket.ResponseBy, ticket.ResolutionBy
	ticket.ServiceLevelID = &level.ID
	ticket.ResponseBy = &responseBy
	ticket.ResolutionBy = &resolutionBy
	if err := s.tickets.SetDeadlines(ctx, ticket); err != nil {
		ticket.ServiceLevelID, ticket.ResponseBy, ticket.ResolutionBy = prevLevel, prevResponse, prevResolution
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventDeadlinesSet,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.DeadlinesSetPayload{
			ServiceLevelID: level.ID,
			Priority:       ticket.Priority,
			ResponseBy:     responseBy,
			ResolutionBy:   resolutionBy,
		},
	})
	return nil
}

func (s *SLAService) computeBoth(snap sla.Snapshot, start time.Time) (time.Time, time.Time, error) {
	responseBy, err := sla.ComputeDeadline(domain.DeadlineKindResponse, snap, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	s.metrics.RecordComputation(string(domain.DeadlineKindResponse))
	resolutionBy, err := sla.ComputeDeadline(domain.DeadlineKindResolution, snap, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	s.metrics.RecordComputation(string(domain.DeadlineKindResolution))
	return responseBy, resolutionBy, nil
}

// resolveActive finds the agreement covering the customer and priority and
// snapshots its windows and holidays. A nil snapshot means no agreement
// applies.
func (s *SLAService) resolveActive(ctx context.Context, customerID *string, priority domain.TicketPriority) (*domain.ServiceLevel, *sla.Snapshot, error) {
	level, err := s.levels.GetActiveFor(ctx, customerID, priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, apperrors.MapError(err)
	}
	snap, err := s.snapshotFor(ctx, level, priority)
	if err != nil {
		return nil, nil, err
	}
	return level, snap, nil
}

func (s *SLAService) snapshotFor(ctx context.Context, level *domain.ServiceLevel, priority domain.TicketPriority) (*sla.Snapshot, error) {
	row, ok := level.PriorityFor(priority)
	if !ok {
		return nil, nil
	}
	holidays := domain.HolidaySet{}
	if level.HolidayListID != nil {
		var err error
		holidays, err = s.holidays.ResolveSet(ctx, *level.HolidayListID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return &sla.Snapshot{
		Priority: row,
		Windows:  sla.WindowsFor(level),
		Holidays: holidays,
	}, nil
}

func (s *SLAService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{Type: actor.Type, ID: actor.ID}
}
