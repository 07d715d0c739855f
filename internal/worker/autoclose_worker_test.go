package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

var sweepNow = time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	// phantoms show up in listings but cannot be fetched, standing in for
	// rows deleted between the sweep's list and close steps.
	phantoms []domain.Ticket
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *memTicketRepo) ListRepliedBefore(_ context.Context, cutoff time.Time, limit int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Ticket(nil), r.phantoms...)
	for _, t := range r.tickets {
		if t.Status == domain.TicketStatusReplied && t.UpdatedAt.Before(cutoff) {
			out = append(out, *t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memTicketRepo) SetDeadlines(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Priority = ticket.Priority
	stored.ServiceLevelID = ticket.ServiceLevelID
	stored.ResponseBy = ticket.ResponseBy
	stored.ResolutionBy = ticket.ResolutionBy
	return nil
}

func (r *memTicketRepo) SetLifecycleState(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = ticket.Status
	stored.FirstRespondedAt = ticket.FirstRespondedAt
	stored.ResolvedAt = ticket.ResolvedAt
	stored.AgreementStatus = ticket.AgreementStatus
	return nil
}

type noLevelRepo struct{}

func (noLevelRepo) GetByID(_ context.Context, _ string) (*domain.ServiceLevel, error) {
	return nil, pgx.ErrNoRows
}

func (noLevelRepo) GetActiveFor(_ context.Context, _ *string, _ domain.TicketPriority) (*domain.ServiceLevel, error) {
	return nil, pgx.ErrNoRows
}

func (noLevelRepo) List(_ context.Context, _, _ int) ([]domain.ServiceLevel, error) {
	return nil, nil
}

type emptyHolidayRepo struct{}

func (emptyHolidayRepo) ResolveSet(_ context.Context, _ string) (domain.HolidaySet, error) {
	return domain.HolidaySet{}, nil
}

func repliedTicket(id string, updatedAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:              id,
		ExternalKey:     "TCK-" + id,
		RequesterID:     "user-1",
		Subject:         "stale thread",
		Status:          domain.TicketStatusReplied,
		Priority:        domain.TicketPriorityMedium,
		AgreementStatus: domain.AgreementStatusUnset,
		CreatedAt:       updatedAt.AddDate(0, 0, -1),
		UpdatedAt:       updatedAt,
	}
}

func newSweepFixture(t *testing.T, tickets ...*domain.Ticket) (*AutoCloseWorker, *memTicketRepo, *[]events.Event) {
	t.Helper()
	repo := &memTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, tk := range tickets {
		clone := *tk
		repo.tickets[tk.ID] = &clone
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	var published []events.Event
	var mu sync.Mutex
	dispatcher.Subscribe(events.EventTicketAutoClosed, func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, event)
		return nil
	})
	clock := sla.FixedClock{Instant: sweepNow}
	slaSvc := service.NewSLAService(service.SLADependencies{
		TicketRepo:    repo,
		ServiceLevels: noLevelRepo{},
		HolidayLists:  emptyHolidayRepo{},
		Clock:         clock,
		Dispatcher:    dispatcher,
		Metrics:       observability.NewMetrics(),
		Logger:        zap.NewNop(),
	})
	ticketSvc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repo,
		SLA:        slaSvc,
		Dispatcher: dispatcher,
	})
	cfg := config.WorkerConfig{AutoCloseAfterDays: 7, AutoCloseIntervalMinutes: 60, AutoCloseBatchSize: 50}
	w := NewAutoCloseWorker(repo, ticketSvc, dispatcher, clock, cfg, zap.NewNop())
	return w, repo, &published
}

func TestSweepClosesStaleRepliedTickets(t *testing.T) {
	stale := repliedTicket("t-1", sweepNow.AddDate(0, 0, -10))
	fresh := repliedTicket("t-2", sweepNow.AddDate(0, 0, -2))
	w, repo, published := newSweepFixture(t, stale, fresh)

	require.NoError(t, w.Sweep(context.Background()))

	closed, err := repo.GetByID(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)

	untouched, err := repo.GetByID(context.Background(), "t-2")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReplied, untouched.Status)

	require.Len(t, *published, 1)
	event := (*published)[0]
	assert.Equal(t, "t-1", event.TicketID)
	assert.Equal(t, domain.SubjectTypeSystem, event.Actor.Type)
	payload, ok := event.Payload.(events.TicketAutoClosedPayload)
	require.True(t, ok)
	assert.Equal(t, stale.UpdatedAt, payload.IdleSince)
}

func TestSweepIgnoresOtherStatuses(t *testing.T) {
	held := repliedTicket("t-3", sweepNow.AddDate(0, 0, -30))
	held.Status = domain.TicketStatusHold
	w, repo, published := newSweepFixture(t, held)

	require.NoError(t, w.Sweep(context.Background()))

	ticket, err := repo.GetByID(context.Background(), "t-3")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusHold, ticket.Status)
	assert.Empty(t, *published)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	// A ticket deleted between listing and closing must not stop the sweep.
	stale := repliedTicket("t-4", sweepNow.AddDate(0, 0, -10))
	w, repo, published := newSweepFixture(t, stale)
	repo.phantoms = append(repo.phantoms, *repliedTicket("t-ghost", sweepNow.AddDate(0, 0, -20)))

	require.NoError(t, w.Sweep(context.Background()))

	require.Len(t, *published, 1)
	assert.Equal(t, "t-4", (*published)[0].TicketID)

	closed, err := repo.GetByID(context.Background(), "t-4")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
}
