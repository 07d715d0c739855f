package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// TicketService coordinates ticket workflows and feeds the deadline engine
// at the three points it cares about.
type TicketService struct {
	tickets    repository.TicketRepository
	sla        *SLAService
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	SLA        *SLAService
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	RequesterID string
	CustomerID  *string
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	RequesterID *string
	CustomerID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		sla:        deps.SLA,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket creates a ticket and stamps its deadlines.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.RequesterID) == "" || strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("requester_id and subject required", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey:     generateTicketKey(),
		RequesterID:     input.RequesterID,
		CustomerID:      input.CustomerID,
		Subject:         strings.TrimSpace(input.Subject),
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.TicketStatusOpen,
		Priority:        input.Priority,
		AgreementStatus: domain.AgreementStatusUnset,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	// Deadlines are computed before the insert so a calculation error
	// aborts creation with nothing persisted.
	if err := s.sla.PrepareTicket(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.sla.OnTicketCreated(ctx, actor, ticket)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			Priority:   ticket.Priority,
			Subject:    ticket.Subject,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		RequesterID: filter.RequesterID,
		CustomerID:  filter.CustomerID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ChangeStatus transitions a ticket and runs the agreement tracker.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": string(ticket.Status),
			"to":   string(newStatus),
		})
	}
	oldStatus := ticket.Status
	if err := s.sla.OnStatusChanged(ctx, actor, ticket, oldStatus, newStatus); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ChangePriority reassigns priority and recomputes deadlines.
func (s *TicketService) ChangePriority(ctx context.Context, actor domain.Actor, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !isKnownPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(newPriority)})
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}
	if err := s.sla.OnPriorityChanged(ctx, actor, ticket, newPriority); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:     {domain.TicketStatusReplied, domain.TicketStatusHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusReplied:  {domain.TicketStatusOpen, domain.TicketStatusHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusHold:     {domain.TicketStatusOpen, domain.TicketStatusReplied, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved: {domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:   {domain.TicketStatusOpen},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func isKnownPriority(p domain.TicketPriority) bool {
	switch p {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
		return true
	}
	return false
}
