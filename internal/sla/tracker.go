package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Tracker applies the status/agreement state machine to a ticket as its
// lifecycle status changes. It mutates only the SLA-owned fields; persisting
// the ticket stays with the caller.
type Tracker struct {
	clock Clock
}

// NewTracker constructs a tracker on the given clock.
func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Tracker{clock: clock}
}

// Transition reports what a status change did to the SLA fields.
type Transition struct {
	FirstResponse      bool
	Resolved           bool
	Reopened           bool
	AgreementEvaluated bool
}

// ApplyStatusChange updates the ticket's SLA fields for an old -> new status
// change. Tickets without a resolved service level are left untouched.
//
// First leaving Open stamps FirstRespondedAt once. Entering Closed stamps
// ResolvedAt and evaluates the agreement against the stored deadlines.
// Returning to Open clears ResolvedAt so a reopened ticket carries no stale
// resolution time.
func (tr *Tracker) ApplyStatusChange(ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus) Transition {
	var result Transition
	if !ticket.HasServiceLevel() {
		return result
	}
	now := tr.clock.Now()

	if oldStatus == domain.TicketStatusOpen && newStatus != domain.TicketStatusOpen && ticket.FirstRespondedAt == nil {
		stamp := now
		ticket.FirstRespondedAt = &stamp
		result.FirstResponse = true
	}
	if newStatus == domain.TicketStatusClosed && oldStatus != domain.TicketStatusClosed {
		stamp := now
		ticket.ResolvedAt = &stamp
		ticket.AgreementStatus = evaluateAgreement(ticket, now)
		result.Resolved = true
		result.AgreementEvaluated = true
	}
	if newStatus == domain.TicketStatusOpen && oldStatus != domain.TicketStatusOpen {
		ticket.ResolvedAt = nil
		result.Reopened = true
	}
	return result
}

// Either breach fails the agreement.
func evaluateAgreement(ticket *domain.Ticket, now time.Time) domain.AgreementStatus {
	if breached(ticket.ResponseBy, now) || breached(ticket.ResolutionBy, now) {
		return domain.AgreementStatusFailed
	}
	return domain.AgreementStatusFulfilled
}

func breached(deadline *time.Time, now time.Time) bool {
	return deadline != nil && now.After(*deadline)
}
