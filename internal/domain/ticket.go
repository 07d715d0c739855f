package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusReplied  TicketStatus = "REPLIED"
	TicketStatusHold     TicketStatus = "HOLD"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusClosed   TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// AgreementStatus records whether a closed ticket honored its deadlines.
// It is derived at close time and never hand-edited.
type AgreementStatus string

const (
	AgreementStatusUnset     AgreementStatus = "UNSET"
	AgreementStatusFulfilled AgreementStatus = "FULFILLED"
	AgreementStatusFailed    AgreementStatus = "FAILED"
)

// Ticket is the aggregate for support requests. The SLA fields
// (ServiceLevelID through AgreementStatus) are owned by the deadline
// engine; everything else is owned by the surrounding system.
type Ticket struct {
	ID          string
	ExternalKey string
	RequesterID string
	CustomerID  *string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority

	ServiceLevelID   *string
	ResponseBy       *time.Time
	ResolutionBy     *time.Time
	FirstRespondedAt *time.Time
	ResolvedAt       *time.Time
	AgreementStatus  AgreementStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasServiceLevel reports whether an agreement was resolved for the ticket.
func (t *Ticket) HasServiceLevel() bool {
	return t.ServiceLevelID != nil
}
