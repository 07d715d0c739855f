package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventDeadlinesSet          EventType = "sla_deadlines_set"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventFirstResponseRecorded EventType = "first_response_recorded"
	EventAgreementEvaluated    EventType = "agreement_evaluated"
	EventTicketAutoClosed      EventType = "ticket_auto_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type domain.SubjectType `json:"type"`
	ID   string             `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID *string               `json:"customer_id,omitempty"`
	Priority   domain.TicketPriority `json:"priority"`
	Subject    string                `json:"subject"`
}

// DeadlinesSetPayload payload.
type DeadlinesSetPayload struct {
	ServiceLevelID string                `json:"service_level_id"`
	Priority       domain.TicketPriority `json:"priority"`
	ResponseBy     time.Time             `json:"response_by"`
	ResolutionBy   time.Time             `json:"resolution_by"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// FirstResponsePayload payload.
type FirstResponsePayload struct {
	RespondedAt time.Time  `json:"responded_at"`
	ResponseBy  *time.Time `json:"response_by,omitempty"`
}

// AgreementEvaluatedPayload payload.
type AgreementEvaluatedPayload struct {
	Status       domain.AgreementStatus `json:"status"`
	ResolvedAt   time.Time              `json:"resolved_at"`
	ResponseBy   *time.Time             `json:"response_by,omitempty"`
	ResolutionBy *time.Time             `json:"resolution_by,omitempty"`
}

// TicketAutoClosedPayload payload.
type TicketAutoClosedPayload struct {
	IdleSince time.Time `json:"idle_since"`
}
