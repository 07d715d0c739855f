package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	RequesterID string                `json:"requester_id"`
	CustomerID  *string               `json:"customer_id,omitempty"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload for PATCH /tickets/:id/status.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload for PATCH /tickets/:id/priority.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResponse is the outward ticket shape, SLA fields included.
type TicketResponse struct {
	ID               string                 `json:"id"`
	ExternalKey      string                 `json:"external_key"`
	RequesterID      string                 `json:"requester_id"`
	CustomerID       *string                `json:"customer_id,omitempty"`
	Subject          string                 `json:"subject"`
	Description      string                 `json:"description,omitempty"`
	Status           domain.TicketStatus    `json:"status"`
	Priority         domain.TicketPriority  `json:"priority"`
	ServiceLevelID   *string                `json:"service_level_id,omitempty"`
	ResponseBy       *time.Time             `json:"response_by,omitempty"`
	ResolutionBy     *time.Time             `json:"resolution_by,omitempty"`
	FirstRespondedAt *time.Time             `json:"first_responded_at,omitempty"`
	ResolvedAt       *time.Time             `json:"resolved_at,omitempty"`
	AgreementStatus  domain.AgreementStatus `json:"agreement_status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
