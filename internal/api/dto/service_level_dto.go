package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// SupportWindowResponse is one weekday's support window.
type SupportWindowResponse struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// ServiceLevelPriorityResponse is one priority's allotments.
type ServiceLevelPriorityResponse struct {
	Priority            domain.TicketPriority `json:"priority"`
	ResponseAllotment   int                   `json:"response_allotment"`
	ResponseUnit        domain.TimeUnit       `json:"response_unit"`
	ResolutionAllotment int                   `json:"resolution_allotment"`
	ResolutionUnit      domain.TimeUnit       `json:"resolution_unit"`
}

// ServiceLevelResponse is the outward service-level shape.
type ServiceLevelResponse struct {
	ID            string                         `json:"id"`
	Name          string                         `json:"name"`
	CustomerID    *string                        `json:"customer_id,omitempty"`
	HolidayListID *string                        `json:"holiday_list_id,omitempty"`
	Active        bool                           `json:"active"`
	Priorities    []ServiceLevelPriorityResponse `json:"priorities"`
	Windows       []SupportWindowResponse        `json:"windows"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

// PreviewDeadlinesRequest payload for POST /service-levels/:id/preview.
type PreviewDeadlinesRequest struct {
	Priority  domain.TicketPriority `json:"priority"`
	StartTime time.Time             `json:"start_time"`
}

// PreviewDeadlinesResponse carries the dry-run deadlines.
type PreviewDeadlinesResponse struct {
	ResponseBy   time.Time `json:"response_by"`
	ResolutionBy time.Time `json:"resolution_by"`
}
