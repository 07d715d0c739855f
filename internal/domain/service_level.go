package domain

import "time"

// TimeUnit expresses how an allotment is measured.
type TimeUnit string

const (
	TimeUnitHour TimeUnit = "HOUR"
	TimeUnitDay  TimeUnit = "DAY"
	TimeUnitWeek TimeUnit = "WEEK"
)

// DeadlineKind selects which allotment a deadline calculation uses.
type DeadlineKind string

const (
	DeadlineKindResponse   DeadlineKind = "response"
	DeadlineKindResolution DeadlineKind = "resolution"
)

// SupportWindow is the slice of a weekday during which support time counts
// toward an allotment. Start and End are offsets from midnight.
type SupportWindow struct {
	Weekday time.Weekday
	Start   time.Duration
	End     time.Duration
}

// ServiceLevelPriority holds the response/resolution allotments for one
// priority within a service level.
type ServiceLevelPriority struct {
	Priority            TicketPriority
	ResponseAllotment   int
	ResponseUnit        TimeUnit
	ResolutionAllotment int
	ResolutionUnit      TimeUnit
}

// ServiceLevel is a named service-level definition: per-priority allotments,
// weekly support windows and an optional holiday list. A nil CustomerID
// marks the default agreement; customer-specific agreements win over it.
type ServiceLevel struct {
	ID            string
	Name          string
	CustomerID    *string
	HolidayListID *string
	Active        bool
	Priorities    []ServiceLevelPriority
	Windows       []SupportWindow
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriorityFor returns the allotment row for the given priority.
func (s *ServiceLevel) PriorityFor(p TicketPriority) (ServiceLevelPriority, bool) {
	for _, row := range s.Priorities {
		if row.Priority == p {
			return row, true
		}
	}
	return ServiceLevelPriority{}, false
}
