package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// Snapshot bundles the immutable inputs for one deadline calculation: the
// allotments of the resolved priority, the weekly window table and the
// holiday set. It is built once per calculation and never mutated.
type Snapshot struct {
	Priority domain.ServiceLevelPriority
	Windows  WindowTable
	Holidays domain.HolidaySet
}

// ComputeDeadline walks business time forward from start until the allotment
// selected by kind is spent and returns the resulting absolute deadline.
//
// Hour allotments consume only hours inside support windows, so a deadline
// that would fall after close of business rolls into the next working day.
// Day and week allotments (a week is seven days) count qualifying business
// days; the deadline lands at the final window's end time one calendar day
// after the last counted day. A zero day/week allotment is already satisfied
// at start. Holidays and weekdays without a window never consume budget.
func ComputeDeadline(kind domain.DeadlineKind, snap Snapshot, start time.Time) (time.Time, error) {
	var allotment int
	var unit domain.TimeUnit
	switch kind {
	case domain.DeadlineKindResponse:
		allotment = snap.Priority.ResponseAllotment
		unit = snap.Priority.ResponseUnit
	case domain.DeadlineKindResolution:
		allotment = snap.Priority.ResolutionAllotment
		unit = snap.Priority.ResolutionUnit
	default:
		return time.Time{}, apperrors.NewInvalidParameter("unknown deadline kind", map[string]any{"kind": string(kind)})
	}

	remainingDays := 0
	var remainingHours time.Duration
	switch unit {
	case domain.TimeUnitHour:
		remainingHours = time.Duration(allotment) * time.Hour
	case domain.TimeUnitWeek:
		remainingDays = allotment * 7
	default:
		// allotments are measured in days unless stated otherwise
		remainingDays = allotment
	}

	if unit != domain.TimeUnitHour && remainingDays <= 0 {
		return start, nil
	}

	if len(snap.Windows) == 0 {
		return time.Time{}, apperrors.NewNoWorkingWindow(nil)
	}

	// In any stretch of 7*(H+1) days a configured weekday recurs H+1
	// times and at most H of those can be holidays, so a qualifying day
	// must appear inside it. A longer barren stretch means the window
	// table is unusable (for example every window closes before it opens).
	maxBarren := 7 * (len(snap.Holidays) + 1)

	cursor := start
	barren := 0
	for {
		window, open := snap.Windows[cursor.Weekday()]
		consumed := false
		if open && !snap.Holidays.Contains(cursor) {
			effStart := window.Start
			if sameDay(cursor, start) {
				effStart = sinceMidnight(start)
			}
			available := window.End - effStart

			switch {
			case available < 0:
				// start is already past close; nothing left today
			case unit == domain.TimeUnitHour:
				if available >= remainingHours {
					return midnight(cursor).Add(effStart + remainingHours), nil
				}
				remainingHours -= available
				consumed = available > 0
			default:
				remainingDays--
				if remainingDays <= 0 {
					return midnight(cursor.AddDate(0, 0, 1)).Add(window.End), nil
				}
				consumed = true
			}
		}

		if consumed {
			barren = 0
		} else {
			barren++
			if barren > maxBarren {
				return time.Time{}, apperrors.NewNoWorkingWindow(map[string]any{
					"days_scanned": barren,
				})
			}
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sinceMidnight(t time.Time) time.Duration {
	return t.Sub(midnight(t))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
