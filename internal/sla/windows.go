package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// WindowTable maps weekdays to their support window. A weekday absent from
// the table is a non-working day.
type WindowTable map[time.Weekday]domain.SupportWindow

// WindowsFor derives the table from a service-level definition. A weekday
// configured more than once keeps the last entry.
func WindowsFor(level *domain.ServiceLevel) WindowTable {
	table := make(WindowTable, len(level.Windows))
	for _, w := range level.Windows {
		table[w.Weekday] = w
	}
	return table
}
