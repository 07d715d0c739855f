package domain

import "time"

// HolidayList is a named set of calendar dates excluded from business-time
// accounting.
type HolidayList struct {
	ID        string
	Name      string
	Dates     []time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const holidayKeyLayout = "2006-01-02"

// HolidaySet answers day-granularity membership questions. Time-of-day is
// ignored; dates compare by calendar day.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from raw dates, dropping duplicates.
func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d.Format(holidayKeyLayout)] = struct{}{}
	}
	return set
}

// Contains reports whether the calendar day of t is a holiday.
func (h HolidaySet) Contains(t time.Time) bool {
	_, ok := h[t.Format(holidayKeyLayout)]
	return ok
}

// Dates returns the member days in key form, for caching.
func (h HolidaySet) Dates() []string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	return keys
}

// HolidaySetFromKeys rebuilds a set from cached key form.
func HolidaySetFromKeys(keys []string) HolidaySet {
	set := make(HolidaySet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
