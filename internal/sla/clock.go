package sla

import "time"

// Clock supplies the current time. Injected so status transitions and breach
// comparisons are deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func (f FixedClock) Now() time.Time { return f.Instant }
