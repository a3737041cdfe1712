package clock

import (
	"sync"
	"time"
)

// Precision is the resolution persisted by the activity log (DATETIME(6)).
const Precision = time.Microsecond

// Clock provides an abstraction over time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock returns the current UTC time truncated to the storage precision,
// so a value read back from the database compares equal to the one written.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC().Truncate(Precision) }

// FixedClock always returns a fixed time. Useful for tests.
type FixedClock struct{ t time.Time }

func NewFixed(t time.Time) FixedClock { return FixedClock{t: t} }

func (f FixedClock) Now() time.Time { return f.t }

// SteppingClock advances by a fixed step on every call, starting at the given time.
type SteppingClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepping returns a clock whose first reading is start.
func NewStepping(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{next: start, step: step}
}

func (s *SteppingClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next
	s.next = s.next.Add(s.step)
	return now
}
