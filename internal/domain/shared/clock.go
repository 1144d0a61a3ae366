package shared

import (
	"sync"
	"time"
)

// Clock abstracts time so batch runs and retry loops can be tested without
// waiting on real wall time.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// NewRealClock returns a Clock backed by the system clock, in UTC
func NewRealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now().UTC() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// MockClock is a Clock whose time only moves when Sleep is called, so sleeps
// complete instantly in tests while elapsed time stays observable via Now.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a MockClock starting at the given time.
// A zero time starts the clock at the current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &MockClock{now: start}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep advances the mock clock without blocking
func (m *MockClock) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
