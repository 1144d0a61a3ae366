package valhalla

import (
	"errors"
	"sync"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

// ErrCircuitOpen is returned when the breaker short-circuits a call
var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateProbing
)

// CircuitBreaker protects the routing engine from request storms while it
// is down. While open, callers skip the HTTP path entirely and answer from
// the haversine fallback instead of waiting out timeouts. After the cooldown
// a single probe call is let through; it decides whether the circuit closes
// again or reopens for another cooldown.
type CircuitBreaker struct {
	mu        sync.Mutex
	clock     shared.Clock
	threshold int
	cooldown  time.Duration

	state    breakerState
	failures int
	openedAt time.Time
}

// NewCircuitBreaker creates a breaker that opens after threshold consecutive
// failures. A nil clock falls back to the real clock.
func NewCircuitBreaker(threshold int, cooldown time.Duration, clock shared.Clock) *CircuitBreaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CircuitBreaker{
		clock:     clock,
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Call runs fn under breaker protection. The lock is not held while fn runs
// so slow requests (retries, sleeps) do not serialize concurrent callers.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != stateOpen {
		return nil
	}
	if cb.clock.Now().Sub(cb.openedAt) < cb.cooldown {
		return ErrCircuitOpen
	}

	cb.state = stateProbing
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == stateProbing {
			cb.state = stateClosed
		}
		return
	}

	cb.failures++
	if cb.state == stateProbing || cb.failures >= cb.threshold {
		cb.state = stateOpen
		cb.openedAt = cb.clock.Now()
	}
}
