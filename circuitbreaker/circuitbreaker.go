// Package circuitbreaker protects catalog reads from a struggling database.
// After maxFailures consecutive infrastructure failures the breaker opens and
// calls fail fast with ErrCircuitOpen until the reset timeout elapses; the
// next call then probes half-open.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	// ignore classifies errors that must not trip the breaker, such as
	// sql.ErrNoRows: a missing row is an answer, not an outage.
	ignore func(error) bool

	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time
	state           State
}

func New(maxFailures int, resetTimeout time.Duration, ignore func(error) bool) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		ignore:       ignore,
		state:        StateClosed,
	}
}

func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.failureCount = 0
		} else {
			return ErrCircuitOpen
		}
	}

	err := fn()

	if err != nil && (cb.ignore == nil || !cb.ignore(err)) {
		cb.failureCount++
		cb.lastFailureTime = time.Now()

		if cb.failureCount >= cb.maxFailures || cb.state == StateHalfOpen {
			cb.state = StateOpen
		}
		return err
	}

	if cb.state == StateHalfOpen {
		cb.state = StateClosed
	}
	cb.failureCount = 0
	return err
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
