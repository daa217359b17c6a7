// Package circuitbreaker stops calling a failing backend for a cool-down
// period. The chat assistant wraps the completion API with it, and remote
// state storages wrap Redis or PostgreSQL with it.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATE
// ══════════════════════════════════════════════════════════════════════════════

// State is the position of the breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cool-down has passed.
	StateOpen
	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

// String returns the lower-case state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen rejects a call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests rejects a call when every half-open probe slot is taken.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// IsRejection reports whether err came from the breaker itself rather
// than from the protected call.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

// IgnoreContextErrors counts everything except caller cancellation as a
// failure, so a user abandoning a request does not trip the breaker.
func IgnoreContextErrors(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Counts are the call statistics of the current generation. They reset on
// every state change except the totals.
type Counts struct {
	Requests             int
	TotalSuccesses       int
	TotalFailures        int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
}

// ══════════════════════════════════════════════════════════════════════════════
// OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithFailureThreshold opens the breaker after n consecutive failures.
func WithFailureThreshold(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.failureThreshold = n
		}
	}
}

// WithSuccessThreshold closes a half-open breaker after n successes.
func WithSuccessThreshold(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.successThreshold = n
		}
	}
}

// WithTimeout sets the cool-down spent open before probing.
func WithTimeout(d time.Duration) Option {
	return func(cb *CircuitBreaker) {
		if d > 0 {
			cb.coolDown = d
		}
	}
}

// WithMaxHalfOpenRequests caps concurrent probes while half-open.
func WithMaxHalfOpenRequests(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.maxProbes = n
		}
	}
}

// WithOnStateChange registers a callback. It runs after the breaker lock is
// released, so it may call State or Counts.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(cb *CircuitBreaker) {
		cb.onStateChange = fn
	}
}

// WithIsFailure decides which errors count against the backend. By default
// every non-nil error does.
func WithIsFailure(fn func(error) bool) Option {
	return func(cb *CircuitBreaker) {
		cb.isFailure = fn
	}
}

// WithClock replaces the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) {
		if now != nil {
			cb.now = now
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BREAKER
// ══════════════════════════════════════════════════════════════════════════════

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	successThreshold int
	coolDown         time.Duration
	maxProbes        int
	onStateChange    func(name string, from, to State)
	isFailure        func(error) bool
	now              func() time.Time

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	openedAt   time.Time
	probes     int
}

// transition is a state change to report once the lock is released.
type transition struct {
	from, to State
}

// New creates a closed breaker: 5 failures open it for 30s, 2 successful
// probes close it again.
func New(name string, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 2,
		coolDown:         30 * time.Second,
		maxProbes:        1,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Execute runs fn unless the breaker rejects the call.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	generation, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn(ctx)
	cb.record(generation, err)
	return err
}

// ExecuteWithFallback runs the function and hands any error, including a
// rejection by an open circuit, to fallback.
func (cb *CircuitBreaker) ExecuteWithFallback(ctx context.Context, fn func(context.Context) error, fallback func(error) error) error {
	if err := cb.Execute(ctx, fn); err != nil {
		return fallback(err)
	}
	return nil
}

// admit decides whether a call may proceed and returns the generation the
// call belongs to.
func (cb *CircuitBreaker) admit() (uint64, error) {
	cb.mu.Lock()
	var changed *transition
	defer func() {
		cb.mu.Unlock()
		cb.notify(changed)
	}()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.coolDown {
			return cb.generation, ErrCircuitOpen
		}
		changed = cb.setState(StateHalfOpen)
		cb.probes = 1
		return cb.generation, nil

	case StateHalfOpen:
		if cb.probes >= cb.maxProbes {
			return cb.generation, ErrTooManyRequests
		}
		cb.probes++
		return cb.generation, nil
	}
	return cb.generation, nil
}

// record applies the outcome of a call. Outcomes from an earlier generation
// are ignored so a slow call cannot flip a breaker that moved on.
func (cb *CircuitBreaker) record(generation uint64, err error) {
	cb.mu.Lock()
	var changed *transition
	defer func() {
		cb.mu.Unlock()
		cb.notify(changed)
	}()

	if generation != cb.generation {
		return
	}
	cb.counts.Requests++

	failed := err != nil
	if failed && cb.isFailure != nil {
		failed = cb.isFailure(err)
	}

	if !failed {
		cb.counts.TotalSuccesses++
		cb.counts.ConsecutiveSuccesses++
		cb.counts.ConsecutiveFailures = 0
		if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.successThreshold {
			changed = cb.setState(StateClosed)
		}
		return
	}

	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0

	switch {
	case cb.state == StateHalfOpen:
		changed = cb.setState(StateOpen)
	case cb.state == StateClosed && cb.counts.ConsecutiveFailures >= cb.failureThreshold:
		changed = cb.setState(StateOpen)
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(to State) *transition {
	if cb.state == to {
		return nil
	}
	from := cb.state
	cb.state = to
	cb.generation++
	cb.counts.ConsecutiveSuccesses = 0
	cb.counts.ConsecutiveFailures = 0
	cb.probes = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	return &transition{from: from, to: to}
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t != nil && cb.onStateChange != nil {
		cb.onStateChange(cb.name, t.from, t.to)
	}
}

// State returns the current state. An open breaker whose cool-down has
// passed still reports open until the next call probes it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Counts returns a copy of the call statistics.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Name returns the name used in logs and metric labels.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// IsClosed reports whether calls flow normally.
func (cb *CircuitBreaker) IsClosed() bool {
	return cb.State() == StateClosed
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// ChatBackendBreaker returns a circuit breaker for the completion API.
// A family waiting on an answer should get the apology quickly, so it opens
// after a few failures and probes again after the given cool-down.
func ChatBackendBreaker(threshold int, coolDown time.Duration, onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(
		"chat-backend",
		WithFailureThreshold(threshold),
		WithSuccessThreshold(1),
		WithTimeout(coolDown),
		WithOnStateChange(onStateChange),
		WithIsFailure(IgnoreContextErrors),
	)
}

// StorageBreaker returns a circuit breaker for remote state storage. Three
// failed calls in a row, each already retried, mean the backend is down.
func StorageBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(
		"state-storage",
		WithFailureThreshold(3),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Second),
		WithOnStateChange(onStateChange),
	)
}
