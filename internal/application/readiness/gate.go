// Package readiness implements the gate that holds requests back until the
// application host has finished mounting.
//
// The gate is a small state machine:
//
//	uninitialized ──► initializing ──► ready
//	                     ▲    │
//	                     │    ▼
//	                     └── error
//
// initializing becomes ready once the host's Mount succeeds and the minimum
// initialization delay has elapsed. A failed or panicking Mount moves to
// error; from there the gate retries until MaxAttempts mounts have been made.
package readiness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATES
// ══════════════════════════════════════════════════════════════════════════════

// State is a gate state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateError         State = "error"
)

// allowed lists the legal transitions.
var allowed = map[State][]State{
	StateUninitialized: {StateInitializing, StateError},
	StateInitializing:  {StateReady, StateError},
	StateError:         {StateInitializing},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Host is the collaborator the gate waits for. Mount returns once the host
// is mounted and usable.
type Host interface {
	Mount(ctx context.Context) error
}

// HostFunc adapts a function to Host.
type HostFunc func(ctx context.Context) error

// Mount implements Host.
func (f HostFunc) Mount(ctx context.Context) error { return f(ctx) }

// Config contains gate timing.
type Config struct {
	// InitDelay is the minimum time spent in initializing.
	InitDelay time.Duration

	// MaxAttempts caps the number of Mount calls.
	MaxAttempts int

	// RetryDelay is the pause in error before the next attempt.
	RetryDelay time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		InitDelay:   100 * time.Millisecond,
		MaxAttempts: 3,
		RetryDelay:  time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GATE
// ══════════════════════════════════════════════════════════════════════════════

// Gate tracks readiness. Safe for concurrent use.
type Gate struct {
	host   Host
	config Config
	events shared.EventPublisher
	log    *logger.Logger

	mu      sync.RWMutex
	state   State
	attempt int
	lastErr error
	ready   chan struct{}
}

// New creates a gate in the uninitialized state. events and log may be nil.
func New(host Host, events shared.EventPublisher, log *logger.Logger, config Config) *Gate {
	defaults := DefaultConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitDelay < 0 {
		config.InitDelay = 0
	}
	if config.RetryDelay < 0 {
		config.RetryDelay = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{
		host:   host,
		config: config,
		events: events,
		log:    log.With(logger.Component("readiness_gate")),
		state:  StateUninitialized,
		ready:  make(chan struct{}),
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// IsReady reports whether the gate is ready.
func (g *Gate) IsReady() bool {
	return g.State() == StateReady
}

// Attempt returns the number of Mount calls made so far.
func (g *Gate) Attempt() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.attempt
}

// Err returns the error of the last failed attempt.
func (g *Gate) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

// Ready is closed when the gate becomes ready.
func (g *Gate) Ready() <-chan struct{} {
	return g.ready
}

// Guard runs fn only when the gate is ready and reports whether it ran.
// Calls made before the gate is ready are dropped silently.
func (g *Gate) Guard(fn func()) bool {
	if !g.IsReady() {
		g.log.Debug("dropping call before ready", logger.GateState(string(g.State())))
		return false
	}
	fn()
	return true
}

// Check returns shared.ErrGateNotReady unless the gate is ready.
func (g *Gate) Check() error {
	if g.IsReady() {
		return nil
	}
	return shared.ErrGateNotReady
}

// Run drives the gate until it is ready, attempts are exhausted or ctx is
// done. Run must be called once.
func (g *Gate) Run(ctx context.Context) error {
	if err := g.transition(StateInitializing, ""); err != nil {
		return err
	}

	for {
		started := time.Now()
		g.mu.Lock()
		g.attempt++
		g.mu.Unlock()

		err := g.mount(ctx)
		if err == nil {
			if remaining := g.config.InitDelay - time.Since(started); remaining > 0 {
				if err := sleep(ctx, remaining); err != nil {
					return err
				}
			}
			if err := g.transition(StateReady, ""); err != nil {
				return err
			}
			close(g.ready)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		g.mu.Lock()
		g.lastErr = err
		attempt := g.attempt
		g.mu.Unlock()

		if tErr := g.transition(StateError, err.Error()); tErr != nil {
			return tErr
		}
		if attempt >= g.config.MaxAttempts {
			g.log.Error("initialization failed, giving up",
				logger.Int("attempts", attempt),
				logger.Err(err),
			)
			return shared.WrapError("readiness", "Run", shared.ErrInvalidState, "initialization retries exhausted", err)
		}

		if err := sleep(ctx, g.config.RetryDelay); err != nil {
			return err
		}
		if err := g.transition(StateInitializing, "retry"); err != nil {
			return err
		}
	}
}

// mount calls the host, turning a panic into an error.
func (g *Gate) mount(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host mount panicked: %v", r)
		}
	}()
	return g.host.Mount(ctx)
}

func (g *Gate) transition(to State, reason string) error {
	g.mu.Lock()
	from := g.state
	if !canTransition(from, to) {
		g.mu.Unlock()
		return shared.WrapError("readiness", "Transition", shared.ErrStateTransition,
			fmt.Sprintf("%s -> %s", from, to), nil)
	}
	g.state = to
	attempt := g.attempt
	g.mu.Unlock()

	fields := []logger.Field{
		logger.String("from", string(from)),
		logger.GateState(string(to)),
		logger.Int("attempt", attempt),
	}
	if reason != "" {
		fields = append(fields, logger.String("reason", reason))
	}
	if to == StateError {
		g.log.Warn("gate transition", fields...)
	} else {
		g.log.Info("gate transition", fields...)
	}

	if g.events != nil {
		_ = g.events.Publish(shared.NewGateTransitionEvent(string(from), string(to), attempt, reason))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
