// Package resilient wraps a remote state storage with retries and a circuit
// breaker so that a flapping Redis or Postgres backend degrades to fast
// failures instead of stalling every mutation.
package resilient

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
	"github.com/gator-hub/gator-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Backend is the wrapped key-value storage.
type Backend interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE
// ══════════════════════════════════════════════════════════════════════════════

// Storage decorates a Backend. A missing key is a normal answer and never
// trips the breaker. Breaker rejections are returned without retrying.
type Storage struct {
	backend Backend
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
	logger  *slog.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithBreaker replaces the default storage breaker.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(s *Storage) {
		if cb != nil {
			s.breaker = cb
		}
	}
}

// WithRetrier replaces the default storage retrier.
func WithRetrier(r *retry.Retrier) Option {
	return func(s *Storage) {
		if r != nil {
			s.retrier = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Storage) {
		if log != nil {
			s.logger = log
		}
	}
}

// New wraps backend. onStateChange is forwarded to the default breaker and
// may be nil.
func New(backend Backend, onStateChange func(name string, from, to circuitbreaker.State), opts ...Option) *Storage {
	s := &Storage{
		backend: backend,
		logger:  slog.Default(),
	}
	s.breaker = circuitbreaker.StorageBreaker(onStateChange)
	s.retrier = retry.StorageRetrier(shouldRetry)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func shouldRetry(err error) bool {
	switch {
	case err == nil:
		return false
	case circuitbreaker.IsRejection(err):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case shared.IsNotFound(err):
		return false
	}
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetItem reads key. shared.ErrNotFound is passed through untouched.
func (s *Storage) GetItem(ctx context.Context, key string) ([]byte, error) {
	var (
		value    []byte
		notFound error
	)

	err := s.call(ctx, "get", key, func(ctx context.Context) error {
		v, err := s.backend.GetItem(ctx, key)
		if shared.IsNotFound(err) {
			notFound = err
			return nil
		}
		if err != nil {
			return err
		}
		value = v
		notFound = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return value, nil
}

// SetItem writes value under key.
func (s *Storage) SetItem(ctx context.Context, key string, value []byte) error {
	return s.call(ctx, "set", key, func(ctx context.Context) error {
		return s.backend.SetItem(ctx, key, value)
	})
}

// RemoveItem deletes key.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return s.call(ctx, "remove", key, func(ctx context.Context) error {
		return s.backend.RemoveItem(ctx, key)
	})
}

// Ping checks the backend directly, bypassing the breaker so that health
// probes keep reporting the real state while the circuit is open.
func (s *Storage) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// BreakerState returns the current breaker state.
func (s *Storage) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}

func (s *Storage) call(ctx context.Context, op, key string, fn func(context.Context) error) error {
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.breaker.Execute(ctx, fn)
	})
	if err != nil && !shared.IsNotFound(err) {
		s.logger.WarnContext(ctx, "state storage call failed",
			"op", op,
			"key", key,
			"breaker", s.breaker.State().String(),
			"error", err,
		)
	}
	return err
}
