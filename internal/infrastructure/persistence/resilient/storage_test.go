package resilient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/memory"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
	"github.com/gator-hub/gator-hub/pkg/retry"
)

var errBackendDown = errors.New("connection refused")

// flakyBackend fails the first `failures` calls and then delegates to memory.
type flakyBackend struct {
	mu       sync.Mutex
	inner    *memory.Storage
	failures int
	calls    int
}

func (b *flakyBackend) step() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures > 0 {
		b.failures--
		return errBackendDown
	}
	return nil
}

func (b *flakyBackend) GetItem(ctx context.Context, key string) ([]byte, error) {
	if err := b.step(); err != nil {
		return nil, err
	}
	return b.inner.GetItem(ctx, key)
}

func (b *flakyBackend) SetItem(ctx context.Context, key string, value []byte) error {
	if err := b.step(); err != nil {
		return err
	}
	return b.inner.SetItem(ctx, key, value)
}

func (b *flakyBackend) RemoveItem(ctx context.Context, key string) error {
	if err := b.step(); err != nil {
		return err
	}
	return b.inner.RemoveItem(ctx, key)
}

func (b *flakyBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func fastRetrier() *retry.Retrier {
	return retry.New(
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(time.Millisecond),
		retry.WithMaxDelay(2*time.Millisecond),
		retry.WithRetryIf(shouldRetry),
	)
}

func TestStorage_RetriesTransientFailures(t *testing.T) {
	backend := &flakyBackend{inner: memory.NewStorage(), failures: 2}
	s := New(backend, nil, WithRetrier(fastRetrier()))

	require.NoError(t, s.SetItem(context.Background(), "app-state", []byte(`{"version":1}`)))
	assert.Equal(t, 3, backend.Calls())

	value, err := s.GetItem(context.Background(), "app-state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(value))
	assert.Equal(t, circuitbreaker.StateClosed, s.BreakerState())
}

func TestStorage_NotFoundIsNotAFailure(t *testing.T) {
	backend := &flakyBackend{inner: memory.NewStorage()}
	s := New(backend, nil, WithRetrier(fastRetrier()))

	for i := 0; i < 5; i++ {
		_, err := s.GetItem(context.Background(), "missing")
		assert.True(t, shared.IsNotFound(err))
	}
	assert.Equal(t, 5, backend.Calls())
	assert.Equal(t, circuitbreaker.StateClosed, s.BreakerState())
}

func TestStorage_OpensCircuitAndFailsFast(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)
	onChange := func(name string, from, to circuitbreaker.State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	}

	backend := &flakyBackend{inner: memory.NewStorage(), failures: 100}
	s := New(backend, onChange, WithRetrier(fastRetrier()))

	err := s.SetItem(context.Background(), "app-state", []byte("{}"))
	require.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, 3, backend.Calls())
	assert.Equal(t, circuitbreaker.StateOpen, s.BreakerState())

	err = s.RemoveItem(context.Background(), "app-state")
	assert.True(t, circuitbreaker.IsRejection(err))
	assert.Equal(t, 3, backend.Calls(), "open circuit must not reach the backend")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, transitions, 1)
	assert.Equal(t, "state-storage:closed->open", transitions[0])
}

func TestStorage_PingBypassesBreaker(t *testing.T) {
	backend := &flakyBackend{inner: memory.NewStorage(), failures: 100}
	s := New(backend, nil, WithRetrier(fastRetrier()))

	_ = s.SetItem(context.Background(), "k", nil)
	require.Equal(t, circuitbreaker.StateOpen, s.BreakerState())

	// flakyBackend has no Ping method, so the decorator reports healthy.
	assert.NoError(t, s.Ping(context.Background()))

	pinged := New(memory.NewStorage(), nil)
	assert.NoError(t, pinged.Ping(context.Background()))
}
