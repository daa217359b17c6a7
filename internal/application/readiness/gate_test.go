package readiness

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/application/store"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/memory"
)

type transitionLog struct {
	mu    sync.Mutex
	steps []string
}

// Publish records gate transitions as "from->to".
func (l *transitionLog) Publish(e shared.Event) error {
	t, ok := e.(shared.GateTransitionEvent)
	if !ok {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, t.From+"->"+t.To)
	return nil
}

func (l *transitionLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

func fastConfig() Config {
	return Config{InitDelay: time.Millisecond, MaxAttempts: 3, RetryDelay: time.Millisecond}
}

func TestGate_BecomesReady(t *testing.T) {
	mounted := false
	log := &transitionLog{}
	g := New(HostFunc(func(context.Context) error { mounted = true; return nil }), log, nil, fastConfig())

	assert.Equal(t, StateUninitialized, g.State())
	require.NoError(t, g.Run(context.Background()))

	assert.True(t, mounted)
	assert.Equal(t, StateReady, g.State())
	assert.Equal(t, 1, g.Attempt())
	assert.Equal(t, []string{"uninitialized->initializing", "initializing->ready"}, log.all())

	select {
	case <-g.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
}

func TestGate_WaitsForInitDelay(t *testing.T) {
	g := New(HostFunc(func(context.Context) error { return nil }), nil, nil,
		Config{InitDelay: 30 * time.Millisecond, MaxAttempts: 1})

	start := time.Now()
	require.NoError(t, g.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestGate_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	log := &transitionLog{}
	g := New(HostFunc(func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("storage not reachable")
		}
		if calls == 2 {
			panic("navigation host not mounted")
		}
		return nil
	}), log, nil, fastConfig())

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{
		"uninitialized->initializing",
		"initializing->error",
		"error->initializing",
		"initializing->error",
		"error->initializing",
		"initializing->ready",
	}, log.all())
	assert.Contains(t, g.Err().Error(), "panicked")
}

func TestGate_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	g := New(HostFunc(func(context.Context) error {
		calls++
		return errors.New("boom")
	}), nil, nil, fastConfig())

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateError, g.State())
	assert.False(t, g.IsReady())
}

// unreadableStorage fails every read, like a cache that is down at boot.
type unreadableStorage struct {
	*memory.Storage
}

func (unreadableStorage) GetItem(context.Context, string) ([]byte, error) {
	return nil, errors.New("redis down")
}

func TestGate_OpensWhenStoreCannotReadStorage(t *testing.T) {
	st := store.New(unreadableStorage{memory.NewStorage()}, nil, nil, store.DefaultConfig())
	g := New(st, nil, nil, fastConfig())

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, StateReady, g.State())
	assert.Equal(t, 1, g.Attempt())
	assert.NoError(t, g.Check())
	assert.False(t, st.Hydrated())
	assert.Equal(t, 2, st.Snapshot().UnreadCount)
}

func TestGate_GuardDropsCallsUntilReady(t *testing.T) {
	release := make(chan struct{})
	g := New(HostFunc(func(context.Context) error { <-release; return nil }), nil, nil, fastConfig())

	ran := 0
	assert.False(t, g.Guard(func() { ran++ }))
	assert.True(t, shared.IsNotReady(g.Check()))

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()

	assert.Eventually(t, func() bool { return g.State() == StateInitializing }, time.Second, time.Millisecond)
	assert.False(t, g.Guard(func() { ran++ }))

	close(release)
	require.NoError(t, <-done)

	assert.True(t, g.Guard(func() { ran++ }))
	assert.NoError(t, g.Check())
	assert.Equal(t, 1, ran)
}

func TestGate_RunTwiceFails(t *testing.T) {
	g := New(HostFunc(func(context.Context) error { return nil }), nil, nil, fastConfig())
	require.NoError(t, g.Run(context.Background()))

	err := g.Run(context.Background())
	assert.ErrorIs(t, err, shared.ErrStateTransition)
}

func TestGate_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := New(HostFunc(func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}), nil, nil, fastConfig())

	err := g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateInitializing, g.State())
}

type eventRecorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *eventRecorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func TestGate_PublishesTransitions(t *testing.T) {
	rec := &eventRecorder{}
	g := New(HostFunc(func(context.Context) error { return nil }), rec, nil, fastConfig())
	require.NoError(t, g.Run(context.Background()))

	require.Len(t, rec.events, 2)
	last, ok := rec.events[1].(shared.GateTransitionEvent)
	require.True(t, ok)
	assert.Equal(t, "initializing", last.From)
	assert.Equal(t, "ready", last.To)
	assert.Equal(t, 1, last.Attempt)
}
