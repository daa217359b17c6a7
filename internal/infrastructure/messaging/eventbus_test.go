package messaging

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

type observedCall struct {
	eventType shared.EventType
	err       error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (o *recordingObserver) ObserveEventHandler(eventType shared.EventType, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedCall{eventType: eventType, err: err})
}

func gateEvent() shared.Event {
	return shared.NewGateTransitionEvent("uninitialized", "initializing", 1, "")
}

func TestInMemoryEventBus_SyncDelivery(t *testing.T) {
	observer := &recordingObserver{}
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Observer: observer})

	var typed, all []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventGateTransition, func(e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return errors.New("subscriber failed")
	}))

	require.NoError(t, bus.Publish(gateEvent()))
	require.NoError(t, bus.Publish(shared.NewPersistFailedEvent("k", errors.New("disk"))))

	assert.Equal(t, []shared.EventType{shared.EventGateTransition}, typed)
	assert.Equal(t, []shared.EventType{shared.EventGateTransition, shared.EventPersistFailed}, all)

	require.Len(t, observer.calls, 3)
	assert.NoError(t, observer.calls[0].err)
	assert.Error(t, observer.calls[1].err)
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var count atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count.Add(1)
		return nil
	}))

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(gateEvent()))
	}
	bus.Wait()

	assert.Equal(t, int32(20), count.Load())
}

func TestInMemoryEventBus_RecoveryMiddleware(t *testing.T) {
	observer := &recordingObserver{}
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{Observer: observer})
	bus.Use(RecoveryMiddleware(logger.Nop()))
	bus.Use(LoggingMiddleware(logger.Nop()))

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		panic("boom")
	}))

	assert.NotPanics(t, func() {
		require.NoError(t, bus.Publish(gateEvent()))
	})
	require.Len(t, observer.calls, 1)
	assert.EqualError(t, observer.calls[0].err, "handler panic: boom")
}

func TestInMemoryEventBus_Close(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(gateEvent()), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.Error(t, bus.Publish(nil))
}
