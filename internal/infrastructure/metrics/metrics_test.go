package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

func TestMetrics_HandleEvent(t *testing.T) {
	m := New(prometheus.NewRegistry())

	require.NoError(t, m.HandleEvent(shared.NewStateChangedEvent(shared.EventChatMessageAdded, "c-1", 1, 2, 1, true)))
	require.NoError(t, m.HandleEvent(shared.NewStateChangedEvent(shared.EventChatMessageAdded, "c-2", 2, 2, 2, true)))
	require.NoError(t, m.HandleEvent(shared.NewPersistFailedEvent("gator-hub-storage", errors.New("disk full"))))
	require.NoError(t, m.HandleEvent(shared.NewHydrateFailedEvent("gator-hub-storage", errors.New("redis down"))))
	require.NoError(t, m.HandleEvent(shared.NewGateTransitionEvent("uninitialized", "initializing", 1, "")))
	require.NoError(t, m.HandleEvent(shared.NewGateTransitionEvent("initializing", "ready", 1, "")))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(string(shared.EventChatMessageAdded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hydrateFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateState.WithLabelValues("ready")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.gateState.WithLabelValues("initializing")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.gateState.WithLabelValues("uninitialized")))
}

func TestMetrics_ObserveState(t *testing.T) {
	m := New(prometheus.NewRegistry())

	st := appstate.Defaults(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC))
	m.ObserveState(st)
	assert.Equal(t, float64(st.UnreadCount), testutil.ToFloat64(m.unread))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.chatMessages))

	var none *Metrics
	assert.NotPanics(t, func() { none.ObserveState(st) })
}

func TestMetrics_Chat(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveChatReply("local", 1500*time.Millisecond, 2)
	m.ObserveChatReply("local", time.Second, 0)
	m.RecordChatFallback("circuit_open")
	m.SetCircuitOpen("chat-backend", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chatSuggestions.WithLabelValues("local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatFallbacks.WithLabelValues("circuit_open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.circuitState.WithLabelValues("chat-backend")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.chatLatency))

	m.SetCircuitOpen("chat-backend", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.circuitState.WithLabelValues("chat-backend")))
}

func TestMetrics_JobsAndHandlers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveJob("event_reminders", 10*time.Millisecond, nil)
	m.ObserveJob("event_reminders", 10*time.Millisecond, errors.New("boom"))
	m.ObserveJob("", time.Millisecond, nil)
	m.ObserveEventHandler(shared.EventChatCleared, time.Millisecond, errors.New("x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("event_reminders", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("event_reminders", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("unknown", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlerErrors.WithLabelValues(string(shared.EventChatCleared))))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.Nil(t, New(nil))

	assert.NotPanics(t, func() {
		_ = m.HandleEvent(shared.NewGateTransitionEvent("a", "b", 1, ""))
		m.ObserveChatReply("local", time.Second, 1)
		m.RecordChatFallback("backend_error")
		m.SetCircuitOpen("x", true)
		m.ObserveJob("j", time.Second, nil)
		m.ObserveEventHandler(shared.EventChatCleared, time.Second, nil)
		_ = m.Subscribe(nil)
	})
}
