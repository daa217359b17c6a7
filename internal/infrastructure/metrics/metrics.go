// Package metrics exports Prometheus collectors for the store, the readiness
// gate, the chat resolver and the scheduler. Every method is safe on a nil
// receiver so components can run without metrics in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

const namespace = "gatorhub"

// gateStates are the label values of the gate state gauge.
var gateStates = []string{"uninitialized", "initializing", "ready", "error"}

// Metrics holds every collector the service exports.
type Metrics struct {
	events          *prometheus.CounterVec
	persistFailures prometheus.Counter
	hydrateFailures prometheus.Counter
	unread          prometheus.Gauge
	chatMessages    prometheus.Gauge
	gateState       *prometheus.GaugeVec
	gateAttempts    prometheus.Counter

	chatLatency     *prometheus.HistogramVec
	chatSuggestions *prometheus.CounterVec
	chatFallbacks   *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec

	handlerDuration *prometheus.HistogramVec
	handlerErrors   *prometheus.CounterVec

	jobDuration *prometheus.HistogramVec
	jobRuns     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg yields a nil *Metrics,
// which records nothing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events published on the event bus, by type.",
		}, []string{"event_type"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_persist_failures_total",
			Help:      "Store writes that failed and were swallowed.",
		}),
		hydrateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_hydrate_failures_total",
			Help:      "Startup reads of the persisted state that failed.",
		}),
		unread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_unread_notifications",
			Help:      "Unread notifications in the current snapshot.",
		}),
		chatMessages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_chat_messages",
			Help:      "Messages in the current chat history.",
		}),
		gateState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gate_state",
			Help:      "1 for the current readiness gate state, 0 otherwise.",
		}, []string{"state"}),
		gateAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_mount_attempts_total",
			Help:      "Mount attempts made by the readiness gate.",
		}),
		chatLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_reply_duration_seconds",
			Help:      "Time to produce a chat reply.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		chatSuggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_suggestions_total",
			Help:      "Resource suggestions attached to chat replies.",
		}, []string{"strategy"}),
		chatFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_fallbacks_total",
			Help:      "Remote chat replies replaced by the apology text.",
		}, []string{"reason"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named circuit breaker is not closed.",
		}, []string{"name"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_handler_duration_seconds",
			Help:      "Duration of event bus handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_errors_total",
			Help:      "Event bus handlers that returned an error.",
		}, []string{"event_type"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled jobs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job executions by result.",
		}, []string{"job", "result"}),
	}

	reg.MustRegister(
		m.events, m.persistFailures, m.hydrateFailures, m.unread, m.chatMessages, m.gateState, m.gateAttempts,
		m.chatLatency, m.chatSuggestions, m.chatFallbacks, m.circuitState,
		m.handlerDuration, m.handlerErrors, m.jobDuration, m.jobRuns,
	)
	m.setGateState("uninitialized")
	return m
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// Subscribe attaches the metrics to every event on bus.
func (m *Metrics) Subscribe(bus shared.EventSubscriber) error {
	if m == nil {
		return nil
	}
	return bus.SubscribeAll(m.HandleEvent)
}

// HandleEvent counts the event and updates the derived gauges.
func (m *Metrics) HandleEvent(event shared.Event) error {
	if m == nil {
		return nil
	}
	m.events.WithLabelValues(string(event.EventType())).Inc()

	switch e := event.(type) {
	case shared.PersistFailedEvent:
		m.persistFailures.Inc()
	case shared.HydrateFailedEvent:
		m.hydrateFailures.Inc()
	case shared.GateTransitionEvent:
		m.setGateState(e.To)
		if e.To == "initializing" {
			m.gateAttempts.Inc()
		}
	}
	return nil
}

// ObserveState updates the snapshot gauges. It is registered as a store
// listener.
func (m *Metrics) ObserveState(st appstate.State) {
	if m == nil {
		return
	}
	m.unread.Set(float64(st.UnreadCount))
	m.chatMessages.Set(float64(len(st.ChatHistory)))
}

func (m *Metrics) setGateState(current string) {
	for _, s := range gateStates {
		v := 0.0
		if s == current {
			v = 1
		}
		m.gateState.WithLabelValues(s).Set(v)
	}
}

// ObserveEventHandler records a handler execution on the event bus.
func (m *Metrics) ObserveEventHandler(eventType shared.EventType, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.handlerDuration.WithLabelValues(string(eventType)).Observe(duration.Seconds())
	if err != nil {
		m.handlerErrors.WithLabelValues(string(eventType)).Inc()
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT
// ══════════════════════════════════════════════════════════════════════════════

// ObserveChatReply records a resolved chat reply.
func (m *Metrics) ObserveChatReply(strategy string, latency time.Duration, suggestions int) {
	if m == nil {
		return
	}
	m.chatLatency.WithLabelValues(normalizeLabel(strategy)).Observe(latency.Seconds())
	m.chatSuggestions.WithLabelValues(normalizeLabel(strategy)).Add(float64(suggestions))
}

// RecordChatFallback counts a remote reply replaced by the apology.
func (m *Metrics) RecordChatFallback(reason string) {
	if m == nil {
		return
	}
	m.chatFallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}

// SetCircuitOpen reports whether the named breaker is letting calls through.
func (m *Metrics) SetCircuitOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.circuitState.WithLabelValues(normalizeLabel(name)).Set(v)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// ObserveJob records one scheduled job execution.
func (m *Metrics) ObserveJob(job string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
