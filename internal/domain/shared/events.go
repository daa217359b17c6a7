package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Every store mutation emits exactly one of these.
const (
	// Student events
	EventStudentSelected EventType = "student.selected"
	EventStudentAdded    EventType = "student.added"

	// Preference events
	EventDarkModeToggled  EventType = "preferences.dark_mode_toggled"
	EventSettingsUpdated  EventType = "settings.updated"
	EventChatPanelToggled EventType = "chat.panel_toggled"

	// Notification events
	EventNotificationAdded    EventType = "notification.added"
	EventNotificationRead     EventType = "notification.read"
	EventAllNotificationsRead EventType = "notification.all_read"

	// Chat events
	EventChatMessageAdded EventType = "chat.message_added"
	EventChatCleared      EventType = "chat.cleared"

	// System events
	EventStateHydrated  EventType = "system.state_hydrated"
	EventPersistFailed  EventType = "system.persist_failed"
	EventHydrateFailed  EventType = "system.hydrate_failed"
	EventGateTransition EventType = "system.gate_transition"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the entity the event is about.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// State Events
// ═══════════════════════════════════════════════════════════════════════════

// StateChangedEvent is emitted by the store after a mutation has been applied.
// Version is the snapshot version the mutation produced.
type StateChangedEvent struct {
	BaseEvent
	UnreadCount  int  `json:"unread_count"`
	ChatMessages int  `json:"chat_messages"`
	Persisted    bool `json:"persisted"`
}

// Payload implements Event interface.
func (e StateChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"unread_count":  e.UnreadCount,
		"chat_messages": e.ChatMessages,
		"persisted":     e.Persisted,
		"version":       e.Version,
	}
}

// NewStateChangedEvent creates a new StateChangedEvent.
func NewStateChangedEvent(eventType EventType, aggregateID string, version, unread, chatMessages int, persisted bool) StateChangedEvent {
	base := NewBaseEvent(eventType, aggregateID)
	base.Version = version
	return StateChangedEvent{
		BaseEvent:    base,
		UnreadCount:  unread,
		ChatMessages: chatMessages,
		Persisted:    persisted,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// GateTransitionEvent is emitted whenever the readiness gate changes state.
type GateTransitionEvent struct {
	BaseEvent
	From    string `json:"from"`
	To      string `json:"to"`
	Attempt int    `json:"attempt"`
	Reason  string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e GateTransitionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"from":    e.From,
		"to":      e.To,
		"attempt": e.Attempt,
		"reason":  e.Reason,
	}
}

// NewGateTransitionEvent creates a new GateTransitionEvent.
func NewGateTransitionEvent(from, to string, attempt int, reason string) GateTransitionEvent {
	return GateTransitionEvent{
		BaseEvent: NewBaseEvent(EventGateTransition, "readiness"),
		From:      from,
		To:        to,
		Attempt:   attempt,
		Reason:    reason,
	}
}

// PersistFailedEvent is emitted when the store could not write its record.
// The next mutation overwrites the record, so nothing is queued.
type PersistFailedEvent struct {
	BaseEvent
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Payload implements Event interface.
func (e PersistFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"key":   e.Key,
		"error": e.Error,
	}
}

// NewPersistFailedEvent creates a new PersistFailedEvent.
func NewPersistFailedEvent(key string, err error) PersistFailedEvent {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return PersistFailedEvent{
		BaseEvent: NewBaseEvent(EventPersistFailed, key),
		Key:       key,
		Error:     msg,
	}
}

// HydrateFailedEvent is emitted when the persisted record could not be read
// at startup and the store continues with defaults.
type HydrateFailedEvent struct {
	BaseEvent
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Payload implements Event interface.
func (e HydrateFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"key":   e.Key,
		"error": e.Error,
	}
}

// NewHydrateFailedEvent creates a new HydrateFailedEvent.
func NewHydrateFailedEvent(key string, err error) HydrateFailedEvent {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return HydrateFailedEvent{
		BaseEvent: NewBaseEvent(EventHydrateFailed, key),
		Key:       key,
		Error:     msg,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
