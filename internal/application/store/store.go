// Package store owns the single authoritative application state.
//
// The Store is a single writer: every mutation takes the lock, applies a pure
// transition from package appstate, bumps the snapshot version and writes the
// persisted record before releasing the lock, so storage always observes
// snapshots in order. A failed write never fails the mutation. The store stays
// memory-resident, marks itself dirty and the next successful write (any
// mutation or Flush) overwrites the stale record.
//
// Reads fail the same way. When the record cannot be read at startup, Mount
// keeps the defaults and the store reports itself unhydrated; the read is
// tried again before the first mutation so the stored record is not replaced
// by defaults.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/domain/student"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Storage is a key-value blob store for the persisted record.
// GetItem returns an error matching shared.ErrNotFound when the key is absent.
type Storage interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Listener is called with the new snapshot after every applied mutation.
type Listener func(appstate.State)

// Config contains store settings.
type Config struct {
	// Key is the storage key of the persisted record.
	Key string

	// WriteTimeout bounds a single persist call.
	WriteTimeout time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// NewID generates ids for notifications and chat messages.
	// Defaults to time-ordered UUIDv7 strings.
	NewID func() string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Key:          appstate.StorageKey,
		WriteTimeout: 2 * time.Second,
		Clock:        time.Now,
		NewID:        NewID,
	}
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store holds the current snapshot and serializes all writes to it.
type Store struct {
	mu      sync.Mutex
	state   appstate.State
	dirty   bool
	storage Storage
	events  shared.EventPublisher
	log     *logger.Logger
	config  Config

	// pendingHydrate is set when the startup read failed.
	pendingHydrate bool

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// New creates a store initialized with the default state. Call Hydrate to
// merge the persisted record over it. events and log may be nil.
func New(storage Storage, events shared.EventPublisher, log *logger.Logger, config Config) *Store {
	defaults := DefaultConfig()
	if config.Key == "" {
		config.Key = defaults.Key
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Store{
		state:     appstate.Defaults(config.Clock()),
		storage:   storage,
		events:    events,
		log:       log.With(logger.Component("store"), logger.StorageKey(config.Key)),
		config:    config,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() appstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dirty reports whether the last write to storage failed.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Hydrated reports whether the persisted record has been read, or whether a
// mutation has since made the in-memory state authoritative.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pendingHydrate
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HYDRATION
// ══════════════════════════════════════════════════════════════════════════════

// Hydrate reads the persisted record and merges it over the current state.
// A missing record keeps the defaults. A record that is not a JSON object is
// logged and ignored. Only a storage read failure is returned.
func (s *Store) Hydrate(ctx context.Context) (appstate.MergeResult, error) {
	s.mu.Lock()
	result, merged, err := s.hydrateLocked(ctx)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err != nil {
		return result, err
	}
	if merged {
		s.publishHydrated(snapshot)
		s.notify(snapshot)
	}
	return result, nil
}

// Mount hydrates the store for the readiness gate. A storage read failure is
// not fatal: the store keeps serving the defaults from memory, publishes a
// HydrateFailedEvent and retries the read before the next mutation.
func (s *Store) Mount(ctx context.Context) error {
	if _, err := s.Hydrate(ctx); err != nil {
		s.mu.Lock()
		s.pendingHydrate = true
		s.mu.Unlock()

		s.log.Warn("persisted state unavailable, continuing with defaults", logger.Err(err))
		s.publish(shared.NewHydrateFailedEvent(s.config.Key, err))
	}
	return nil
}

// hydrateLocked reads and merges the record. merged reports whether the state
// changed. The caller must hold s.mu.
func (s *Store) hydrateLocked(ctx context.Context) (result appstate.MergeResult, merged bool, err error) {
	data, err := s.storage.GetItem(ctx, s.config.Key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.pendingHydrate = false
			s.log.Info("no persisted state, using defaults")
			return result, false, nil
		}
		return result, false, shared.WrapError("store", "Hydrate", shared.ErrServiceUnavailable, "read persisted state", err)
	}
	s.pendingHydrate = false

	next, result, err := appstate.Merge(s.state, data)
	if err != nil {
		s.log.Warn("discarding unreadable persisted state", logger.Err(err))
		return result, false, nil
	}
	next.Version = s.state.Version + 1
	s.state = next

	fields := []logger.Field{
		logger.Int("applied", len(result.Applied)),
		logger.SnapshotVersion(next.Version),
	}
	if len(result.Skipped) > 0 {
		fields = append(fields, logger.Any("skipped", result.Skipped))
	}
	if result.UnreadRepaired {
		fields = append(fields, logger.Bool("unread_repaired", true))
	}
	s.log.Info("state hydrated", fields...)
	return result, true, nil
}

func (s *Store) publishHydrated(snapshot appstate.State) {
	s.publish(shared.NewStateChangedEvent(shared.EventStateHydrated, s.config.Key,
		snapshot.Version, snapshot.UnreadCount, len(snapshot.ChatHistory), true))
}

// Flush writes the current record regardless of the dirty flag.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if err != nil {
		s.publish(shared.NewPersistFailedEvent(s.config.Key, err))
		return shared.WrapError("store", "Flush", shared.ErrServiceUnavailable, "write persisted state", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SelectStudent replaces the selection. A nil id clears it; an id that is
// not one of the known students returns shared.ErrStudentNotFound.
func (s *Store) SelectStudent(ctx context.Context, id *string) (appstate.State, error) {
	aggregate := ""
	if id != nil {
		aggregate = *id
	}
	return s.apply(ctx, shared.EventStudentSelected, aggregate, func(st appstate.State) (appstate.State, error) {
		return st.SelectStudent(id)
	})
}

// AddStudent appends a student. Ids are not checked for uniqueness.
func (s *Store) AddStudent(ctx context.Context, st student.Student) (appstate.State, error) {
	return s.apply(ctx, shared.EventStudentAdded, st.ID, func(cur appstate.State) (appstate.State, error) {
		return cur.AddStudent(st)
	})
}

// ToggleDarkMode flips the dark mode preference.
func (s *Store) ToggleDarkMode(ctx context.Context) appstate.State {
	next, _ := s.apply(ctx, shared.EventDarkModeToggled, "", func(st appstate.State) (appstate.State, error) {
		return st.ToggleDarkMode(), nil
	})
	return next
}

// UpdateNotificationSettings merges the provided fields into the settings.
func (s *Store) UpdateNotificationSettings(ctx context.Context, patch notification.SettingsPatch) appstate.State {
	next, _ := s.apply(ctx, shared.EventSettingsUpdated, "", func(st appstate.State) (appstate.State, error) {
		return st.UpdateNotificationSettings(patch), nil
	})
	return next
}

// AddNotification assigns an id to the draft and prepends it to the inbox.
// A zero timestamp is replaced with the current time.
func (s *Store) AddNotification(ctx context.Context, draft notification.Draft) (notification.Notification, error) {
	if err := draft.Validate(); err != nil {
		return notification.Notification{}, err
	}
	if draft.Timestamp.IsZero() {
		draft.Timestamp = s.config.Clock()
	}
	n := draft.WithID(s.config.NewID())

	_, err := s.apply(ctx, shared.EventNotificationAdded, n.ID, func(st appstate.State) (appstate.State, error) {
		return st.AddNotification(n), nil
	})
	return n, err
}

// MarkNotificationRead marks one notification read. An unknown id leaves the
// state untouched and returns shared.ErrNotificationNotFound.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) (appstate.State, error) {
	return s.apply(ctx, shared.EventNotificationRead, id, func(st appstate.State) (appstate.State, error) {
		next, found := st.MarkNotificationRead(id)
		if !found {
			return st, shared.ErrNotificationNotFound
		}
		return next, nil
	})
}

// MarkAllNotificationsRead marks every notification read.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) appstate.State {
	next, _ := s.apply(ctx, shared.EventAllNotificationsRead, "", func(st appstate.State) (appstate.State, error) {
		return st.MarkAllNotificationsRead(), nil
	})
	return next
}

// AddChatMessage assigns an id to the draft and appends it to the history.
// A zero timestamp is replaced with the current time.
func (s *Store) AddChatMessage(ctx context.Context, draft chat.Draft) (chat.Message, error) {
	if draft.Timestamp.IsZero() {
		draft.Timestamp = s.config.Clock()
	}
	m := draft.WithID(s.config.NewID())

	_, err := s.apply(ctx, shared.EventChatMessageAdded, m.ID, func(st appstate.State) (appstate.State, error) {
		return st.AddChatMessage(m), nil
	})
	return m, err
}

// ClearChatHistory empties the chat history.
func (s *Store) ClearChatHistory(ctx context.Context) appstate.State {
	next, _ := s.apply(ctx, shared.EventChatCleared, "", func(st appstate.State) (appstate.State, error) {
		return st.ClearChatHistory(), nil
	})
	return next
}

// ToggleGaitor flips the chat panel visibility flag. The flag is not
// persisted.
func (s *Store) ToggleGaitor(ctx context.Context) appstate.State {
	next, _ := s.apply(ctx, shared.EventChatPanelToggled, "", func(st appstate.State) (appstate.State, error) {
		return st.ToggleGaitor(), nil
	})
	return next
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNALS
// ══════════════════════════════════════════════════════════════════════════════

// apply runs fn under the lock, persists the result and notifies observers
// after the lock is released. A rejected transition changes nothing.
func (s *Store) apply(
	ctx context.Context,
	eventType shared.EventType,
	aggregateID string,
	fn func(appstate.State) (appstate.State, error),
) (appstate.State, error) {
	s.mu.Lock()
	var hydrated bool
	if s.pendingHydrate {
		hydrated = s.retryHydrateLocked(ctx)
	}
	next, err := fn(s.state)
	if err != nil {
		current := s.state.Clone()
		s.mu.Unlock()
		if hydrated {
			s.publishHydrated(current)
			s.notify(current)
		}
		return current, err
	}
	next.Version = s.state.Version + 1
	s.state = next
	persistErr := s.persistLocked(ctx)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if hydrated {
		s.publishHydrated(snapshot)
	}
	if persistErr != nil {
		s.publish(shared.NewPersistFailedEvent(s.config.Key, persistErr))
	}
	if aggregateID == "" {
		aggregateID = s.config.Key
	}
	s.publish(shared.NewStateChangedEvent(eventType, aggregateID,
		snapshot.Version, snapshot.UnreadCount, len(snapshot.ChatHistory), persistErr == nil))
	s.notify(snapshot)

	return snapshot, nil
}

// retryHydrateLocked reads the record once more before a mutation. If the read
// fails again the mutation goes ahead and the in-memory state becomes
// authoritative. The caller must hold s.mu.
func (s *Store) retryHydrateLocked(ctx context.Context) bool {
	_, merged, err := s.hydrateLocked(ctx)
	if err != nil {
		s.pendingHydrate = false
		s.log.Warn("persisted state still unavailable, keeping in-memory state", logger.Err(err))
		return false
	}
	return merged
}

// persistLocked writes the record. The caller must hold s.mu.
// The write outlives a cancelled request context so a mutation that was
// applied is also written.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := appstate.Encode(s.state)
	if err != nil {
		s.dirty = true
		s.log.Error("encode state failed", logger.Err(err))
		return err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.WriteTimeout)
	defer cancel()

	if err := s.storage.SetItem(writeCtx, s.config.Key, data); err != nil {
		s.dirty = true
		s.log.Warn("persist state failed, will retry on next write",
			logger.SnapshotVersion(s.state.Version),
			logger.Err(err),
		)
		return err
	}

	if s.dirty {
		s.log.Info("persisted state recovered", logger.SnapshotVersion(s.state.Version))
	}
	s.dirty = false
	return nil
}

func (s *Store) publish(event shared.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Debug("publish event failed",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
	}
}

func (s *Store) notify(snapshot appstate.State) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
