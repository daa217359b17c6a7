// Package appstate defines the application state snapshot owned by the store.
//
// A State is a value. Every transition is a pure function that returns a new
// State and never mutates the receiver's slices, so a snapshot handed to a
// reader stays stable while the store moves on.
package appstate

import (
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/domain/student"
)

// State is an immutable snapshot of everything the store owns.
type State struct {
	SelectedStudent      *student.Student            `json:"selectedStudent"`
	Students             []student.Student           `json:"students"`
	IsDarkMode           bool                        `json:"isDarkMode"`
	NotificationSettings notification.Settings       `json:"notificationSettings"`
	Notifications        []notification.Notification `json:"notifications"`
	UnreadCount          int                         `json:"unreadCount"`
	ChatHistory          []chat.Message              `json:"chatHistory"`

	// IsGaitorVisible is session-only and resets on every cold start.
	IsGaitorVisible bool `json:"isGaitorVisible"`

	// Version increases by one with every applied mutation.
	Version int `json:"version"`
}

// Defaults returns the state of a fresh install.
func Defaults(now time.Time) State {
	notifications := notification.Seed(now)
	return State{
		SelectedStudent:      nil,
		Students:             student.SeedStudents(),
		IsDarkMode:           false,
		NotificationSettings: notification.DefaultSettings(),
		Notifications:        notifications,
		UnreadCount:          notification.CountUnread(notifications),
		ChatHistory:          []chat.Message{},
		IsGaitorVisible:      false,
	}
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	if s.SelectedStudent != nil {
		sel := *s.SelectedStudent
		out.SelectedStudent = &sel
	}
	out.Students = append([]student.Student{}, s.Students...)
	out.Notifications = append([]notification.Notification{}, s.Notifications...)
	out.ChatHistory = make([]chat.Message, len(s.ChatHistory))
	for i, m := range s.ChatHistory {
		if m.SuggestedResources != nil {
			m.SuggestedResources = append([]string(nil), m.SuggestedResources...)
		}
		out.ChatHistory[i] = m
	}
	return out
}

// CurrentStudent returns the selected student, falling back to the first one.
func (s State) CurrentStudent() (student.Student, bool) {
	if s.SelectedStudent != nil {
		return *s.SelectedStudent, true
	}
	if len(s.Students) > 0 {
		return s.Students[0], true
	}
	return student.Student{}, false
}

// Notification returns the notification with the given id.
func (s State) Notification(id string) (notification.Notification, bool) {
	for _, n := range s.Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return notification.Notification{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// SelectStudent replaces the selection. A nil id clears it; an id that is not
// in Students is rejected.
func (s State) SelectStudent(id *string) (State, error) {
	next := s
	if id == nil {
		next.SelectedStudent = nil
		return next, nil
	}
	found, ok := student.Find(s.Students, *id)
	if !ok {
		return s, shared.ErrStudentNotFound
	}
	next.SelectedStudent = &found
	return next, nil
}

// AddStudent appends a student. Ids are not checked for uniqueness.
func (s State) AddStudent(st student.Student) (State, error) {
	if err := st.Validate(); err != nil {
		return s, err
	}
	next := s
	next.Students = append(append(make([]student.Student, 0, len(s.Students)+1), s.Students...), st)
	return next, nil
}

// ToggleDarkMode flips the dark mode preference.
func (s State) ToggleDarkMode() State {
	next := s
	next.IsDarkMode = !s.IsDarkMode
	return next
}

// UpdateNotificationSettings merges the provided fields into the settings.
func (s State) UpdateNotificationSettings(p notification.SettingsPatch) State {
	next := s
	next.NotificationSettings = s.NotificationSettings.Merge(p)
	return next
}

// AddNotification prepends n and increments the unread count unconditionally.
func (s State) AddNotification(n notification.Notification) State {
	next := s
	next.Notifications = append(append(make([]notification.Notification, 0, len(s.Notifications)+1), n), s.Notifications...)
	next.UnreadCount = s.UnreadCount + 1
	return next
}

// MarkNotificationRead sets Read on the notification with id. The unread
// count drops by one only if it existed and was unread, and never below zero.
// The boolean reports whether the id was found.
func (s State) MarkNotificationRead(id string) (State, bool) {
	next := s
	next.Notifications = make([]notification.Notification, len(s.Notifications))

	found, wasUnread := false, false
	for i, n := range s.Notifications {
		if n.ID == id {
			found = true
			if !n.Read {
				wasUnread = true
			}
			n.Read = true
		}
		next.Notifications[i] = n
	}

	if wasUnread {
		next.UnreadCount = s.UnreadCount - 1
	}
	if next.UnreadCount < 0 {
		next.UnreadCount = 0
	}
	return next, found
}

// MarkAllNotificationsRead marks every notification read and zeroes the count.
func (s State) MarkAllNotificationsRead() State {
	next := s
	next.Notifications = make([]notification.Notification, len(s.Notifications))
	for i, n := range s.Notifications {
		n.Read = true
		next.Notifications[i] = n
	}
	next.UnreadCount = 0
	return next
}

// AddChatMessage appends m to the history.
func (s State) AddChatMessage(m chat.Message) State {
	next := s
	next.ChatHistory = append(append(make([]chat.Message, 0, len(s.ChatHistory)+1), s.ChatHistory...), m)
	return next
}

// ClearChatHistory empties the history.
func (s State) ClearChatHistory() State {
	next := s
	next.ChatHistory = []chat.Message{}
	return next
}

// ToggleGaitor flips the chat panel visibility flag.
func (s State) ToggleGaitor() State {
	next := s
	next.IsGaitorVisible = !s.IsGaitorVisible
	return next
}
