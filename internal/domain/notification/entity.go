// Package notification contains the domain model for school announcements
// delivered to a family: the Notification entity, its type enumeration,
// per-type delivery settings and the long-form detail text shown when a
// notification is opened.
package notification

import (
	"strings"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type classifies a notification.
type Type string

const (
	// TypeGeneral is a routine announcement.
	TypeGeneral Type = "general"

	// TypeUrgent needs attention today (closures, safety alerts).
	TypeUrgent Type = "urgent"

	// TypeEvent announces or reminds about a calendar event.
	TypeEvent Type = "event"

	// TypeAcademic concerns grades, assignments and report cards.
	TypeAcademic Type = "academic"
)

// AllTypes lists every notification type.
var AllTypes = []Type{TypeGeneral, TypeUrgent, TypeEvent, TypeAcademic}

// IsValid reports whether t is a known type.
func (t Type) IsValid() bool {
	switch t {
	case TypeGeneral, TypeUrgent, TypeEvent, TypeAcademic:
		return true
	}
	return false
}

// Icon returns the icon name used when rendering the type.
func (t Type) Icon() string {
	switch t {
	case TypeUrgent:
		return "warning"
	case TypeEvent:
		return "calendar"
	case TypeAcademic:
		return "school"
	default:
		return "information-circle"
	}
}

// Color returns the accent color used when rendering the type.
func (t Type) Color() string {
	switch t {
	case TypeUrgent:
		return "#ee592b"
	case TypeEvent:
		return "#8b5cf6"
	case TypeAcademic:
		return "#10502f"
	default:
		return "#3b82f6"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification is a single announcement in the family's inbox.
// Notifications are never deleted; only the Read flag changes.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Category  string    `json:"category,omitempty"`
}

// Draft is a notification before the store assigns it an id. New
// notifications always start unread.
type Draft struct {
	Title     string
	Message   string
	Type      Type
	Timestamp time.Time
	Category  string
}

// Validate checks the draft before it is added to the inbox.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return shared.WrapError("notification", "Validate", shared.ErrEmptyValue, "title cannot be empty", nil)
	}
	if !d.Type.IsValid() {
		return shared.WrapError("notification", "Validate", shared.ErrInvalidInput, "unknown type "+string(d.Type), nil)
	}
	return nil
}

// WithID materializes the draft into a Notification.
func (d Draft) WithID(id string) Notification {
	return Notification{
		ID:        id,
		Title:     d.Title,
		Message:   d.Message,
		Type:      d.Type,
		Timestamp: d.Timestamp,
		Category:  d.Category,
	}
}

// CountUnread returns the number of notifications with Read == false.
func CountUnread(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// FILTER
// ══════════════════════════════════════════════════════════════════════════════

// Filter selects which notifications the inbox shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
)

// ParseFilter parses a filter, treating empty input as FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUnread:
		return FilterUnread, nil
	}
	return "", shared.ErrInvalidFilter
}

// Apply returns the notifications matching the filter, keeping order.
func (f Filter) Apply(items []Notification) []Notification {
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if f == FilterUnread && item.Read {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// Settings holds the four independent delivery toggles.
type Settings struct {
	General  bool `json:"general"`
	Urgent   bool `json:"urgent"`
	Events   bool `json:"events"`
	Academic bool `json:"academic"`
}

// DefaultSettings enables every notification type.
func DefaultSettings() Settings {
	return Settings{General: true, Urgent: true, Events: true, Academic: true}
}

// SettingsPatch carries a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	General  *bool `json:"general,omitempty"`
	Urgent   *bool `json:"urgent,omitempty"`
	Events   *bool `json:"events,omitempty"`
	Academic *bool `json:"academic,omitempty"`
}

// Merge applies the patch on top of s.
func (s Settings) Merge(p SettingsPatch) Settings {
	if p.General != nil {
		s.General = *p.General
	}
	if p.Urgent != nil {
		s.Urgent = *p.Urgent
	}
	if p.Events != nil {
		s.Events = *p.Events
	}
	if p.Academic != nil {
		s.Academic = *p.Academic
	}
	return s
}

// Allows reports whether notifications of type t are enabled.
func (s Settings) Allows(t Type) bool {
	switch t {
	case TypeGeneral:
		return s.General
	case TypeUrgent:
		return s.Urgent
	case TypeEvent:
		return s.Events
	case TypeAcademic:
		return s.Academic
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// SEED DATA
// ══════════════════════════════════════════════════════════════════════════════

// Seed returns the notifications a fresh install starts with, relative to now.
func Seed(now time.Time) []Notification {
	return []Notification{
		{
			ID:        "1",
			Title:     "Parent-Teacher Conferences",
			Message:   "Sign up for parent-teacher conferences now open!",
			Type:      TypeEvent,
			Timestamp: now,
			Read:      false,
			Category:  "Events",
		},
		{
			ID:        "2",
			Title:     "Lunch Menu Update",
			Message:   "New lunch options available this week.",
			Type:      TypeGeneral,
			Timestamp: now.Add(-time.Hour),
			Read:      false,
			Category:  "Food Services",
		},
		{
			ID:        "3",
			Title:     "School Closure Alert",
			Message:   "Early dismissal tomorrow due to weather conditions.",
			Type:      TypeUrgent,
			Timestamp: now.Add(-2 * time.Hour),
			Read:      true,
			Category:  "General",
		},
	}
}
