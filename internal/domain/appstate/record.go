package appstate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/student"
)

// StorageKey is the key of the persisted record.
const StorageKey = "gator-hub-storage"

// Persisted record keys.
const (
	keySelectedStudent      = "selectedStudent"
	keyStudents             = "students"
	keyIsDarkMode           = "isDarkMode"
	keyNotificationSettings = "notificationSettings"
	keyNotifications        = "notifications"
	keyUnreadCount          = "unreadCount"
	keyChatHistory          = "chatHistory"
)

// Record is the subset of State written to durable storage.
type Record struct {
	SelectedStudent      *student.Student            `json:"selectedStudent"`
	Students             []student.Student           `json:"students"`
	IsDarkMode           bool                        `json:"isDarkMode"`
	NotificationSettings notification.Settings       `json:"notificationSettings"`
	Notifications        []notification.Notification `json:"notifications"`
	UnreadCount          int                         `json:"unreadCount"`
	ChatHistory          []chat.Message              `json:"chatHistory"`
}

// Record extracts the persisted subset.
func (s State) Record() Record {
	return Record{
		SelectedStudent:      s.SelectedStudent,
		Students:             s.Students,
		IsDarkMode:           s.IsDarkMode,
		NotificationSettings: s.NotificationSettings,
		Notifications:        s.Notifications,
		UnreadCount:          s.UnreadCount,
		ChatHistory:          s.ChatHistory,
	}
}

// Encode serializes the persisted subset of s as a JSON object.
func Encode(s State) ([]byte, error) {
	data, err := json.Marshal(s.Record())
	if err != nil {
		return nil, fmt.Errorf("encode state record: %w", err)
	}
	return data, nil
}

// MergeResult describes how a persisted record was applied.
type MergeResult struct {
	// Applied lists the keys taken from the record.
	Applied []string

	// Skipped lists keys present in the record that failed to decode.
	Skipped []string

	// UnreadRepaired is true when the stored unread count disagreed with the
	// notifications and was recomputed.
	UnreadRepaired bool
}

// Merge applies a persisted record over base. Keys missing from the record
// keep their base value; a key that fails to decode is skipped and the rest
// still apply. Records wrapped as {"state": {...}, "version": n} are unwrapped.
// An error is returned only when data is not a JSON object at all, in which
// case base is returned unchanged.
func Merge(base State, data []byte) (State, MergeResult, error) {
	var result MergeResult

	raw, err := decodeObject(data)
	if err != nil {
		return base, result, err
	}
	if inner, ok := raw["state"]; ok && len(raw) <= 2 {
		if unwrapped, err := decodeObject(inner); err == nil {
			raw = unwrapped
		}
	}

	next := base.Clone()
	apply := func(key string, fn func(json.RawMessage) error) {
		value, ok := raw[key]
		if !ok {
			return
		}
		if err := fn(value); err != nil {
			result.Skipped = append(result.Skipped, key)
			return
		}
		result.Applied = append(result.Applied, key)
	}

	apply(keySelectedStudent, func(v json.RawMessage) error {
		var sel *student.Student
		if err := json.Unmarshal(v, &sel); err != nil {
			return err
		}
		next.SelectedStudent = sel
		return nil
	})
	apply(keyStudents, func(v json.RawMessage) error {
		var students []student.Student
		if err := json.Unmarshal(v, &students); err != nil {
			return err
		}
		if students == nil {
			students = []student.Student{}
		}
		next.Students = students
		return nil
	})
	apply(keyIsDarkMode, func(v json.RawMessage) error {
		return json.Unmarshal(v, &next.IsDarkMode)
	})
	apply(keyNotificationSettings, func(v json.RawMessage) error {
		// Decode over the current settings so a partial object keeps defaults.
		settings := next.NotificationSettings
		if err := json.Unmarshal(v, &settings); err != nil {
			return err
		}
		next.NotificationSettings = settings
		return nil
	})
	apply(keyNotifications, func(v json.RawMessage) error {
		var items []notification.Notification
		if err := json.Unmarshal(v, &items); err != nil {
			return err
		}
		if items == nil {
			items = []notification.Notification{}
		}
		next.Notifications = items
		return nil
	})
	apply(keyUnreadCount, func(v json.RawMessage) error {
		return json.Unmarshal(v, &next.UnreadCount)
	})
	apply(keyChatHistory, func(v json.RawMessage) error {
		var history []chat.Message
		if err := json.Unmarshal(v, &history); err != nil {
			return err
		}
		if history == nil {
			history = []chat.Message{}
		}
		next.ChatHistory = history
		return nil
	})

	if actual := notification.CountUnread(next.Notifications); actual != next.UnreadCount {
		next.UnreadCount = actual
		result.UnreadRepaired = true
	}

	return next, result, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("decode state record: not a JSON object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode state record: %w", err)
	}
	return raw, nil
}
