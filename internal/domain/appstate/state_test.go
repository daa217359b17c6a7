package appstate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/domain/student"
)

var now = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestDefaults(t *testing.T) {
	s := Defaults(now)

	assert.Nil(t, s.SelectedStudent)
	require.Len(t, s.Students, 2)
	assert.Equal(t, "Alex Johnson", s.Students[0].Name)
	assert.Equal(t, notification.DefaultSettings(), s.NotificationSettings)
	assert.Len(t, s.Notifications, 3)
	assert.Equal(t, 2, s.UnreadCount)
	assert.Empty(t, s.ChatHistory)
	assert.False(t, s.IsGaitorVisible)

	current, ok := s.CurrentStudent()
	assert.True(t, ok)
	assert.Equal(t, "1", current.ID)
}

func TestSelectStudent(t *testing.T) {
	s := Defaults(now)

	next, err := s.SelectStudent(strPtr("2"))
	require.NoError(t, err)
	require.NotNil(t, next.SelectedStudent)
	assert.Equal(t, "Emma Johnson", next.SelectedStudent.Name)
	assert.Nil(t, s.SelectedStudent, "receiver must not change")

	current, _ := next.CurrentStudent()
	assert.Equal(t, "2", current.ID)

	_, err = next.SelectStudent(strPtr("99"))
	assert.ErrorIs(t, err, shared.ErrNotFound)

	cleared, err := next.SelectStudent(nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.SelectedStudent)
}

func TestAddStudent_NoUniquenessCheck(t *testing.T) {
	s := Defaults(now)

	next, err := s.AddStudent(student.Student{ID: "1", Name: "Alex Twin", Grade: "10th Grade"})
	require.NoError(t, err)
	assert.Len(t, next.Students, 3)
	assert.Len(t, s.Students, 2)

	_, err = s.AddStudent(student.Student{ID: "3"})
	assert.True(t, shared.IsValidation(err))
}

func TestUpdateNotificationSettings_Merges(t *testing.T) {
	s := Defaults(now)

	next := s.UpdateNotificationSettings(notification.SettingsPatch{Events: boolPtr(false)})
	assert.False(t, next.NotificationSettings.Events)
	assert.True(t, next.NotificationSettings.General)
	assert.True(t, next.NotificationSettings.Urgent)
	assert.True(t, next.NotificationSettings.Academic)

	next = next.UpdateNotificationSettings(notification.SettingsPatch{General: boolPtr(false)})
	assert.False(t, next.NotificationSettings.Events, "earlier change retained")
	assert.False(t, next.NotificationSettings.General)
}

func TestAddNotification_PrependsAndCounts(t *testing.T) {
	s := Defaults(now)

	n := notification.Notification{ID: "n-1", Title: "Bake sale", Type: notification.TypeGeneral, Timestamp: now}
	next := s.AddNotification(n)

	require.Len(t, next.Notifications, 4)
	assert.Equal(t, "n-1", next.Notifications[0].ID)
	assert.Equal(t, 3, next.UnreadCount)
	assert.Len(t, s.Notifications, 3)
}

func TestMarkNotificationRead(t *testing.T) {
	s := Defaults(now)

	next, found := s.MarkNotificationRead("1")
	assert.True(t, found)
	assert.Equal(t, 1, next.UnreadCount)
	assert.False(t, s.Notifications[0].Read, "receiver must not change")

	// Already read: count unchanged.
	again, found := next.MarkNotificationRead("1")
	assert.True(t, found)
	assert.Equal(t, 1, again.UnreadCount)

	// Unknown id: count unchanged.
	missing, found := again.MarkNotificationRead("nope")
	assert.False(t, found)
	assert.Equal(t, 1, missing.UnreadCount)
}

func TestMarkNotificationRead_NeverNegative(t *testing.T) {
	s := Defaults(now)
	s.UnreadCount = 0

	ids := []string{"1", "2", "3", "1", "2", "x"}
	for _, id := range ids {
		s, _ = s.MarkNotificationRead(id)
		assert.GreaterOrEqual(t, s.UnreadCount, 0)
	}
	assert.Equal(t, 0, s.UnreadCount)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := Defaults(now).AddNotification(notification.Notification{ID: "n-1", Title: "x", Type: notification.TypeUrgent})

	next := s.MarkAllNotificationsRead()
	for _, n := range next.Notifications {
		assert.True(t, n.Read)
	}
	assert.Equal(t, 0, next.UnreadCount)
	assert.Equal(t, 3, s.UnreadCount)
}

func TestChatHistory(t *testing.T) {
	s := Defaults(now)

	s = s.AddChatMessage(chat.Message{ID: "a", Text: "first", IsUser: true})
	s = s.AddChatMessage(chat.Message{ID: "b", Text: "second"})
	require.Len(t, s.ChatHistory, 2)
	assert.Equal(t, "a", s.ChatHistory[0].ID)
	assert.Equal(t, "b", s.ChatHistory[1].ID)

	cleared := s.ClearChatHistory()
	assert.NotNil(t, cleared.ChatHistory)
	assert.Empty(t, cleared.ChatHistory)
	assert.Len(t, s.ChatHistory, 2)
}

func TestToggles(t *testing.T) {
	s := Defaults(now)

	assert.True(t, s.ToggleDarkMode().IsDarkMode)
	assert.False(t, s.ToggleDarkMode().ToggleDarkMode().IsDarkMode)
	assert.True(t, s.ToggleGaitor().IsGaitorVisible)
}

func TestClone_IsDeep(t *testing.T) {
	s := Defaults(now).AddChatMessage(chat.Message{ID: "a", SuggestedResources: []string{"Food Services"}})
	s, _ = s.SelectStudent(strPtr("1"))

	c := s.Clone()
	c.Students[0].Name = "changed"
	c.Notifications[0].Title = "changed"
	c.ChatHistory[0].SuggestedResources[0] = "changed"
	c.SelectedStudent.Name = "changed"

	assert.Equal(t, "Alex Johnson", s.Students[0].Name)
	assert.Equal(t, "Parent-Teacher Conferences", s.Notifications[0].Title)
	assert.Equal(t, "Food Services", s.ChatHistory[0].SuggestedResources[0])
	assert.Equal(t, "Alex Johnson", s.SelectedStudent.Name)
}

func TestRecord_RoundTrip(t *testing.T) {
	s := Defaults(now)
	s, _ = s.SelectStudent(strPtr("2"))
	s, _ = s.AddStudent(student.Student{ID: "3", Name: "Maya Johnson", Grade: "5th Grade", Avatar: "maya.png"})
	s = s.ToggleDarkMode()
	s = s.UpdateNotificationSettings(notification.SettingsPatch{Academic: boolPtr(false)})
	s = s.AddNotification(notification.Notification{ID: "n-1", Title: "Bake sale", Message: "Friday", Type: notification.TypeEvent, Timestamp: now.Add(time.Minute), Category: "Events"})
	s, _ = s.MarkNotificationRead("2")
	s = s.AddChatMessage(chat.Message{ID: "c-1", Text: "What's for lunch?", IsUser: true, Timestamp: now})
	s = s.AddChatMessage(chat.Message{ID: "c-2", Text: "Tacos", Timestamp: now.Add(time.Second), SuggestedResources: []string{"Food Services"}})
	s = s.ToggleGaitor()

	data, err := Encode(s)
	require.NoError(t, err)

	// Simulated restart: a fresh default state on a different day.
	restored, result, err := Merge(Defaults(now.Add(48*time.Hour)), data)
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.False(t, result.UnreadRepaired)

	assert.Equal(t, s.Students, restored.Students)
	assert.Equal(t, s.Notifications, restored.Notifications)
	assert.Equal(t, s.ChatHistory, restored.ChatHistory)
	assert.Equal(t, s.NotificationSettings, restored.NotificationSettings)
	assert.Equal(t, s.SelectedStudent, restored.SelectedStudent)
	assert.Equal(t, s.UnreadCount, restored.UnreadCount)
	assert.True(t, restored.IsDarkMode)
	assert.False(t, restored.IsGaitorVisible, "session-only flag resets")
}

func TestEncode_WritesOnlyPersistedKeys(t *testing.T) {
	data, err := Encode(Defaults(now).ToggleGaitor())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"selectedStudent", "students", "isDarkMode", "notificationSettings",
		"notifications", "unreadCount", "chatHistory",
	}, keys)
}

func TestMerge_PartialRecordKeepsDefaults(t *testing.T) {
	base := Defaults(now)

	restored, result, err := Merge(base, []byte(`{"isDarkMode": true, "notificationSettings": {"urgent": false}}`))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"isDarkMode", "notificationSettings"}, result.Applied)
	assert.True(t, restored.IsDarkMode)
	assert.False(t, restored.NotificationSettings.Urgent)
	assert.True(t, restored.NotificationSettings.General)
	assert.Equal(t, base.Students, restored.Students)
	assert.Equal(t, base.Notifications, restored.Notifications)
}

func TestMerge_SkipsUndecodableKeys(t *testing.T) {
	base := Defaults(now)

	restored, result, err := Merge(base, []byte(`{"students": "oops", "isDarkMode": true, "chatHistory": [{"id":"c-1","text":"hi","isUser":true,"timestamp":"2024-03-04T09:30:00Z"}]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"students"}, result.Skipped)
	assert.Equal(t, base.Students, restored.Students)
	assert.True(t, restored.IsDarkMode)
	require.Len(t, restored.ChatHistory, 1)
	assert.Equal(t, "hi", restored.ChatHistory[0].Text)
}

func TestMerge_RepairsUnreadCount(t *testing.T) {
	restored, result, err := Merge(Defaults(now), []byte(`{"unreadCount": 42}`))
	require.NoError(t, err)

	assert.True(t, result.UnreadRepaired)
	assert.Equal(t, 2, restored.UnreadCount)
}

func TestMerge_UnwrapsVersionedEnvelope(t *testing.T) {
	restored, _, err := Merge(Defaults(now), []byte(`{"state": {"isDarkMode": true, "selectedStudent": {"id":"1","name":"Alex Johnson","grade":"10th Grade"}}, "version": 0}`))
	require.NoError(t, err)

	assert.True(t, restored.IsDarkMode)
	require.NotNil(t, restored.SelectedStudent)
	assert.Equal(t, "1", restored.SelectedStudent.ID)
}

func TestMerge_RejectsNonObject(t *testing.T) {
	base := Defaults(now)

	for _, data := range []string{"", "null", "[]", "{broken"} {
		restored, _, err := Merge(base, []byte(data))
		assert.Error(t, err, data)
		assert.Equal(t, base, restored)
	}
}
