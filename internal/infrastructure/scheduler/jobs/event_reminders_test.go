package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/application/store"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/memory"
	"github.com/gator-hub/gator-hub/pkg/logger"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

var (
	built = time.Date(2024, time.March, 4, 9, 30, 0, 0, timeutil.SchoolTZ)
	runAt = time.Date(2024, time.March, 5, 18, 0, 0, 0, timeutil.SchoolTZ)
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.Clock = func() time.Time { return runAt }
	return store.New(memory.NewStorage(), nil, logger.Nop(), cfg)
}

func TestEventReminderJob_SendsTomorrowsEventsOnce(t *testing.T) {
	s := newStore(t)
	job := NewEventReminderJob(catalog.New(built), s, memory.NewReminderLedger(), func() time.Time { return runAt }, logger.Nop())

	stats, err := job.RunWithStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", stats.Day)
	assert.Equal(t, 1, stats.Events)
	assert.Equal(t, 1, stats.Sent)

	state := s.Snapshot()
	require.Len(t, state.Notifications, 4)
	n := state.Notifications[0]
	assert.Equal(t, "Reminder: Parent-Teacher Conferences", n.Title)
	assert.Equal(t, "Tomorrow, 3:00 PM - 8:00 PM, All Classrooms. Spring parent-teacher conferences. Sign up online.", n.Message)
	assert.Equal(t, notification.TypeEvent, n.Type)
	assert.False(t, n.Read)
	assert.Equal(t, 3, state.UnreadCount)

	again, err := job.RunWithStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Sent)
	assert.Equal(t, 1, again.Skipped)
	assert.Len(t, s.Snapshot().Notifications, 4)
}

func TestEventReminderJob_RespectsEventSetting(t *testing.T) {
	s := newStore(t)
	off := false
	s.UpdateNotificationSettings(context.Background(), notification.SettingsPatch{Events: &off})

	job := NewEventReminderJob(catalog.New(built), s, memory.NewReminderLedger(), func() time.Time { return runAt }, nil)

	stats, err := job.RunWithStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Disabled)
	assert.Len(t, s.Snapshot().Notifications, 3)
}

type failingLedger struct{}

func (failingLedger) MarkSent(context.Context, string) (bool, error) {
	return false, errors.New("ledger offline")
}

func TestEventReminderJob_LedgerFailure(t *testing.T) {
	s := newStore(t)
	job := NewEventReminderJob(catalog.New(built), s, failingLedger{}, func() time.Time { return runAt }, nil)

	err := job.Run(context.Background())
	assert.ErrorContains(t, err, "ledger offline")
	assert.Len(t, s.Snapshot().Notifications, 3)
	assert.Equal(t, EventReminderJobName, job.Name())
	assert.NotEmpty(t, job.Description())
}

func TestEventReminderJob_NoEventsTomorrow(t *testing.T) {
	s := newStore(t)
	today := time.Date(2024, time.March, 4, 7, 0, 0, 0, timeutil.SchoolTZ)
	job := NewEventReminderJob(catalog.New(built), s, memory.NewReminderLedger(), func() time.Time { return today }, nil)

	stats, err := job.RunWithStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Events)
	assert.Equal(t, 0, stats.Sent)
}
