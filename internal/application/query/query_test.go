package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

type staticState struct{ state appstate.State }

func (s staticState) Snapshot() appstate.State { return s.state }

var morning = time.Date(2024, time.March, 4, 9, 30, 0, 0, timeutil.SchoolTZ)

func TestGetHomeFeed(t *testing.T) {
	state := appstate.Defaults(morning)
	h := NewGetHomeFeedHandler(staticState{state}, catalog.New(morning))

	feed, err := h.Handle(context.Background(), GetHomeFeedQuery{Now: morning})
	require.NoError(t, err)

	assert.Equal(t, "Good Morning", feed.Greeting)
	require.NotNil(t, feed.Student)
	assert.Equal(t, "Alex Johnson", feed.Student.Name)
	assert.Equal(t, "Alex Johnson • 10th Grade", feed.StudentLabel)
	require.Len(t, feed.RecentNotifications, 2)
	assert.Equal(t, state.Notifications[0].ID, feed.RecentNotifications[0].ID)
	assert.Equal(t, 2, feed.UnreadCount)
	assert.Len(t, feed.News, 2)
	assert.Len(t, feed.QuickAccess, 4)
}

func TestGetHomeFeed_SelectedStudentAndEvening(t *testing.T) {
	state := appstate.Defaults(morning)
	second := "2"
	state, err := state.SelectStudent(&second)
	require.NoError(t, err)

	h := NewGetHomeFeedHandler(staticState{state}, catalog.New(morning))
	feed, err := h.Handle(context.Background(), GetHomeFeedQuery{Now: morning.Add(10 * time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, "Good Evening", feed.Greeting)
	assert.Equal(t, "Emma Johnson", feed.Student.Name)
}

func TestGetNotifications(t *testing.T) {
	h := NewGetNotificationsHandler(staticState{appstate.Defaults(morning)})
	ctx := context.Background()

	all, err := h.Handle(ctx, GetNotificationsQuery{})
	require.NoError(t, err)
	assert.Equal(t, notification.FilterAll, all.Filter)
	assert.Len(t, all.Notifications, 3)
	assert.Equal(t, 3, all.Total)

	unread, err := h.Handle(ctx, GetNotificationsQuery{Filter: "unread"})
	require.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)
	for _, n := range unread.Notifications {
		assert.False(t, n.Read)
	}

	_, err = h.Handle(ctx, GetNotificationsQuery{Filter: "archived"})
	assert.True(t, shared.IsValidation(err))
}

func TestGetNotificationDetail(t *testing.T) {
	h := NewGetNotificationsHandler(staticState{appstate.Defaults(morning)})

	d, err := h.Detail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Parent-Teacher Conferences", d.Title)
	assert.Contains(t, d.Body, "How to Schedule")
	assert.Equal(t, "calendar", d.Icon)

	_, err = h.Detail(context.Background(), "nope")
	assert.True(t, shared.IsNotFound(err))
}
