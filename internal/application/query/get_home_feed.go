// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/student"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// StateReader provides the current store snapshot.
type StateReader interface {
	Snapshot() appstate.State
}

// ══════════════════════════════════════════════════════════════════════════════
// GET HOME FEED QUERY
// Everything the home screen shows in one read: greeting, the student the
// family is looking at, the latest notifications, school news and shortcuts.
// ══════════════════════════════════════════════════════════════════════════════

// GetHomeFeedQuery contains parameters of the home feed.
type GetHomeFeedQuery struct {
	// Now is the reference time for the greeting. Zero means time.Now.
	Now time.Time

	// RecentNotifications is how many notifications to include (default 2).
	RecentNotifications int
}

// Validate applies defaults.
func (q *GetHomeFeedQuery) Validate() error {
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	if q.RecentNotifications <= 0 {
		q.RecentNotifications = 2
	}
	return nil
}

// HomeFeedDTO is the home screen payload.
type HomeFeedDTO struct {
	Greeting            string                      `json:"greeting"`
	Student             *student.Student            `json:"student,omitempty"`
	StudentLabel        string                      `json:"studentLabel,omitempty"`
	RecentNotifications []notification.Notification `json:"recentNotifications"`
	UnreadCount         int                         `json:"unreadCount"`
	News                []catalog.NewsItem          `json:"news"`
	QuickAccess         []catalog.Resource          `json:"quickAccess"`
	IsDarkMode          bool                        `json:"isDarkMode"`
}

// GetHomeFeedHandler builds the home feed.
type GetHomeFeedHandler struct {
	state   StateReader
	catalog *catalog.Catalog
}

// NewGetHomeFeedHandler creates a new GetHomeFeedHandler.
func NewGetHomeFeedHandler(state StateReader, c *catalog.Catalog) *GetHomeFeedHandler {
	return &GetHomeFeedHandler{state: state, catalog: c}
}

// Handle executes the query.
func (h *GetHomeFeedHandler) Handle(_ context.Context, q GetHomeFeedQuery) (*HomeFeedDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	snap := h.state.Snapshot()

	recent := snap.Notifications
	if len(recent) > q.RecentNotifications {
		recent = recent[:q.RecentNotifications]
	}

	dto := &HomeFeedDTO{
		Greeting:            timeutil.Greeting(q.Now),
		RecentNotifications: append([]notification.Notification{}, recent...),
		UnreadCount:         snap.UnreadCount,
		News:                h.catalog.News(),
		QuickAccess:         h.catalog.QuickAccess(),
		IsDarkMode:          snap.IsDarkMode,
	}
	if current, ok := snap.CurrentStudent(); ok {
		dto.Student = &current
		dto.StudentLabel = current.Label()
	}
	return dto, nil
}
