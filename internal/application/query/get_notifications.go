package query

import (
	"context"

	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET NOTIFICATIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetNotificationsQuery lists the inbox.
type GetNotificationsQuery struct {
	// Filter is "all" (default) or "unread".
	Filter string
}

// NotificationListDTO is the inbox payload.
type NotificationListDTO struct {
	Filter        notification.Filter         `json:"filter"`
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unreadCount"`
	Total         int                         `json:"total"`
}

// NotificationDetailDTO is a single notification with its long-form body.
type NotificationDetailDTO struct {
	notification.Notification
	Body          string `json:"body"`
	FormattedDate string `json:"formattedDate"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
}

// GetNotificationsHandler serves inbox reads.
type GetNotificationsHandler struct {
	state StateReader
}

// NewGetNotificationsHandler creates a new GetNotificationsHandler.
func NewGetNotificationsHandler(state StateReader) *GetNotificationsHandler {
	return &GetNotificationsHandler{state: state}
}

// Handle lists notifications matching the filter, newest first.
func (h *GetNotificationsHandler) Handle(_ context.Context, q GetNotificationsQuery) (*NotificationListDTO, error) {
	filter, err := notification.ParseFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	snap := h.state.Snapshot()
	return &NotificationListDTO{
		Filter:        filter,
		Notifications: filter.Apply(snap.Notifications),
		UnreadCount:   snap.UnreadCount,
		Total:         len(snap.Notifications),
	}, nil
}

// Detail returns one notification with its detail body.
func (h *GetNotificationsHandler) Detail(_ context.Context, id string) (*NotificationDetailDTO, error) {
	n, ok := h.state.Snapshot().Notification(id)
	if !ok {
		return nil, shared.ErrNotificationNotFound
	}
	return &NotificationDetailDTO{
		Notification:  n,
		Body:          notification.Detail(n),
		FormattedDate: timeutil.FormatLong(n.Timestamp),
		Icon:          n.Type.Icon(),
		Color:         n.Type.Color(),
	}, nil
}
