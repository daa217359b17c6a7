// Package jobs contains the scheduled jobs of Gator Hub.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/pkg/logger"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// EventReminderJobName is the registered name of EventReminderJob.
const EventReminderJobName = "event_reminders"

// EventSource lists calendar events for a day.
type EventSource interface {
	EventsForDate(d time.Time) []catalog.CalendarEvent
}

// Inbox is the part of the store the job writes to.
type Inbox interface {
	Snapshot() appstate.State
	AddNotification(ctx context.Context, draft notification.Draft) (notification.Notification, error)
}

// ReminderLedger deduplicates reminders across runs and replicas.
type ReminderLedger interface {
	MarkSent(ctx context.Context, key string) (bool, error)
}

// EventReminderStats describes one run.
type EventReminderStats struct {
	Day      string
	Events   int
	Sent     int
	Skipped  int
	Disabled bool
}

// EventReminderJob adds an event notification for every calendar event
// happening tomorrow. Each event is announced at most once per day, and
// nothing is sent while event notifications are switched off.
type EventReminderJob struct {
	events EventSource
	inbox  Inbox
	ledger ReminderLedger
	clock  func() time.Time
	logger *logger.Logger
}

// NewEventReminderJob creates the job.
func NewEventReminderJob(events EventSource, inbox Inbox, ledger ReminderLedger, clock func() time.Time, log *logger.Logger) *EventReminderJob {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EventReminderJob{
		events: events,
		inbox:  inbox,
		ledger: ledger,
		clock:  clock,
		logger: log.With(logger.Component("job"), logger.String("job", EventReminderJobName)),
	}
}

// Name implements scheduler.Job.
func (j *EventReminderJob) Name() string { return EventReminderJobName }

// Description implements scheduler.Job.
func (j *EventReminderJob) Description() string {
	return "Adds a notification for each calendar event happening tomorrow"
}

// Run implements scheduler.Job.
func (j *EventReminderJob) Run(ctx context.Context) error {
	_, err := j.RunWithStats(ctx)
	return err
}

// RunWithStats runs the job and reports what it did.
func (j *EventReminderJob) RunWithStats(ctx context.Context) (EventReminderStats, error) {
	tomorrow := timeutil.AddDays(j.clock(), 1)
	stats := EventReminderStats{Day: timeutil.FormatDateStr(tomorrow)}

	if !j.inbox.Snapshot().NotificationSettings.Allows(notification.TypeEvent) {
		stats.Disabled = true
		return stats, nil
	}

	events := j.events.EventsForDate(tomorrow)
	stats.Events = len(events)

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		first, err := j.ledger.MarkSent(ctx, reminderKey(e, stats.Day))
		if err != nil {
			return stats, fmt.Errorf("event reminder %s: %w", e.ID, err)
		}
		if !first {
			stats.Skipped++
			continue
		}

		n, err := j.inbox.AddNotification(ctx, reminderDraft(e))
		if err != nil {
			return stats, fmt.Errorf("event reminder %s: %w", e.ID, err)
		}
		stats.Sent++
		j.logger.Info("event reminder sent",
			logger.NotificationID(n.ID),
			logger.String("event_id", e.ID),
			logger.String("day", stats.Day),
		)
	}

	return stats, nil
}

func reminderKey(e catalog.CalendarEvent, day string) string {
	return "event-" + e.ID + ":" + day
}

func reminderDraft(e catalog.CalendarEvent) notification.Draft {
	var details []string
	if e.StartTime != "" {
		when := e.StartTime
		if e.EndTime != "" {
			when += " - " + e.EndTime
		}
		details = append(details, when)
	}
	if e.Location != "" {
		details = append(details, e.Location)
	}

	message := "Tomorrow"
	if len(details) > 0 {
		message += ", " + strings.Join(details, ", ")
	}
	message += "."
	if e.Description != "" {
		message += " " + e.Description
	}

	return notification.Draft{
		Title:    "Reminder: " + e.Title,
		Message:  message,
		Type:     notification.TypeEvent,
		Category: "Events",
	}
}
