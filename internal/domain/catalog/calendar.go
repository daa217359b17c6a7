package catalog

import (
	"sort"
	"time"

	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// EventType classifies a calendar entry.
type EventType string

const (
	EventTypeAcademic EventType = "academic"
	EventTypeEvent    EventType = "event"
	EventTypeDeadline EventType = "deadline"
	EventTypeMeeting  EventType = "meeting"
)

// CalendarEvent is an immutable calendar entry. Date is midnight of the
// event day in the campus timezone; times are display strings.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	Type        EventType `json:"type"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// DaySummary is one cell of the month grid.
type DaySummary struct {
	Date   time.Time `json:"date"`
	Events int       `json:"events"`
	Today  bool      `json:"today"`
}

// EventsForDate returns the events on the same calendar day as d.
func EventsForDate(events []CalendarEvent, d time.Time) []CalendarEvent {
	out := make([]CalendarEvent, 0)
	for _, e := range events {
		if timeutil.IsSameDay(e.Date, d) {
			out = append(out, e)
		}
	}
	return out
}

// EventsBetween returns events whose day lies within [from, to], both
// inclusive, sorted by date.
func EventsBetween(events []CalendarEvent, from, to time.Time) []CalendarEvent {
	start := timeutil.StartOfDay(from)
	end := timeutil.EndOfDay(to)

	out := make([]CalendarEvent, 0)
	for _, e := range events {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	sortByDate(out)
	return out
}

// UpcomingEvents returns up to limit events from today onwards, sorted by date.
// A non-positive limit returns every upcoming event.
func UpcomingEvents(events []CalendarEvent, now time.Time, limit int) []CalendarEvent {
	today := timeutil.StartOfDay(now)

	out := make([]CalendarEvent, 0)
	for _, e := range events {
		if !timeutil.StartOfDay(e.Date).Before(today) {
			out = append(out, e)
		}
	}
	sortByDate(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MonthDays returns every day of month with its event count.
func MonthDays(events []CalendarEvent, month, now time.Time) []DaySummary {
	days := timeutil.DaysOfMonth(month)
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		out = append(out, DaySummary{
			Date:   d,
			Events: len(EventsForDate(events, d)),
			Today:  timeutil.IsSameDay(d, now),
		})
	}
	return out
}

func sortByDate(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}
