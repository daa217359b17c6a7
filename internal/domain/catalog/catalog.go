// Package catalog holds the read-only reference data of the portal: the
// resource directory, the school calendar and the news feed, plus the pure
// filter functions the API exposes over them.
//
// A Catalog is built once at startup. Calendar dates are generated relative
// to the build time, so a long-running process keeps the dates it started
// with.
package catalog

import (
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// Catalog is an immutable set of reference lists. All accessors return copies.
type Catalog struct {
	builtAt     time.Time
	categories  []CategoryInfo
	resources   []Resource
	quickAccess []Resource
	details     map[string]ResourceDetail
	events      []CalendarEvent
	news        []NewsItem
}

// New builds the catalog with calendar and news dates relative to now.
func New(now time.Time) *Catalog {
	c := &Catalog{
		builtAt:     now,
		categories:  seedCategories(),
		resources:   seedResources(),
		quickAccess: seedQuickAccess(),
		events:      seedEvents(now),
		news:        seedNews(now),
	}
	c.details = seedDetails(c.resources)
	return c
}

// BuiltAt returns the reference time the catalog was generated for.
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

// ─────────────────────────────────────────────────────────────────────────────
// Resources
// ─────────────────────────────────────────────────────────────────────────────

// Categories returns the category chips, "all" first.
func (c *Catalog) Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), c.categories...)
}

// Resources returns the full resource directory in display order.
func (c *Catalog) Resources() []Resource {
	return append([]Resource(nil), c.resources...)
}

// FilterResources applies a category and search filter to the directory.
func (c *Catalog) FilterResources(category Category, search string) []Resource {
	return FilterResources(c.resources, category, search)
}

// Resource returns the resource with the given id.
func (c *Catalog) Resource(id string) (Resource, error) {
	for _, r := range c.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return Resource{}, shared.ErrResourceNotFound
}

// ResourceByTitle returns the resource with the given title. Chat
// suggestions refer to resources by title.
func (c *Catalog) ResourceByTitle(title string) (Resource, bool) {
	for _, r := range c.resources {
		if r.Title == title {
			return r, true
		}
	}
	return Resource{}, false
}

// ResourceDetail returns the detail page of a resource, falling back to a
// generic page built from its description.
func (c *Catalog) ResourceDetail(id string) (ResourceDetail, error) {
	r, err := c.Resource(id)
	if err != nil {
		return ResourceDetail{}, err
	}
	if d, ok := c.details[r.Title]; ok {
		d.Features = append([]string(nil), d.Features...)
		d.QuickLinks = append([]QuickLink(nil), d.QuickLinks...)
		return d, nil
	}
	return ResourceDetail{
		Resource:    r,
		Description: r.Description,
		Features: []string{
			"Access important school resources",
			"Stay connected with school updates",
			"Manage student information",
		},
		QuickLinks: []QuickLink{},
		HelpInfo:   "For more information, contact the school office at (555) 123-4567.",
	}, nil
}

// QuickAccess returns the shortcuts pinned to the home feed.
func (c *Catalog) QuickAccess() []Resource {
	return append([]Resource(nil), c.quickAccess...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Calendar
// ─────────────────────────────────────────────────────────────────────────────

// Events returns every calendar entry in catalog order.
func (c *Catalog) Events() []CalendarEvent {
	return append([]CalendarEvent(nil), c.events...)
}

// EventsForDate returns the events on d's calendar day.
func (c *Catalog) EventsForDate(d time.Time) []CalendarEvent {
	return EventsForDate(c.events, d)
}

// EventsBetween returns events between from and to, inclusive by day.
func (c *Catalog) EventsBetween(from, to time.Time) ([]CalendarEvent, error) {
	if timeutil.StartOfDay(to).Before(timeutil.StartOfDay(from)) {
		return nil, shared.ErrInvalidDateRange
	}
	return EventsBetween(c.events, from, to), nil
}

// UpcomingEvents returns up to limit events from now's day onwards.
func (c *Catalog) UpcomingEvents(now time.Time, limit int) []CalendarEvent {
	return UpcomingEvents(c.events, now, limit)
}

// MonthDays returns the month grid for month.
func (c *Catalog) MonthDays(month, now time.Time) []DaySummary {
	return MonthDays(c.events, month, now)
}

// ─────────────────────────────────────────────────────────────────────────────
// News
// ─────────────────────────────────────────────────────────────────────────────

// News returns the news feed, newest first.
func (c *Catalog) News() []NewsItem {
	return append([]NewsItem(nil), c.news...)
}
