package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

var refTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, timeutil.SchoolTZ)

func TestFilterResources_Category(t *testing.T) {
	c := New(refTime)

	academic := c.FilterResources(CategoryAcademic, "")
	require.NotEmpty(t, academic)
	for _, r := range academic {
		assert.Equal(t, CategoryAcademic, r.Category)
	}
	assert.Len(t, academic, 3)

	assert.Len(t, c.FilterResources(CategoryAll, ""), 14)
	assert.Len(t, c.FilterResources("", ""), 14)
}

func TestFilterResources_CategoryAndSearch(t *testing.T) {
	c := New(refTime)

	got := c.FilterResources(CategoryAcademic, "LIBRARY")
	require.Len(t, got, 1)
	assert.Equal(t, "Library Resources", got[0].Title)

	// Search matches description as well as title.
	got = c.FilterResources(CategoryAll, "bus routes")
	require.Len(t, got, 1)
	assert.Equal(t, "Transportation", got[0].Title)

	for _, r := range c.FilterResources(CategoryServices, "menu") {
		assert.Equal(t, CategoryServices, r.Category)
		assert.True(t,
			strings.Contains(strings.ToLower(r.Title), "menu") ||
				strings.Contains(strings.ToLower(r.Description), "menu"))
	}

	assert.Empty(t, c.FilterResources(CategoryCommunity, "canvas"))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Academic ")
	require.NoError(t, err)
	assert.Equal(t, CategoryAcademic, c)

	c, err = ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, c)

	_, err = ParseCategory("sports")
	assert.True(t, shared.IsValidation(err))
}

func TestResourceDetail(t *testing.T) {
	c := New(refTime)

	d, err := c.ResourceDetail("1")
	require.NoError(t, err)
	assert.Equal(t, "Canvas LMS", d.Resource.Title)
	assert.Len(t, d.Features, 6)
	assert.Len(t, d.QuickLinks, 3)

	d.Features[0] = "mutated"
	again, err := c.ResourceDetail("1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Features[0])

	generic, err := c.ResourceDetail("14")
	require.NoError(t, err)
	assert.Equal(t, "Sports schedules, team rosters, and athletic information", generic.Description)
	assert.Contains(t, generic.HelpInfo, "(555) 123-4567")
	assert.Empty(t, generic.QuickLinks)

	_, err = c.ResourceDetail("404")
	assert.True(t, shared.IsNotFound(err))
}

func TestEventsForDate_SameCalendarDay(t *testing.T) {
	c := New(refTime)

	// Late evening on the reference day still matches both of today's events.
	evening := time.Date(2024, time.March, 4, 22, 15, 0, 0, timeutil.SchoolTZ)
	today := c.EventsForDate(evening)
	require.Len(t, today, 2)
	for _, e := range today {
		assert.True(t, timeutil.IsSameDay(e.Date, evening))
	}

	for _, d := range timeutil.DaysOfMonth(refTime) {
		for _, e := range c.EventsForDate(d) {
			assert.True(t, timeutil.IsSameDay(e.Date, d))
		}
	}

	assert.Empty(t, c.EventsForDate(time.Date(2024, time.March, 5, 12, 0, 0, 0, timeutil.SchoolTZ)))
}

func TestUpcomingEvents(t *testing.T) {
	c := New(refTime)

	upcoming := c.UpcomingEvents(refTime, 10)
	require.Len(t, upcoming, 10)
	for i := 1; i < len(upcoming); i++ {
		assert.False(t, upcoming[i].Date.Before(upcoming[i-1].Date))
	}
	for _, e := range upcoming {
		assert.False(t, e.Date.Before(timeutil.StartOfDay(refTime)))
	}

	// Fixed-day events before the reference day are excluded.
	later := time.Date(2024, time.March, 10, 8, 0, 0, 0, timeutil.SchoolTZ)
	all := New(later).UpcomingEvents(later, 0)
	assert.Len(t, all, 14)
	for _, e := range all {
		assert.NotEqual(t, "Early Dismissal", e.Title)
	}
}

func TestEventsBetween(t *testing.T) {
	c := New(refTime)

	from := timeutil.Date(2024, time.March, 6)
	to := timeutil.Date(2024, time.March, 11)
	got, err := c.EventsBetween(from, to)
	require.NoError(t, err)

	titles := make([]string, 0, len(got))
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{
		"Parent-Teacher Conferences",
		"Basketball Game vs Eagles",
		"Early Dismissal",
		"Science Fair Setup",
		"Science Fair Project Due",
	}, titles)

	_, err = c.EventsBetween(to, from)
	assert.True(t, shared.IsValidation(err))
}

func TestMonthDays(t *testing.T) {
	c := New(refTime)

	days := c.MonthDays(refTime, refTime)
	require.Len(t, days, 31)
	assert.Equal(t, 2, days[3].Events)
	assert.True(t, days[3].Today)
	assert.False(t, days[4].Today)
	assert.Equal(t, 1, days[24].Events)
}

func TestCatalogReturnsCopies(t *testing.T) {
	c := New(refTime)

	resources := c.Resources()
	resources[0].Title = "mutated"
	assert.Equal(t, "Canvas LMS", c.Resources()[0].Title)

	r, ok := c.ResourceByTitle("Nurse Office")
	assert.True(t, ok)
	assert.Equal(t, "6", r.ID)
}
