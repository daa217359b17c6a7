package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSameDay_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, time.March, 4, 0, 0, 1, 0, SchoolTZ)
	night := time.Date(2024, time.March, 4, 23, 59, 59, 0, SchoolTZ)
	next := time.Date(2024, time.March, 5, 0, 0, 0, 0, SchoolTZ)

	assert.True(t, IsSameDay(morning, night))
	assert.False(t, IsSameDay(night, next))
}

func TestDaysOfMonth(t *testing.T) {
	days := DaysOfMonth(Date(2024, time.February, 17))
	require.Len(t, days, 29)
	assert.Equal(t, 1, days[0].Day())
	assert.Equal(t, 29, days[28].Day())

	assert.Len(t, DaysOfMonth(Date(2023, time.April, 1)), 30)
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2024, time.March, 4, 15, 30, 0, 0, SchoolTZ)
	assert.Equal(t, Date(2024, time.March, 4), StartOfDay(ts))
	assert.Equal(t, 23, EndOfDay(ts).Hour())
	assert.Equal(t, Date(2024, time.March, 6), AddDays(ts, 2))
}

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Good Morning"},
		{11, "Good Morning"},
		{12, "Good Afternoon"},
		{16, "Good Afternoon"},
		{17, "Good Evening"},
		{23, "Good Evening"},
	}

	for _, tt := range tests {
		ts := time.Date(2024, time.March, 4, tt.hour, 0, 0, 0, SchoolTZ)
		assert.Equal(t, tt.want, Greeting(ts), "hour %d", tt.hour)
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, time.March, 4, 12, 0, 0, 0, SchoolTZ)

	assert.Equal(t, "just now", FormatRelative(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", FormatRelative(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h ago", FormatRelative(now.Add(-2*time.Hour), now))
	assert.Equal(t, "yesterday", FormatRelative(now.Add(-25*time.Hour), now))
	assert.Equal(t, "3d ago", FormatRelative(now.Add(-3*24*time.Hour), now))
	assert.Equal(t, "tomorrow", FormatRelative(now.Add(30*time.Hour), now))
}

func TestParseDateAndMonth(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.March, 4), d)

	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.February, 1), m)

	_, err = ParseDate("03/04/2024")
	assert.Error(t, err)
}
