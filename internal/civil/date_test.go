package civil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 1}, d)
	assert.Equal(t, "2025-03-01", d.String())

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)
}

func TestTimePinsMiddayUTC(t *testing.T) {
	d := NewDate(2025, time.June, 15)
	instant := d.Time()
	assert.Equal(t, 12, instant.Hour())
	assert.Equal(t, time.UTC, instant.Location())
	assert.Equal(t, d, DateOf(instant))
}

func TestDateOfUsesLocationCalendarDay(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	// 23:30 in Manila is still the 15th there even though UTC has moved on.
	late := time.Date(2025, time.June, 15, 23, 30, 0, 0, manila)
	assert.Equal(t, NewDate(2025, time.June, 15), DateOf(late))
}

func TestAddDays(t *testing.T) {
	d := NewDate(2025, time.February, 27)
	assert.Equal(t, NewDate(2025, time.March, 1), d.AddDays(2))
	assert.Equal(t, NewDate(2025, time.February, 24), d.AddDays(-3))

	// Leap year boundary.
	assert.Equal(t, NewDate(2024, time.February, 29), NewDate(2024, time.February, 28).AddDays(1))
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	assert.Equal(t, NewDate(2025, time.February, 28), NewDate(2025, time.January, 31).AddMonths(1))
	assert.Equal(t, NewDate(2024, time.February, 29), NewDate(2024, time.January, 31).AddMonths(1))
	assert.Equal(t, NewDate(2025, time.April, 30), NewDate(2025, time.January, 31).AddMonths(3))
	assert.Equal(t, NewDate(2026, time.January, 31), NewDate(2025, time.January, 31).AddMonths(12))
	assert.Equal(t, NewDate(2024, time.November, 30), NewDate(2025, time.May, 31).AddMonths(-6))
}

func TestOrdering(t *testing.T) {
	a := NewDate(2025, time.January, 31)
	b := NewDate(2025, time.February, 1)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewDate(2025, time.January, 31)))
}

func TestDaysUntil(t *testing.T) {
	a := NewDate(2025, time.January, 1)
	assert.Equal(t, 31, a.DaysUntil(NewDate(2025, time.February, 1)))
	assert.Equal(t, -1, a.DaysUntil(NewDate(2024, time.December, 31)))
	assert.Equal(t, 366, NewDate(2024, time.January, 1).DaysUntil(NewDate(2025, time.January, 1)))
}
