package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawaqitics/internal/prayer"
)

func dayTimes(fajr string) []string {
	return []string{fajr, "07:01", "12:31", "15:31", "18:31", "20:31"}
}

func TestParseScope(t *testing.T) {
	for input, want := range map[string]Scope{
		"day":    ScopeDay,
		"today":  ScopeDay,
		"DAY":    ScopeDay,
		"month":  ScopeMonth,
		"year":   ScopeYear,
		" Year ": ScopeYear,
	} {
		got, err := ParseScope(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseScope("week")
	require.Error(t, err)
	var serr *ScopeError
	assert.ErrorAs(t, err, &serr)
}

func TestNormalizeMonthForwardFillsMissingDays(t *testing.T) {
	month := map[string][]string{
		"1": dayTimes("05:30"),
		"2": dayTimes("05:31"),
	}

	// June 2026 has 30 days.
	days := NormalizeMonth(month, 2026, time.June, time.UTC)
	require.Len(t, days, 30)

	assert.Equal(t, "05:30", days[0].Times[prayer.Fajr])
	assert.Equal(t, "05:31", days[1].Times[prayer.Fajr])
	for _, d := range days[2:] {
		assert.Equal(t, "05:31", d.Times[prayer.Fajr], "day %s", d.Date.Format("2006-01-02"))
	}

	assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), days[29].Date)
}

func TestNormalizeMonthDropsLeadingInvalidDays(t *testing.T) {
	month := map[string][]string{
		"1": {"05:30", "07:01"}, // too short
		"2": dayTimes("05:31"),
	}

	days := NormalizeMonth(month, 2026, time.June, time.UTC)
	require.Len(t, days, 29)
	assert.Equal(t, time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, "05:31", days[0].Times[prayer.Fajr])
}

func TestNormalizeMonthRejectsNonClockValues(t *testing.T) {
	month := map[string][]string{
		"1": dayTimes("05:30"),
		"2": {"bogus", "data", "with", "no", "colons", "here"},
	}

	days := NormalizeMonth(month, 2026, time.June, time.UTC)
	require.Len(t, days, 30)
	// Day 2 falls back to day 1's schedule.
	assert.Equal(t, "05:30", days[1].Times[prayer.Fajr])
}

func TestNormalizeMonthIgnoresOutOfRangeDays(t *testing.T) {
	month := map[string][]string{
		"1":  dayTimes("05:30"),
		"31": dayTimes("09:99"), // June has no day 31
		"0":  dayTimes("01:00"),
	}

	days := NormalizeMonth(month, 2026, time.June, time.UTC)
	require.Len(t, days, 30)
	for _, d := range days {
		assert.Equal(t, "05:30", d.Times[prayer.Fajr])
	}
}

func TestNormalizeMonthEmpty(t *testing.T) {
	assert.Empty(t, NormalizeMonth(map[string][]string{}, 2026, time.June, time.UTC))
}

func TestNormalizeYear(t *testing.T) {
	calendar := make([]map[string][]string, 12)
	for i := range calendar {
		calendar[i] = map[string][]string{"1": dayTimes("05:30")}
	}
	// Month 3 has no data at all.
	calendar[2] = map[string][]string{}

	days := NormalizeYear(calendar, 2026, time.UTC)

	// 2026 is not a leap year: 365 days minus March's 31.
	assert.Len(t, days, 334)
	assert.Equal(t, time.January, days[0].Date.Month())
	assert.Equal(t, time.December, days[len(days)-1].Date.Month())
}

func TestRequestValidate(t *testing.T) {
	req := Request{MosqueID: "grande-mosquee-1", Scope: ScopeDay, Padding: prayer.Padding{Before: 10, After: 35}}
	assert.NoError(t, req.Validate())

	assert.Error(t, Request{Scope: ScopeDay}.Validate())
	assert.Error(t, Request{MosqueID: "x", Scope: "week"}.Validate())

	negative := Request{MosqueID: "x", Scope: ScopeDay, Padding: prayer.Padding{Before: -5, After: 35}}
	err := negative.Validate()
	require.Error(t, err)
	var perr *prayer.PaddingError
	assert.ErrorAs(t, err, &perr)
}
