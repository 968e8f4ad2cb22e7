package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawaqitics/internal/prayer"
)

func TestHijriEpoch(t *testing.T) {
	got := HijriFromGregorian(time.Date(2023, time.July, 19, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, HijriDate{Year: 1445, Month: 1, Day: 1}, got)
}

func TestHijriMonthBoundary(t *testing.T) {
	// Muharram has 30 days in the simplified scheme, so day 31 of the
	// Hijri year is 1 Safar.
	got := HijriFromGregorian(time.Date(2023, time.August, 18, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, HijriDate{Year: 1445, Month: 2, Day: 1}, got)
}

func TestHijriYearRollover(t *testing.T) {
	// 354 days after the epoch starts year 1446.
	got := HijriFromGregorian(time.Date(2023, time.July, 19, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 354))
	assert.Equal(t, 1446, got.Year)
	assert.Equal(t, 1, got.Month)
	assert.Equal(t, 1, got.Day)
}

func TestHijriBeforeEpoch(t *testing.T) {
	got := HijriFromGregorian(time.Date(2023, time.July, 18, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1444, got.Year)
}

func TestHijriString(t *testing.T) {
	assert.Equal(t, "1 Muharram 1445", HijriDate{Year: 1445, Month: 1, Day: 1}.String())
	assert.Equal(t, "13 Ramadan 1446", HijriDate{Year: 1446, Month: 9, Day: 13}.String())
}

func TestSacredMonth(t *testing.T) {
	for month, want := range map[int]string{1: "Muharram", 7: "Rajab", 11: "Dhul Qadah", 12: "Dhul Hijjah"} {
		name, ok := HijriDate{Month: month}.SacredMonth()
		require.True(t, ok, "month %d", month)
		assert.Equal(t, want, name)
	}

	_, ok := HijriDate{Month: 9}.SacredMonth()
	assert.False(t, ok)
}

func TestWhiteDay(t *testing.T) {
	assert.False(t, HijriDate{Day: 12}.WhiteDay())
	assert.True(t, HijriDate{Day: 13}.WhiteDay())
	assert.True(t, HijriDate{Day: 15}.WhiteDay())
	assert.False(t, HijriDate{Day: 16}.WhiteDay())
}

func TestDayEventsDisabled(t *testing.T) {
	start := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, DayEvents(start, start.AddDate(0, 0, 6), Options{}))
}

func TestDayEventsHijriCoversEveryDay(t *testing.T) {
	start := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC) // a Monday
	end := start.AddDate(0, 0, 6)

	events := DayEvents(start, end, Options{ShowHijriDate: true})
	require.Len(t, events, 7)
	for _, ev := range events {
		assert.NotEmpty(t, ev.Summary)
		assert.Contains(t, ev.Description, "Date Hijri")
	}
}

func TestDayEventsFastsOnly(t *testing.T) {
	start := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC) // Monday
	end := start.AddDate(0, 0, 6)                                 // through Sunday

	events := DayEvents(start, end, Options{IncludeVoluntaryFasts: true})

	// 2026-03-09 maps to late Ramadan in the approximate calendar, away
	// from the white days, so only Monday and Thursday qualify.
	require.Len(t, events, 2)
	assert.Equal(t, time.Monday, events[0].Date.Weekday())
	assert.Equal(t, time.Thursday, events[1].Date.Weekday())
	for _, ev := range events {
		assert.Contains(t, ev.Summary, "Jour de jeûne")
		assert.Equal(t, "voluntary_fasts", ev.Category)
	}
}

func TestDayEventsJummahLabel(t *testing.T) {
	friday := time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, friday.Weekday())

	events := DayEvents(friday, friday, Options{ShowHijriDate: true})
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Summary, "Jummah")
}

func TestAdhkarSuffix(t *testing.T) {
	assert.Equal(t, "- Adhkar du matin", AdhkarSuffix(prayer.Fajr))
	assert.Equal(t, "- Adhkar du soir", AdhkarSuffix(prayer.Asr))
	assert.Empty(t, AdhkarSuffix(prayer.Dohr))
}
