package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawaqitics/internal/prayer"
)

var testDay = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func defaultSpec() prayer.PaddingSpec {
	return prayer.PaddingSpec{Default: prayer.Padding{Before: 10, After: 35}}
}

func fullDay() prayer.TimeSet {
	return prayer.TimeSet{
		prayer.Fajr:    "05:30",
		prayer.Dohr:    "12:30",
		prayer.Asr:     "15:45",
		prayer.Maghreb: "18:20",
		prayer.Icha:    "20:00",
	}
}

func TestSegmentFullDay(t *testing.T) {
	slots := Segment(fullDay(), testDay, time.UTC, defaultSpec(), prayer.Order(false))
	require.Len(t, slots, 4)

	// fajr 05:30 + 35 after, dohr 12:30 - 10 before.
	assert.Equal(t, "fajr-dohr", slots[0].Between)
	assert.Equal(t, time.Date(2026, time.March, 10, 6, 5, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Date(2026, time.March, 10, 12, 20, 0, 0, time.UTC), slots[0].End)

	assert.Equal(t, "dohr-asr", slots[1].Between)
	assert.Equal(t, "asr-maghreb", slots[2].Between)
	assert.Equal(t, "maghreb-icha", slots[3].Between)

	for _, slot := range slots {
		assert.True(t, slot.Start.Before(slot.End), "slot %s", slot.Between)
		assert.False(t, slot.Night)
	}
}

func TestSegmentDropsNonPositiveGaps(t *testing.T) {
	ts := prayer.TimeSet{
		prayer.Fajr: "05:30",
		prayer.Dohr: "06:10", // 05:30+35 = 06:05, 06:10-10 = 06:00 -> dropped
		prayer.Asr:  "15:45",
	}

	slots := Segment(ts, testDay, time.UTC, defaultSpec(), prayer.Order(false))
	require.Len(t, slots, 1)
	assert.Equal(t, "dohr-asr", slots[0].Between)
}

func TestSegmentSkipsUnparseableTimes(t *testing.T) {
	ts := fullDay()
	ts[prayer.Asr] = "xx:yy"

	slots := Segment(ts, testDay, time.UTC, defaultSpec(), prayer.Order(false))
	require.Len(t, slots, 3)
	assert.Equal(t, "dohr-maghreb", slots[1].Between)
}

func TestSegmentNeedsAtLeastTwoTimes(t *testing.T) {
	assert.Nil(t, Segment(prayer.TimeSet{prayer.Fajr: "05:30"}, testDay, time.UTC, defaultSpec(), prayer.Order(false)))
	assert.Nil(t, Segment(prayer.TimeSet{}, testDay, time.UTC, defaultSpec(), prayer.Order(false)))
}

func TestSegmentSortsBeforePairing(t *testing.T) {
	// Out-of-order upstream values still produce chronological slots.
	ts := prayer.TimeSet{
		prayer.Fajr: "12:30",
		prayer.Dohr: "05:30",
	}

	slots := Segment(ts, testDay, time.UTC, defaultSpec(), prayer.Order(false))
	require.Len(t, slots, 1)
	assert.Equal(t, "dohr-fajr", slots[0].Between)
	assert.True(t, slots[0].Start.Before(slots[0].End))
}

func TestNightGapRollsFajrForward(t *testing.T) {
	slot, ok := NightGap(fullDay(), testDay, time.UTC, defaultSpec())
	require.True(t, ok)

	assert.True(t, slot.Night)
	assert.Equal(t, "icha-fajr", slot.Between)
	// icha 20:00 + 35, fajr next day 05:30 - 10.
	assert.Equal(t, time.Date(2026, time.March, 10, 20, 35, 0, 0, time.UTC), slot.Start)
	assert.Equal(t, time.Date(2026, time.March, 11, 5, 20, 0, 0, time.UTC), slot.End)
}

func TestNightGapMissingTimes(t *testing.T) {
	_, ok := NightGap(prayer.TimeSet{prayer.Icha: "20:00"}, testDay, time.UTC, defaultSpec())
	assert.False(t, ok)

	_, ok = NightGap(prayer.TimeSet{prayer.Fajr: "05:30"}, testDay, time.UTC, defaultSpec())
	assert.False(t, ok)
}

func TestFreeSlotsAppendsNight(t *testing.T) {
	slots := FreeSlots(fullDay(), testDay, time.UTC, defaultSpec(), prayer.Order(false))
	require.Len(t, slots, 5)
	assert.True(t, slots[4].Night)
}
