// Package mawaqit retrieves prayer-time data from the Mawaqit platform:
// the per-mosque confData blob embedded in mosque pages, plus the local
// mosque directory used for search.
package mawaqit

import (
	"fmt"
	"strconv"

	"mawaqitics/internal/prayer"
)

// ConfData is the mosque configuration blob embedded in a Mawaqit page.
// Times holds today's five prayers in order fajr, dohr, asr, maghreb,
// icha; Shuruq is the sunrise time; Calendar holds twelve months, each a
// map from day-of-month string to six times (fajr, shuruq, dohr, asr,
// maghreb, icha).
type ConfData struct {
	Name     string                `json:"name"`
	Timezone string                `json:"timezone"`
	Times    []string              `json:"times"`
	Shuruq   string                `json:"shuruq"`
	Calendar []map[string][]string `json:"calendar"`
}

// NotFoundError reports an unknown mosque identifier (upstream 404).
type NotFoundError struct {
	MosqueID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mosque not found: %s", e.MosqueID)
}

// UpstreamDataError reports structurally unusable upstream data.
type UpstreamDataError struct {
	MosqueID string
	Reason   string
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("bad upstream data for %s: %s", e.MosqueID, e.Reason)
}

// dayTimeKeys pairs calendar positions with prayer names. Position 1 is
// shuruq and maps to the sunset key.
var dayTimeKeys = []string{prayer.Fajr, prayer.Sunset, prayer.Dohr, prayer.Asr, prayer.Maghreb, prayer.Icha}

// DayTimes returns today's prayer times as a TimeSet, including sunrise
// under the sunset key.
func (c *ConfData) DayTimes(mosqueID string) (prayer.TimeSet, error) {
	if len(c.Times) < 5 {
		return nil, &UpstreamDataError{MosqueID: mosqueID, Reason: "incomplete prayer time data"}
	}
	return prayer.TimeSet{
		prayer.Fajr:    c.Times[0],
		prayer.Sunset:  c.Shuruq,
		prayer.Dohr:    c.Times[1],
		prayer.Asr:     c.Times[2],
		prayer.Maghreb: c.Times[3],
		prayer.Icha:    c.Times[4],
	}, nil
}

// Month returns the raw calendar data for one month (1-12).
func (c *ConfData) Month(mosqueID string, month int) (map[string][]string, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if len(c.Calendar) < month {
		return nil, &UpstreamDataError{MosqueID: mosqueID, Reason: fmt.Sprintf("month %d not present in calendar", month)}
	}
	return c.Calendar[month-1], nil
}

// Year returns the full twelve-month calendar.
func (c *ConfData) Year() []map[string][]string {
	return c.Calendar
}

// TimeSetFromList converts one calendar day's six-entry time list into a
// TimeSet keyed by prayer name.
func TimeSetFromList(times []string) (prayer.TimeSet, bool) {
	if len(times) < 6 {
		return nil, false
	}
	ts := make(prayer.TimeSet, len(dayTimeKeys))
	for i, name := range dayTimeKeys {
		ts[name] = times[i]
	}
	return ts, true
}

// MonthTimeSets converts one month's raw calendar into day-indexed
// TimeSets. Days that fail to convert are dropped.
func MonthTimeSets(month map[string][]string) map[int]prayer.TimeSet {
	out := make(map[int]prayer.TimeSet, len(month))
	for dayStr, times := range month {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 1 || day > 31 {
			continue
		}
		if ts, ok := TimeSetFromList(times); ok {
			out[day] = ts
		}
	}
	return out
}
