package planner

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/prayer"
)

// DaySchedule pairs one calendar day with its prayer times.
type DaySchedule struct {
	Date  time.Time
	Times prayer.TimeSet
}

// plausibleTimeSet rejects sets whose values are obviously not clock
// strings, so a malformed upstream day falls through to the forward-fill
// instead of producing garbage events.
func plausibleTimeSet(ts prayer.TimeSet) bool {
	if len(ts) == 0 {
		return false
	}
	for _, v := range ts {
		if !strings.Contains(v, ":") {
			return false
		}
	}
	return true
}

// NormalizeMonth expands one month's raw calendar into a contiguous run of
// day schedules.
//
// Days before the first valid entry are dropped. After that, every
// calendar day up to the end of the month gets an entry: days with valid
// data use it, days with missing or malformed data repeat the last valid
// day. Subscribers therefore always see a full month even when upstream
// data has holes.
func NormalizeMonth(month map[string][]string, year int, m time.Month, loc *time.Location) []DaySchedule {
	daysIn := time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
	valid := mawaqit.MonthTimeSets(month)

	var out []DaySchedule
	var last prayer.TimeSet

	for day := 1; day <= daysIn; day++ {
		date := time.Date(year, m, day, 0, 0, 0, 0, loc)

		ts, ok := valid[day]
		if ok && plausibleTimeSet(ts) {
			last = ts
		} else if last == nil {
			log.Debug().Int("day", day).Int("month", int(m)).Msg("dropping leading day with no usable data")
			continue
		} else {
			log.Debug().Int("day", day).Int("month", int(m)).Msg("filling day from last valid schedule")
		}

		out = append(out, DaySchedule{Date: date, Times: last})
	}

	return out
}

// NormalizeYear expands a full twelve-month calendar. Months that are
// missing from the upstream data are skipped; present months are
// normalized individually.
func NormalizeYear(calendar []map[string][]string, year int, loc *time.Location) []DaySchedule {
	var out []DaySchedule
	for i, month := range calendar {
		if i >= 12 {
			break
		}
		if len(month) == 0 {
			log.Warn().Int("month", i+1).Msg("skipping empty month in upstream calendar")
			continue
		}
		out = append(out, NormalizeMonth(month, year, time.Month(i+1), loc)...)
	}
	return out
}
