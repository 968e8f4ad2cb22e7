package features

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teambition/rrule-go"

	"mawaqitics/internal/prayer"
)

// Options selects the optional calendar content.
type Options struct {
	ShowHijriDate         bool `json:"show_hijri_date"`
	IncludeVoluntaryFasts bool `json:"include_voluntary_fasts"`
	IncludeAdhkar         bool `json:"include_adhkar"`
}

// Enabled reports whether any option produces day events.
func (o Options) Enabled() bool {
	return o.ShowHijriDate || o.IncludeVoluntaryFasts
}

// DayEvent is an all-day informational event.
type DayEvent struct {
	Date        time.Time
	Summary     string
	Description string
	Category    string
}

// weekdaySet enumerates the dates matching the given weekdays between start
// and end inclusive, via a weekly recurrence rule.
func weekdaySet(start, end time.Time, days ...rrule.Weekday) map[time.Time]bool {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: days,
		Dtstart:   start,
		Until:     end,
	})
	if err != nil {
		log.Error().Err(err).Msg("building weekday recurrence")
		return nil
	}
	set := make(map[time.Time]bool)
	for _, occ := range r.All() {
		set[time.Date(occ.Year(), occ.Month(), occ.Day(), 0, 0, 0, 0, time.UTC)] = true
	}
	return set
}

// DayEvents generates the per-day informational events for [start, end].
//
// With ShowHijriDate set, every day gets one event carrying the Hijri date,
// sacred-month marker and any fast/Jummah labels. With only
// IncludeVoluntaryFasts set, events appear on fast days alone.
func DayEvents(start, end time.Time, opts Options) []DayEvent {
	if !opts.Enabled() || end.Before(start) {
		return nil
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var fastDays map[time.Time]bool
	if opts.IncludeVoluntaryFasts {
		fastDays = weekdaySet(startDay, endDay, rrule.MO, rrule.TH)
	}
	fridays := weekdaySet(startDay, endDay, rrule.FR)

	var events []DayEvent
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		hijri := HijriFromGregorian(day)
		sacredName, sacred := hijri.SacredMonth()

		var fasts []string
		if opts.IncludeVoluntaryFasts {
			if fastDays[day] {
				fasts = append(fasts, "Jour de jeûne")
			}
			if hijri.WhiteDay() {
				fasts = append(fasts, "Jour blanc")
			}
		}

		var extras []string
		extras = append(extras, fasts...)
		if fridays[day] {
			extras = append(extras, "Jummah")
		}

		switch {
		case opts.ShowHijriDate:
			summary := hijri.String()
			description := "Date Hijri : " + summary
			category := "hijri_date"
			if sacred {
				summary = "🌟 " + summary
				description = "Date Hijri :🌟 " + hijri.String() + "\nRappel : Mois sacré de " + sacredName
				category = "hijri_date,sacred_month"
			}
			if len(extras) > 0 {
				summary += " - " + strings.Join(extras, ", ")
				description += "\nÉvénements religieux : " + strings.Join(extras, ", ")
			}
			events = append(events, DayEvent{Date: day, Summary: summary, Description: description, Category: category})

		case len(fasts) > 0:
			summary := strings.Join(fasts, ", ")
			description := "Jeûnes surérogatoires : " + summary
			if fridays[day] {
				summary += " - Jummah"
				description += "\nÉvénements religieux : Jummah"
			}
			events = append(events, DayEvent{Date: day, Summary: summary, Description: description, Category: "voluntary_fasts"})
		}
	}

	return events
}

// AdhkarSuffix returns the title suffix for prayers tied to adhkar.
func AdhkarSuffix(name string) string {
	switch name {
	case prayer.Fajr:
		return "- Adhkar du matin"
	case prayer.Asr:
		return "- Adhkar du soir"
	}
	return ""
}
