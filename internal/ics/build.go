// Package ics builds the three calendar artifacts: padded prayer events,
// availability slots and hour-aligned empty slots.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mawaqitics/internal/features"
	"mawaqitics/internal/prayer"
	"mawaqitics/internal/schedule"
)

// Builder accumulates VEVENTs for one output calendar. Days are appended
// in-memory; Serialize renders the final ICS payload.
type Builder struct {
	cal      *ical.Calendar
	mosqueID string
	opts     features.Options
	spec     prayer.PaddingSpec
}

// NewBuilder creates a calendar shell with the standard headers.
func NewBuilder(name, description, mosqueID string, spec prayer.PaddingSpec, opts features.Options) *Builder {
	cal := ical.NewCalendar()
	cal.SetProductId(fmt.Sprintf("-//%s//FR", name))
	cal.SetVersion("2.0")
	cal.SetName(name)
	cal.SetDescription(description)

	return &Builder{cal: cal, mosqueID: mosqueID, opts: opts, spec: spec}
}

// mosqueLocation renders "great-mosque-1234" as "Mosque Great Mosque 1234".
func mosqueLocation(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "-", " "), " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return "Mosque " + strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// escapeText encodes literal newlines as the RFC 5545 "\n" escape; the
// underlying library writes property values verbatim.
func escapeText(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

// AddPrayerDay appends one padded event per prayer of the day. Unparseable
// times are logged and skipped so a bad value never loses the whole day.
func (b *Builder) AddPrayerDay(day time.Time, ts prayer.TimeSet, loc *time.Location, order []string) {
	friday := day.Weekday() == time.Friday

	for _, name := range order {
		raw, ok := ts[name]
		if !ok || raw == "" {
			continue
		}

		base, err := prayer.ParseClock(raw, day, loc)
		if err != nil {
			log.Warn().Str("prayer", name).Str("value", raw).Err(err).Msg("skipping prayer event")
			continue
		}

		pad := b.spec.Resolve(name)
		start := base.Add(-time.Duration(pad.Before) * time.Minute)
		end := base.Add(time.Duration(pad.After) * time.Minute)

		summary := fmt.Sprintf("%s (%s)", capitalize(name), raw)
		description := fmt.Sprintf("Prayer including %d min before and %d min after", pad.Before, pad.After)

		if friday && name == prayer.Dohr {
			summary = "Jummah - " + summary
			description += "\n🕌 Prière du Jummah"
		}
		if b.opts.IncludeAdhkar {
			if suffix := features.AdhkarSuffix(name); suffix != "" {
				summary += " " + suffix
			}
		}
		if name == prayer.Sunset {
			summary = fmt.Sprintf("Chourouk (%s)", raw)
		}

		ev := b.cal.AddEvent(uuid.NewString())
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(summary)
		ev.SetLocation(mosqueLocation(b.mosqueID))
		ev.SetDescription(escapeText(description))

		alarm := ev.AddAlarm()
		alarm.SetAction(ical.ActionAudio)
		alarm.SetTrigger("PT0S")
		alarm.SetProperty(ical.ComponentPropertyDescription, fmt.Sprintf("🔊 Prayer call for %s", capitalize(name)))
	}
}

// AddFreeSlots appends one transparent availability event per free slot.
func (b *Builder) AddFreeSlots(slots []schedule.FreeSlot) {
	for _, slot := range slots {
		formatted := prayer.FormatDuration(slot.Duration())

		summary := fmt.Sprintf("Availability (%s)", formatted)
		description := fmt.Sprintf("Free slot between %s — Duration: %s", strings.ReplaceAll(slot.Between, "-", " and "), formatted)
		if slot.Night {
			summary = fmt.Sprintf("Night Availability (%s)", formatted)
			description = fmt.Sprintf("Free slot between icha and fajr (night) — Duration: %s", formatted)
		}

		ev := b.cal.AddEvent(uuid.NewString())
		ev.SetStartAt(slot.Start)
		ev.SetEndAt(slot.End)
		ev.SetTimeTransparency(ical.TransparencyTransparent)
		ev.SetProperty(ical.ComponentPropertyCategories, "Empty slots")
		ev.SetSummary(summary)
		ev.SetDescription(description)
	}
}

// AddEmptySlots appends one transparent event per hour bucket.
func (b *Builder) AddEmptySlots(buckets []schedule.FreeSlot) {
	for _, bucket := range buckets {
		formatted := prayer.FormatDuration(bucket.Duration())

		ev := b.cal.AddEvent(uuid.NewString())
		ev.SetStartAt(bucket.Start)
		ev.SetEndAt(bucket.End)
		ev.SetTimeTransparency(ical.TransparencyTransparent)
		ev.SetProperty(ical.ComponentPropertyCategories, "Empty slot")
		ev.SetSummary(fmt.Sprintf("Slot (%s)", formatted))
		ev.SetDescription("Free time slot between prayers")
	}
}

// AddDayEvents appends the all-day informational events (Hijri dates,
// fasts, sacred months).
func (b *Builder) AddDayEvents(events []features.DayEvent) {
	for _, de := range events {
		ev := b.cal.AddEvent(uuid.NewString())
		ev.SetAllDayStartAt(de.Date)
		ev.SetAllDayEndAt(de.Date.AddDate(0, 0, 1))
		ev.SetSummary(de.Summary)
		ev.SetDescription(escapeText(de.Description))
		ev.SetProperty(ical.ComponentPropertyCategories, de.Category)
	}
}

// EventCount returns the number of events accumulated so far.
func (b *Builder) EventCount() int {
	return len(b.cal.Events())
}

// Serialize renders the calendar as an ICS payload.
func (b *Builder) Serialize() []byte {
	return []byte(b.cal.Serialize())
}
