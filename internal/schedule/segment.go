// Package schedule computes the free-time structure of a prayer day:
// inter-prayer gaps after padding, the overnight gap, and the hour-aligned
// subdivision of those gaps.
package schedule

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"mawaqitics/internal/prayer"
)

// Interval is an ordered (start, end) pair with start < end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// FreeSlot is a gap between the padded end of one prayer and the padded
// start of the next.
type FreeSlot struct {
	Interval
	// Between labels the adjacent prayer pair, e.g. "fajr-dohr".
	Between string
	// Night marks the icha-to-next-fajr slot.
	Night bool
}

type timedPrayer struct {
	name string
	at   time.Time
}

// Segment produces the ordered inter-prayer free slots for one day.
//
// Prayers that fail to parse are skipped individually; fewer than two valid
// times yields an empty result rather than an error, so partial upstream
// data degrades gracefully. Pairs whose padded gap is not positive are
// dropped silently. The upstream order is not trusted: instants are sorted
// before pairing.
func Segment(ts prayer.TimeSet, ref time.Time, loc *time.Location, spec prayer.PaddingSpec, order []string) []FreeSlot {
	timed := make([]timedPrayer, 0, len(order))
	for _, name := range order {
		raw, ok := ts[name]
		if !ok || raw == "" {
			continue
		}
		at, err := prayer.ParseClock(raw, ref, loc)
		if err != nil {
			log.Warn().Str("prayer", name).Str("value", raw).Err(err).Msg("skipping unparseable prayer time")
			continue
		}
		timed = append(timed, timedPrayer{name: name, at: at})
	}

	if len(timed) < 2 {
		return nil
	}

	sort.Slice(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	slots := make([]FreeSlot, 0, len(timed)-1)
	for i := 0; i < len(timed)-1; i++ {
		cur, next := timed[i], timed[i+1]

		after := spec.Resolve(cur.name).After
		before := spec.Resolve(next.name).Before

		start := cur.at.Add(time.Duration(after) * time.Minute)
		end := next.at.Add(-time.Duration(before) * time.Minute)

		if !start.Before(end) {
			log.Debug().Str("between", cur.name+"-"+next.name).Msg("dropping non-positive gap")
			continue
		}

		slots = append(slots, FreeSlot{
			Interval: Interval{Start: start, End: end},
			Between:  cur.name + "-" + next.name,
		})
	}

	return slots
}

// NightGap computes the free slot between icha and the next day's fajr.
// Fajr is rolled forward 24h when it does not already fall after icha.
// Returns false when either time is missing/unparseable or the padded gap
// is not positive.
func NightGap(ts prayer.TimeSet, ref time.Time, loc *time.Location, spec prayer.PaddingSpec) (FreeSlot, bool) {
	ichaRaw, okIcha := ts[prayer.Icha]
	fajrRaw, okFajr := ts[prayer.Fajr]
	if !okIcha || !okFajr || ichaRaw == "" || fajrRaw == "" {
		return FreeSlot{}, false
	}

	icha, err := prayer.ParseClock(ichaRaw, ref, loc)
	if err != nil {
		log.Warn().Str("value", ichaRaw).Err(err).Msg("skipping night gap: bad icha time")
		return FreeSlot{}, false
	}
	fajr, err := prayer.ParseClock(fajrRaw, ref, loc)
	if err != nil {
		log.Warn().Str("value", fajrRaw).Err(err).Msg("skipping night gap: bad fajr time")
		return FreeSlot{}, false
	}

	if !fajr.After(icha) {
		fajr = fajr.Add(24 * time.Hour)
	}

	start := icha.Add(time.Duration(spec.Resolve(prayer.Icha).After) * time.Minute)
	end := fajr.Add(-time.Duration(spec.Resolve(prayer.Fajr).Before) * time.Minute)

	if !start.Before(end) {
		return FreeSlot{}, false
	}

	return FreeSlot{
		Interval: Interval{Start: start, End: end},
		Between:  prayer.Icha + "-" + prayer.Fajr,
		Night:    true,
	}, true
}

// FreeSlots is Segment plus the night gap, in chronological order.
func FreeSlots(ts prayer.TimeSet, ref time.Time, loc *time.Location, spec prayer.PaddingSpec, order []string) []FreeSlot {
	slots := Segment(ts, ref, loc, spec, order)
	if night, ok := NightGap(ts, ref, loc, spec); ok {
		slots = append(slots, night)
	}
	return slots
}
