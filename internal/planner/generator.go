package planner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"mawaqitics/internal/cache"
	"mawaqitics/internal/config"
	"mawaqitics/internal/features"
	"mawaqitics/internal/ics"
	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/prayer"
	"mawaqitics/internal/schedule"
)

// Artifact kinds, also used in cache keys and output filenames.
const (
	KindPrayerTimes = "prayer_times"
	KindSlots       = "slots"
	KindEmptySlots  = "empty_slots"
)

var artifactKinds = []string{KindPrayerTimes, KindSlots, KindEmptySlots}

// Request describes one generation run.
type Request struct {
	MosqueID      string                    `json:"masjid_id"`
	Scope         Scope                     `json:"scope"`
	Padding       prayer.Padding            `json:"padding"`
	PerPrayer     map[string]prayer.Padding `json:"prayer_paddings,omitempty"`
	IncludeSunset bool                      `json:"include_sunset"`
	Features      features.Options          `json:"features"`
}

// PaddingSpec assembles the request's padding configuration.
func (r Request) PaddingSpec() prayer.PaddingSpec {
	return prayer.PaddingSpec{Default: r.Padding, PerPrayer: r.PerPrayer}
}

// Validate rejects requests that cannot possibly succeed, before any
// upstream traffic.
func (r Request) Validate() error {
	if r.MosqueID == "" {
		return errors.New("masjid_id is required")
	}
	if _, err := ParseScope(string(r.Scope)); err != nil {
		return err
	}
	return r.PaddingSpec().Validate()
}

// featureList renders the enabled feature flags for cache fingerprinting.
func (r Request) featureList() []string {
	var out []string
	if r.Features.ShowHijriDate {
		out = append(out, "show_hijri_date")
	}
	if r.Features.IncludeVoluntaryFasts {
		out = append(out, "include_voluntary_fasts")
	}
	if r.Features.IncludeAdhkar {
		out = append(out, "include_adhkar")
	}
	return out
}

// Segment is the wire representation of one free slot, as returned to
// API clients alongside the artifact links.
type Segment struct {
	Between  string `json:"between"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	Night    bool   `json:"night,omitempty"`
}

// DaySegments groups one day's free slots.
type DaySegments struct {
	Date  string    `json:"date"`
	Slots []Segment `json:"slots"`
}

// Result carries the generated artifact paths.
type Result struct {
	MosqueID      string        `json:"masjid_id"`
	Scope         Scope         `json:"scope"`
	Timezone      string        `json:"timezone"`
	PrayerTimes   string        `json:"prayer_times"`
	Slots         string        `json:"slots"`
	EmptySlots    string        `json:"empty_slots"`
	Segments      []DaySegments `json:"segments"`
	FromCache     int           `json:"from_cache"`
	DaysGenerated int           `json:"days_generated"`
}

// Generator wires the fetch, normalize, build and cache stages together.
type Generator struct {
	cfg    *config.Config
	client *mawaqit.Client
	cache  *cache.Manager

	// now is swappable for tests.
	now func() time.Time
}

// New builds a generator over the given collaborators.
func New(cfg *config.Config, client *mawaqit.Client, cacheMgr *cache.Manager) *Generator {
	return &Generator{cfg: cfg, client: client, cache: cacheMgr, now: time.Now}
}

// Generate runs one request end to end and returns the artifact paths.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conf, err := g.client.FetchConfData(ctx, req.MosqueID)
	if err != nil {
		return nil, err
	}

	tz := conf.Timezone
	if tz == "" {
		tz = g.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}

	days, err := g.schedules(conf, req, loc)
	if err != nil {
		return nil, err
	}

	now := g.now()
	result := &Result{
		MosqueID:      req.MosqueID,
		Scope:         req.Scope,
		Timezone:      tz,
		Segments:      segmentDays(days, loc, req),
		DaysGenerated: len(days),
	}

	for _, kind := range artifactKinds {
		params := cache.Params{
			MosqueID:      req.MosqueID,
			Scope:         string(req.Scope),
			PaddingBefore: req.Padding.Before,
			PaddingAfter:  req.Padding.After,
			IncludeSunset: req.IncludeSunset,
			Kind:          kind,
			PerPrayer:     req.PerPrayer,
			Features:      req.featureList(),
		}

		dest := filepath.Join(g.cfg.OutputDir, g.artifactFilename(kind, req.MosqueID, req.Scope, now))

		if g.cache.CopyTo(params, dest, now) {
			log.Info().Str("kind", kind).Str("mosque", req.MosqueID).Msg("served artifact from cache")
			result.setPath(kind, dest)
			result.FromCache++
			continue
		}

		content := g.buildArtifact(kind, req, days, loc)

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return nil, err
		}
		if _, err := g.cache.Store(params, content, dest, now); err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("caching artifact failed, continuing")
		}

		log.Info().Str("kind", kind).Str("mosque", req.MosqueID).Int("days", len(days)).Msg("generated artifact")
		result.setPath(kind, dest)
	}

	return result, nil
}

func (r *Result) setPath(kind, path string) {
	switch kind {
	case KindPrayerTimes:
		r.PrayerTimes = path
	case KindSlots:
		r.Slots = path
	case KindEmptySlots:
		r.EmptySlots = path
	}
}

// artifactFilename produces deterministic output names so repeated runs
// overwrite rather than accumulate:
// prayer_times_<mosque>_2026-08-28.ics, slots_<mosque>_2026_08.ics,
// empty_slots_<mosque>_2026.ics.
func (g *Generator) artifactFilename(kind, mosqueID string, scope Scope, now time.Time) string {
	var period string
	switch scope {
	case ScopeDay:
		period = now.Format("2006-01-02")
	case ScopeMonth:
		period = now.Format("2006_01")
	default:
		period = now.Format("2006")
	}
	return fmt.Sprintf("%s_%s_%s.ics", kind, mosqueID, period)
}

// segmentDays renders the free-slot listing returned to API clients,
// independently of the ICS artifacts (cache hits still get segments).
func segmentDays(days []DaySchedule, loc *time.Location, req Request) []DaySegments {
	spec := req.PaddingSpec()
	order := prayer.Order(req.IncludeSunset)

	out := make([]DaySegments, 0, len(days))
	for _, day := range days {
		slots := schedule.FreeSlots(day.Times, day.Date, loc, spec, order)

		ds := DaySegments{Date: day.Date.Format("2006-01-02"), Slots: make([]Segment, 0, len(slots))}
		for _, slot := range slots {
			ds.Slots = append(ds.Slots, Segment{
				Between:  slot.Between,
				Start:    slot.Start.Format("15:04"),
				End:      slot.End.Format("15:04"),
				Duration: prayer.FormatDuration(slot.Duration()),
				Night:    slot.Night,
			})
		}
		out = append(out, ds)
	}
	return out
}

// schedules resolves the day list for the requested scope.
func (g *Generator) schedules(conf *mawaqit.ConfData, req Request, loc *time.Location) ([]DaySchedule, error) {
	now := g.now().In(loc)

	switch req.Scope {
	case ScopeDay:
		ts, err := conf.DayTimes(req.MosqueID)
		if err != nil {
			return nil, err
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return []DaySchedule{{Date: today, Times: ts}}, nil

	case ScopeMonth:
		month, err := conf.Month(req.MosqueID, int(now.Month()))
		if err != nil {
			return nil, err
		}
		return NormalizeMonth(month, now.Year(), now.Month(), loc), nil

	case ScopeYear:
		return NormalizeYear(conf.Year(), now.Year(), loc), nil
	}

	return nil, &ScopeError{Value: string(req.Scope)}
}

// buildArtifact renders one ICS payload for the given kind.
func (g *Generator) buildArtifact(kind string, req Request, days []DaySchedule, loc *time.Location) []byte {
	spec := req.PaddingSpec()
	order := prayer.Order(req.IncludeSunset)

	b := ics.NewBuilder(g.cfg.Calendar.Name, g.cfg.Calendar.Description, req.MosqueID, spec, req.Features)

	for _, day := range days {
		switch kind {
		case KindPrayerTimes:
			b.AddPrayerDay(day.Date, day.Times.Filter(order), loc, order)
		case KindSlots:
			b.AddFreeSlots(schedule.FreeSlots(day.Times, day.Date, loc, spec, order))
		case KindEmptySlots:
			b.AddEmptySlots(schedule.BucketizeSlots(schedule.FreeSlots(day.Times, day.Date, loc, spec, order)))
		}
	}

	if kind == KindPrayerTimes && req.Features.Enabled() && len(days) > 0 {
		start, end := g.featureRange(req.Scope, loc)
		b.AddDayEvents(features.DayEvents(start, end, req.Features))
	}

	return b.Serialize()
}

// featureRange maps the scope onto the all-day event date range.
func (g *Generator) featureRange(scope Scope, loc *time.Location) (time.Time, time.Time) {
	now := g.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch scope {
	case ScopeDay:
		return today, today
	case ScopeMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, -1)
	default:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc),
			time.Date(now.Year(), 12, 31, 0, 0, 0, 0, loc)
	}
}
