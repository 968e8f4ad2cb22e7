package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawaqitics/internal/cache"
	"mawaqitics/internal/config"
	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/prayer"
)

const confPage = `<html><head><script>
var confData = {"name":"Test Mosque","timezone":"UTC","times":["05:30","12:30","15:45","18:20","20:00"],"shuruq":"06:45","calendar":[]};
</script></head><body></body></html>`

func testGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "ics")
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Mawaqit.BaseURL = baseURL
	cfg.Mawaqit.MaxRetries = 0

	cacheMgr, err := cache.New(cfg.CacheDir, 24*time.Hour)
	require.NoError(t, err)

	g := New(cfg, mawaqit.NewClient(cfg.Mawaqit), cacheMgr)
	g.now = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return g
}

func dayRequest() Request {
	return Request{
		MosqueID: "test-mosque-1",
		Scope:    ScopeDay,
		Padding:  prayer.Padding{Before: 10, After: 35},
	}
}

func TestGenerateDayScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, confPage)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	result, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err)

	assert.Equal(t, "UTC", result.Timezone)
	assert.Equal(t, 1, result.DaysGenerated)
	assert.Equal(t, 0, result.FromCache)

	for _, path := range []string{result.PrayerTimes, result.Slots, result.EmptySlots} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0))
	}

	assert.Equal(t, "prayer_times_test-mosque-1_2026-03-10.ics", filepath.Base(result.PrayerTimes))
	assert.Equal(t, "slots_test-mosque-1_2026-03-10.ics", filepath.Base(result.Slots))
	assert.Equal(t, "empty_slots_test-mosque-1_2026-03-10.ics", filepath.Base(result.EmptySlots))

	prayerBody, err := os.ReadFile(result.PrayerTimes)
	require.NoError(t, err)
	assert.Contains(t, string(prayerBody), "Fajr (05:30)")
	assert.Contains(t, string(prayerBody), "Icha (20:00)")

	slotsBody, err := os.ReadFile(result.Slots)
	require.NoError(t, err)
	assert.Contains(t, string(slotsBody), "Availability (")
	assert.Contains(t, string(slotsBody), "Night Availability (")

	require.Len(t, result.Segments, 1)
	slots := result.Segments[0].Slots
	require.Len(t, slots, 5)
	assert.Equal(t, "fajr-dohr", slots[0].Between)
	assert.Equal(t, "06:05", slots[0].Start)
	assert.Equal(t, "12:20", slots[0].End)
	assert.Equal(t, "6h15", slots[0].Duration)
	assert.True(t, slots[4].Night)
}

func TestGenerateServesFromCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, confPage)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	first, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, first.FromCache)

	second, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, second.FromCache)
}

func TestGenerateRegeneratesWhenCachedArtifactVanishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, confPage)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	first, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err)
	require.Equal(t, 0, first.FromCache)

	// Swap the cached prayer_times artifact for a directory whose size the
	// metadata vouches for: the lookup still hits but the copy fails, as
	// when an eviction races a request.
	params := cache.Params{
		MosqueID:      "test-mosque-1",
		Scope:         "day",
		PaddingBefore: 10,
		PaddingAfter:  35,
		Kind:          "prayer_times",
	}
	now := g.now()
	key := params.Key(now)
	entry := filepath.Join(g.cfg.CacheDir, key+"_prayer_times.ics")
	require.NoError(t, os.Remove(entry))
	require.NoError(t, os.Mkdir(entry, 0o755))
	info, err := os.Stat(entry)
	require.NoError(t, err)

	meta := cache.Meta{CreatedAt: now, FileSize: info.Size(), Params: params}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(g.cfg.CacheDir, key+"_metadata.json"), data, 0o600))

	second, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err, "a failed cache copy must fall back to regeneration")
	assert.Equal(t, 2, second.FromCache)

	body, err := os.ReadFile(second.PrayerTimes)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Fajr (05:30)")
}

func TestGenerateDistinctPaddingsBypassCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, confPage)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	_, err := g.Generate(context.Background(), dayRequest())
	require.NoError(t, err)

	other := dayRequest()
	other.Padding.After = 45
	result, err := g.Generate(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FromCache)
}

func TestGenerateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	_, err := g.Generate(context.Background(), dayRequest())
	var notFound *mawaqit.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGenerateRejectsInvalidRequestBeforeFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)

	bad := dayRequest()
	bad.Padding.Before = -1
	_, err := g.Generate(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, 0, hits, "invalid requests must not reach upstream")
}

func TestArtifactFilenames(t *testing.T) {
	g := &Generator{}
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "prayer_times_m_2026-03-10.ics", g.artifactFilename(KindPrayerTimes, "m", ScopeDay, now))
	assert.Equal(t, "slots_m_2026_03.ics", g.artifactFilename(KindSlots, "m", ScopeMonth, now))
	assert.Equal(t, "empty_slots_m_2026.ics", g.artifactFilename(KindEmptySlots, "m", ScopeYear, now))
}

func TestGenerateMonthScope(t *testing.T) {
	var months []string
	for m := 0; m < 12; m++ {
		months = append(months, `{"1":["05:30","06:45","12:30","15:45","18:20","20:00"],"2":["05:31","06:46","12:31","15:46","18:21","20:01"]}`)
	}
	page := `<html><script>var confData = {"timezone":"UTC","times":["05:30","12:30","15:45","18:20","20:00"],"shuruq":"06:45","calendar":[` +
		strings.Join(months, ",") + `]};</script></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	g := testGenerator(t, srv.URL)
	req := dayRequest()
	req.Scope = ScopeMonth

	result, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	// March has 31 days, forward-filled from the two upstream entries.
	assert.Equal(t, 31, result.DaysGenerated)

	body, err := os.ReadFile(result.PrayerTimes)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Fajr (05:30)")
	assert.Contains(t, string(body), "Fajr (05:31)")
}
