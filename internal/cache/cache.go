// Package cache stores generated ICS artifacts keyed by a fingerprint of
// their generation parameters, with a freshness window so upstream changes
// eventually propagate.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mawaqitics/internal/prayer"
)

// Params identifies one cache entry. Every field that influences the
// generated content participates in the fingerprint.
type Params struct {
	MosqueID      string                    `json:"masjid_id"`
	Scope         string                    `json:"scope"`
	PaddingBefore int                       `json:"padding_before"`
	PaddingAfter  int                       `json:"padding_after"`
	IncludeSunset bool                      `json:"include_sunset"`
	Kind          string                    `json:"file_type"`
	PerPrayer     map[string]prayer.Padding `json:"prayer_paddings,omitempty"`
	Features      []string                  `json:"features,omitempty"`
}

// Key fingerprints the parameters plus a time discriminator derived from
// the scope, so a "day" entry naturally misses on the next day, a "month"
// entry on the next month, a "year" entry on the next year.
func (p Params) Key(now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s_%s_%d_%d_%t_%s", p.MosqueID, p.Scope, p.PaddingBefore, p.PaddingAfter, p.IncludeSunset, p.Kind)

	if len(p.PerPrayer) > 0 {
		names := make([]string, 0, len(p.PerPrayer))
		for name := range p.PerPrayer {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("_paddings")
		for _, name := range names {
			pad := p.PerPrayer[name]
			fmt.Fprintf(&sb, "_%s_%d_%d", name, pad.Before, pad.After)
		}
	}

	if len(p.Features) > 0 {
		feats := append([]string(nil), p.Features...)
		sort.Strings(feats)
		sb.WriteString("_features_" + strings.Join(feats, "_"))
	}

	switch p.Scope {
	case "day":
		fmt.Fprintf(&sb, "_%s", now.Format("2006-01-02"))
	case "month":
		fmt.Fprintf(&sb, "_%d_%02d", now.Year(), int(now.Month()))
	case "year":
		fmt.Fprintf(&sb, "_%d", now.Year())
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Meta is the sidecar record stored next to each cached artifact.
type Meta struct {
	CreatedAt    time.Time `json:"created_at"`
	OriginalPath string    `json:"original_path"`
	FileSize     int64     `json:"file_size"`
	Params       Params    `json:"parameters"`
}

// Manager owns one cache directory.
type Manager struct {
	dir    string
	maxAge time.Duration
}

// New creates the cache directory if needed.
func New(dir string, maxAge time.Duration) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Manager{dir: dir, maxAge: maxAge}, nil
}

// Dir returns the cache directory.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) entryPath(key, kind string) string {
	return filepath.Join(m.dir, key+"_"+kind+".ics")
}

func (m *Manager) metaPath(key string) string {
	return filepath.Join(m.dir, key+"_metadata.json")
}

func (m *Manager) readMeta(key string) (Meta, error) {
	data, err := os.ReadFile(m.metaPath(key))
	if err != nil {
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// Lookup returns the path of a valid cached artifact. An entry is valid
// when the artifact and its sidecar both exist, the entry is younger than
// the freshness window, and the on-disk size matches the recorded one.
func (m *Manager) Lookup(p Params, now time.Time) (string, bool) {
	key := p.Key(now)
	path := m.entryPath(key, p.Kind)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	meta, err := m.readMeta(key)
	if err != nil {
		return "", false
	}

	age := now.Sub(meta.CreatedAt)
	if age > m.maxAge {
		log.Debug().Str("kind", p.Kind).Dur("age", age).Msg("cache entry expired")
		return "", false
	}

	if info.Size() != meta.FileSize {
		log.Warn().Str("kind", p.Kind).Int64("expected", meta.FileSize).Int64("actual", info.Size()).Msg("cache size mismatch, treating as miss")
		return "", false
	}

	return path, true
}

// Store writes the artifact and its sidecar, returning the cached path.
func (m *Manager) Store(p Params, content []byte, originalPath string, now time.Time) (string, error) {
	key := p.Key(now)
	path := m.entryPath(key, p.Kind)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", err
	}

	meta := Meta{
		CreatedAt:    now,
		OriginalPath: originalPath,
		FileSize:     int64(len(content)),
		Params:       p,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(m.metaPath(key), data, 0o600); err != nil {
		return "", err
	}

	log.Debug().Str("kind", p.Kind).Str("path", path).Msg("cached artifact")
	return path, nil
}

// CopyTo copies a valid cached artifact to the destination path, creating
// parent directories as needed. Returns false on a cache miss. A copy
// failure is logged and reported as a miss too, never as an error: an
// eviction can race the copy, and the caller regenerates either way.
func (m *Manager) CopyTo(p Params, dst string, now time.Time) bool {
	src, ok := m.Lookup(p, now)
	if !ok {
		return false
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		log.Warn().Err(err).Str("kind", p.Kind).Msg("cache copy failed, treating as miss")
		return false
	}
	data, err := os.ReadFile(src)
	if err != nil {
		log.Warn().Err(err).Str("kind", p.Kind).Msg("cache copy failed, treating as miss")
		return false
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		log.Warn().Err(err).Str("kind", p.Kind).Msg("cache copy failed, treating as miss")
		return false
	}
	return true
}

// Evict removes entries older than olderThan. A zero duration removes
// everything. Returns the number of entries removed.
func (m *Manager) Evict(olderThan time.Duration, now time.Time) int {
	metas, err := filepath.Glob(filepath.Join(m.dir, "*_metadata.json"))
	if err != nil {
		log.Error().Err(err).Msg("listing cache metadata")
		return 0
	}

	removed := 0
	for _, metaFile := range metas {
		key := strings.TrimSuffix(filepath.Base(metaFile), "_metadata.json")

		expired := olderThan <= 0
		if !expired {
			meta, err := m.readMeta(key)
			if err != nil {
				expired = true
			} else {
				expired = now.Sub(meta.CreatedAt) > olderThan
			}
		}
		if !expired {
			continue
		}

		if err := os.Remove(metaFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", metaFile).Msg("removing cache metadata")
		}
		artifacts, _ := filepath.Glob(filepath.Join(m.dir, key+"_*.ics"))
		for _, f := range artifacts {
			if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Str("file", f).Msg("removing cache artifact")
			}
		}
		removed++
		log.Info().Str("key", key).Msg("evicted cache entry")
	}

	return removed
}

// EvictExpired removes entries past the manager's freshness window.
func (m *Manager) EvictExpired(now time.Time) int {
	return m.Evict(m.maxAge, now)
}

// Stats summarizes the cache directory contents.
type Stats struct {
	Dir            string  `json:"cache_dir"`
	Files          int     `json:"total_files"`
	MetaFiles      int     `json:"total_metadata"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	TotalSizeMB    float64 `json:"total_size_mb"`
}

// Stats walks the cache directory and reports artifact counts and sizes.
func (m *Manager) Stats() Stats {
	st := Stats{Dir: m.dir}

	ics, _ := filepath.Glob(filepath.Join(m.dir, "*.ics"))
	metas, _ := filepath.Glob(filepath.Join(m.dir, "*_metadata.json"))

	st.Files = len(ics)
	st.MetaFiles = len(metas)
	for _, f := range ics {
		if info, err := os.Stat(f); err == nil {
			st.TotalSizeBytes += info.Size()
		}
	}
	st.TotalSizeMB = float64(st.TotalSizeBytes) / (1024 * 1024)

	return st
}
