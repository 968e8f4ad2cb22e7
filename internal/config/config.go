package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MawaqitConfig describes how the upstream Mawaqit site is reached.
type MawaqitConfig struct {
	// BaseURL is the mosque-page endpoint prefix, e.g. "https://mawaqit.net/fr".
	BaseURL string `yaml:"base_url" json:"base_url"`
	// UserAgent is sent on every upstream request.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// TimeoutSeconds bounds a single upstream request.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// RetryDelaySeconds is the pause between attempts.
	RetryDelaySeconds int `yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
	// HeadlessFallback enables the chromedp fetch path when the static
	// page does not embed confData.
	HeadlessFallback bool `yaml:"headless_fallback" json:"headless_fallback"`
}

// CalendarConfig names the generated ICS calendars.
type CalendarConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DefaultTimezone is used when the upstream mosque data carries no
	// timezone of its own (IANA name).
	DefaultTimezone string `yaml:"default_timezone" json:"default_timezone"`

	// OutputDir is where generated ICS artifacts are written.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CacheDir holds the fingerprinted artifact cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// CacheMaxAgeHours is the freshness window for cached artifacts.
	CacheMaxAgeHours int `yaml:"cache_max_age_hours" json:"cache_max_age_hours"`

	// EvictionCron is a cron-style schedule (e.g. "0 * * * *") for
	// removing expired cache entries while serving.
	EvictionCron string `yaml:"eviction_cron" json:"eviction_cron"`

	// MosqueDataDir holds the per-country mosque directory JSON files.
	MosqueDataDir string `yaml:"mosque_data_dir" json:"mosque_data_dir"`

	// PaddingBefore / PaddingAfter are the default paddings (minutes)
	// applied around prayer times when a request does not set its own.
	// Pointers distinguish an absent key from an explicit 0; negative
	// values are kept as-is and rejected at request validation.
	PaddingBefore *int `yaml:"padding_before" json:"padding_before"`
	PaddingAfter  *int `yaml:"padding_after" json:"padding_after"`

	Mawaqit  MawaqitConfig  `yaml:"mawaqit" json:"mawaqit"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
}

func intp(v int) *int { return &v }

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           "127.0.0.1:8080",
		LogLevel:         "info",
		DefaultTimezone:  "Europe/Paris",
		OutputDir:        "./var/ics",
		CacheDir:         "./var/cache",
		CacheMaxAgeHours: 24,
		EvictionCron:     "0 * * * *",
		MosqueDataDir:    "./data/mosques_by_country",
		PaddingBefore:    intp(10),
		PaddingAfter:     intp(35),
		Mawaqit: MawaqitConfig{
			BaseURL:           "https://mawaqit.net/fr",
			UserAgent:         "mawaqitics/1.0",
			TimeoutSeconds:    15,
			MaxRetries:        2,
			RetryDelaySeconds: 2,
			HeadlessFallback:  false,
		},
		Calendar: CalendarConfig{
			Name:        "Prayer Times",
			Description: "Prayer times calendar",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = def.DefaultTimezone
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.CacheMaxAgeHours <= 0 {
		c.CacheMaxAgeHours = def.CacheMaxAgeHours
	}
	if c.EvictionCron == "" {
		c.EvictionCron = def.EvictionCron
	}
	if c.MosqueDataDir == "" {
		c.MosqueDataDir = def.MosqueDataDir
	}
	if c.PaddingBefore == nil {
		c.PaddingBefore = def.PaddingBefore
	}
	if c.PaddingAfter == nil {
		c.PaddingAfter = def.PaddingAfter
	}
	if c.Mawaqit.BaseURL == "" {
		c.Mawaqit.BaseURL = def.Mawaqit.BaseURL
	}
	if c.Mawaqit.UserAgent == "" {
		c.Mawaqit.UserAgent = def.Mawaqit.UserAgent
	}
	if c.Mawaqit.TimeoutSeconds <= 0 {
		c.Mawaqit.TimeoutSeconds = def.Mawaqit.TimeoutSeconds
	}
	if c.Mawaqit.MaxRetries < 0 {
		c.Mawaqit.MaxRetries = def.Mawaqit.MaxRetries
	}
	if c.Mawaqit.RetryDelaySeconds <= 0 {
		c.Mawaqit.RetryDelaySeconds = def.Mawaqit.RetryDelaySeconds
	}
	if c.Calendar.Name == "" {
		c.Calendar.Name = def.Calendar.Name
	}
	if c.Calendar.Description == "" {
		c.Calendar.Description = def.Calendar.Description
	}
}

// ApplyEnv overlays environment variables on top of the loaded config.
// Variables are optional; unset ones leave the config untouched. A .env
// file, if present, should be loaded (godotenv) before calling this.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MAWAQITICS_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("MAWAQITICS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MAWAQITICS_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("MAWAQITICS_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("MAWAQITICS_CACHE_MAX_AGE_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CacheMaxAgeHours = n
		}
	}
	if v := os.Getenv("MAWAQITICS_MAWAQIT_BASE_URL"); v != "" {
		c.Mawaqit.BaseURL = v
	}
	if v := os.Getenv("MAWAQITICS_MOSQUE_DATA_DIR"); v != "" {
		c.MosqueDataDir = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mawaqitics-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
