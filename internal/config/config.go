package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FieldsConfig names which raw-record fields the pipeline reads. Start/End
// double as single-date fields for timed records: a timed record stores its
// date in the start field and its clock values in StartTime/EndTime.
type FieldsConfig struct {
	// Title is the record field shown as the event caption.
	Title string `yaml:"title" json:"title"`
	// Start is the start-date field ("2006-01-02" values).
	Start string `yaml:"start" json:"start"`
	// End is the end-date field. For timed records it may equal Start.
	End string `yaml:"end" json:"end"`
	// StartTime/EndTime are optional "HH:MM" fields. When both are set the
	// pipeline treats records as timed instead of date ranges.
	StartTime string `yaml:"start_time" json:"start_time"`
	EndTime   string `yaml:"end_time" json:"end_time"`
	// Color is an optional explicit-color field; non-empty values override
	// the generated palette slot.
	Color string `yaml:"color" json:"color"`
	// Attributes lists extra fields copied verbatim onto each event.
	Attributes []string `yaml:"attributes" json:"attributes"`
}

// ViewConfig holds the grid options shared by all three layouts.
type ViewConfig struct {
	// WeekStartsOn is "monday" (default) or "sunday".
	WeekStartsOn string `yaml:"week_starts_on" json:"week_starts_on"`
	// WorkdaysOnly drops Saturday/Sunday buckets from month and week grids.
	WorkdaysOnly bool `yaml:"workdays_only" json:"workdays_only"`
	// MinuteGranularity is the day-timeline slot width: 15, 30 or 60.
	MinuteGranularity int `yaml:"minute_granularity" json:"minute_granularity"`
	// HoursMode is "all" (00:00..23:xx) or "work" (08:00..18:00).
	HoursMode string `yaml:"hours_mode" json:"hours_mode"`
	// TimeFormat is 12 or 24.
	TimeFormat int `yaml:"time_format" json:"time_format"`
	// Locale selects label text only: en, fr, es or de.
	Locale string `yaml:"locale" json:"locale"`
	// Palette seeds the deterministic color assignment.
	Palette []string `yaml:"palette" json:"palette"`
}

// ICSSourceConfig configures the ICS feed adapter.
type ICSSourceConfig struct {
	URL string `yaml:"url" json:"url"`
	// HorizonDays bounds recurrence expansion around today.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
}

// RedisSourceConfig configures the redis adapter.
type RedisSourceConfig struct {
	Address string `yaml:"address" json:"address"`
	// Password is kept out of JSON so the config API endpoint never leaks it.
	Password string `yaml:"password" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	// KeyPrefix namespaces the record document, pub/sub channel and
	// selection write-back keys.
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// SourceConfig selects and configures the record source.
type SourceConfig struct {
	// Kind is "memory", "ics" or "redis".
	Kind  string            `yaml:"kind" json:"kind"`
	ICS   ICSSourceConfig   `yaml:"ics" json:"ics"`
	Redis RedisSourceConfig `yaml:"redis" json:"redis"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron schedules periodic source re-reads (e.g. "*/5 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Fields FieldsConfig `yaml:"fields" json:"fields"`
	View   ViewConfig   `yaml:"view" json:"view"`
	Source SourceConfig `yaml:"source" json:"source"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8089",
		RefreshCron: "*/5 * * * *",
		Fields: FieldsConfig{
			Title: "title",
			Start: "start",
			End:   "end",
		},
		View: ViewConfig{
			WeekStartsOn:      "monday",
			MinuteGranularity: 60,
			HoursMode:         "all",
			TimeFormat:        24,
			Locale:            "en",
		},
		Source: SourceConfig{
			Kind: "memory",
			ICS:  ICSSourceConfig{HorizonDays: 62},
			Redis: RedisSourceConfig{
				Address:   "127.0.0.1:6379",
				KeyPrefix: "gridcal",
			},
		},
	}
}

// Normalize fills in missing/zero values and clamps unknown enum values so
// partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8089"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/5 * * * *"
	}

	switch c.View.WeekStartsOn {
	case "monday", "sunday":
	default:
		c.View.WeekStartsOn = "monday"
	}
	switch c.View.MinuteGranularity {
	case 15, 30, 60:
	default:
		c.View.MinuteGranularity = 60
	}
	switch c.View.HoursMode {
	case "all", "work":
	default:
		c.View.HoursMode = "all"
	}
	switch c.View.TimeFormat {
	case 12, 24:
	default:
		c.View.TimeFormat = 24
	}
	switch c.View.Locale {
	case "en", "fr", "es", "de":
	default:
		c.View.Locale = "en"
	}

	switch c.Source.Kind {
	case "memory", "ics", "redis":
	default:
		c.Source.Kind = "memory"
	}
	if c.Source.ICS.HorizonDays <= 0 {
		c.Source.ICS.HorizonDays = 62
	}
	if c.Source.Redis.Address == "" {
		c.Source.Redis.Address = "127.0.0.1:6379"
	}
	if c.Source.Redis.KeyPrefix == "" {
		c.Source.Redis.KeyPrefix = "gridcal"
	}
}

// WeekStart maps the configured week-start token to a time.Weekday.
func (c *Config) WeekStart() time.Weekday {
	if c.View.WeekStartsOn == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600, parent
// directory created) and returned. Otherwise the YAML is unmarshalled and
// normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
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

// Save writes the configuration atomically: temp file in the target
// directory, fsync, chmod 0600, rename.
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

	tmp, err := os.CreateTemp(dir, ".gridcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
