// Package config holds the YAML configuration for moonday. A missing file
// is created with defaults on first load; saved files are mode 0600.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"moonday/internal/moonday"
)

// GenerationConfig holds the user-facing moonday generation settings.
type GenerationConfig struct {
	// UpToYear is the last calendar year to generate moondays for. Zero
	// means next year.
	UpToYear int `yaml:"up_to_year" json:"up_to_year"`

	// AvoidPeakTime shifts moondays whose peak is closer to the practice
	// time of a neighbouring day.
	AvoidPeakTime bool `yaml:"avoid_peak_time" json:"avoid_peak_time"`

	// PracticeTime is the daily anchor, "HH:mm" in 30-minute steps.
	PracticeTime string `yaml:"practice_time" json:"practice_time"`

	// Reminder attaches a display alarm ReminderDaysBefore days ahead.
	Reminder           bool `yaml:"reminder" json:"reminder"`
	ReminderDaysBefore int  `yaml:"reminder_days_before" json:"reminder_days_before"`

	// ShowExactTime appends the peak time of day to titles.
	ShowExactTime bool `yaml:"show_exact_time" json:"show_exact_time"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the display zone: an IANA name (e.g. "Asia/Seoul"),
	// "Local", or a UTC offset such as "+09:00".
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName and Domain identify the exported calendar.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`
	Domain       string `yaml:"domain" json:"domain"`

	// RefreshCron is the cron schedule on which serve mode regenerates the
	// calendar so that the range keeps starting at "now".
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// MaxHorizonYears caps UpToYear relative to the current year.
	MaxHorizonYears int `yaml:"max_horizon_years" json:"max_horizon_years"`

	Generation GenerationConfig `yaml:"generation" json:"generation"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "Local"
	defaultCalendarName = "Moondays"
	defaultDomain       = "moonday.local"
	defaultRefreshCron  = "0 0 * * *"
	defaultLogLevel     = "info"
	defaultPracticeTime = "06:00"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          defaultListen,
		Timezone:        defaultTimezone,
		CalendarName:    defaultCalendarName,
		Domain:          defaultDomain,
		RefreshCron:     defaultRefreshCron,
		LogLevel:        defaultLogLevel,
		MaxHorizonYears: moonday.DefaultMaxHorizonYears,
		Generation: GenerationConfig{
			UpToYear:           time.Now().Year() + 1,
			AvoidPeakTime:      false,
			PracticeTime:       defaultPracticeTime,
			Reminder:           false,
			ReminderDaysBefore: 1,
			ShowExactTime:      false,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly. It does not validate;
// see Validate.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.CalendarName == "" {
		c.CalendarName = defaultCalendarName
	}
	if c.Domain == "" {
		c.Domain = defaultDomain
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxHorizonYears <= 0 {
		c.MaxHorizonYears = moonday.DefaultMaxHorizonYears
	}
	if c.Generation.UpToYear == 0 {
		c.Generation.UpToYear = time.Now().Year() + 1
	}
	if c.Generation.PracticeTime == "" {
		c.Generation.PracticeTime = defaultPracticeTime
	}
	if c.Generation.ReminderDaysBefore == 0 {
		c.Generation.ReminderDaysBefore = 1
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return moonday.ResolveLocation(c.Timezone)
}

// Options converts the config into the immutable input of one generation.
func (c *Config) Options() (moonday.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return moonday.Options{}, err
	}
	g := c.Generation
	return moonday.Options{
		UpToYear: g.UpToYear,
		Avoidance: moonday.AvoidanceConfig{
			Enabled: g.AvoidPeakTime,
			Anchor:  g.PracticeTime,
		},
		Reminder: moonday.ReminderConfig{
			Enabled:    g.Reminder,
			DaysBefore: g.ReminderDaysBefore,
		},
		Display: moonday.DisplayConfig{
			ShowExactTime: g.ShowExactTime,
		},
		Location:        loc,
		MaxHorizonYears: c.MaxHorizonYears,
	}, nil
}

// Validate reports the first configuration problem as a
// *moonday.ConfigurationError.
func (c *Config) Validate(now time.Time) error {
	opts, err := c.Options()
	if err != nil {
		return err
	}
	if err := opts.Validate(now); err != nil {
		return err
	}
	if c.Generation.AvoidPeakTime && !slices.Contains(PracticeTimes(), c.Generation.PracticeTime) {
		return &moonday.ConfigurationError{
			Field:  "practice_time",
			Value:  c.Generation.PracticeTime,
			Reason: "not one of the selectable practice times",
		}
	}
	return nil
}

var practiceTimes = sync.OnceValue(func() []string {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.MINUTELY,
		Interval: 30,
		Count:    48,
		Dtstart:  time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil
	}
	out := make([]string, 0, 48)
	for _, t := range r.All() {
		out = append(out, t.Format("15:04"))
	}
	return out
})

// PracticeTimes lists the selectable anchors, "00:00" through "23:30" in
// 30-minute steps.
func PracticeTimes() []string {
	return slices.Clone(practiceTimes())
}

// Load reads the YAML file at path. Unknown keys are rejected so that a
// typo in generation settings does not silently fall back to a default.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: empty path")
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		// The defaults are still usable when the file cannot be written.
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save normalizes cfg and writes it to path through a temp file in the
// same directory, so readers never observe a partial file.
func Save(path string, cfg *Config) error {
	switch {
	case path == "":
		return errors.New("config: empty path")
	case cfg == nil:
		return errors.New("config: nil config")
	}

	cfg.Normalize()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return writeFileAtomic(path, data, 0o600)
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".moonday-config-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save writes c to path. See the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Clone returns a deep copy, so request-scoped overrides never touch the
// shared config.
func (c *Config) Clone() *Config {
	out := *c
	if c.BasicAuth != nil {
		ba := *c.BasicAuth
		out.BasicAuth = &ba
	}
	return &out
}
