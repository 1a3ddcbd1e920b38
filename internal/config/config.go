// Package config loads the server configuration from the environment, an
// optional .env file and command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/schedule"
	"github.com/hperssn/coachbook/internal/storage"
)

const prefix = "COACHBOOK_"

type Config struct {
	// Addr is the HTTP listen address (COACHBOOK_ADDR)
	Addr string

	// Store selects the repository backend (COACHBOOK_STORE)
	Store string

	// DSN is the backend file path or connection string (COACHBOOK_DSN)
	DSN string

	// Open and Close bound the operating window as offsets from midnight
	// (COACHBOOK_OPEN, COACHBOOK_CLOSE, "15:04")
	Open  time.Duration
	Close time.Duration

	// Step is the slot granularity (COACHBOOK_STEP)
	Step time.Duration

	// Durations are the bookable session lengths in minutes (COACHBOOK_DURATIONS)
	Durations []int

	// Tick is the ledger and reminder interval (COACHBOOK_TICK)
	Tick time.Duration

	// Tolerance is the near-miss window for reminders (COACHBOOK_TOLERANCE)
	Tolerance time.Duration

	// ConfirmDelivery keeps failed reminders pending (COACHBOOK_CONFIRM_DELIVERY)
	ConfirmDelivery bool

	WebhookURL string
	Icon       string
	LogLevel   string
	LogFormat  string
}

func Default() *Config {
	hours := schedule.DefaultHours()

	return &Config{
		Addr:      ":8080",
		Store:     storage.DriverBolt,
		DSN:       "coachbook.db",
		Open:      hours.Open,
		Close:     hours.Close,
		Step:      hours.Step,
		Durations: append([]int(nil), domain.DefaultDurations...),
		Tick:      time.Minute,
		Tolerance: time.Minute,
		Icon:      schedule.DefaultReminderIcon,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

var (
	loaded     *Config
	loadErr    error
	loadedOnce sync.Once
)

// Load reads the given .env files (".env" when none are given), then the
// process environment. The result is cached for the life of the process.
func Load(files ...string) (*Config, error) {
	loadedOnce.Do(func() {
		if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
			loadErr = fmt.Errorf("load env file: %w", err)
			return
		}
		loaded, loadErr = FromEnv(os.LookupEnv)
	})
	return loaded, loadErr
}

// Reset drops the cached configuration.
func Reset() {
	loadedOnce = sync.Once{}
	loaded, loadErr = nil, nil
}

// FromEnv builds a configuration from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("ADDR", &cfg.Addr)
	p.str("STORE", &cfg.Store)
	p.str("DSN", &cfg.DSN)
	p.clock("OPEN", &cfg.Open)
	p.clock("CLOSE", &cfg.Close)
	p.duration("STEP", &cfg.Step)
	p.ints("DURATIONS", &cfg.Durations)
	p.duration("TICK", &cfg.Tick)
	p.duration("TOLERANCE", &cfg.Tolerance)
	p.boolean("CONFIRM_DELIVERY", &cfg.ConfirmDelivery)
	p.str("WEBHOOK_URL", &cfg.WebhookURL)
	p.str("ICON", &cfg.Icon)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.str("LOG_FORMAT", &cfg.LogFormat)

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides fields with every flag the user set explicitly.
// Flags are looked up by the lower-case key name with dashes ("webhook-url").
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	p := parser{lookup: func(key string) (string, bool) {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "_", "-")
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}}

	p.str("ADDR", &c.Addr)
	p.str("STORE", &c.Store)
	p.str("DSN", &c.DSN)
	p.clock("OPEN", &c.Open)
	p.clock("CLOSE", &c.Close)
	p.duration("TICK", &c.Tick)
	p.boolean("CONFIRM_DELIVERY", &c.ConfirmDelivery)
	p.str("WEBHOOK_URL", &c.WebhookURL)
	p.str("LOG_LEVEL", &c.LogLevel)
	p.str("LOG_FORMAT", &c.LogFormat)

	if err := errors.Join(p.errs...); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Hours() schedule.Hours {
	return schedule.Hours{Open: c.Open, Close: c.Close, Step: c.Step}
}

func (c *Config) Validate() error {
	if err := c.Hours().Validate(); err != nil {
		return err
	}

	switch c.Store {
	case storage.DriverMemory, storage.DriverBolt, storage.DriverSQLite, storage.DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown store %q", domain.ErrInvalidInput, c.Store)
	}

	if c.Store != storage.DriverMemory && c.DSN == "" {
		return fmt.Errorf("%w: store %s needs a dsn", domain.ErrInvalidInput, c.Store)
	}

	if len(c.Durations) == 0 {
		return fmt.Errorf("%w: no session durations", domain.ErrInvalidInput)
	}
	for _, d := range c.Durations {
		if d <= 0 {
			return fmt.Errorf("%w: duration %d must be positive", domain.ErrInvalidInput, d)
		}
	}

	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", domain.ErrInvalidInput)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative", domain.ErrInvalidInput)
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q", domain.ErrInvalidInput, c.LogFormat)
	}

	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", domain.ErrInvalidInput, c.LogLevel)
	}
	return level, nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(prefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s%s=%q: %v", domain.ErrInvalidInput, prefix, key, v, err))
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) boolean(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

// clock parses a wall-clock time of day ("10:00") into an offset from midnight.
func (p *parser) clock(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

func (p *parser) ints(key string, dst *[]int) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	var out []int
	for _, field := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			p.fail(key, v, err)
			return
		}
		out = append(out, n)
	}
	*dst = out
}
