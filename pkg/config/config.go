package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parkbj12/songil-ai/pkg/database"
)

// Config holds everything the dashboard client needs at start-up.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimit is the sustained number of backend requests per second.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	Debounce     time.Duration `yaml:"debounce"`
	PollInitial  time.Duration `yaml:"poll_initial"`
	PollInterval time.Duration `yaml:"poll_interval"`
	ReminderTime string        `yaml:"reminder_time"`

	DB string `yaml:"db"`
}

// Default returns the configuration used when no file or env override is present.
func Default() Config {
	return Config{
		BaseURL:        "http://localhost:5000",
		RequestTimeout: 15 * time.Second,
		RateLimit:      5,
		RateBurst:      10,
		Debounce:       500 * time.Millisecond,
		PollInitial:    30 * time.Minute,
		PollInterval:   5 * time.Minute,
		ReminderTime:   "14:00",
		DB:             database.DefaultPath(),
	}
}

// Load reads an optional YAML file over the defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HEALTHDASH_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HEALTHDASH_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("HEALTHDASH_REMINDER_TIME"); v != "" {
		cfg.ReminderTime = v
	}
	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"HEALTHDASH_DEBOUNCE", &cfg.Debounce},
		{"HEALTHDASH_POLL_INITIAL", &cfg.PollInitial},
		{"HEALTHDASH_POLL_INTERVAL", &cfg.PollInterval},
		{"HEALTHDASH_REQUEST_TIMEOUT", &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = parsed
	}
	if v := os.Getenv("HEALTHDASH_RATE_LIMIT"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HEALTHDASH_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = r
	}
	return nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL (got %q)", c.BaseURL)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive (got %s)", c.Debounce)
	}
	if c.PollInitial < 0 {
		return fmt.Errorf("poll_initial cannot be negative (got %s)", c.PollInitial)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive (got %s)", c.PollInterval)
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("rate_limit and rate_burst must be positive (got %v/%d)", c.RateLimit, c.RateBurst)
	}
	if _, err := time.Parse("15:04", c.ReminderTime); err != nil {
		return fmt.Errorf("reminder_time must be HH:MM (got %q)", c.ReminderTime)
	}
	if c.DB == "" {
		return errors.New("db is required")
	}
	return nil
}
