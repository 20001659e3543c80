// Package config loads MediaVault settings from an optional YAML file and
// the environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/inconshreveable/log15/v3"
	"gopkg.in/yaml.v3"
)

var logger = log15.New("module", "config")

type Mode int

const (
	ModeServe Mode = iota
	ModeDigest
)

type Config struct {
	DiscordToken    string        `yaml:"discord_bot_token"`
	DatabaseURL     string        `yaml:"database_url"`
	Port            string        `yaml:"port"`
	SitePassword    string        `yaml:"site_password"`
	SessionSecret   string        `yaml:"session_secret"`
	RedisURL        string        `yaml:"redis_url"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	DigestSchedule  string        `yaml:"digest_schedule"`
	DigestTimezone  string        `yaml:"digest_timezone"`
	DigestPostDelay time.Duration `yaml:"digest_post_delay"`
	LogLevel        string        `yaml:"log_level"`
	NgrokAuthtoken  string        `yaml:"ngrok_authtoken"`
}

func Defaults() Config {
	return Config{
		DatabaseURL:     "data.db",
		Port:            "8080",
		AllowedOrigins:  []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		DigestSchedule:  "0 0 * * 0",
		DigestTimezone:  "UTC",
		DigestPostDelay: time.Second,
		LogLevel:        "info",
	}
}

// Load builds the configuration: defaults, then CONFIG_FILE if set, then
// environment variables.
func Load() (*Config, error) {
	LoadEnv()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("LoadFile: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("LoadFile: failed to parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("DISCORD_BOT_TOKEN", &cfg.DiscordToken)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("PORT", &cfg.Port)
	str("SITE_PASSWORD", &cfg.SitePassword)
	str("SESSION_SECRET", &cfg.SessionSecret)
	str("REDIS_URL", &cfg.RedisURL)
	str("DIGEST_SCHEDULE", &cfg.DigestSchedule)
	str("DIGEST_TIMEZONE", &cfg.DigestTimezone)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("NGROK_AUTHTOKEN", &cfg.NgrokAuthtoken)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("DIGEST_POST_DELAY"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("applyEnv: invalid DIGEST_POST_DELAY %q: %w", v, err)
		}
		cfg.DigestPostDelay = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location resolves DigestTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DigestTimezone)
	if err != nil {
		return nil, fmt.Errorf("Location: unknown timezone %q: %w", c.DigestTimezone, err)
	}
	return loc, nil
}

// ConfigError lists every problem found by Validate.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the settings needed by mode.
func (c *Config) Validate(mode Mode) error {
	var problems []string

	if c.DiscordToken == "" {
		problems = append(problems, "DISCORD_BOT_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("DIGEST_TIMEZONE %q is not a known timezone", c.DigestTimezone))
	}
	if c.DigestPostDelay < 0 {
		problems = append(problems, "DIGEST_POST_DELAY must not be negative")
	}
	if _, err := log15.LvlFromString(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a known level", c.LogLevel))
	}

	if mode == ModeServe {
		if c.SitePassword == "" {
			problems = append(problems, "SITE_PASSWORD is required")
		}
		if c.RedisURL == "" && len(c.SessionSecret) != 32 {
			problems = append(problems, "SESSION_SECRET must be 32 characters long when REDIS_URL is not set")
		}
		if c.Port == "" {
			problems = append(problems, "PORT is required")
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
