package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

// Config is the environment-driven application configuration.
type Config struct {
	ListenAddr string `env:"APP_LISTEN_ADDR" envDefault:":8080"`

	DatabaseDSN string `env:"APP_DB_DSN"`
	DBHost      string `env:"APP_DB_HOST"`
	DBPort      string `env:"APP_DB_PORT" envDefault:"5432"`
	DBName      string `env:"APP_DB_NAME"`
	DBUser      string `env:"APP_DB_USER"`
	DBPassword  string `env:"APP_DB_PASSWORD"`
	DBSSLMode   string `env:"APP_DB_SSLMODE" envDefault:"disable"`

	// Timezone is the IANA zone all day/month bucketing happens in.
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`
	// WeekStart is the first day of the week in grid views: sunday or monday.
	WeekStart string `env:"APP_WEEK_START" envDefault:"sunday"`

	RefreshCron  string `env:"APP_REFRESH_CRON" envDefault:"*/15 * * * *"`
	CalendarName string `env:"APP_CALENDAR_NAME" envDefault:"Community Calendar"`

	PrometheusEnabled bool     `env:"APP_PROMETHEUS_ENDPOINT_ENABLED" envDefault:"false"`
	TrustedProxies    []string `env:"APP_TRUSTED_PROXIES" envSeparator:","`

	// AdminUsername/AdminPassword guard the mutating endpoints with HTTP
	// basic auth. Leaving both unset disables the guard.
	AdminUsername string `env:"APP_ADMIN_USERNAME"`
	AdminPassword string `env:"APP_ADMIN_PASSWORD"`

	location *time.Location
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DatabaseDSN == "" {
		var missing []string
		for _, kv := range []struct{ key, val string }{
			{"APP_DB_HOST", cfg.DBHost},
			{"APP_DB_NAME", cfg.DBName},
			{"APP_DB_USER", cfg.DBUser},
			{"APP_DB_PASSWORD", cfg.DBPassword},
		} {
			if kv.val == "" {
				missing = append(missing, kv.key)
			}
		}
		if len(missing) == 0 {
			cfg.DatabaseDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
		}
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("APP_DB_DSN is required (or set APP_DB_HOST, APP_DB_NAME, APP_DB_USER, and APP_DB_PASSWORD)")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	switch cfg.WeekStart {
	case "sunday", "monday":
	default:
		return nil, fmt.Errorf("invalid APP_WEEK_START %q: want sunday or monday", cfg.WeekStart)
	}

	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("APP_ADMIN_USERNAME and APP_ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// Location returns the configured bucketing zone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// WeekStartDay maps the configured week start onto time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// AdminAuthEnabled reports whether mutating endpoints require basic auth.
func (c *Config) AdminAuthEnabled() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}
