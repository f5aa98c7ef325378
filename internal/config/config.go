// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Email backends.
const (
	EmailSendGrid = "sendgrid"
	EmailNone     = "none"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Database   DatabaseConfig    `yaml:"database"`
	Source     SourceConfig      `yaml:"source"`
	Email      EmailConfig       `yaml:"email"`
	Run        RunConfig         `yaml:"run"`
	Watchlists []WatchlistConfig `yaml:"watchlists"`
	Logging    LoggingConfig     `yaml:"logging"`
	Tracing    TracingConfig     `yaml:"tracing"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines the price history store. Host, name and user apply
// to postgres; path applies to sqlite.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
	Path     string `yaml:"path"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// SourceConfig defines the wishlist page API settings.
type SourceConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Timeout   time.Duration   `yaml:"timeout"`
	UserAgent string          `yaml:"user_agent"`
	MaxPages  int             `yaml:"max_pages"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines source request pacing.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// EmailConfig defines digest delivery.
type EmailConfig struct {
	Backend  string         `yaml:"backend"` // sendgrid, none
	From     string         `yaml:"from"`
	To       string         `yaml:"to"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
}

// SendGridConfig defines SendGrid API settings.
type SendGridConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// RunConfig defines per-run behavior.
type RunConfig struct {
	DryRun             bool   `yaml:"dry_run"`
	MaxErrors          int    `yaml:"max_errors"`
	MaxInitialFailures int    `yaml:"max_initial_failures"`
	SuccessPath        string `yaml:"success_path"`
	ErrorPath          string `yaml:"error_path"`
}

// WatchlistConfig names a wishlist checked on a schedule by the server.
type WatchlistConfig struct {
	Name     string        `yaml:"name"`
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TracingConfig defines the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. A .env file beside the config is loaded into
// the environment first; variables already set are not overridden.
func Load(path string) (*Config, error) {
	if err := loadDotenv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// Watchlist returns the configured watchlist with the given name.
func (c *Config) Watchlist(name string) (WatchlistConfig, bool) {
	for _, w := range c.Watchlists {
		if w.Name == name {
			return w, true
		}
	}
	return WatchlistConfig{}, false
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applySourceDefaults(&cfg.Source)
	applyEmailDefaults(&cfg.Email)
	applyRunDefaults(&cfg.Run)
	for i := range cfg.Watchlists {
		if cfg.Watchlists[i].Interval == 0 {
			cfg.Watchlists[i].Interval = 6 * time.Hour
		}
	}
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		// Synchronous check requests walk a whole wishlist.
		s.WriteTimeout = 5 * time.Minute
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = DriverPostgres
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 4
	}
	if d.Path == "" {
		d.Path = "watchlist.db"
	}
}

func applySourceDefaults(s *SourceConfig) {
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.UserAgent == "" {
		s.UserAgent = "watchlist/1.0"
	}
	if s.MaxPages == 0 {
		s.MaxPages = 50
	}
	if s.RateLimit.PerSecond == 0 {
		s.RateLimit.PerSecond = 1.0
	}
	if s.RateLimit.Burst == 0 {
		s.RateLimit.Burst = 1
	}
}

func applyEmailDefaults(e *EmailConfig) {
	if e.Backend == "" {
		e.Backend = EmailSendGrid
	}
	if e.SendGrid.Endpoint == "" {
		e.SendGrid.Endpoint = "https://api.sendgrid.com/v3/mail/send"
	}
}

func applyRunDefaults(r *RunConfig) {
	if r.MaxErrors == 0 {
		r.MaxErrors = 25
	}
	if r.MaxInitialFailures == 0 {
		r.MaxInitialFailures = 10
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "watchlist"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf(
			"database.driver must be one of: postgres, sqlite (got %q)",
			cfg.Database.Driver,
		))
	}

	if cfg.Source.BaseURL == "" {
		errs = append(errs, fmt.Errorf("source.base_url is required"))
	}

	switch cfg.Email.Backend {
	case EmailSendGrid:
		if cfg.Email.SendGrid.APIKey == "" {
			errs = append(errs, fmt.Errorf(
				"email.sendgrid.api_key is required when backend is sendgrid",
			))
		}
		if cfg.Email.From == "" || cfg.Email.To == "" {
			errs = append(errs, fmt.Errorf(
				"email.from and email.to are required when backend is sendgrid",
			))
		}
	case EmailNone:
	default:
		errs = append(errs, fmt.Errorf(
			"email.backend must be one of: sendgrid, none (got %q)",
			cfg.Email.Backend,
		))
	}

	if cfg.Run.MaxErrors < 0 || cfg.Run.MaxInitialFailures < 0 {
		errs = append(errs, fmt.Errorf("run error thresholds must not be negative"))
	}

	seen := make(map[string]bool, len(cfg.Watchlists))
	for i, w := range cfg.Watchlists {
		switch {
		case w.Name == "":
			errs = append(errs, fmt.Errorf("watchlists[%d].name is required", i))
		case seen[w.Name]:
			errs = append(errs, fmt.Errorf("watchlists[%d].name %q is duplicated", i, w.Name))
		}
		seen[w.Name] = true
	}

	return errors.Join(errs...)
}
