package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"activity-insights/internal/analysis"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "ACTIVITY_INSIGHTS_CONFIG"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig                  `json:"database"`
	Server   ServerConfig                    `json:"server"`
	Strava   StravaConfig                    `json:"strava"`
	Kafka    KafkaConfig                     `json:"kafka"`
	Sync     SyncConfig                      `json:"sync"`
	Scoring  map[string]analysis.ScoringRule `json:"scoring,omitempty"`
	Display  DisplayConfig                   `json:"display"`
	LogLevel string                          `json:"log_level"`
}

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `json:"driver"` // "sqlite" or "postgres"
	DSN    string `json:"dsn"`    // file path for sqlite, URL for postgres; empty uses ~/.activity-insights/data.db
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr             string   `json:"addr"`
	RateLimitBurst   int      `json:"rate_limit_burst"`
	RateLimitSeconds int      `json:"rate_limit_seconds"` // one request token per this many seconds
	AllowedOrigins   []string `json:"allowed_origins"`
	MaxUploadMB      int      `json:"max_upload_mb"`
	// Only enable behind a reverse proxy that overwrites X-Forwarded-For
	TrustProxyHeaders bool `json:"trust_proxy_headers"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	CallbackPort int    `json:"callback_port"`
}

// KafkaConfig configures score snapshot publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

// SyncConfig controls the background Strava sync
type SyncConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"` // cron spec, e.g. "@every 6h"
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Server: ServerConfig{
			Addr:             ":8080",
			RateLimitBurst:   10,
			RateLimitSeconds: 5,
			AllowedOrigins:   []string{"*"},
			MaxUploadMB:      32,
		},
		Strava: StravaConfig{
			CallbackPort: 8089,
		},
		Kafka: KafkaConfig{
			Topic: "activity-scores",
		},
		Sync: SyncConfig{
			Schedule: "@every 6h",
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
		},
		LogLevel: "info",
	}
}

// Load reads the configuration from Path()
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path, filling unset values with defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = d.Server.RateLimitBurst
	}
	if c.Server.RateLimitSeconds == 0 {
		c.Server.RateLimitSeconds = d.Server.RateLimitSeconds
	}
	if c.Server.AllowedOrigins == nil {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = d.Server.MaxUploadMB
	}
	if c.Strava.CallbackPort == 0 {
		c.Strava.CallbackPort = d.Strava.CallbackPort
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = d.Kafka.Topic
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = d.Sync.Schedule
	}
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = d.Display.DistanceUnit
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Save writes the configuration to Path()
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := Path()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
	example.Scoring = map[string]analysis.ScoringRule{
		string(analysis.MetricTotalDistance): {Base: 0, Multiplier: 0.5},
	}

	return SaveTo(path, &example)
}

// Validate checks the settings every command depends on
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", c.Database.Driver)
	}

	if c.Server.RateLimitBurst < 0 || c.Server.RateLimitSeconds < 0 {
		return errors.New("server rate limits must not be negative")
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.Sync.Enabled && strings.TrimSpace(c.Sync.Schedule) == "" {
		return errors.New("sync.schedule is required when sync is enabled")
	}

	for name, rule := range c.Scoring {
		if rule.Base < 0 {
			return fmt.Errorf("scoring.%s.base must not be negative", name)
		}
	}

	return nil
}

// ValidateStrava checks the credentials needed to talk to Strava
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error")
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// ScoringConfig returns the default scoring rules with the configured overrides applied
func (c *Config) ScoringConfig() analysis.ScoringConfig {
	return analysis.DefaultScoringConfig().WithOverrides(c.Scoring)
}

// Path returns the config file location, honouring ACTIVITY_INSIGHTS_CONFIG
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".activity-insights"), nil
}
