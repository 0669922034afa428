// Package config provides configuration management for the Sharpline
// application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	Books    BooksConfig    `mapstructure:"books"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Snapshot SnapshotConfig `mapstructure:"snapshot" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// OddsAPIConfig represents the odds aggregator API configuration
type OddsAPIConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key" validate:"required"`
	SportKey           string  `mapstructure:"sport_key" validate:"required"`
	Regions            string  `mapstructure:"regions" validate:"required"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	PropWorkers        int     `mapstructure:"prop_workers" validate:"required,gt=0,lte=10"`
	FetchProps         bool    `mapstructure:"fetch_props"`
}

// EngineConfig represents the aggregation pipeline calibration. Every
// knob here applies uniformly to all markets in a pass so that
// confidence scores stay comparable across games.
type EngineConfig struct {
	VigMethod        string  `mapstructure:"vig_method" validate:"required,vigmethod"`
	EVBaseline       string  `mapstructure:"ev_baseline" validate:"required,oneof=consensus sharp"`
	MinBooks         int     `mapstructure:"min_books" validate:"required,gte=1"`
	StabilityScale   float64 `mapstructure:"stability_scale" validate:"required,gt=0"`
	StabilityNeutral float64 `mapstructure:"stability_neutral" validate:"gte=0,lte=1"`
	EVFloor          float64 `mapstructure:"ev_floor" validate:"gte=0,lte=1"`
	LeanFloor        float64 `mapstructure:"lean_floor" validate:"gte=0,lte=1"`
	StabilityFloor   float64 `mapstructure:"stability_floor" validate:"gte=0,lte=1"`
	ExpiryHours      int     `mapstructure:"expiry_hours" validate:"required,gte=1,lte=24"`
	TopProps         int     `mapstructure:"top_props" validate:"gte=0"`
}

// BooksConfig represents the bookmaker weight table and sharp set.
// Empty fields fall back to the built-in table.
type BooksConfig struct {
	Weights         map[string]float64 `mapstructure:"weights"`
	FallbackWeight  float64            `mapstructure:"fallback_weight" validate:"gte=0"`
	SharpBooks      []string           `mapstructure:"sharp_books"`
	SharpMultiplier float64            `mapstructure:"sharp_multiplier" validate:"gte=0"`
	ProxyFraction   float64            `mapstructure:"proxy_fraction" validate:"gte=0,lte=1"`
}

// ServerConfig represents the HTTP serving layer configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	EnableWS       bool     `mapstructure:"enable_ws"`
}

// DatabaseConfig represents the optional signal-history database
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// SnapshotConfig represents the refresh schedule and snapshot cache
type SnapshotConfig struct {
	CronSchedule    string `mapstructure:"cron_schedule" validate:"required"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RefreshOnStart  bool   `mapstructure:"refresh_on_start"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestTimeout returns the upstream request timeout as a duration
func (c *OddsAPIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpiryWindow returns the post-kickoff expiry window as a duration
func (c *EngineConfig) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

// CacheTTL returns the snapshot cache TTL as a duration
func (c *SnapshotConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
