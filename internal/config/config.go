// Package config loads gigpilot configuration from defaults, an optional
// gigpilot.yaml file and GIGPILOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gigpilot/gigpilot/internal/database"
	"github.com/gigpilot/gigpilot/internal/geo"
)

// EnvPrefix is the prefix for environment overrides, e.g. GIGPILOT_TOMTOM_API_KEY.
const EnvPrefix = "GIGPILOT"

// POI provider names.
const (
	POIProviderTomTom   = "tomtom"
	POIProviderOverpass = "overpass"
)

// Config holds all configuration for the application.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Log            LogConfig            `mapstructure:"log"`
	Providers      ProvidersConfig      `mapstructure:"providers"`
	OpenWeatherMap OpenWeatherMapConfig `mapstructure:"openweathermap"`
	TomTom         TomTomConfig         `mapstructure:"tomtom"`
	Overpass       OverpassConfig       `mapstructure:"overpass"`
	Geocode        GeocodeConfig        `mapstructure:"geocode"`
	Advisor        AdvisorConfig        `mapstructure:"advisor"`
	Scout          ScoutConfig          `mapstructure:"scout"`
	Database       database.Config      `mapstructure:"database"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	PubSub         PubSubConfig         `mapstructure:"pubsub"`
	Worker         WorkerConfig         `mapstructure:"worker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	RateLimit       int           `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ProvidersConfig holds settings shared by every signal provider.
type ProvidersConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	CircuitBreaker bool          `mapstructure:"circuit_breaker"`
	POI            string        `mapstructure:"poi"`
}

// OpenWeatherMapConfig configures the weather provider.
type OpenWeatherMapConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// TomTomConfig configures the traffic, POI and reverse-geocode provider.
type TomTomConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Category string `mapstructure:"category"`
}

// OverpassConfig configures the alternative POI provider.
type OverpassConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// GeocodeConfig configures the area-name cache tiers.
type GeocodeConfig struct {
	CacheCapacity int           `mapstructure:"cache_capacity"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// AdvisorConfig configures the narrative advisor.
type AdvisorConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int64         `mapstructure:"max_tokens"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ScoutConfig configures the scouting engine.
type ScoutConfig struct {
	DefaultLat     float64       `mapstructure:"default_lat"`
	DefaultLon     float64       `mapstructure:"default_lon"`
	TimeZone       string        `mapstructure:"time_zone"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// PubSubConfig configures the worker subscription.
type PubSubConfig struct {
	ProjectID    string `mapstructure:"project_id"`
	Subscription string `mapstructure:"subscription"`
}

// WorkerConfig configures the pre-warm job.
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("providers.timeout", 3*time.Second)
	v.SetDefault("providers.circuit_breaker", true)
	v.SetDefault("providers.poi", POIProviderTomTom)

	v.SetDefault("openweathermap.api_key", "")
	v.SetDefault("openweathermap.base_url", "https://api.openweathermap.org/data/2.5")

	v.SetDefault("tomtom.api_key", "")
	v.SetDefault("tomtom.base_url", "https://api.tomtom.com")
	v.SetDefault("tomtom.category", "restaurant")

	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")

	v.SetDefault("geocode.cache_capacity", 128)
	v.SetDefault("geocode.redis_addr", "")
	v.SetDefault("geocode.redis_password", "")
	v.SetDefault("geocode.redis_db", 0)
	v.SetDefault("geocode.redis_ttl", 24*time.Hour)

	v.SetDefault("advisor.api_key", "")
	v.SetDefault("advisor.model", "claude-haiku-4-5-20251001")
	v.SetDefault("advisor.max_tokens", 512)
	v.SetDefault("advisor.base_url", "")
	v.SetDefault("advisor.timeout", 10*time.Second)

	v.SetDefault("scout.default_lat", 19.0760)
	v.SetDefault("scout.default_lon", 72.8777)
	v.SetDefault("scout.time_zone", "Asia/Kolkata")
	v.SetDefault("scout.request_timeout", 15*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gigpilot")
	v.SetDefault("database.password", "localdev")
	v.SetDefault("database.name", "gigpilot")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")

	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.subscription", "gigpilot-prewarm")

	v.SetDefault("worker.concurrency", 3)
	v.SetDefault("worker.timeout", 30*time.Second)
}

// Load reads configuration. An explicit path must exist; otherwise
// gigpilot.yaml is looked up in the working directory, ./config and
// $HOME/.gigpilot, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gigpilot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.gigpilot")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Providers.POI {
	case POIProviderTomTom, POIProviderOverpass:
	default:
		return fmt.Errorf("invalid providers.poi %q: want %q or %q", c.Providers.POI, POIProviderTomTom, POIProviderOverpass)
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive, got %s", c.Providers.Timeout)
	}
	if c.Scout.RequestTimeout <= 0 {
		return fmt.Errorf("scout.request_timeout must be positive, got %s", c.Scout.RequestTimeout)
	}
	if err := c.DefaultOrigin().Validate(); err != nil {
		return fmt.Errorf("scout default origin: %w", err)
	}
	return nil
}

// Addr returns the listen address in the form ":port".
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DefaultOrigin returns the fallback scouting origin.
func (c *Config) DefaultOrigin() geo.Coordinate {
	return geo.Coordinate{Lat: c.Scout.DefaultLat, Lon: c.Scout.DefaultLon}
}

// Location returns the configured local time zone, falling back to time.Local
// when the zone database has no such entry.
func (c *Config) Location() *time.Location {
	if c.Scout.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Scout.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// NewLogger creates the process logger.
func (c *Config) NewLogger(service, version string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}
