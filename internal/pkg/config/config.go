package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Flags     FlagsConfig     `mapstructure:"flags"`
	Media     MediaConfig     `mapstructure:"media"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	UI        UIConfig        `mapstructure:"ui"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RoutingConfig points at one OSRM endpoint per travel profile.
type RoutingConfig struct {
	FootURL        string `mapstructure:"foot_url"`
	BikeURL        string `mapstructure:"bike_url"`
	CarURL         string `mapstructure:"car_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type FlagsConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

// MediaConfig describes the S3-compatible media host.
type MediaConfig struct {
	Endpoint          string `mapstructure:"endpoint"`
	Region            string `mapstructure:"region"`
	Bucket            string `mapstructure:"bucket"`
	AccessKeyID       string `mapstructure:"access_key_id"`
	SecretAccessKey   string `mapstructure:"secret_access_key"`
	PublicURL         string `mapstructure:"public_url"`
	MaxUploadBytes    int64  `mapstructure:"max_upload_bytes"`
	PresignTTLSeconds int    `mapstructure:"presign_ttl_seconds"`
}

// Enabled reports whether enough is configured to talk to the bucket.
func (m MediaConfig) Enabled() bool {
	return m.Bucket != "" && m.AccessKeyID != "" && m.SecretAccessKey != ""
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`
}

type UIConfig struct {
	DefaultTheme string `mapstructure:"default_theme"`
	FallbackPath string `mapstructure:"fallback_path"`
}

// CacheConfig holds read-through cache TTLs in seconds.
type CacheConfig struct {
	PlacesTTL    int `mapstructure:"places_ttl"`
	ItineraryTTL int `mapstructure:"itinerary_ttl"`
	RouteTTL     int `mapstructure:"route_ttl"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "wanderguide")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "wanderguide")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("routing.foot_url", "https://routing.openstreetmap.de/routed-foot/route/v1")
	v.SetDefault("routing.bike_url", "https://routing.openstreetmap.de/routed-bike/route/v1")
	v.SetDefault("routing.car_url", "https://routing.openstreetmap.de/routed-car/route/v1")
	v.SetDefault("routing.timeout_seconds", 10)
	v.SetDefault("flags.base_url", "https://restcountries.com")
	v.SetDefault("flags.cache_ttl_seconds", 86400)
	v.SetDefault("media.region", "auto")
	v.SetDefault("media.max_upload_bytes", 500000)
	v.SetDefault("media.presign_ttl_seconds", 900)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "media-attach")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("ui.default_theme", "light")
	v.SetDefault("ui.fallback_path", "/home")
	v.SetDefault("cache.places_ttl", 600)
	v.SetDefault("cache.itinerary_ttl", 120)
	v.SetDefault("cache.route_ttl", 3600)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: WANDERGUIDE_DATABASE_HOST → database.host
	v.SetEnvPrefix("WANDERGUIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Routing.FootURL == "" || c.Routing.BikeURL == "" || c.Routing.CarURL == "" {
		errs = append(errs, "routing.foot_url, routing.bike_url and routing.car_url are required")
	}
	if c.Routing.TimeoutSeconds <= 0 {
		errs = append(errs, "routing.timeout_seconds must be positive")
	}
	if c.Flags.BaseURL == "" {
		errs = append(errs, "flags.base_url is required")
	}
	if c.Media.MaxUploadBytes <= 0 {
		errs = append(errs, "media.max_upload_bytes must be positive")
	}
	if c.Media.PresignTTLSeconds <= 0 {
		errs = append(errs, "media.presign_ttl_seconds must be positive")
	}
	if c.UI.DefaultTheme != "light" && c.UI.DefaultTheme != "dark" {
		errs = append(errs, fmt.Sprintf("ui.default_theme must be light or dark, got %q", c.UI.DefaultTheme))
	}
	if !strings.HasPrefix(c.UI.FallbackPath, "/") {
		errs = append(errs, "ui.fallback_path must be an absolute path")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
