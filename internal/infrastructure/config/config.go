package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Capture   CaptureConfig
	Storage   StorageConfig
	CaseAPI   CaseAPIConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Draft     DraftConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite, or empty to keep jobs in memory
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes

	// LogLevel is the GORM log level: silent, error, warn or info
	LogLevel           string
	SlowQueryThreshold time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

// CaptureConfig selects and tunes the raster capture backend
type CaptureConfig struct {
	Backend       string // chromedp, wkhtmltoimage
	RemoteURL     string
	NoSandbox     bool
	Timeout       time.Duration
	Scale         float64
	MaxConcurrent int64
	FontFamily    string
	FontCSSURL    string
	ImageFormat   string // jpeg, png
	JPEGQuality   int
	BinaryPath    string
}

// StorageConfig selects where generated PDFs are kept
type StorageConfig struct {
	Type           string // local, s3
	LocalPath      string
	LocalRetention time.Duration
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	PresignExpiry  time.Duration
}

// CaseAPIConfig holds settings for the case backend client
type CaseAPIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	DevToken string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxHeaderBytes     int
	MaxBodySize        int64
	GenerateTimeout    time.Duration
	RateLimitEnabled   bool
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	CORSAllowMethods   []string
	CORSAllowHeaders   []string
	TrustedProxies     []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
}

// DraftConfig controls how long idle editing sessions are kept
type DraftConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with VOUCHER_ prefix (e.g., VOUCHER_CAPTURE_TIMEOUT)
// 2. Variables from a .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// .env never overrides variables already set in the process
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/voucher")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("VOUCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:             v.GetString("database.driver"),
			Host:               v.GetString("database.host"),
			Port:               v.GetInt("database.port"),
			User:               v.GetString("database.user"),
			Password:           v.GetString("database.password"),
			DBName:             v.GetString("database.dbname"),
			SSLMode:            v.GetString("database.sslmode"),
			Path:               v.GetString("database.path"),
			MaxOpenConns:       v.GetInt("database.max_open_conns"),
			MaxIdleConns:       v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:    v.GetInt("database.conn_max_lifetime"),
			LogLevel:           v.GetString("database.log_level"),
			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cache_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Capture: CaptureConfig{
			Backend:       v.GetString("capture.backend"),
			RemoteURL:     v.GetString("capture.remote_url"),
			NoSandbox:     v.GetBool("capture.no_sandbox"),
			Timeout:       v.GetDuration("capture.timeout"),
			Scale:         v.GetFloat64("capture.scale"),
			MaxConcurrent: v.GetInt64("capture.max_concurrent"),
			FontFamily:    v.GetString("capture.font_family"),
			FontCSSURL:    v.GetString("capture.font_css_url"),
			ImageFormat:   v.GetString("capture.image_format"),
			JPEGQuality:   v.GetInt("capture.jpeg_quality"),
			BinaryPath:    v.GetString("capture.binary_path"),
		},
		Storage: StorageConfig{
			Type:           v.GetString("storage.type"),
			LocalPath:      v.GetString("storage.local_path"),
			LocalRetention: v.GetDuration("storage.local_retention"),
			S3Bucket:       v.GetString("storage.s3_bucket"),
			S3Region:       v.GetString("storage.s3_region"),
			S3Endpoint:     v.GetString("storage.s3_endpoint"),
			S3AccessKey:    v.GetString("storage.s3_access_key"),
			S3SecretKey:    v.GetString("storage.s3_secret_key"),
			S3UsePathStyle: v.GetBool("storage.s3_use_path_style"),
			PresignExpiry:  v.GetDuration("storage.presign_expiry"),
		},
		CaseAPI: CaseAPIConfig{
			BaseURL:  v.GetString("case_api.base_url"),
			Timeout:  v.GetDuration("case_api.timeout"),
			DevToken: v.GetString("case_api.dev_token"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxBodySize:        v.GetInt64("http.max_body_size"),
			GenerateTimeout:    v.GetDuration("http.generate_timeout"),
			RateLimitEnabled:   v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:       v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:     v.GetInt("http.rate_limit_burst"),
			CORSAllowedOrigins: v.GetStringSlice("http.cors_allowed_origins"),
			CORSAllowMethods:   v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:   v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
		Draft: DraftConfig{
			TTL:             v.GetDuration("draft.ttl"),
			CleanupInterval: v.GetDuration("draft.cleanup_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "voucher"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "voucher"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./data/voucher.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Capture.Backend == "" {
		cfg.Capture.Backend = "chromedp"
	}
	if cfg.Capture.Timeout == 0 {
		cfg.Capture.Timeout = 30 * time.Second
	}
	if cfg.Capture.Scale == 0 {
		cfg.Capture.Scale = 3
	}
	if cfg.Capture.MaxConcurrent == 0 {
		cfg.Capture.MaxConcurrent = 2
	}
	if cfg.Capture.FontFamily == "" {
		cfg.Capture.FontFamily = "Sarabun"
	}
	if cfg.Capture.ImageFormat == "" {
		cfg.Capture.ImageFormat = "jpeg"
	}
	if cfg.Capture.JPEGQuality == 0 {
		cfg.Capture.JPEGQuality = 100
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/artifacts"
	}
	if cfg.Storage.LocalRetention == 0 {
		cfg.Storage.LocalRetention = 30 * 24 * time.Hour
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "ap-southeast-1"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.CaseAPI.BaseURL == "" {
		cfg.CaseAPI.BaseURL = "http://localhost:3000/api"
	}
	if cfg.CaseAPI.Timeout == 0 {
		cfg.CaseAPI.Timeout = 15 * time.Second
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// generation responses stream after capture, so this outlives GenerateTimeout
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.GenerateTimeout == 0 {
		cfg.HTTP.GenerateTimeout = 60 * time.Second
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 5
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 20
	}
	// No default origin: cross-origin requests stay blocked until configured
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "voucher"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Draft.TTL == 0 {
		cfg.Draft.TTL = 12 * time.Hour
	}
	if cfg.Draft.CleanupInterval == 0 {
		cfg.Draft.CleanupInterval = 5 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if !slices.Contains([]string{"", "postgres", "sqlite"}, c.Database.Driver) {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if !slices.Contains([]string{"chromedp", "wkhtmltoimage"}, c.Capture.Backend) {
		return fmt.Errorf("capture.backend must be chromedp or wkhtmltoimage, got %q", c.Capture.Backend)
	}
	if c.Capture.Scale < 1 || c.Capture.Scale > 4 {
		return fmt.Errorf("capture.scale must be between 1 and 4, got %v", c.Capture.Scale)
	}
	if c.Capture.ImageFormat != "jpeg" && c.Capture.ImageFormat != "png" {
		return fmt.Errorf("capture.image_format must be jpeg or png, got %q", c.Capture.ImageFormat)
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return fmt.Errorf("capture.jpeg_quality must be between 1 and 100, got %d", c.Capture.JPEGQuality)
	}

	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required when storage.type is s3")
		}
	default:
		return fmt.Errorf("storage.type must be local or s3, got %q", c.Storage.Type)
	}

	if _, err := url.ParseRequestURI(c.CaseAPI.BaseURL); err != nil {
		return fmt.Errorf("case_api.base_url is not a valid URL: %w", err)
	}

	if c.App.Env == "production" {
		if c.CaseAPI.DevToken != "" {
			return fmt.Errorf("case_api.dev_token must be empty in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allowed_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
