package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/robfig/cron/v3"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Platform API configuration
	API APIConfig

	// Gateway server configuration
	Server ServerConfig

	// Session persistence configuration
	Session SessionConfig

	// Plan catalogue cache configuration
	Catalog CatalogConfig

	// Gateway rate limiting
	RateLimit RateLimitConfig

	// Delivery reminder schedule
	WatchSchedule string

	// Optional webhook that also receives delivery reminders
	ReminderWebhook WebhookConfig

	// Admin audit trail
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// APIConfig holds the upstream platform API settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	// TrustProxy honours X-Forwarded-For when keying rate limits
	TrustProxy bool
}

// SessionConfig selects where the CLI session lives
type SessionConfig struct {
	Store    string
	FilePath string
	RedisURL string
	RedisDB  int
}

// CatalogConfig bounds the in-process plan cache
type CatalogConfig struct {
	TTL  time.Duration
	Size int
}

// RateLimitConfig throttles gateway callers. RequestsPerMinute of 0 disables
// limiting. The redis store shares counters across replicas using the session
// redis URL.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	Store             string
}

// AuditConfig locates the admin audit log. An empty Dir disables it.
type AuditConfig struct {
	Dir string
}

// WebhookConfig points reminders at an HTTP endpoint. Secret signs payloads.
type WebhookConfig struct {
	URL    string
	Secret string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// OTel converts the observability settings to an OTel setup config
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		API:           loadAPIConfig(),
		Server:        loadServerConfig(),
		Session:       loadSessionConfig(),
		Catalog:       loadCatalogConfig(),
		RateLimit:     loadRateLimitConfig(),
		WatchSchedule: getEnv("GASLINK_WATCH_SCHEDULE", "@every 15m"),
		ReminderWebhook: WebhookConfig{
			URL:    getEnv("GASLINK_REMINDER_WEBHOOK_URL", ""),
			Secret: getEnv("GASLINK_REMINDER_WEBHOOK_SECRET", ""),
		},
		Audit:         AuditConfig{Dir: getEnv("GASLINK_AUDIT_DIR", "")},
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: strings.TrimRight(getEnv("GASLINK_API_URL", "http://localhost:5000"), "/"),
		Timeout: getEnvDuration("GASLINK_API_TIMEOUT", 15*time.Second),
	}
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("GASLINK_HOST", "0.0.0.0"),
		Port:            getEnv("GASLINK_PORT", "8080"),
		ReadTimeout:     getEnvDuration("GASLINK_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("GASLINK_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("GASLINK_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("GASLINK_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("GASLINK_HEALTH_PORT", "9090"),
		TrustProxy:      getEnvBool("GASLINK_TRUST_PROXY", false),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Store:    strings.ToLower(getEnv("GASLINK_SESSION_STORE", SessionStoreFile)),
		FilePath: getEnv("GASLINK_SESSION_FILE", defaultSessionFile()),
		RedisURL: getEnv("GASLINK_REDIS_URL", ""),
		RedisDB:  getEnvInt("GASLINK_REDIS_DB", 0),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		TTL:  getEnvDuration("GASLINK_PLAN_CACHE_TTL", 5*time.Minute),
		Size: getEnvInt("GASLINK_PLAN_CACHE_SIZE", 256),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: getEnvInt("GASLINK_RATE_LIMIT", 120),
		Burst:             getEnvInt("GASLINK_RATE_LIMIT_BURST", 20),
		Store:             strings.ToLower(getEnv("GASLINK_RATE_LIMIT_STORE", SessionStoreMemory)),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("GASLINK_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("GASLINK_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("GASLINK_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("GASLINK_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("GASLINK_OTEL_SERVICE_NAME", "gaslink-gateway"),
		OTelServiceVersion: getEnv("GASLINK_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("GASLINK_OTEL_INSECURE", true),
	}
}

// defaultSessionFile is ~/.config/gaslink/session.yaml, or a relative path
// when the config directory cannot be resolved
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gaslink-session.yaml"
	}
	return dir + string(os.PathSeparator) + "gaslink" + string(os.PathSeparator) + "session.yaml"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreFile:
		if c.Session.FilePath == "" {
			return fmt.Errorf("session file path is required for file session store")
		}
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory, file, or redis)", c.Session.Store)
	}

	if c.Catalog.Size <= 0 {
		return fmt.Errorf("plan cache size must be positive")
	}

	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}
	switch c.RateLimit.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis rate limit store")
		}
	default:
		return fmt.Errorf("invalid rate limit store: %s (must be memory or redis)", c.RateLimit.Store)
	}

	if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", c.WatchSchedule, err)
	}

	if c.ReminderWebhook.URL != "" {
		u, err := url.Parse(c.ReminderWebhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid reminder webhook URL: %q", c.ReminderWebhook.URL)
		}
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
