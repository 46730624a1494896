package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultSuggestionRadiusKm is the search radius used when SUGGESTION_RADIUS_KM is unset.
	DefaultSuggestionRadiusKm = 5.0
	// DefaultCandidateCap bounds how many nearby requests are scored per call.
	DefaultCandidateCap = 20
	// DefaultWeatherTimeout keeps the provider call short so suggestions stay fast.
	DefaultWeatherTimeout = 5
	// DefaultWeatherCacheTTL is how long a live snapshot is reused for the same H3 cell.
	DefaultWeatherCacheTTL = 600
	// DefaultRequestTimeout applies to every HTTP request handled by the service.
	DefaultRequestTimeout = 15

	// MaxWeatherTimeout is the upper bound accepted for WEATHER_TIMEOUT_SECONDS.
	MaxWeatherTimeout = 30
	// MaxRequestTimeout is the upper bound accepted for DEFAULT_REQUEST_TIMEOUT.
	MaxRequestTimeout = 120
	// MaxSuggestionRadiusKm is the upper bound accepted for SUGGESTION_RADIUS_KM.
	MaxSuggestionRadiusKm = 100.0
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	JWT         JWTConfig
	Weather     WeatherConfig
	Suggestions SuggestionConfig
	RateLimit   RateLimitConfig
	Resilience  ResilienceConfig
	Tracing     TracingConfig
	Sentry      SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds the event bus connection settings
type NATSConfig struct {
	URL     string
	Enabled bool
}

// JWTConfig holds the secret used to verify tokens issued by the auth service
type JWTConfig struct {
	Secret string
}

// WeatherConfig holds weather provider settings
type WeatherConfig struct {
	APIKey          string
	BaseURL         string
	DemoMode        bool
	TimeoutSeconds  int
	CacheTTLSeconds int
}

// SuggestionConfig holds ranking defaults
type SuggestionConfig struct {
	RadiusKm         float64
	CandidateCap     int
	Timezone         string
	DemandTablesFile string
}

// RateLimitConfig holds per-user request quotas
type RateLimitConfig struct {
	Enabled       bool
	WindowSeconds int
	Limit         int
	Burst         int
	RedisPrefix   string
	// EndpointLimits overrides Limit for a "METHOD:/route" key.
	EndpointLimits map[string]int
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled        bool
	ServiceVersion string
	OTLPEndpoint   string
	SampleRate     float64
}

// SentryConfig holds error tracking settings
type SentryConfig struct {
	DSN string
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream service
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8090"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsInt("DEFAULT_REQUEST_TIMEOUT", DefaultRequestTimeout),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "neighborly"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Weather: WeatherConfig{
			APIKey:          getEnv("OPENWEATHER_API_KEY", ""),
			BaseURL:         getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
			DemoMode:        getEnv("DEMO_WEATHER", "0") == "1" || getEnvAsBool("DEMO_WEATHER", false),
			TimeoutSeconds:  getEnvAsInt("WEATHER_TIMEOUT_SECONDS", DefaultWeatherTimeout),
			CacheTTLSeconds: getEnvAsInt("WEATHER_CACHE_TTL_SECONDS", DefaultWeatherCacheTTL),
		},
		Suggestions: SuggestionConfig{
			RadiusKm:         getEnvAsFloat("SUGGESTION_RADIUS_KM", DefaultSuggestionRadiusKm),
			CandidateCap:     getEnvAsInt("SUGGESTION_CANDIDATE_CAP", DefaultCandidateCap),
			Timezone:         getEnv("SUGGESTION_TIMEZONE", "Local"),
			DemandTablesFile: getEnv("DEMAND_TABLES_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			Limit:         getEnvAsInt("RATE_LIMIT_LIMIT", 30),
			Burst:         getEnvAsInt("RATE_LIMIT_BURST", 10),
			RedisPrefix:   getEnv("RATE_LIMIT_REDIS_PREFIX", "rate-limit"),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", false),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
		Tracing: TracingConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRate:     getEnvAsFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if endpointLimits := getEnv("RATE_LIMIT_ENDPOINT_LIMITS", ""); endpointLimits != "" {
		var limits map[string]int
		if err := json.Unmarshal([]byte(endpointLimits), &limits); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENDPOINT_LIMITS value: %w", err)
		}
		cfg.RateLimit.EndpointLimits = limits
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Suggestions.CandidateCap <= 0 {
		cfg.Suggestions.CandidateCap = DefaultCandidateCap
	}
	if cfg.Weather.TimeoutSeconds <= 0 {
		cfg.Weather.TimeoutSeconds = DefaultWeatherTimeout
	}
	if cfg.Weather.CacheTTLSeconds < 0 {
		cfg.Weather.CacheTTLSeconds = 0
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Resilience.CircuitBreaker.TimeoutSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.TimeoutSeconds = 30
	}
	if cfg.Resilience.CircuitBreaker.IntervalSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.IntervalSeconds = 60
	}
	if cfg.Resilience.CircuitBreaker.FailureThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.Resilience.CircuitBreaker.SuccessThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.SuccessThreshold = 1
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Weather.TimeoutSeconds > MaxWeatherTimeout {
		return fmt.Errorf("WEATHER_TIMEOUT_SECONDS (%d) exceeds maximum of %d", c.Weather.TimeoutSeconds, MaxWeatherTimeout)
	}
	if c.Server.RequestTimeout > MaxRequestTimeout {
		return fmt.Errorf("DEFAULT_REQUEST_TIMEOUT (%d) exceeds maximum of %d", c.Server.RequestTimeout, MaxRequestTimeout)
	}
	if c.Suggestions.RadiusKm <= 0 {
		return fmt.Errorf("SUGGESTION_RADIUS_KM must be positive, got %v", c.Suggestions.RadiusKm)
	}
	if c.Suggestions.RadiusKm > MaxSuggestionRadiusKm {
		return fmt.Errorf("SUGGESTION_RADIUS_KM (%v) exceeds maximum of %v", c.Suggestions.RadiusKm, MaxSuggestionRadiusKm)
	}
	if _, err := time.LoadLocation(c.Suggestions.Timezone); err != nil {
		return fmt.Errorf("invalid SUGGESTION_TIMEZONE %q: %w", c.Suggestions.Timezone, err)
	}
	return nil
}

// SettingsFor returns effective breaker settings for a specific upstream service name
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ServiceOverrides[service]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Timeout returns the weather provider call timeout
func (c WeatherConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long live snapshots are cached
func (c WeatherConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Location returns the time zone used for time-of-day buckets
func (c SuggestionConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Window returns the rate limit window
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// RequestTimeoutDuration returns the per-request deadline
func (c ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
