// Package config provides application configuration loaded from environment
// variables with defaults and validation. It covers the HTTP server, logging,
// storage drivers, the upstream model and notification gateways, request
// protection, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-salesbot-backend/internal/sysutil"
)

// Environment names recognised by APP_ENV / NODE_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Model providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderGemini    = "gemini"
)

// Notification channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ModelConfig selects and configures the language-model provider.
type ModelConfig struct {
	Provider string // anthropic|bedrock|gemini

	ClaudeAPIKey    string
	ClaudeModel     string
	ClaudeBaseURL   string
	ClaudeMaxTokens int

	BedrockModelID string
	AWSRegion      string

	GeminiAPIKey string
	GeminiModel  string

	Timeout time.Duration // applied to every upstream HTTP call
}

// NotifyConfig configures the outbound notification channel.
type NotifyConfig struct {
	Channel string // whatsapp|email

	WassengerToken   string
	WassengerBaseURL string
	WhatsAppPhone    string

	SendGridAPIKey string
	EmailFrom      string
	EmailTo        string
}

// StoreConfig selects where sessions, artifacts and submissions live.
type StoreConfig struct {
	Driver      string // memory|sqlite, artifacts and submissions
	QuotaDriver string // memory|sqlite|redis, session counters
	DBPath      string
	RedisURL    string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // must exceed the upstream timeout
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool
	SwaggerEnabled bool

	// App
	Env       string // development|production|...
	StaticDir string

	Store  StoreConfig
	Model  ModelConfig
	Notify NotifyConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration

	// Observability
	OTEL OTELConfig
}

// IsDevelopment reports whether development-only surfaces (admin dump, error
// details) are enabled.
func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	storeDriver := strings.ToLower(getenv("STORE_DRIVER", DriverMemory))

	cfg := Config{
		// Server
		Port:              getenv("PORT", "3000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 1<<20)),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// App
		Env: strings.ToLower(strings.TrimSpace(sysutil.FirstNonEmpty(
			os.Getenv("APP_ENV"), os.Getenv("NODE_ENV"), EnvProduction))),
		StaticDir: getenv("STATIC_DIR", "public"),

		Store: StoreConfig{
			Driver:      storeDriver,
			QuotaDriver: strings.ToLower(getenv("QUOTA_DRIVER", storeDriver)),
			DBPath:      getenv("DB_PATH", "salesbot.db"),
			RedisURL:    getenv("REDIS_URL", "redis://localhost:6379/0"),
		},

		Model: ModelConfig{
			Provider:        strings.ToLower(getenv("MODEL_PROVIDER", ProviderAnthropic)),
			ClaudeAPIKey:    strings.TrimSpace(os.Getenv("CLAUDE_API_KEY")),
			ClaudeModel:     getenv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
			ClaudeBaseURL:   strings.TrimRight(getenv("CLAUDE_BASE_URL", "https://api.anthropic.com"), "/"),
			ClaudeMaxTokens: getint("CLAUDE_MAX_TOKENS", 1000),
			BedrockModelID:  getenv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
			AWSRegion:       getenv("AWS_REGION", "us-east-1"),
			GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			GeminiModel:     getenv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:         getdur("UPSTREAM_TIMEOUT", 30*time.Second),
		},

		Notify: NotifyConfig{
			Channel:          strings.ToLower(getenv("NOTIFY_CHANNEL", ChannelWhatsApp)),
			WassengerToken:   strings.TrimSpace(os.Getenv("WASSENGER_TOKEN")),
			WassengerBaseURL: strings.TrimRight(getenv("WASSENGER_BASE_URL", "https://api.wassenger.com"), "/"),
			WhatsAppPhone:    getenv("WHATSAPP_PHONE", "60127998080"),
			SendGridAPIKey:   strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
			EmailFrom:        getenv("NOTIFY_EMAIL_FROM", "bots@localhost"),
			EmailTo:          getenv("NOTIFY_EMAIL_TO", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-salesbot-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Env == "dev" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Notify.WhatsAppPhone != "" {
		cfg.Notify.WhatsAppPhone = strings.TrimPrefix(strings.TrimSpace(cfg.Notify.WhatsAppPhone), "+")
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 ||
		cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.MaxBodyBytes <= 0 {
		return cfg, errors.New("MAX_BODY_BYTES must be > 0")
	}
	switch cfg.Store.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return cfg, fmt.Errorf("STORE_DRIVER must be one of: memory, sqlite (got %q)", cfg.Store.Driver)
	}
	switch cfg.Store.QuotaDriver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return cfg, fmt.Errorf("QUOTA_DRIVER must be one of: memory, sqlite, redis (got %q)", cfg.Store.QuotaDriver)
	}
	if (cfg.Store.Driver == DriverSQLite || cfg.Store.QuotaDriver == DriverSQLite) &&
		strings.TrimSpace(cfg.Store.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Store.QuotaDriver == DriverRedis && strings.TrimSpace(cfg.Store.RedisURL) == "" {
		return cfg, errors.New("REDIS_URL must not be empty")
	}
	switch cfg.Model.Provider {
	case ProviderAnthropic, ProviderBedrock, ProviderGemini:
	default:
		return cfg, fmt.Errorf("MODEL_PROVIDER must be one of: anthropic, bedrock, gemini (got %q)", cfg.Model.Provider)
	}
	if cfg.Model.ClaudeMaxTokens <= 0 {
		return cfg, errors.New("CLAUDE_MAX_TOKENS must be > 0")
	}
	if cfg.Model.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	switch cfg.Notify.Channel {
	case ChannelWhatsApp, ChannelEmail:
	default:
		return cfg, fmt.Errorf("NOTIFY_CHANNEL must be one of: whatsapp, email (got %q)", cfg.Notify.Channel)
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		if sysutil.IsFalsy(v) {
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
