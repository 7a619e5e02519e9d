package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the suggestion server.
type Config struct {
	ServerPort    int
	LogLevel      string
	LLMEndpoint   string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeout    time.Duration
	SentryDSN     string
	Environment   string
	EventsDBPath  string
	ShutdownGrace time.Duration
	RateLimit     RateLimitConfig
}

// RateLimitConfig controls the per-client HTTP rate limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

const (
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultEnvironment   = "development"
	defaultLLMEndpoint   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultLLMModel      = "gemini-flash-latest"
	defaultLLMTimeout    = 20 * time.Second
	defaultShutdownGrace = 10 * time.Second

	defaultRateLimitRPS   = 2.0
	defaultRateLimitBurst = 10
	defaultRateLimitTTL   = 10 * time.Minute
)

// ErrMissingAPIKey is returned when no model API credential is configured.
var ErrMissingAPIKey = eris.New("LLM_API_KEY (or GEMINI_API_KEY) is required")

// Load reads configuration values from environment variables, applying defaults where necessary.
// A missing API key is a configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint:   getEnv("LLM_ENDPOINT", defaultLLMEndpoint),
		LLMAPIKey:     strings.TrimSpace(getEnv("LLM_API_KEY", os.Getenv("GEMINI_API_KEY"))),
		LLMModel:      getEnv("LLM_MODEL", defaultLLMModel),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Environment:   getEnv("ENV", defaultEnvironment),
		EventsDBPath:  os.Getenv("EVENTS_DB_PATH"),
		ShutdownGrace: defaultShutdownGrace,
	}

	if cfg.LLMAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	port, err := parseInt("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	cfg.ServerPort = port

	if cfg.LLMTimeout, err = parseDuration("LLM_TIMEOUT", defaultLLMTimeout); err != nil {
		return nil, err
	}

	if cfg.RateLimit.RequestsPerSecond, err = parseFloat("RATE_LIMIT_RPS", defaultRateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = parseInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}
	if cfg.RateLimit.ClientTTL, err = parseDuration("RATE_LIMIT_CLIENT_TTL", defaultRateLimitTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, strconv.FormatFloat(fallback, 'f', -1, 64))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	if value <= 0 {
		return 0, eris.Errorf("invalid %s value: %s must be positive", key, raw)
	}
	return value, nil
}
