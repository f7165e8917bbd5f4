package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// FetchConfig controls how target pages are rendered.
type FetchConfig struct {
	Backend    string
	Timeout    time.Duration
	IdleWindow time.Duration
	UserAgent  string
	BrowserBin string
	NoSandbox  bool
	WorkerURL  string
}

// CacheConfig selects the optional scrape result cache.
type CacheConfig struct {
	Mode          string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LLMConfig selects and configures the language-model provider.
type LLMConfig struct {
	Provider      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	LogLevel        string
	PhoneRegion     string
	RateLimitScrape RateLimitConfig
	TokenTTL        time.Duration
	BulkConcurrency int
	Fetch           FetchConfig
	Cache           CacheConfig
	LLM             LLMConfig
}

// Cache modes.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "US")),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		Fetch: FetchConfig{
			Backend:    strings.ToLower(getEnv("FETCH_BACKEND", "rod")),
			Timeout:    parseDuration(getEnv("FETCH_TIMEOUT", "30s"), 30*time.Second),
			IdleWindow: parseDuration(getEnv("FETCH_IDLE_WINDOW", "500ms"), 500*time.Millisecond),
			UserAgent:  os.Getenv("FETCH_USER_AGENT"),
			BrowserBin: os.Getenv("BROWSER_BIN"),
			WorkerURL:  os.Getenv("RENDER_WORKER_URL"),
		},
		Cache: CacheConfig{
			TTL:           parseDuration(getEnv("SCRAPE_CACHE_TTL", "1h"), time.Hour),
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			GeminiKey:     os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCRAPE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	if cfg.BulkConcurrency, err = parsePositiveInt(getEnv("BULK_CONCURRENCY", "1")); err != nil {
		return nil, fmt.Errorf("invalid BULK_CONCURRENCY value: %w", err)
	}
	if cfg.Fetch.NoSandbox, err = parseBool(getEnv("BROWSER_NO_SANDBOX", "true")); err != nil {
		return nil, fmt.Errorf("invalid BROWSER_NO_SANDBOX value: %w", err)
	}
	if cfg.Cache.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}
	if cfg.Cache.Mode, err = cacheMode(os.Getenv("SCRAPE_CACHE"), cfg.Cache.RedisAddr); err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_CACHE value: %w", err)
	}

	return cfg, nil
}

// cacheMode picks redis whenever an address is configured, memory when asked, none otherwise.
func cacheMode(value, redisAddr string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case value == CacheNone:
		return CacheNone, nil
	case redisAddr != "":
		return CacheRedis, nil
	case value == "" || value == "off":
		return CacheNone, nil
	case value == CacheMemory:
		return CacheMemory, nil
	case value == CacheRedis:
		return "", fmt.Errorf("redis cache requires REDIS_ADDR")
	default:
		return "", fmt.Errorf("unsupported cache mode %q", value)
	}
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parsePositiveInt(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %q", input)
	}
	return n, nil
}

func parseBool(input string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(input))
}
