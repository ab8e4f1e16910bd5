package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var (
	ErrUnknownCacheBackend = errors.New("unknown cache backend")
	ErrMissingMarketplace  = errors.New("marketplace base url is required")
)

type Config struct {
	HTTP        HTTPConfig
	Marketplace MarketplaceConfig
	Cache       CacheConfig
	Redis       RedisConfig

	CouponPolicy string
	LedgerLimit  int

	LogLevel  string
	LogFormat string
}

type HTTPConfig struct {
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	LivenessEndpoint  string
}

type MarketplaceConfig struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	RetryCap    time.Duration
}

type CacheConfig struct {
	Backend      string
	OffersTTL    time.Duration
	TaxTTL       time.Duration
	LedgerTTL    time.Duration
	BookingTTL   time.Duration
	JanitorEvery time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the environment after applying the given .env files. Missing
// files are skipped and variables already set win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	//nolint:gomnd
	cfg := &Config{
		HTTP: HTTPConfig{
			Host:              getEnv("HTTP_HOST", "localhost"),
			Port:              getEnv("HTTP_PORT", "8092"),
			ReadHeaderTimeout: getDurationEnv("HTTP_READ_HEADER_TIMEOUT", 20*time.Second),
			ShutdownTimeout:   getDurationEnv("HTTP_SHUTDOWN_TIMEOUT", 4*time.Second),
			LivenessEndpoint:  getEnv("HTTP_LIVENESS_ENDPOINT", "/liveness"),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:     getEnv("MARKETPLACE_URL", "http://localhost:8080/api"),
			Token:       getEnv("MARKETPLACE_TOKEN", ""),
			Timeout:     getDurationEnv("MARKETPLACE_TIMEOUT", 12*time.Second),
			MaxAttempts: getIntEnv("MARKETPLACE_MAX_ATTEMPTS", 3),
			RetryBase:   getDurationEnv("MARKETPLACE_RETRY_BASE", 200*time.Millisecond),
			RetryCap:    getDurationEnv("MARKETPLACE_RETRY_CAP", 1200*time.Millisecond),
		},
		Cache: CacheConfig{
			Backend:      strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
			OffersTTL:    getDurationEnv("CACHE_OFFERS_TTL", 5*time.Minute),
			TaxTTL:       getDurationEnv("CACHE_TAX_TTL", time.Hour),
			LedgerTTL:    getDurationEnv("CACHE_LEDGER_TTL", 30*time.Second),
			BookingTTL:   getDurationEnv("CACHE_BOOKING_TTL", 24*time.Hour),
			JanitorEvery: getDurationEnv("CACHE_JANITOR_INTERVAL", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		CouponPolicy: getEnv("COUPON_POLICY", "keep"),
		LedgerLimit:  getIntEnv("LEDGER_LIMIT", 500),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Marketplace.BaseURL == "" {
		return ErrMissingMarketplace
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("%q: %w", c.Cache.Backend, ErrUnknownCacheBackend)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	return fallback
}

// getDurationEnv accepts Go durations ("30s") or plain seconds ("30").
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return fallback
}
