package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	HTTPAddr     string
	APIBaseURL   string
	RedisAddr    string
	RedisPass    string
	SessionTTL   time.Duration
	CookieSecure bool
	CSRFKey      string
	Env          string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:     getEnv("HTTP_ADDR", ":7020"),
		APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:5000"),
		RedisAddr:    getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:    getEnv("REDIS_PASS", ""),
		SessionTTL:   getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure: getBool("COOKIE_SECURE", false),
		CSRFKey:      getEnv("CSRF_KEY", "dev-only-32-byte-csrf-key-change"),
		Env:          getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
