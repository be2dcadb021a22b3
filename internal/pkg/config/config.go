package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	CookieName      string
	TokenCookieName string
	CookieMaxAge    time.Duration
	Secret          string
	SecureCookies   bool
}

type Config struct {
	ServerPort string
	Upstream   UpstreamConfig
	Redis      RedisConfig
	Session    SessionConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnvOrDefault("SERVER_PORT", "3000"),
		Upstream: UpstreamConfig{
			BaseURL: getEnvOrDefault("SIPAS_API_URL", "http://localhost:8000/api"),
			Timeout: getEnvDuration("SIPAS_API_TIMEOUT", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Session: SessionConfig{
			CookieName:      getEnvOrDefault("SESSION_COOKIE", "sipas_sid"),
			TokenCookieName: getEnvOrDefault("TOKEN_COOKIE", "auth-token"),
			CookieMaxAge:    getEnvDuration("SESSION_MAX_AGE", 24*time.Hour),
			Secret:          getEnvOrDefault("SESSION_SECRET", ""),
			SecureCookies:   getEnvBool("SECURE_COOKIES", false),
		},
	}

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
