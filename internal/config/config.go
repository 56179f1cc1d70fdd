package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Upstream Mapleime GraphQL API
	GraphQLURL         string
	GraphQLToken       string
	GraphQLTimeout     time.Duration
	GlobalPendingLimit int

	// Session auth
	SessionJWTSecret string

	// Redis (theme prefs, transient notices, urgent count cache)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Classification defaults
	DefaultTimeZone string
	NoticeTTL       time.Duration
	UrgentCacheTTL  time.Duration

	// Geocoding
	NominatimBaseURL   string
	NominatimUserAgent string

	CORSAllowedOrigins []string

	// Per-IP request rate limiting; 0 disables it.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		GraphQLURL:         getEnv("MAIN_SERVER_GRAPHQL_URL", ""),
		GraphQLToken:       getEnv("EXTERNAL_API_AUTH_TOKEN", ""),
		GraphQLTimeout:     getEnvAsDuration("GRAPHQL_TIMEOUT", 20*time.Second),
		GlobalPendingLimit: getEnvAsInt("GLOBAL_PENDING_LIMIT", 250),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DefaultTimeZone: getEnv("DEFAULT_DOCTOR_TZ", "America/Toronto"),
		NoticeTTL:       getEnvAsDuration("NOTICE_TTL", 4*time.Second),
		UrgentCacheTTL:  getEnvAsDuration("URGENT_CACHE_TTL", time.Minute),

		NominatimBaseURL:   getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "MapleIME-DoctorPortal/1.0"),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		RateLimitPerSec: getEnvAsFloat("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 30),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
