package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures all runtime configuration so main stays lean.
type Server struct {
	Addr             string
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	JWTSigningKey    string

	// DatabaseURL is the remote (authenticated-mode) store. Empty disables it.
	DatabaseURL string

	// LocalDataDir holds the guest-mode document store.
	LocalDataDir string

	// RedisURL enables the provider response cache when set.
	RedisURL         string
	ProviderCacheTTL time.Duration

	// KafkaBrokers enables the audit event publisher when set.
	KafkaBrokers []string
	AuditTopic   string

	ProviderBaseURL     string
	ProviderKeyName     string
	ProviderKeyPassword string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                envOr("PERSONA_ADDR", ":8080"),
		HTTPWriteTimeout:    envDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:     envDuration("HTTP_IDLE_TIMEOUT", 2*time.Minute),
		JWTSigningKey:       envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		LocalDataDir:        envOr("PERSONA_LOCAL_DATA_DIR", ".persona"),
		RedisURL:            os.Getenv("REDIS_URL"),
		ProviderCacheTTL:    envDuration("PROVIDER_CACHE_TTL", 5*time.Minute),
		AuditTopic:          envOr("AUDIT_TOPIC", "persona.audit"),
		ProviderBaseURL:     envOr("PROVIDER_BASE_URL", "https://api.enformiongo.com/v1"),
		ProviderKeyName:     os.Getenv("PROVIDER_API_KEY_NAME"),
		ProviderKeyPassword: os.Getenv("PROVIDER_API_KEY_PASSWORD"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
