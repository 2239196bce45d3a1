// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures server-level configuration for the decision point.
type Config struct {
	// Addr is the listen address of the HTTP surface (evaluation endpoint,
	// health, metrics, admin queries).
	Addr string

	// PostgresDSN enables the postgres-backed grant, relationship, and audit
	// stores. Empty means in-memory stores (development, tests).
	PostgresDSN string

	// PolicyVersion tags every decision with the rule set in effect.
	PolicyVersion string

	// JWTSecret verifies access tokens on the evaluation endpoint.
	JWTSecret string

	Redis RedisConfig
	Kafka KafkaConfig

	// DecisionCacheTTL bounds how long a cached decision may be served.
	// Zero disables the decision cache even when Redis is configured.
	DecisionCacheTTL time.Duration

	// RelationshipCacheTTL bounds staleness of cached company relationships.
	// Zero disables the relationship cache.
	RelationshipCacheTTL time.Duration

	// AuditBufferCapacity bounds the async publish queue. When full, the
	// oldest records are dropped (and counted) rather than blocking callers.
	AuditBufferCapacity int
}

// RedisConfig captures the optional Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the optional audit event channel settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables, applying development
// defaults where unset.
func FromEnv() Config {
	cfg := Config{
		Addr:                 envOr("VERDICT_ADDR", ":8080"),
		PostgresDSN:          os.Getenv("VERDICT_POSTGRES_DSN"),
		PolicyVersion:        envOr("VERDICT_POLICY_VERSION", "v1"),
		JWTSecret:            os.Getenv("VERDICT_JWT_SECRET"),
		DecisionCacheTTL:     envDuration("VERDICT_DECISION_CACHE_TTL", 0),
		AuditBufferCapacity:  envInt("VERDICT_AUDIT_BUFFER_CAPACITY", 10000),
		RelationshipCacheTTL: envDuration("VERDICT_RELATIONSHIP_CACHE_TTL", 0),
		Redis: RedisConfig{
			URL:          os.Getenv("VERDICT_REDIS_URL"),
			PoolSize:     envInt("VERDICT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERDICT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VERDICT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERDICT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERDICT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("VERDICT_KAFKA_TOPIC", "verdict.policy.decisions"),
		},
	}

	if brokers := os.Getenv("VERDICT_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
