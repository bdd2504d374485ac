package config

import (
	"os"
	"strings"
	"time"
)

// ProfileCacheTTL bounds how long a fetched profile may be reused before the
// store is consulted again.
var ProfileCacheTTL = 5 * time.Minute

// Config captures everything main needs to wire the portal.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	SessionTTL    time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("GRAMSEVA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "gramseva.audit"
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
		JWTSigningKey: jwtSigningKey,
		SessionTTL:    24 * time.Hour,
	}
}

// DemoMode reports whether the backing database is absent or still carries a
// placeholder value. The decision is made once at startup and selects the
// synthetic stores; individual operations never re-check it.
func (c Config) DemoMode() bool {
	if c.DatabaseURL == "" {
		return true
	}
	return strings.Contains(c.DatabaseURL, "your-project")
}
