package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	RedisURI       string   // empty disables the Redis live-feed relay
	MongoURI       string   // empty disables the telemetry archive
	PostgresURI    string   // empty disables the event journal
	AdminToken     string   // when set, GET /api/devices requires X-Admin-Token
	TrustProxy     bool     // take the client IP from X-Forwarded-For
	EventQueueSize int
}

func Load() *Config {
	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", ""), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Config{
		Port:           getEnv("PORT", "5000"),
		Environment:    strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		AllowedOrigins: allowedOrigins,
		RedisURI:       strings.TrimSpace(getEnv("REDIS_URI", "")),
		MongoURI:       strings.TrimSpace(getEnv("MONGODB_URI", getEnv("MONGO_URI", ""))),
		PostgresURI:    strings.TrimSpace(getEnv("POSTGRES_URI", "")),
		AdminToken:     strings.TrimSpace(getEnv("ADMIN_TOKEN", "")),
		TrustProxy:     getBool("TRUST_PROXY", false),
		EventQueueSize: getInt("EVENT_QUEUE_SIZE", 1024),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
