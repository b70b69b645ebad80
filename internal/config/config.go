package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (owner/admin API access)
	JWTSecret string

	// Admin
	AdminUserIDs string
	AdminToken   string

	// Reporter identity
	EmailHashSecret string

	// Anonymous rate limiting
	RateLimitWindow time.Duration
	RateLimitMax    int

	// Verification tokens
	VerificationTTL time.Duration

	// Escalation scheduler
	SchedulerInterval time.Duration

	// Hosting platform API (event/calendar lookups)
	PlatformAPIURL string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		EmailHashSecret: getEnv("EMAIL_HASH_SECRET", ""),

		RateLimitWindow: parseDuration(getEnv("REPORT_RATE_LIMIT_WINDOW", "1h"), time.Hour),
		RateLimitMax:    parseInt(getEnv("REPORT_RATE_LIMIT_MAX", "5"), 5),

		VerificationTTL: parseDuration(getEnv("VERIFICATION_TTL", "24h"), 24*time.Hour),

		SchedulerInterval: parseDuration(getEnv("SCHEDULER_INTERVAL", "15m"), 15*time.Minute),

		PlatformAPIURL: getEnv("PLATFORM_API_URL", "http://localhost:3000"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
