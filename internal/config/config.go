package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"projecthub/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	ServerPort  string
	GinMode     string
	LogLevel    string
	CORSOrigins []string

	JWTSecret string
	JWTExpiry time.Duration
	OTPTTL    time.Duration

	// AuthRPS and AuthBurst throttle the unauthenticated /auth routes per IP.
	AuthRPS   float64
	AuthBurst int

	SMTP SMTPConfig
}

// SMTPConfig holds outgoing mail settings. An empty Host disables SMTP delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	TLS      bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5431"),
		DBUser:     getEnv("DB_USER", "projecthub_user"),
		DBPassword: getEnv("DB_PASSWORD", "projecthub_pass"),
		DBName:     getEnv("DB_NAME", "projecthub_db"),
		DBPath:     getEnv("DB_PATH", "projecthub.db"),

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		OTPTTL:    time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,

		AuthRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 5),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			From:     getEnv("SMTP_FROM", "no-reply@projecthub.local"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			TLS:      getEnvBool("SMTP_TLS", true),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", raw).Msg("invalid integer in environment, using default")
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", raw).Msg("invalid number in environment, using default")
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultVal
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
