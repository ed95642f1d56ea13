package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port         string
	JWTSecret    string
	RegistryPath string
	UsersPath    string
	FrontendDir  string
	CacheTTL     time.Duration
	Mail         MailConfig
}

// MailConfig holds the alert mail relay account. Empty credentials disable
// dispatch without surfacing an error to the acting user.
type MailConfig struct {
	Host         string
	TLSPort      int
	StartTLSPort int
	Username     string
	Password     string
	Timeout      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    jwtSecret,
		RegistryPath: getEnv("PUMP_DB_PATH", "DB-CMC2.xlsx"),
		UsersPath:    getEnv("USERS_FILE", "users.json"),
		FrontendDir:  getEnv("FRONTEND_DIR", "web/static"),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		Mail: MailConfig{
			Host:         getEnv("SMTP_HOST", "smtp.gmail.com"),
			TLSPort:      getEnvInt("SMTP_TLS_PORT", 465),
			StartTLSPort: getEnvInt("SMTP_STARTTLS_PORT", 587),
			Username:     os.Getenv("EMAIL_USER"),
			Password:     os.Getenv("EMAIL_PASS"),
			Timeout:      time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
