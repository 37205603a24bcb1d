package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultSessionSecret is the development fallback for SESSION_SECRET
const DefaultSessionSecret = "default-secret-key-change-me"

type Config struct {
	Port    string
	GinMode string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MongoURI string
	MongoDB  string

	SessionStore  string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string

	FrontendURL  string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	PasswordResetSecret  string
	PasswordResetTimeout time.Duration
	BcryptCost           int

	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() *Config {
	sessionSecret := getEnv("SESSION_SECRET", DefaultSessionSecret)

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "project_management"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "dashboard"),

		SessionStore:  getEnv("SESSION_STORE", "redis"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: sessionSecret,

		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 1025),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@localhost"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Project Management"),

		PasswordResetSecret:  getEnv("PASSWORD_RESET_SECRET", sessionSecret),
		PasswordResetTimeout: getEnvAsDuration("PASSWORD_RESET_TIMEOUT", 72*time.Hour),
		BcryptCost:           getEnvAsInt("BCRYPT_COST", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogFile:   getEnv("LOG_FILE", ""),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate rejects release mode running on empty or default secrets.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	for name, value := range map[string]string{
		"SESSION_SECRET":        c.SessionSecret,
		"PASSWORD_RESET_SECRET": c.PasswordResetSecret,
	} {
		if value == "" || value == DefaultSessionSecret {
			return fmt.Errorf("%s must be set to a private value in release mode", name)
		}
	}
	return nil
}

// RedisAddr returns the host:port of the session Redis.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
