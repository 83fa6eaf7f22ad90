package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"scrap-collect/logger"

	"github.com/joho/godotenv"
)

// Config holds every environment driven setting of the service.
type Config struct {
	AppHost     string
	AppPort     string
	FrontendURL string

	DB DBConfig

	JWTSecret    string
	PublicKeyURL string

	Payout PayoutConfig
	SMS    SMSConfig

	UploadDir    string
	GeminiAPIKey string
	GeminiModel  string
	SeedFixtures bool
}

// DBConfig holds the PostgreSQL connection settings
type DBConfig struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// PayoutConfig selects and configures the payout provider
type PayoutConfig struct {
	Mode    string // "http" or "mock"
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SMSConfig selects and configures the SMS gateway
type SMSConfig struct {
	Mode     string // "http" or "log"
	BaseURL  string
	APIKey   string
	SenderID string
}

// Load reads the .env file (if any) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file found, reading configuration from environment")
	}

	return &Config{
		AppHost:     os.Getenv("APP_HOST"),
		AppPort:     getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "*"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			Database: os.Getenv("DB_DATABASE"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PublicKeyURL: os.Getenv("PUBLIC_KEY_URL"),
		Payout: PayoutConfig{
			Mode:    strings.ToLower(getEnv("PAYOUT_MODE", "mock")),
			BaseURL: os.Getenv("PAYOUT_BASE_URL"),
			APIKey:  os.Getenv("PAYOUT_API_KEY"),
			Timeout: getDuration("PAYOUT_TIMEOUT", 15*time.Second),
		},
		SMS: SMSConfig{
			Mode:     strings.ToLower(getEnv("SMS_MODE", "log")),
			BaseURL:  os.Getenv("SMS_BASE_URL"),
			APIKey:   os.Getenv("SMS_API_KEY"),
			SenderID: getEnv("SMS_SENDER_ID", "SCRAPY"),
		},
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		SeedFixtures: getBool("SEED_FIXTURES", false),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warning("Invalid boolean for " + key + ", using default")
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warning("Invalid duration for " + key + ", using default")
		return fallback
	}
	return d
}
