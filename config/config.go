package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	DB_DRIVER    string // "pgx" (default) or "postgres" for lib/pq
	PORT         int
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Object storage (any S3-compatible endpoint)
	STORAGE_ACCESS_KEY string
	STORAGE_SECRET_KEY string
	STORAGE_BUCKET     string
	STORAGE_REGION     string
	STORAGE_ENDPOINT   string
	STORAGE_CDN_URL    string
	// Course structure extraction
	EXTRACTION_FUNCTION_URL    string
	EXTRACTION_FUNCTION_KEY    string
	EXTRACTION_TIMEOUT_SECONDS int
	INFERENCE_API_KEY          string
	INFERENCE_BASE_URL         string
	INFERENCE_MODEL            string
	// Bootstrap HR account
	HR_ADMIN_EMAIL    string
	HR_ADMIN_PASSWORD string
	// Misc
	ALLOWED_ORIGINS string
	CRON_ENABLED    bool
	LOG_LEVEL       string
	LOG_FILE        string
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	extractionTimeout, err := strconv.Atoi(os.Getenv("EXTRACTION_TIMEOUT_SECONDS"))
	if err != nil || extractionTimeout <= 0 {
		extractionTimeout = 120
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getOrDefault("DB_SSL_MODE", "disable"),
		DB_DRIVER:    getOrDefault("DB_DRIVER", "pgx"),
		PORT:         port,
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: getOrDefault("JWT_ISSUER", "enacton-training-api"),
		// Redis
		REDIS_URL: getOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		// Storage
		STORAGE_ACCESS_KEY: os.Getenv("STORAGE_ACCESS_KEY"),
		STORAGE_SECRET_KEY: os.Getenv("STORAGE_SECRET_KEY"),
		STORAGE_BUCKET:     os.Getenv("STORAGE_BUCKET"),
		STORAGE_REGION:     getOrDefault("STORAGE_REGION", "us-east-1"),
		STORAGE_ENDPOINT:   os.Getenv("STORAGE_ENDPOINT"),
		STORAGE_CDN_URL:    os.Getenv("STORAGE_CDN_URL"),
		// Extraction
		EXTRACTION_FUNCTION_URL:    os.Getenv("EXTRACTION_FUNCTION_URL"),
		EXTRACTION_FUNCTION_KEY:    os.Getenv("EXTRACTION_FUNCTION_KEY"),
		EXTRACTION_TIMEOUT_SECONDS: extractionTimeout,
		INFERENCE_API_KEY:          os.Getenv("INFERENCE_API_KEY"),
		INFERENCE_BASE_URL:         os.Getenv("INFERENCE_BASE_URL"),
		INFERENCE_MODEL:            os.Getenv("INFERENCE_MODEL"),
		// Seed
		HR_ADMIN_EMAIL:    os.Getenv("HR_ADMIN_EMAIL"),
		HR_ADMIN_PASSWORD: os.Getenv("HR_ADMIN_PASSWORD"),
		// Misc
		ALLOWED_ORIGINS: getOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"),
		CRON_ENABLED:    os.Getenv("CRON_ENABLED") != "false", // Default to enabled
		LOG_LEVEL:       getOrDefault("LOG_LEVEL", "info"),
		LOG_FILE:        os.Getenv("LOG_FILE"),
	}

	return envVariables, nil
}

// IsProduction reports whether GO_ENV is production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
