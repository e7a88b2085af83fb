package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort        int
	DatabasePath      string
	SessionSecret     string        // signs the CSRF layer; must stay private
	SessionTTL        time.Duration // lifetime of a login session
	PredictionURL     string        // base URL of the external prediction service
	PredictionTimeout time.Duration
	WeatherAPIKey     string // reserved for a future live weather integration
	AppEnv            string // "production" enables secure cookies
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	predictionTimeout, err := time.ParseDuration(getEnv("PREDICTION_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_TIMEOUT: %w", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	predictionURL := os.Getenv("PREDICTION_URL")
	if predictionURL == "" {
		return nil, fmt.Errorf("PREDICTION_URL must be set")
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./agripredict.db"),
		SessionSecret:     secret,
		SessionTTL:        sessionTTL,
		PredictionURL:     predictionURL,
		PredictionTimeout: predictionTimeout,
		WeatherAPIKey:     os.Getenv("OPENWEATHER_KEY"),
		AppEnv:            getEnv("APP_ENV", "development"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
