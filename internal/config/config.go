package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB         DBConfig
	JWT        JWTConfig
	Server     ServerConfig
	Uploads    UploadsConfig
	Directions DirectionsConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port string
}

type UploadsConfig struct {
	Dir           string
	SweepInterval time.Duration
	Retention     time.Duration
}

type DirectionsConfig struct {
	URL    string
	APIKey string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "wanderlog"),
			Password: getEnv("DB_PASSWORD", "wanderlog_secret"),
			Name:     getEnv("DB_NAME", "wanderlog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
		},
		Uploads: UploadsConfig{
			Dir:           getEnv("UPLOADS_DIR", "uploads"),
			SweepInterval: getEnvAsDuration("UPLOADS_SWEEP_INTERVAL", 24*time.Hour),
			Retention:     getEnvAsDuration("UPLOADS_RETENTION", 24*time.Hour),
		},
		Directions: DirectionsConfig{
			URL:    getEnv("DIRECTIONS_API_URL", "https://api.openrouteservice.org/v2/directions/driving-car/geojson"),
			APIKey: getEnv("DIRECTIONS_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
