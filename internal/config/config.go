package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	Env            string
	Port           string
	SessionTTL     time.Duration
	PayPalClientID string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnvOrDefault("DB_NAME", "toolstore"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		Env:            getEnvOrDefault("APP_ENV", "development"),
		Port:           getEnvOrDefault("PORT", "5000"),
		SessionTTL:     getDurationEnv("SESSION_TTL_DAYS", 30, 24*time.Hour),
		PayPalClientID: getEnvOrDefault("PAYPAL_CLIENT_ID", ""),
	}
	if AppEnv.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
}

// IsProduction gates the stack field on panic responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
