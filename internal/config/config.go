package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env                 string
	HTTPPort            string
	DatabaseURL         string
	RedisAddr           string
	JWTIssuer           string
	JWTSigningKey       string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	IdentityServiceURL  string
	IdentityAPIKey      string
	IdentitySkip        bool
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	QueueBackend        string
	RateLimitPerMin     int
	LogDir              string
	LogLevel            string
}

// Load returns application config populated from environment variables with sensible defaults.
// DATABASE_URL has no fallback; callers treat an empty value as fatal.
func Load() App {
	_ = godotenv.Load(".env")

	return App{
		Env:                 getEnv("APP_ENV", "dev"),
		HTTPPort:            getEnv("HTTP_PORT", "4000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		JWTIssuer:           getEnv("JWT_ISSUER", "rollbook"),
		JWTSigningKey:       getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:           durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:          durationEnv("REFRESH_TTL", 24*time.Hour),
		IdentityServiceURL:  getEnv("IDENTITY_SERVICE_URL", "http://localhost:8700"),
		IdentityAPIKey:      getEnv("IDENTITY_API_KEY", ""),
		IdentitySkip:        boolEnv("IDENTITY_SKIP", true),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "rollbook"),
		QueueBackend:        getEnv("QUEUE_BACKEND", "redis"),
		RateLimitPerMin:     intEnv("RATE_LIMIT_PER_MIN", 120),
		LogDir:              getEnv("LOG_DIR", "./logs"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
