package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	// Server
	ServerPort string
	AppEnv     string

	// External API
	APIBaseURL   string
	MediaBaseURL string
	APITimeout   time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// Session
	JWTSecret              string
	SessionTTL             time.Duration
	SessionRevalidateAfter time.Duration
	CookieSecure           bool

	// HTTP
	AllowedOrigins []string
	AIRateLimit    int
	LoginRateLimit int
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	apiBase := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/")

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),

		APIBaseURL:   apiBase,
		MediaBaseURL: strings.TrimRight(getEnv("MEDIA_BASE_URL", MediaBaseFromAPI(apiBase)), "/"),
		APITimeout:   getEnvDuration("API_TIMEOUT", 15*time.Second),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		JWTSecret:              getEnv("JWT_SECRET", DefaultJWTSecret),
		SessionTTL:             getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		SessionRevalidateAfter: getEnvDuration("SESSION_REVALIDATE_AFTER", 10*time.Minute),
		CookieSecure:           getEnvBool("COOKIE_SECURE", false),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		AIRateLimit:    getEnvInt("AI_RATE_LIMIT", 20),
		LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),
	}

	return config, nil
}

// Validate rejects settings the web front end cannot run with.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL must be set")
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MediaBaseFromAPI derives the storage origin from the API base URL by
// dropping a trailing /api segment.
func MediaBaseFromAPI(apiBase string) string {
	base := strings.TrimRight(apiBase, "/")
	return strings.TrimSuffix(base, "/api")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
