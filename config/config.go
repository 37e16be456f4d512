package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	Server      struct {
		Port           string
		AllowedOrigins []string
		RateLimitRPS   int
	}
	Database struct {
		URL string `validate:"required"`
	}
	Redis struct {
		URL string `validate:"required"`
	}
	Bot struct {
		Token         string `validate:"required"`
		APIBaseURL    string `validate:"required,url"`
		GatewayURL    string `validate:"required"`
		ApplicationID string
	}
	Tracker struct {
		EmotePattern string `validate:"required"`
		PageSize     int    `validate:"gt=0"`
		CacheTTL     time.Duration
	}
	JWT struct {
		Secret string `validate:"required"`
	}
}

var validate = validator.New()

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{}

	cfg.Environment = getEnv("APP_ENV", "development")

	// Server
	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.AllowedOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"})
	cfg.Server.RateLimitRPS = getEnvInt("RATE_LIMIT_RPS", 50)

	// Database
	postgresUser := getEnv("POSTGRES_USER", "emotes")
	postgresPass := getEnv("POSTGRES_PASSWORD", "emotes_secure_password")
	postgresHost := getEnv("POSTGRES_HOST", "localhost")
	postgresPort := getEnv("POSTGRES_PORT", "5432")
	postgresDB := getEnv("POSTGRES_DB", "emotes")
	postgresSSL := getEnv("POSTGRES_SSLMODE", "disable")
	cfg.Database.URL = getEnv("DATABASE_URL", "postgres://"+postgresUser+":"+postgresPass+"@"+postgresHost+":"+postgresPort+"/"+postgresDB+"?sslmode="+postgresSSL)

	// Redis
	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnv("REDIS_PORT", "6379")
	cfg.Redis.URL = getEnv("REDIS_URL", "redis://"+redisHost+":"+redisPort)

	// Bot / platform client
	cfg.Bot.Token = getEnv("BOT_TOKEN", "")
	cfg.Bot.APIBaseURL = getEnv("PLATFORM_API_URL", "https://discord.com/api/v10")
	cfg.Bot.GatewayURL = getEnv("PLATFORM_GATEWAY_URL", "wss://gateway.discord.gg")
	cfg.Bot.ApplicationID = getEnv("APPLICATION_ID", "")

	// Usage tracking
	cfg.Tracker.EmotePattern = getEnv("SERVER_EMOTE_REGEX", "")
	cfg.Tracker.PageSize = getEnvInt("LEADERBOARD_PAGE_SIZE", 25)
	cfg.Tracker.CacheTTL = getEnvDuration("LEADERBOARD_CACHE_TTL", 10*time.Second)

	// JWT (HTTP read API)
	cfg.JWT.Secret = getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, v := range splitAndTrim(value, ",") {
			if v != "" {
				result = append(result, v)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var result []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep[0] {
			part := trim(s[start:i])
			if part != "" {
				result = append(result, part)
			}
			start = i + 1
		}
	}
	if start < len(s) {
		part := trim(s[start:])
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func trim(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
