package config

import (
	"os"
	"strconv"
	"time"

	"fintrack/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// API rate limits (fixed window)
	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads configuration from the environment, with .env support for
// local development. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		LogLevel:      logLevel,
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		APIRateLimit:  apiRateLimit,
		APIRateWindow: apiRateWindow,
	}
}
