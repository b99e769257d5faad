package config

import (
	"os"
	"strconv"
	"time"

	"criptomain/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	APIRateLimit  int
	APIRateWindow time.Duration
	TapRateLimit  int
	TapRateWindow time.Duration

	// How long a transaction may wait on a row lock before it fails with a
	// retryable contention error.
	LockTimeout time.Duration

	// Tokenomics seed values, used only by the first-boot bootstrap.
	InitialTokenPriceUSD     float64
	PriceIncrementPerUserUSD float64

	// Admin account provisioned at first boot.
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment (.env honored in dev).
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

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		TapRateLimit:  envInt("TAP_RATE_LIMIT", 600),
		TapRateWindow: envSeconds("TAP_RATE_WINDOW_SECONDS", time.Minute),

		LockTimeout: envSeconds("LOCK_TIMEOUT_SECONDS", 3*time.Second),

		InitialTokenPriceUSD:     envFloat("INITIAL_TOKEN_PRICE_USD", 1.6),
		PriceIncrementPerUserUSD: envFloat("PRICE_INCREMENT_PER_USER_USD", 0.1),

		AdminUsername: envString("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    envString("ADMIN_EMAIL", "admin@criptomain.local"),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
