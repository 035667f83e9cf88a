package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	DBName       string
	JWTSecret    string
	JWTExpiresIn string
	Port         string
	GinMode      string
	CORSOrigins  []string
	BcryptCost   int

	// Quota
	DailyCheckLimit int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Redis / queue
	RedisURL          string
	RedisPassword     string
	RedisDB           int
	WorkerConcurrency int

	// Watchdog for checks stuck in Processing
	WatchdogCron    string
	CheckStuckAfter int // minutes
	WatchdogEnabled bool

	// AI detector seed; 0 seeds from the clock
	AiDetectSeed int64
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017/plagiarism_check"),
		DBName:       getEnv("DB_NAME", "plagiarism_check"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		DailyCheckLimit: getEnvInt("DAILY_CHECK_LIMIT", 10),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:          getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),

		WatchdogCron:    getEnv("WATCHDOG_CRON", "*/5 * * * *"),
		CheckStuckAfter: getEnvInt("CHECK_STUCK_AFTER_MIN", 30),
		WatchdogEnabled: getEnvBool("WATCHDOG_ENABLED", true),

		AiDetectSeed: getEnvInt64("AI_DETECT_SEED", 0),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}
	if cfg.DailyCheckLimit < 1 {
		return nil, fmt.Errorf("DAILY_CHECK_LIMIT must be at least 1")
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
