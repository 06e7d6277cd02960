package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppURL                   string
	StorageDriver            string
	DocumentPath             string
	DatabaseDSN              string
	ConcurrencyPolicy        string
	WriteRetries             int
	TimerCache               string
	RedisAddr                string
	RedisTimerKeyPrefix      string
	AllowedUsers             []string
	Timezone                 string
	RateLimit                int
	ReconcileIntervalSeconds int
	ShutdownTimeoutSeconds   int
	AttendancePolicyFile     string
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                   fmt.Sprintf("%s:%s", appHost, appPort),
		StorageDriver:            getEnv("STORAGE_DRIVER", "file"),
		DocumentPath:             getEnv("DOCUMENT_PATH", "data/db.json"),
		DatabaseDSN:              getEnv("DATABASE_DSN", "worktracker.db"),
		ConcurrencyPolicy:        getEnv("CONCURRENCY_POLICY", "optimistic"),
		WriteRetries:             getEnvAsInt("WRITE_RETRIES", 3),
		TimerCache:               getEnv("TIMER_CACHE", "memory"),
		RedisAddr:                fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisTimerKeyPrefix:      getEnv("REDIS_TIMER_KEY_PREFIX", "worktracker:timer:"),
		AllowedUsers:             getEnvAsList("ALLOWED_USERS", []string{"user1", "user2"}),
		Timezone:                 getEnv("TIMEZONE", "Local"),
		RateLimit:                getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		ReconcileIntervalSeconds: getEnvAsInt("RECONCILE_INTERVAL_SECONDS", 60),
		ShutdownTimeoutSeconds:   getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
		AttendancePolicyFile:     getEnv("ATTENDANCE_POLICY_FILE", ""),
	}

	if err := validate(cfg); err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Location resolves TIMEZONE; dates of entries and attendance are computed in it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Fatalf("invalid TIMEZONE %q: %v", c.Timezone, err)
	}
	return loc
}

func validate(cfg Config) error {
	if cfg.AppURL == "" {
		return fmt.Errorf("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	switch cfg.StorageDriver {
	case "file":
		if cfg.DocumentPath == "" {
			return fmt.Errorf("DOCUMENT_PATH must not be empty")
		}
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be file or sqlite, got %q", cfg.StorageDriver)
	}
	if cfg.ConcurrencyPolicy != "optimistic" && cfg.ConcurrencyPolicy != "last-writer-wins" {
		return fmt.Errorf("CONCURRENCY_POLICY must be optimistic or last-writer-wins, got %q", cfg.ConcurrencyPolicy)
	}
	if cfg.WriteRetries <= 0 {
		return fmt.Errorf("WRITE_RETRIES must be greater than 0")
	}
	if cfg.TimerCache != "memory" && cfg.TimerCache != "redis" {
		return fmt.Errorf("TIMER_CACHE must be memory or redis, got %q", cfg.TimerCache)
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.ReconcileIntervalSeconds < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_SECONDS must not be negative")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
