/*
config.go - Runtime configuration

PURPOSE:
  Collects server settings from the environment. An optional .env file in
  the working directory is loaded first; real environment variables win
  over it. Command-line flags in cmd/server override both.

KEYS:
  LEAVE_PORT                     HTTP port (default 8080)
  LEAVE_DB_PATH                  SQLite path, ":memory:" allowed (default leave.db)
  LEAVE_ENV                      development | production (default development)
  LEAVE_HOLIDAY_TIMEOUT          Holiday calendar lookup timeout (default 2s)
  LEAVE_ACCRUAL_SCHEDULER        Run the yearly accrual scheduler (default true)
  LEAVE_ACCRUAL_CHECK_INTERVAL   How often the scheduler wakes up (default 1h)
  LEAVE_WORKERS                  Worker limit for bulk jobs (default 8)
  LEAVE_CORS_ORIGINS             Comma-separated allowed origins

SEE ALSO:
  - cmd/server/main.go: Flag overrides
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 int
	DBPath               string
	Environment          string
	HolidayTimeout       time.Duration
	AccrualScheduler     bool
	AccrualCheckInterval time.Duration
	Workers              int
	CORSOrigins          []string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		Port:                 getEnvInt("LEAVE_PORT", 8080),
		DBPath:               getEnv("LEAVE_DB_PATH", "leave.db"),
		Environment:          getEnv("LEAVE_ENV", "development"),
		HolidayTimeout:       getEnvDuration("LEAVE_HOLIDAY_TIMEOUT", 2*time.Second),
		AccrualScheduler:     getEnvBool("LEAVE_ACCRUAL_SCHEDULER", true),
		AccrualCheckInterval: getEnvDuration("LEAVE_ACCRUAL_CHECK_INTERVAL", time.Hour),
		Workers:              getEnvInt("LEAVE_WORKERS", 8),
		CORSOrigins:          getEnvList("LEAVE_CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("LEAVE_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("LEAVE_DB_PATH is required"))
	}
	if c.HolidayTimeout <= 0 {
		errs = append(errs, errors.New("LEAVE_HOLIDAY_TIMEOUT must be positive"))
	}
	if c.AccrualScheduler && c.AccrualCheckInterval <= 0 {
		errs = append(errs, errors.New("LEAVE_ACCRUAL_CHECK_INTERVAL must be positive when the scheduler is on"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("LEAVE_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
