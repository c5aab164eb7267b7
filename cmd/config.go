package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"expedition/internal/pkg/errs"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSslMode            string
	DBLockTimeout        time.Duration
	SyncMaxAttempts      int
	CascadeAuditSchedule string
	CascadeAuditBatch    int
	LogLevel             slog.Level
}

// DefaultConfig holds the values used for keys missing from the environment.
func DefaultConfig() Config {
	return Config{
		HTTPPort:             "8080",
		DBHost:               "localhost",
		DBPort:               "5432",
		DBUser:               "postgres",
		DBPassword:           "postgres",
		DBName:               "expedition",
		DBSslMode:            "disable",
		DBLockTimeout:        5 * time.Second,
		SyncMaxAttempts:      3,
		CascadeAuditSchedule: "",
		CascadeAuditBatch:    100,
		LogLevel:             slog.LevelInfo,
	}
}

// LoadConfig reads .env files when present, then the process environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup builds a configuration from a variable lookup such as os.LookupEnv.
func ConfigFromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("HTTP_PORT", &cfg.HTTPPort)
	str("DB_HOST", &cfg.DBHost)
	str("DB_PORT", &cfg.DBPort)
	str("DB_USER", &cfg.DBUser)
	str("DB_PASSWORD", &cfg.DBPassword)
	str("DB_NAME", &cfg.DBName)
	str("DB_SSLMODE", &cfg.DBSslMode)
	if v, ok := lookup("CASCADE_AUDIT_SCHEDULE"); ok {
		cfg.CascadeAuditSchedule = strings.TrimSpace(v)
	}

	var problems []error
	if v, ok := lookup("DB_LOCK_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause("DB_LOCK_TIMEOUT", fmt.Errorf("%q is not a duration", v)))
		}
		cfg.DBLockTimeout = d
	}
	if v, ok := lookup("SYNC_MAX_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			problems = append(problems, errs.NewValueIsOutOfRangeError("SYNC_MAX_ATTEMPTS", v, 1, "unbounded"))
		}
		cfg.SyncMaxAttempts = n
	}
	if v, ok := lookup("CASCADE_AUDIT_BATCH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			problems = append(problems, errs.NewValueIsOutOfRangeError("CASCADE_AUDIT_BATCH", v, 1, 1000))
		}
		cfg.CascadeAuditBatch = n
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", err))
		}
	}

	if err := errors.Join(problems...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}
