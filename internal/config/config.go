// Package config loads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// RulesPath points at a YAML rule file. Empty uses the embedded rules.
	RulesPath string

	ExtractionTimeout     time.Duration
	ExtractionConcurrency int
	ExtractionCacheTTL    time.Duration

	MaxUploadBytes int64

	// SampleDir is loaded as a document set when the database is empty.
	SampleDir string
}

// Load reads a .env file when present and then the environment. Invalid
// values fall back to defaults with a warning.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("config: could not load .env file, using process environment")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DBPath:                getEnv("DB_PATH", "lcverify.db"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		RulesPath:             getEnv("RULES_PATH", ""),
		ExtractionTimeout:     getEnvAsDuration("EXTRACTION_TIMEOUT", 30*time.Second),
		ExtractionConcurrency: getEnvAsInt("EXTRACTION_CONCURRENCY", 4),
		ExtractionCacheTTL:    getEnvAsDuration("EXTRACTION_CACHE_TTL", 10*time.Minute),
		MaxUploadBytes:        getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),
		SampleDir:             getEnv("SAMPLE_DIR", "testdata/sample"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		logrus.WithField("key", key).Warnf("config: invalid integer %q, using %d", s, fallback)
		return fallback
	}
	return v
}

func getEnvAsInt64(key string, fallback int64) int64 {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		logrus.WithField("key", key).Warnf("config: invalid integer %q, using %d", s, fallback)
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		logrus.WithField("key", key).Warnf("config: invalid duration %q, using %s", s, fallback)
		return fallback
	}
	return v
}
