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

const (
	BackendSQL    = "sql"
	BackendBadger = "badger"
)

type Config struct {
	Port           string
	SessionSecret  string
	SQLiteDB       string
	StoreBackend   string
	BadgerDir      string
	UploadDir      string
	CacheDir       string
	CacheMaxAge    time.Duration
	SecureCookies  bool
	LoginRateLimit int
	SEOAPIURL      string
	SEOAPIKey      string
	SEOModel       string
	Domain         string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SQLiteDB:      getEnv("SQLITE_DB", "prolific.db"),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", BackendSQL)),
		BadgerDir:     getEnv("BADGER_DIR", "data/badger"),
		UploadDir:     getEnv("UPLOAD_DIR", "data/uploads"),
		CacheDir:      getEnv("CACHE_DIR", "data/cache"),
		SEOAPIURL:     getEnv("SEO_API_URL", ""),
		SEOAPIKey:     getEnv("SEO_API_KEY", ""),
		SEOModel:      getEnv("SEO_MODEL", ""),
		Domain:        getEnv("DOMAIN", "http://localhost:8080"),
	}

	if cfg.SessionSecret == "" {
		return cfg, errors.New("SESSION_SECRET environment variable not set")
	}
	if cfg.StoreBackend != BackendSQL && cfg.StoreBackend != BackendBadger {
		return cfg, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQL, BackendBadger, cfg.StoreBackend)
	}

	var err error
	if cfg.CacheMaxAge, err = time.ParseDuration(getEnv("CACHE_MAX_AGE", "10m")); err != nil {
		return cfg, fmt.Errorf("CACHE_MAX_AGE: %w", err)
	}
	if cfg.SecureCookies, err = strconv.ParseBool(getEnv("SECURE_COOKIES", "false")); err != nil {
		return cfg, fmt.Errorf("SECURE_COOKIES: %w", err)
	}
	if cfg.LoginRateLimit, err = strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "10")); err != nil {
		return cfg, fmt.Errorf("LOGIN_RATE_LIMIT: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
