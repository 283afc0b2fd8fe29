// Package config reads the server configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBDriver    string // sqlite or postgres
	DatabaseDSN string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	// FrontendURLs are the allowed CORS origins.
	FrontendURLs []string

	RevalidationURL    string
	RevalidationSecret string

	UploadDir     string
	PublicBaseURL string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	RequestTimeout time.Duration
}

const devSecret = "dev-jwt-secret-change-me"

// Load builds a Config from environment variables, falling back to defaults.
// .env files are loaded by main before this runs.
func Load() Config {
	cfg := Config{
		Port:               getEnv("PORT", "8081"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseDSN:        getEnv("DATABASE_DSN", "data/portfolio.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           parseDuration("TOKEN_TTL", 24*time.Hour),
		CookieSecure:       parseBool("COOKIE_SECURE", false),
		RevalidationURL:    os.Getenv("NEXT_REVALIDATION_URL"),
		RevalidationSecret: os.Getenv("REVALIDATION_SECRET"),
		UploadDir:          getEnv("UPLOAD_DIR", "data/uploads"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		AdminName:          os.Getenv("ADMIN_NAME"),
		RequestTimeout:     parseDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	for _, key := range []string{"FRONTEND_URL", "FRONTEND_URL2"} {
		if v := os.Getenv(key); v != "" {
			cfg.FrontendURLs = append(cfg.FrontendURLs, v)
		}
	}

	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET is not set, using an insecure development secret")
		cfg.JWTSecret = devSecret
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}
