// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server configures the reference REST service.
type Server struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// Store selects the profile backend: "memory" or "firestore".
	Store                        string `env:"PROFILE_STORE"                  envDefault:"memory"`
	FirebaseProjectID            string `env:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Client configures the profile client and its local cache.
type Client struct {
	APIURL string `env:"PROFILE_API_URL" envDefault:"http://localhost:8080"`
	// CachePath is the SQLite file backing the local cache. CacheInMemory skips the file.
	CachePath   string        `env:"PROFILE_CACHE_PATH"   envDefault:"profile-cache.db"`
	HTTPTimeout time.Duration `env:"PROFILE_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"LOG_LEVEL"            envDefault:"warn"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer reads Server settings from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	switch cfg.Store {
	case StoreMemory, StoreFirestore:
	default:
		return Server{}, fmt.Errorf("parse env: unknown PROFILE_STORE %q", cfg.Store)
	}
	return cfg, nil
}

// LoadClient reads Client settings from the environment.
func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	if cfg.HTTPTimeout <= 0 {
		return Client{}, fmt.Errorf("parse env: PROFILE_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	return cfg, nil
}

// CacheInMemory keeps the local cache in process memory.
const CacheInMemory = "memory"

// Profile store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
)
