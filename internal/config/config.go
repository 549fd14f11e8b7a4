// Package config handles resolving configuration.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
	"golang.org/x/crypto/bcrypt"
)

const appName = "scribe"

// Config is the resolved application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	// Address is the host:port the API server listens on.
	Address string `yaml:"address" validate:"required,hostname_port"`
	// DatabaseURL is the SQLite file path (or file: URI) of the store.
	DatabaseURL string `yaml:"database_url" validate:"required"`
	// SecretKey is mixed into every password hash. Changing it invalidates
	// all stored passwords.
	SecretKey string `yaml:"secret_key" validate:"required"`
	// BcryptCost is the bcrypt work factor for new password hashes.
	BcryptCost int `yaml:"bcrypt_cost" validate:"min=4,max=31"`
	// DevMode enables source locations in logs and echo debug output.
	DevMode bool `yaml:"dev_mode"`
}

// LookupFunc resolves an environment variable, like [os.LookupEnv].
type LookupFunc func(key string) (string, bool)

// DefaultPath is the location of the configuration file unless overridden.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName+".yaml")
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the user must set
// secret_key.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Address:     "localhost:8080",
		DatabaseURL: filepath.Join(xdg.DataHome, appName, "db.sqlite"),
		SecretKey:   "", // must be set by the user
		BcryptCost:  bcrypt.DefaultCost,
		DevMode:     false,
	}
}

// Load resolves the configuration from defaults, the YAML file at path (if it
// exists) and the environment, in increasing order of precedence. The result
// is validated for completeness.
func Load(path string, env LookupFunc) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
		}
	}
	if err = applyEnv(cfg, env); err != nil {
		return nil, err
	}
	if err = validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Environment returns a [LookupFunc] over the process environment, falling
// back to the variables in the dotenv file at path. A missing file is not an
// error.
func Environment(path string) (LookupFunc, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if val, ok := os.LookupEnv(key); ok {
			return val, true
		}
		val, ok := dotenv[key]
		return val, ok
	}, nil
}

// HasSecret reports whether env provides a secret key.
func HasSecret(env LookupFunc) bool {
	_, ok := lookup(env, "SCRIBE_SECRET_KEY", "SECRET_KEY")
	return ok
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil { //nolint:mnd // owner only
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil { //nolint:mnd // owner rw access
		return fmt.Errorf("failed to write config file to %s: %w", path, err)
	}
	return nil
}

// NewSecretKey generates a random secret key.
func NewSecretKey() string {
	return rand.Text()
}

func applyEnv(cfg *Config, env LookupFunc) error {
	if val, ok := lookup(env, "SCRIBE_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := lookup(env, "SCRIBE_ADDRESS"); ok {
		cfg.Address = val
	}
	if val, ok := lookup(env, "SCRIBE_DATABASE_URL", "DATABASE_URL"); ok {
		cfg.DatabaseURL = val
	}
	if val, ok := lookup(env, "SCRIBE_SECRET_KEY", "SECRET_KEY"); ok {
		cfg.SecretKey = val
	}
	if val, ok := lookup(env, "SCRIBE_BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid SCRIBE_BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}
	if val, ok := lookup(env, "SCRIBE_DEV_MODE"); ok {
		devMode, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid SCRIBE_DEV_MODE: %w", err)
		}
		cfg.DevMode = devMode
	}
	return nil
}

// lookup returns the first non-empty value among keys.
func lookup(env LookupFunc, keys ...string) (string, bool) {
	if env == nil {
		return "", false
	}
	for _, key := range keys {
		if val, ok := env(key); ok && val != "" {
			return val, true
		}
	}
	return "", false
}
