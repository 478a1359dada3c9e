// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable, e.g. MESSENGER_ADDR.
const Prefix = "MESSENGER"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Config holds server settings. Command-line flags in cmd/server override it.
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8443" validate:"required"`
	Backend     string        `envconfig:"BACKEND" default:"memory" validate:"oneof=memory postgres badger"`
	DSN         string        `envconfig:"DSN" validate:"required_if=Backend postgres"`
	BadgerPath  string        `envconfig:"BADGER_PATH" default:"data/badger" validate:"required_if=Backend badger"`
	BlobDir     string        `envconfig:"BLOB_DIR" default:"data/blobs" validate:"required"`
	BlobBaseURL string        `envconfig:"BLOB_BASE_URL" default:"http://localhost:8081" validate:"required,url"`
	JWTKey      string        `envconfig:"JWT_KEY" validate:"required,min=16"`
	AccessTTL   time.Duration `envconfig:"ACCESS_TTL" default:"24h" validate:"gt=0"`
	CASAttempts int           `envconfig:"CAS_ATTEMPTS" default:"8" validate:"gte=1,lte=100"`
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8081"`
	TLSCert     string        `envconfig:"TLS_CERT"`
	TLSKey      string        `envconfig:"TLS_KEY" validate:"required_with=TLSCert"`
	Dev         bool          `envconfig:"DEV" default:"false"`
}

// Load reads the optional dotenv files (first wins, missing files are skipped)
// and then the process environment.
func Load(dotenv ...string) (Config, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("env: %w", err)
	}
	return cfg, nil
}

// Validate checks the combined env and flag settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
