// Package config reads the server's settings from the environment.
//
// Every setting is an environment variable with a default, declared once as a
// struct tag and parsed by caarlos0/env. A .env file in the working directory,
// if there is one, is loaded first; variables already set in the real
// environment take precedence over it.
//
// Example (local development):
//
//	JWT_SECRET=$(openssl rand -hex 32) go run ./cmd/server
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Database drivers as named in DB_DRIVER.
const (
	DBSQLite   = "sqlite"
	DBPostgres = "postgres"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port      int    `env:"PORT"       envDefault:"3000"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	DBDriver    string `env:"DB_DRIVER"    envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH"      envDefault:"data/recipes.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL"   envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	StorageBackend  string `env:"STORAGE_BACKEND"   envDefault:"local"`
	UploadDir       string `env:"UPLOAD_DIR"        envDefault:"uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES"  envDefault:"5242880"`

	S3 S3Config

	AuthRatePerMinute int  `env:"AUTH_RATE_PER_MINUTE" envDefault:"20"`
	AuthRateBurst     int  `env:"AUTH_RATE_BURST"      envDefault:"5"`
	MetricsEnabled    bool `env:"METRICS_ENABLED"      envDefault:"true"`
}

// S3Config is used when STORAGE_BACKEND=s3. Endpoint is only needed for
// S3-compatible services such as MinIO.
type S3Config struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Prefix    string `env:"S3_PREFIX"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

// Load reads an optional .env file, then the process environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return finish(&cfg)
}

// FromMap parses settings from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.UploadURLPrefix = "/" + strings.Trim(cfg.UploadURLPrefix, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that can't work.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	case len(c.JWTSecret) < 16:
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	case c.TokenTTL <= 0:
		return errors.New("config: TOKEN_TTL must be positive")
	case c.MaxUploadBytes <= 0:
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	case c.AuthRatePerMinute < 0 || c.AuthRateBurst < 0:
		return errors.New("config: AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must not be negative")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT %q must be text or json", c.LogFormat)
	}

	switch c.DBDriver {
	case DBSQLite:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH is required for sqlite")
		}
	case DBPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadDir == "" {
			return errors.New("config: UPLOAD_DIR is required for local storage")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return errors.New("config: S3_BUCKET is required for s3 storage")
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			return errors.New("config: S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DBPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}
