// Package main is the entry point for the recipe-share API server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (environment, optionally a .env file)
//  2. Create long-lived dependencies (logger, database, image storage, auth)
//  3. Start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, ...).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/config"
	"github.com/sakif/recipe-share/internal/logging"
	"github.com/sakif/recipe-share/internal/repository/sqlstore"
	"github.com/sakif/recipe-share/internal/server"
	"github.com/sakif/recipe-share/internal/storage"
	"github.com/sakif/recipe-share/internal/storage/local"
	"github.com/sakif/recipe-share/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. SET UP LOGGING ===
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// === 3. OPEN THE DATABASE ===
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}

	// === 4. IMAGE STORAGE ===
	images, err := openImageStore(ctx, cfg)
	if err != nil {
		db.Close()
		return err
	}

	// === 5. AUTH ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return err
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	// === 6. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		AuthRateBurst:     cfg.AuthRateBurst,
		MetricsEnabled:    cfg.MetricsEnabled,
	}, server.Deps{
		DB:        db,
		Images:    images,
		Tokens:    tokens,
		Passwords: passwords,
	}, logger)
	if err != nil {
		db.Close()
		return err
	}

	logger.Info("configuration loaded",
		slog.String("db_driver", cfg.DBDriver),
		slog.String("storage", cfg.StorageBackend),
		slog.Bool("metrics", cfg.MetricsEnabled),
	)

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	// and closes the database on the way out.
	return srv.Start()
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlstore.DB, error) {
	driver := sqlstore.DriverSQLite
	if cfg.DBDriver == config.DBPostgres {
		driver = sqlstore.DriverPostgres
	} else if cfg.DBPath != ":memory:" {
		// Equivalent to `mkdir -p` for the database file's directory.
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlstore.Open(ctx, driver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	return db, nil
}

func openImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend == config.StorageS3 {
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
			PublicURL: cfg.S3.PublicURL,
		})
	}
	return local.New(cfg.UploadDir, cfg.UploadURLPrefix)
}
