// Package app wires a configured league repository for the server and the
// maintenance commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/fidel-league/config"
	"github.com/Dosada05/fidel-league/db"
	"github.com/Dosada05/fidel-league/repositories"
	"github.com/Dosada05/fidel-league/storage"
)

const connectTimeout = 5 * time.Second

// OpenLeagueRepository connects the storage backend named in cfg. The returned
// close function releases the backend's connections.
func OpenLeagueRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.LeagueRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageBackend {
	case config.BackendFile:
		store, err := storage.NewLocalStore(cfg.File.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file storage", slog.String("dir", cfg.File.DataDir), slog.String("key", cfg.LeagueKey))
		return repositories.NewBlobLeagueRepository(store, cfg.LeagueKey), noop, nil

	case config.BackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccountID:       cfg.S3.AccountID,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using s3 storage", slog.String("bucket", cfg.S3.Bucket), slog.String("key", cfg.LeagueKey))
		return repositories.NewBlobLeagueRepository(store, cfg.LeagueKey), noop, nil

	case config.BackendRedis:
		client, err := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis storage", slog.String("addr", cfg.Redis.Addr), slog.String("key", cfg.LeagueKey))
		return repositories.NewBlobLeagueRepository(storage.NewRedisStore(client), cfg.LeagueKey), client.Close, nil

	case config.BackendPostgres:
		conn, err := db.Connect(cfg.Postgres.DatabaseURL, connectTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage", slog.String("league", cfg.LeagueKey))
		return repositories.NewPostgresLeagueRepository(conn, cfg.LeagueKey), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// NewLogger builds the JSON logger used by every binary.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
