package server

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bills-tracker/internal/common"
	repo "github.com/joseph-ayodele/bills-tracker/internal/repository"
)

// ConnectDB opens the database, checks it answers and applies the embedded
// migrations when auto-migrate is on.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, func(), error) {
	logger.Info("connecting to database")
	db, closeFn, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	if err := repo.HealthCheck(ctx, db, 3*time.Second, logger); err != nil {
		closeFn()
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := repo.RunMigrations(ctx, db); err != nil {
			logger.Error("db.migrate.failed", "error", err)
			closeFn()
			return nil, nil, err
		}
		logger.Info("db.migrate.ok")
	}

	logger.Info("successfully connected to database")
	return db, closeFn, nil
}
