// Package repository selects the RecordStore implementation named by the configuration.
package repository

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/memory"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-dashboard/internal/adapter/repository/sqlite"
	"github.com/simaogato/wealthflow-dashboard/internal/config"
	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

// postgres may still be starting when the process comes up (docker compose)
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured store and a closer releasing it.
func Open(ctx context.Context, cfg *config.AppConfig) (domain.RecordStore, io.Closer, error) {
	log := logger.FromContext(ctx)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage, nothing survives a restart")
		return memory.NewStore(), nopCloser{}, nil

	case config.StoragePostgres:
		var lastErr error
		for attempt := 1; attempt <= connectAttempts; attempt++ {
			db, err := postgres.NewDB(ctx, cfg.DBConnStr)
			if err == nil {
				log.Info().Int("attempt", attempt).Msg("Connected to PostgreSQL")
				return postgres.NewSnapshotRepository(db), db, nil
			}
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("PostgreSQL not ready, retrying")
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(connectBackoff):
			}
		}
		return nil, nil, fmt.Errorf("failed to connect to database: %w", lastErr)

	default:
		s, err := sqlite.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}
