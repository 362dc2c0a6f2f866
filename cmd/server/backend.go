package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/config"
	"github.com/Simplici0/unitecon/internal/db"
	"github.com/Simplici0/unitecon/internal/history"
	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/migrations"
)

// historyStore is openHistory that never fails: a backend that cannot be
// opened, reached or migrated leaves saves in the session list.
func historyStore(ctx context.Context, cfg config.Config, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) (history.Store, func()) {
	store, closeStore, err := openHistory(ctx, cfg, clk, log)
	if err != nil {
		m.IncHistoryFallbacks()
		log.Warn("history backend unavailable, saves stay in this session",
			zap.String("driver", cfg.HistoryDriver),
			zap.Error(err),
		)
		return history.Unconfigured{}, func() {}
	}
	return store, closeStore
}

// openHistory builds the persistent history store named by the config. The
// memory driver means no persistent store: saves stay in the session list.
func openHistory(ctx context.Context, cfg config.Config, clk clock.Clock, log *zap.Logger) (history.Store, func(), error) {
	switch cfg.HistoryDriver {
	case config.DriverSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(database, migrations.SQLite); err != nil {
			database.Close()
			return nil, nil, err
		}
		log.Info("history backend ready", zap.String("driver", cfg.HistoryDriver), zap.String("path", cfg.DBPath))
		return history.NewSQLite(database, clk), func() { database.Close() }, nil

	case config.DriverPostgres:
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB := db.SQLFromPool(pool)
		err = migrations.Up(sqlDB, migrations.Postgres)
		sqlDB.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("history backend ready", zap.String("driver", cfg.HistoryDriver))
		return history.NewPostgres(pool), pool.Close, nil

	case config.DriverMemory:
		log.Info("no persistent history configured, saves stay in this session")
		return history.Unconfigured{}, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown history driver %q", cfg.HistoryDriver)
	}
}
