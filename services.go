// services.go
package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/stride-server/config"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/mirror"
	"github.com/ViniZap4/stride-server/organizer"
	"github.com/ViniZap4/stride-server/store"
)

// services holds the stores and services shared by every command.
type services struct {
	sqlite   *store.SQLite
	pool     *pgxpool.Pool
	mirror   *mirror.Store
	accounts *mirror.Accounts
	metrics  *metrics.Metrics
	org      *organizer.Organizer
}

func open(ctx context.Context, cfg config.Config, onChange func(key string)) (*services, error) {
	rt := &services{metrics: metrics.New()}

	sqlite, err := store.OpenSQLite(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	rt.sqlite = sqlite
	var st store.Store = sqlite

	if cfg.DatabaseURL != "" {
		if err := mirror.Migrate(cfg.DatabaseURL); err != nil {
			rt.Close()
			return nil, err
		}
		pool, err := mirror.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.pool = pool
		rt.accounts = mirror.NewAccounts(pool)
		rt.mirror = mirror.New(sqlite, mirror.NewPostgres(pool), log.Logger, rt.metrics)
		st = rt.mirror
	}

	rt.org = organizer.New(st, organizer.Options{
		Logger:    log.Logger,
		Streak:    cfg.Tracker(),
		Retention: cfg.Trash.Retention,
		Metrics:   rt.metrics,
		OnChange:  onChange,
	})
	return rt, nil
}

// Close drains pending remote writes before releasing the stores.
func (rt *services) Close() {
	if rt.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.mirror.Flush(ctx); err != nil {
			log.Warn().Err(err).Int("pending", rt.mirror.Pending()).Msg("remote writes not flushed")
		}
		cancel()
		rt.mirror.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
	if rt.sqlite != nil {
		if err := rt.sqlite.Close(); err != nil {
			log.Warn().Err(err).Msg("close sqlite")
		}
	}
}
