package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zjrosen/smartmd/internal/config"
	"github.com/zjrosen/smartmd/internal/infrastructure/sqlite"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/tabs"
	"github.com/zjrosen/smartmd/internal/tracing"
)

// services are the long-lived stores shared by the commands.
type services struct {
	DB       *sqlite.DB
	Settings *settings.Store
	States   *tabs.StateStore
	Tracing  *tracing.Provider
}

// openServices opens the database, loads settings and prunes view states
// older than the configured retention.
func openServices(ctx context.Context, cfg config.Config) (*services, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sqlite.NewDB(cfg.DBPath())
	if err != nil {
		return nil, err
	}

	store, err := settings.Open(ctx, db.SettingsRepository())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	states := db.DocumentStateRepository()
	if keep := cfg.State.Retention(); keep > 0 {
		n, err := states.PruneBefore(ctx, time.Now().Add(-keep))
		if err != nil {
			log.ErrorErr(log.CatDB, "prune view states", err)
		} else if n > 0 {
			log.Info(log.CatDB, "pruned view states", "count", n)
		}
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		log.Warn(log.CatTrace, "tracing disabled", "error", err)
		tp = tracing.Noop()
	}

	return &services{
		DB:       db,
		Settings: store,
		States:   tabs.NewStateStore(states),
		Tracing:  tp,
	}, nil
}

// Close flushes traces and closes the stores.
func (s *services) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Tracing.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "shutdown tracing", err)
	}
	s.Settings.Close()
	if err := s.DB.Close(); err != nil {
		log.ErrorErr(log.CatDB, "close database", err)
	}
}
