// Package store opens the user directory selected by configuration and
// wraps it with the lookup guard.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/hellologin/internal/domain/repository"
	"github.com/dropDatabas3/hellologin/internal/observability/logger"
	"github.com/dropDatabas3/hellologin/internal/store/adapters/memory"
	"github.com/dropDatabas3/hellologin/internal/store/adapters/pg"
	"github.com/dropDatabas3/hellologin/internal/util"
)

// Config selects and tunes the backend.
type Config struct {
	Driver        string // memory | postgres
	DSN           string
	MaxConns      int32
	LookupTimeout time.Duration
	Migrate       bool
}

// Directory is an opened user directory.
type Directory struct {
	Users  repository.UserRepository // guarded
	Driver string

	pg *pg.Store
}

// Open connects to the configured backend. With Migrate set, pending
// PostgreSQL migrations are applied before returning.
func Open(ctx context.Context, cfg Config) (*Directory, error) {
	log := logger.Named("store")

	switch cfg.Driver {
	case "", "memory":
		log.Info("user directory ready", logger.String("driver", "memory"))
		return &Directory{Users: NewGuarded(memory.New(), cfg.LookupTimeout), Driver: "memory"}, nil

	case "postgres":
		s, err := pg.Open(ctx, pg.Config{DSN: cfg.DSN, MaxConns: cfg.MaxConns})
		if err != nil {
			return nil, err
		}
		d := &Directory{Users: NewGuarded(s.Users(), cfg.LookupTimeout), Driver: "postgres", pg: s}
		if cfg.Migrate {
			if _, err := d.Migrate(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		log.Info("user directory ready", logger.String("driver", "postgres"), logger.String("dsn", util.MaskDSN(cfg.DSN)))
		return d, nil

	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Migrate applies pending migrations. It is a no-op for the memory driver.
func (d *Directory) Migrate(ctx context.Context) (*pg.MigrationResult, error) {
	if d.pg == nil {
		return &pg.MigrationResult{}, nil
	}
	res, err := d.pg.Migrate(ctx)
	if err != nil {
		return res, fmt.Errorf("store: migrate: %w", err)
	}
	logger.Named("store").Info("migrations applied",
		logger.Int("applied", len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration(res.Duration),
	)
	return res, nil
}

// Ping checks the backend.
func (d *Directory) Ping(ctx context.Context) error {
	if d.pg == nil {
		return nil
	}
	return d.pg.Ping(ctx)
}

// Close releases backend resources.
func (d *Directory) Close() {
	if d.pg != nil {
		d.pg.Close()
	}
}
