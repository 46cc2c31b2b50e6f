package app

import (
	"context"
	"fmt"
	"io"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/engine"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/config"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/logger"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/nntp"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/store"
)

// HistoryStore is a store the application can also close.
type HistoryStore interface {
	engine.Store
	io.Closer
}

// Context holds the core environment and shared resources.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	Store   HistoryStore
	Service *engine.Service
}

// NewContext opens the configured history store and builds the service.
func NewContext(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Context, error) {
	hs, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	client := nntp.NewClient(
		nntp.WithLogger(log),
		nntp.WithLimits(nntp.Limits{MaxLines: cfg.Limits.MaxLines, MaxBytes: cfg.Limits.MaxBytes}),
	)

	return &Context{
		Config:  cfg,
		Logger:  log,
		Store:   hs,
		Service: engine.NewService(client, hs, log, cfg.Server.MaxConnections),
	}, nil
}

// Close releases the store.
func (c *Context) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (HistoryStore, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		return s, nil
	case config.StorePostgres:
		s, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}
