// Package app assembles the studio components selected by configuration.
// The CLI, the HTTP server, the MCP server, and the Lambda handler all build
// their sessions through App.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/catalog"
	"github.com/slicken/TextFx-Studio/internal/config"
	"github.com/slicken/TextFx-Studio/internal/export"
	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/lambdaboot"
	"github.com/slicken/TextFx-Studio/internal/session"
	"github.com/slicken/TextFx-Studio/internal/studio"
)

// App holds the shared components. Sessions are cheap and created per owner.
type App struct {
	Config    config.Config
	Catalog   *catalog.Catalog
	Generator generator.Generator
	Exporter  export.Exporter
	Publisher session.Publisher

	historyFor func(owner string) history.Store
	closers    []func()
}

// Option adjusts an App after the configured components are built.
type Option func(*App)

// WithGenerator replaces the configured generator.
func WithGenerator(g generator.Generator) Option {
	return func(a *App) { a.Generator = g }
}

// New builds the components named by cfg. apiKey may be empty only when
// WithGenerator supplies the generator.
func New(ctx context.Context, cfg config.Config, apiKey string, opts ...Option) (*App, error) {
	cat, err := catalog.Named(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Catalog:  cat,
		Exporter: export.NewLocalExporter(cfg.OutputDir),
		historyFor: func(string) history.Store {
			return history.NewMemory()
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Generator == nil {
		if a.Generator, err = generator.New(ctx, cfg.Generator, apiKey, cfg.ImageModel); err != nil {
			return nil, fmt.Errorf("failed to create %s generator: %w", cfg.Generator, err)
		}
	}
	a.Generator = generator.RateLimited(a.Generator, cfg.GenerateInterval, cfg.GenerateBurst)

	if cfg.History == history.BackendPostgres {
		pool, err := history.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := history.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.historyFor = func(owner string) history.Store {
			return history.NewPostgresStore(pool, owner)
		}
	}

	if cfg.NeedsAWS() {
		if err := a.initAWS(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	log.Debug().
		Str("catalog", cat.Name).
		Str("generator", cfg.Generator).
		Str("history", cfg.History).
		Msg("Studio components ready")
	return a, nil
}

func (a *App) initAWS(ctx context.Context) error {
	clients, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		return err
	}
	cfg := a.Config

	if cfg.History == history.BackendDynamo {
		blobs := lambdaboot.InitS3(clients.Config, cfg.HistoryBucket)
		a.historyFor = lambdaboot.DynamoHistory(clients.Config, cfg.HistoryTable, blobs, cfg.HistoryTTL)
	}
	if cfg.ExportBucket != "" {
		s3c := lambdaboot.InitS3(clients.Config, cfg.ExportBucket)
		a.Exporter = export.NewS3Exporter(s3c.Client, s3c.Presigner, s3c.Bucket, cfg.ExportPrefix)
	}
	if cfg.EventBus != "" {
		a.Publisher = lambdaboot.InitEmitter(clients.Config, cfg.EventBus)
	}
	return nil
}

// HistoryFor returns the history store of owner.
func (a *App) HistoryFor(owner string) history.Store {
	return a.historyFor(owner)
}

// NewSession creates a session whose ID and history owner are owner.
func (a *App) NewSession(owner string, opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithID(owner),
		session.WithHistory(a.HistoryFor(owner)),
		session.WithMetrics(a.Config.MetricsNamespace, a.Config.ImageModel),
	}
	if a.Publisher != nil {
		base = append(base, session.WithPublisher(a.Publisher))
	}
	return session.New(studio.NewStore(a.Catalog), a.Generator, append(base, opts...)...)
}

// Close releases database pools.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}
