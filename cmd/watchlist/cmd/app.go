package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/watchlist/internal/config"
	"github.com/donaldgifford/watchlist/internal/engine"
	"github.com/donaldgifford/watchlist/internal/notify"
	"github.com/donaldgifford/watchlist/internal/store"
	"github.com/donaldgifford/watchlist/internal/tracing"
	"github.com/donaldgifford/watchlist/internal/wishlist"
	"github.com/donaldgifford/watchlist/pkg/logger"
)

// app holds the wired service dependencies shared by check and serve. The
// store is nil until openStore succeeds.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	store     store.Store
	providers *tracing.Providers
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	providers, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	return &app{cfg: cfg, log: log, providers: providers}, nil
}

// openStore connects to the configured store. The sqlite schema is created
// idempotently, so local databases need no separate migrate step.
func (a *app) openStore(ctx context.Context) error {
	s, err := store.Open(ctx, &a.cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	a.store = s

	if a.cfg.Database.Driver == config.DriverSQLite {
		if err := s.Migrate(ctx); err != nil {
			return fmt.Errorf("creating sqlite schema: %w", err)
		}
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.store != nil {
		a.store.Close()
	}
	if err := a.providers.Shutdown(ctx); err != nil {
		a.log.Warn("flushing telemetry", logger.KeyError, err)
	}
}

func (a *app) source() *wishlist.HTTPSource {
	src := a.cfg.Source
	return wishlist.NewHTTPSource(src.BaseURL,
		wishlist.WithHTTPClient(&http.Client{Timeout: src.Timeout}),
		wishlist.WithUserAgent(src.UserAgent),
		wishlist.WithRateLimiter(wishlist.NewRateLimiter(src.RateLimit.PerSecond, src.RateLimit.Burst)),
	)
}

func (a *app) mailer() notify.Mailer {
	e := a.cfg.Email
	if e.Backend == config.EmailSendGrid {
		var opts []notify.SendGridOption
		if e.SendGrid.Endpoint != "" {
			opts = append(opts, notify.WithEndpoint(e.SendGrid.Endpoint))
		}
		return notify.NewSendGridMailer(e.SendGrid.APIKey, e.From, e.To, opts...)
	}
	return notify.NewNoOpMailer(a.log)
}

func (a *app) engine() *engine.Engine {
	r := a.cfg.Run
	return engine.NewEngine(a.store, a.source(), a.mailer(),
		engine.WithLogger(a.log),
		engine.WithMaxErrors(r.MaxErrors),
		engine.WithMaxInitialFailures(r.MaxInitialFailures),
		engine.WithMaxPages(a.cfg.Source.MaxPages),
		engine.WithDumpPaths(r.SuccessPath, r.ErrorPath),
		engine.WithDryRun(r.DryRun),
	)
}
