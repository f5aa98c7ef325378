package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/watchlist/internal/api/handlers"
	"github.com/donaldgifford/watchlist/internal/api/middleware"
	"github.com/donaldgifford/watchlist/internal/engine"
	"github.com/donaldgifford/watchlist/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	if err := a.openStore(ctx); err != nil {
		return err
	}
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	schedules := make([]engine.Schedule, 0, len(a.cfg.Watchlists))
	for _, w := range a.cfg.Watchlists {
		schedules = append(schedules, engine.Schedule{Name: w.Name, Interval: w.Interval})
	}
	sched, err := engine.NewScheduler(a.engine(), schedules, a.log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = a.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = a.cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(a.log))
	e.Use(middleware.RequestLog(a.log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(a.store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Watchlist API", Version))
	handlers.RegisterHistoryRoutes(api, handlers.NewHistoryHandler(a.store))
	handlers.RegisterRunsRoutes(api, handlers.NewRunsHandler(a.store))
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(sched))

	sched.Start()
	a.log.Info("scheduler started", "watchlists", len(schedules))

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	a.log.Info("starting server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down server")
	case serveErr = <-errCh:
		a.log.Error("server error", logger.KeyError, serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("shutting down server: %w", err))
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		a.log.Warn("scheduled runs still in progress at shutdown")
	}

	a.log.Info("server stopped")
	return serveErr
}
