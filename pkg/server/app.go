package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PairPulse/internal/domain/repository"
	"PairPulse/internal/handler/ws"
	"PairPulse/internal/usecase"
	pkgcache "PairPulse/pkg/cache"
	"PairPulse/pkg/config"
	xhttp "PairPulse/pkg/http"
	applogger "PairPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	session    *usecase.Session
	httpServer *xhttp.Server
	hub        *ws.Hub
	publisher  repository.SamplePublisher
	cache      pkgcache.Service
}

// New creates a new App instance with all dependencies. publisher may be nil.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	session *usecase.Session,
	httpServer *xhttp.Server,
	hub *ws.Hub,
	publisher repository.SamplePublisher,
	cache pkgcache.Service,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		session:    session,
		httpServer: httpServer,
		hub:        hub,
		publisher:  publisher,
		cache:      cache,
	}
}

// Session exposes the chart session, mostly for tests.
func (a *App) Session() *usecase.Session { return a.session }

// Run starts the HTTP server, optionally scans initial, and blocks until
// SIGINT or SIGTERM.
func (a *App) Run(initial string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	if initial != "" {
		if _, err := a.session.StartScan(ctx, initial); err != nil {
			a.logger.Warn("initial scan failed",
				applogger.String("identifier", initial),
				applogger.Error(err),
			)
		}
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.Shutdown(context.Background())
}

// Shutdown stops polling, disconnects clients and releases infrastructure.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	a.session.Stop()
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("sample publisher close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
