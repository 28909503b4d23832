package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"VixWatch/internal/domain/repository"
	"VixWatch/internal/handler/ws"
	"VixWatch/internal/service/scheduler"
	"VixWatch/internal/usecase"
	"VixWatch/pkg/config"
	xhttp "VixWatch/pkg/http"
	applogger "VixWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	monitor    *usecase.MonitorService
	sched      *scheduler.Scheduler
	hub        *ws.Hub
	handler    xhttp.Handler
	store      repository.StateStore
	sink       repository.AlertSink
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	monitor *usecase.MonitorService,
	sched *scheduler.Scheduler,
	hub *ws.Hub,
	handler xhttp.Handler,
	store repository.StateStore,
	sink repository.AlertSink,
) *App {
	return &App{
		cfg:     cfg,
		l:       l,
		monitor: monitor,
		sched:   sched,
		hub:     hub,
		handler: handler,
		store:   store,
		sink:    sink,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.hub.RegisterRoutes(a.httpServer.Echo())

	// Configured thresholds and cash take effect on a fresh store; a store
	// that already holds saved settings keeps them.
	if err := a.store.SeedSettings(ctx, a.cfg.Monitor.Thresholds, a.cfg.Monitor.Cash); err != nil {
		a.l.Warn("settings seed error", applogger.Error(err))
	}

	// Re-arm the schedule if monitoring was left running before the restart.
	if err := a.monitor.Resume(ctx); err != nil {
		a.l.Warn("monitor resume error", applogger.Error(err))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("interval", a.cfg.Monitor.Interval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.sched.Shutdown(shutdownCtx); err != nil {
		a.l.Warn("scheduler stop error", applogger.Error(err))
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.hub.Close(); err != nil {
		a.l.Warn("websocket hub close error", applogger.Error(err))
	}

	if err := a.sink.Close(); err != nil {
		a.l.Warn("alert sink close error", applogger.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.l.Warn("state store close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
