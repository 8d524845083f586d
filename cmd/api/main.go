package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dog-registration/internal/adapters/analytics/httpsink"
	mem "dog-registration/internal/adapters/storage/memory"
	"dog-registration/internal/domain/registration"
	"dog-registration/internal/domain/tracking"
	"dog-registration/internal/platform/config"
	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"
	"dog-registration/internal/router"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		lg := logger.New(logger.Options{})
		lg.Error("invalid config", map[string]any{"error": err})
		_ = lg.Sync()
		return err
	}

	lg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	defer func() { _ = lg.Sync() }()

	metrics := telemetry.New()

	// Envío remoto opcional; sin ANALYTICS_URL los eventos solo quedan en memoria.
	var dispatcher *tracking.AsyncDispatcher
	trackingOpts := tracking.Options{Logger: lg, Metrics: metrics}
	if cfg.Analytics.Enabled() {
		sink, err := httpsink.New(httpsink.Config{
			URL:          cfg.Analytics.URL,
			APIKey:       cfg.Analytics.APIKey,
			APIKeyHeader: cfg.Analytics.APIKeyHeader,
			Timeout:      cfg.Analytics.Timeout,
		}, nil)
		if err != nil {
			lg.Error("invalid analytics sink", map[string]any{"error": err})
			return err
		}
		dispatcher = tracking.NewAsyncDispatcher(sink, tracking.DispatcherOptions{
			QueueSize:   cfg.Analytics.QueueSize,
			SendTimeout: cfg.Analytics.Timeout,
			Logger:      lg,
			Metrics:     metrics,
		})
		trackingOpts.Dispatcher = dispatcher
	}

	trackingSvc := tracking.NewService(mem.NewEventLog(), trackingOpts)
	regSvc := registration.NewService(
		mem.NewSessionRepo(),
		tracking.NewTracker(trackingSvc),
		registration.ServiceOptions{Logger: lg, Metrics: metrics},
	)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			Tracking:      trackingSvc,
			Registrations: regSvc,
			Metrics:       metrics,
			Logger:        lg,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"session":   trackingSvc.SessionID(),
			"analytics": cfg.Analytics.Enabled(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			lg.Error("server error", map[string]any{"error": err})
			return err
		}
	case <-ctx.Done():
	}

	lg.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", map[string]any{"error": err})
	}

	// Formularios abiertos al apagar cuentan como desmontados.
	if n := regSvc.CloseAll(shutdownCtx); n > 0 {
		lg.Info("registrations closed on shutdown", map[string]any{"count": n})
	}

	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			lg.Warn("analytics dispatcher did not drain", map[string]any{"error": err})
		}
	}

	return nil
}
