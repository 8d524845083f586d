package router

import (
	"net/http"

	"dog-registration/internal/domain/registration"
	"dog-registration/internal/domain/tracking"
	"dog-registration/internal/middleware"
	"dog-registration/internal/platform/logger"
	"dog-registration/internal/platform/telemetry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Tracking      *tracking.Service
	Registrations *registration.Service

	// Opcionales
	Metrics *telemetry.Metrics
	Logger  logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Use(middleware.Environment())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// Rutas por módulo
	if opts.Registrations != nil {
		registration.RegisterRoutes(r, opts.Registrations)
	}
	if opts.Tracking != nil {
		tracking.RegisterRoutes(r, opts.Tracking)
	}

	return r
}
