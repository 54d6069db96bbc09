// Package httpserver assembles the landing service router.
package httpserver

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/handlers"
	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
	custommw "github.com/ingveliz02ia/Club-del-cafe/internal/middleware"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
	"github.com/ingveliz02ia/Club-del-cafe/public"
)

// AssetsPrefix is where the embedded script and stylesheet are mounted.
const AssetsPrefix = "/assets"

// Config holds runtime options for the landing HTTP server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Logger   *zap.Logger
	Handlers *handlers.Handlers
	Health   *handlers.HealthHandlers
	Visitor  custommw.VisitorConfig

	// Static overrides the embedded assets, mainly for tests.
	Static fs.FS
	// Metrics overrides the Prometheus handler; nil uses the default registry.
	Metrics http.Handler
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}
	// WriteTimeout stays zero unless configured: countdown streams live for minutes.
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
	}, nil
}

// NewRouter builds the chi router serving the landing page, the countdown
// stream, the checkout click endpoint, health checks, assets and metrics.
func NewRouter(cfg Config) (chi.Router, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("httpserver: handlers are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandlers()
	}
	staticContent := cfg.Static
	if staticContent == nil {
		var err error
		staticContent, err = public.StaticFS()
		if err != nil {
			return nil, err
		}
	}
	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = metrics.Handler()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(custommw.Visitor(cfg.Visitor))
	router.Use(observability.RequestLoggerMiddleware(custommw.VisitorFromRequest))
	router.Use(observability.RecoveryMiddleware(logger))
	// text/event-stream is not listed, so countdown streams are never buffered.
	router.Use(chimw.Compress(5, "text/html", "text/css", "text/plain", "text/javascript", "application/javascript", "application/json"))
	router.Use(chimw.GetHead)

	// Probes
	router.Get("/health", health.Health)
	router.Get("/healthz", health.Healthz)
	router.Handle("/metrics", metricsHandler)

	// Assets
	router.Handle(AssetsPrefix+"/*", custommw.AssetsWithCache(staticContent, AssetsPrefix))

	// Landing
	h := cfg.Handlers
	router.Get("/", h.Page)
	router.Get("/index.html", h.Page)
	router.Get("/countdown/stream", h.CountdownStream)
	router.Post("/track/checkout", h.TrackCheckout)

	return router, nil
}
