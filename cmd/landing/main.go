package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/handlers"
	"github.com/ingveliz02ia/Club-del-cafe/internal/httpserver"
	"github.com/ingveliz02ia/Club-del-cafe/internal/landing"
	custommw "github.com/ingveliz02ia/Club-del-cafe/internal/middleware"
	"github.com/ingveliz02ia/Club-del-cafe/internal/offer"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/config"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
	"github.com/ingveliz02ia/Club-del-cafe/internal/tracking"
)

const (
	streamPath   = "/countdown/stream"
	trackPath    = "/track/checkout"
	sinkQueueLen = 256
)

func main() {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("landing")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var vErr *config.ValidationError
		if errors.As(err, &vErr) {
			logger.Fatal("invalid configuration", zap.Strings("fields", vErr.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	app, err := newApp(ctx, cfg, logger, handlers.BuildInfo{
		Version:     os.Getenv("LANDING_VERSION"),
		CommitSHA:   os.Getenv("LANDING_COMMIT_SHA"),
		Environment: cfg.Environment,
		StartedAt:   startedAt,
	})
	if err != nil {
		logger.Fatal("failed to initialise landing service", zap.Error(err))
	}

	if err := app.serve(ctx); err != nil {
		logger.Fatal("http server error", zap.Error(err))
	}
}

// app is the wired service plus everything that needs closing on shutdown.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	server  *http.Server
	redis   *redis.Client
	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, build handlers.BuildInfo) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.NeedsRedis() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func(context.Context) error { return a.redis.Close() })
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := a.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			a.close(context.Background())
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	clk := clock.Real()
	svc, err := landing.NewService(landing.Config{
		Loader:      offer.NewLoader(offer.WithTimeout(cfg.Data.LoadTimeout)),
		Source:      cfg.Data.Source,
		SiteTitle:   cfg.Site.Title,
		Clock:       clk,
		StreamURL:   streamPath,
		TrackURL:    trackPath,
		AssetPrefix: httpserver.AssetsPrefix,
		PixelID:     cfg.Tracking.PixelID,
	})
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	stores, err := a.storeFunc()
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	tracker, err := a.tracker(clk)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}

	server, err := httpserver.New(httpserver.Config{
		Address:      cfg.Server.Addr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Logger:       logger,
		Handlers:     handlers.New(svc, stores, tracker, handlers.WithTickInterval(cfg.Countdown.TickInterval)),
		Health:       handlers.NewHealthHandlers(handlers.WithHealthBuildInfo(build)),
		Visitor:      custommw.VisitorConfig{Secure: cfg.Countdown.CookieSecure},
	})
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.server = server
	return a, nil
}

// storeFunc picks where visitor deadlines live.
func (a *app) storeFunc() (handlers.StoreFunc, error) {
	switch a.cfg.Countdown.Store {
	case config.StoreMemory:
		store := countdown.NewMemoryStore()
		return func(_ http.ResponseWriter, r *http.Request) countdown.Store {
			return store.Scope(custommw.VisitorID(r.Context()))
		}, nil
	case config.StoreRedis:
		store := countdown.NewRedisStore(a.redis, a.cfg.Redis.Prefix)
		return func(_ http.ResponseWriter, r *http.Request) countdown.Store {
			return store.Scope(custommw.VisitorID(r.Context()))
		}, nil
	default:
		hashKey := []byte(a.cfg.Countdown.CookieHashKey)
		if len(hashKey) < 32 {
			hashKey = make([]byte, 32)
			if _, err := rand.Read(hashKey); err != nil {
				return nil, fmt.Errorf("generate cookie key: %w", err)
			}
			a.logger.Warn("LANDING_COOKIE_HASH_KEY not set; using an ephemeral key, countdowns reset on restart")
		}
		codec, err := countdown.NewCookieCodec(countdown.CookieConfig{
			HashKey:  hashKey,
			BlockKey: []byte(a.cfg.Countdown.CookieBlockKey),
			MaxAge:   a.cfg.Countdown.CookieMaxAge,
			Secure:   a.cfg.Countdown.CookieSecure,
		})
		if err != nil {
			return nil, err
		}
		return func(w http.ResponseWriter, r *http.Request) countdown.Store {
			return codec.Store(w, r)
		}, nil
	}
}

func (a *app) tracker(clk clock.Clock) (*tracking.Tracker, error) {
	tc := a.cfg.Tracking
	matcher, err := tracking.NewMatcher(tc.CheckoutPattern)
	if err != nil {
		return nil, err
	}

	sinks := tracking.MultiSink{tracking.NewLogSink(a.logger.Named("tracking"))}
	if strings.TrimSpace(tc.AccessToken) != "" {
		capi, err := tracking.NewConversionsSink(tracking.ConversionsConfig{
			PixelID:       tc.PixelID,
			AccessToken:   tc.AccessToken,
			APIVersion:    tc.GraphAPIVersion,
			TestEventCode: tc.TestEventCode,
		})
		if err != nil {
			return nil, err
		}
		async := tracking.NewAsyncSink(capi, sinkQueueLen, a.logger.Named("tracking"))
		a.closers = append(a.closers, async.Close)
		sinks = append(sinks, async)
	}

	opts := []tracking.Option{
		tracking.WithClock(clk),
		tracking.WithCooldown(tc.Cooldown),
		tracking.WithSource(tc.Source),
		tracking.WithContentFallback(tc.ContentFallback),
	}
	if tc.SharedLock {
		opts = append(opts, tracking.WithLock(tracking.NewRedisLock(a.redis, a.cfg.Redis.Prefix)))
	}
	return tracking.NewTracker(matcher, sinks, opts...), nil
}

// serve runs the HTTP server until ctx is cancelled, then drains requests
// and closes the sinks and the Redis client.
func (a *app) serve(ctx context.Context) error {
	serverLogger := a.logger.Named("http").With(zap.String("addr", a.server.Addr))

	// Countdown streams only end when their request context does, so
	// shutdown cancels the base context instead of waiting them out.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	a.server.BaseContext = func(net.Listener) context.Context { return baseCtx }
	a.server.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("landing listening",
			zap.String("data_source", a.cfg.Data.Source),
			zap.String("countdown_store", a.cfg.Countdown.Store),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.close(context.Background())
			return err
		}
	case <-ctx.Done():
		a.logger.Info("shutdown signal received; draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", zap.Error(err))
	}
	a.close(shutdownCtx)
	return nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close error", zap.Error(err))
		}
	}
	a.closers = nil
}
