package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "5000"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 0 // streams stay open for the whole countdown
	defaultIdleTimeout      = 120 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultDataSource       = "data/offer.json"
	defaultLoadTimeout      = 8 * time.Second
	defaultSiteTitle        = "El Club del Café"
	defaultCountdownStore   = StoreCookie
	defaultTickInterval     = 250 * time.Millisecond
	defaultCookieMaxAge     = 365 * 24 * time.Hour
	defaultRedisPrefix      = "landing"
	defaultCheckoutPattern  = `(?i)hotmart\.com|pay\.hotmart\.com`
	defaultTrackingCooldown = 1200 * time.Millisecond
	defaultTrackingSource   = "landing"
	defaultContentFallback  = "Producto"
	defaultGraphAPIVersion  = "v19.0"
	defaultEnvironment      = "local"
)

// Countdown store backends.
const (
	StoreCookie = "cookie"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Data        DataConfig
	Site        SiteConfig
	Countdown   CountdownConfig
	Redis       RedisConfig
	Tracking    TrackingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig points at the offer document.
type DataConfig struct {
	Source      string
	LoadTimeout time.Duration
}

// SiteConfig holds page-level fallbacks.
type SiteConfig struct {
	Title string
}

// CountdownConfig selects where per-visitor deadlines are kept and how often the loop ticks.
type CountdownConfig struct {
	Store          string
	TickInterval   time.Duration
	CookieHashKey  string
	CookieBlockKey string
	CookieMaxAge   time.Duration
	CookieSecure   bool
}

// RedisConfig is used when either the countdown store or the tracker lock is backed by Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// TrackingConfig controls checkout click detection and conversion forwarding.
type TrackingConfig struct {
	CheckoutPattern string
	Cooldown        time.Duration
	Source          string
	ContentFallback string
	PixelID         string
	AccessToken     string
	GraphAPIVersion string
	TestEventCode   string
	SharedLock      bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run style PORT is honoured when the prefixed variable is absent.
	port := stringWithDefault(lookup, "PORT", defaultPort)

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "LANDING_ENV", defaultEnvironment)),
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "LANDING_PORT", port),
			ReadTimeout:     durationWithDefault(lookup, "LANDING_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "LANDING_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "LANDING_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "LANDING_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Data: DataConfig{
			Source:      strings.TrimSpace(stringWithDefault(lookup, "LANDING_DATA_SOURCE", defaultDataSource)),
			LoadTimeout: durationWithDefault(lookup, "LANDING_DATA_LOAD_TIMEOUT", defaultLoadTimeout),
		},
		Site: SiteConfig{
			Title: stringWithDefault(lookup, "LANDING_SITE_TITLE", defaultSiteTitle),
		},
		Countdown: CountdownConfig{
			Store:          strings.ToLower(stringWithDefault(lookup, "LANDING_COUNTDOWN_STORE", defaultCountdownStore)),
			TickInterval:   durationWithDefault(lookup, "LANDING_COUNTDOWN_TICK", defaultTickInterval),
			CookieHashKey:  stringWithDefault(lookup, "LANDING_COOKIE_HASH_KEY", ""),
			CookieBlockKey: stringWithDefault(lookup, "LANDING_COOKIE_BLOCK_KEY", ""),
			CookieMaxAge:   durationWithDefault(lookup, "LANDING_COOKIE_MAX_AGE", defaultCookieMaxAge),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "LANDING_REDIS_ADDR", ""),
			Password: stringWithDefault(lookup, "LANDING_REDIS_PASSWORD", ""),
			DB:       intWithDefault(lookup, "LANDING_REDIS_DB", 0),
			Prefix:   stringWithDefault(lookup, "LANDING_REDIS_PREFIX", defaultRedisPrefix),
		},
		Tracking: TrackingConfig{
			CheckoutPattern: stringWithDefault(lookup, "LANDING_CHECKOUT_PATTERN", defaultCheckoutPattern),
			Cooldown:        durationWithDefault(lookup, "LANDING_TRACKING_COOLDOWN", defaultTrackingCooldown),
			Source:          stringWithDefault(lookup, "LANDING_TRACKING_SOURCE", defaultTrackingSource),
			ContentFallback: stringWithDefault(lookup, "LANDING_TRACKING_CONTENT_FALLBACK", defaultContentFallback),
			PixelID:         stringWithDefault(lookup, "LANDING_PIXEL_ID", ""),
			AccessToken:     stringWithDefault(lookup, "LANDING_PIXEL_ACCESS_TOKEN", ""),
			GraphAPIVersion: stringWithDefault(lookup, "LANDING_PIXEL_GRAPH_VERSION", defaultGraphAPIVersion),
			TestEventCode:   stringWithDefault(lookup, "LANDING_PIXEL_TEST_EVENT_CODE", ""),
			SharedLock:      boolWithDefault(lookup, "LANDING_TRACKING_SHARED_LOCK", false),
		},
	}
	cfg.Countdown.CookieSecure = boolWithDefault(lookup, "LANDING_COOKIE_SECURE", cfg.Environment == "prod")

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address derived from the configured port.
func (c ServerConfig) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c Config) NeedsRedis() bool {
	return c.Countdown.Store == StoreRedis || c.Tracking.SharedLock
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Data.Source == "" {
		missing = append(missing, "Data.Source")
	}
	if cfg.Data.LoadTimeout <= 0 {
		missing = append(missing, "Data.LoadTimeout")
	}
	switch cfg.Countdown.Store {
	case StoreCookie, StoreMemory, StoreRedis:
	default:
		missing = append(missing, "Countdown.Store")
	}
	if cfg.Countdown.TickInterval <= 0 {
		missing = append(missing, "Countdown.TickInterval")
	}
	if cfg.Countdown.Store == StoreCookie && cfg.Environment == "prod" && len(cfg.Countdown.CookieHashKey) < 32 {
		missing = append(missing, "Countdown.CookieHashKey")
	}
	if k := len(cfg.Countdown.CookieBlockKey); k != 0 && k != 16 && k != 24 && k != 32 {
		missing = append(missing, "Countdown.CookieBlockKey")
	}
	if cfg.NeedsRedis() && strings.TrimSpace(cfg.Redis.Addr) == "" {
		missing = append(missing, "Redis.Addr")
	}
	if strings.TrimSpace(cfg.Tracking.CheckoutPattern) == "" {
		missing = append(missing, "Tracking.CheckoutPattern")
	}
	if cfg.Tracking.Cooldown <= 0 {
		missing = append(missing, "Tracking.Cooldown")
	}
	if cfg.Tracking.AccessToken != "" && cfg.Tracking.PixelID == "" {
		missing = append(missing, "Tracking.PixelID")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
