// Package handlers exposes the landing page, the countdown stream and the
// checkout click endpoint over HTTP.
package handlers

import (
	"net/http"
	"time"

	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/landing"
	"github.com/ingveliz02ia/Club-del-cafe/internal/tracking"
)

// StoreFunc returns the countdown store for one request, e.g. a cookie store
// bound to w and r or a server store scoped to the visitor.
type StoreFunc func(w http.ResponseWriter, r *http.Request) countdown.Store

// Handlers groups the HTTP endpoints.
type Handlers struct {
	service *landing.Service
	stores  StoreFunc
	tracker *tracking.Tracker
	tick    time.Duration
}

// Option customises Handlers.
type Option func(*Handlers)

// WithTickInterval sets how often the stream evaluates the countdown.
func WithTickInterval(d time.Duration) Option {
	return func(h *Handlers) {
		if d > 0 {
			h.tick = d
		}
	}
}

// New wires the handlers.
func New(service *landing.Service, stores StoreFunc, tracker *tracking.Tracker, opts ...Option) *Handlers {
	h := &Handlers{
		service: service,
		stores:  stores,
		tracker: tracker,
		tick:    countdown.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
