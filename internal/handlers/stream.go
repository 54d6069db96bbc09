package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/countdown"
	"github.com/ingveliz02ia/Club-del-cafe/internal/landing"
	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/httpx"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
)

type tickPayload struct {
	Minutes     int    `json:"m"`
	Seconds     int    `json:"s"`
	RemainingMs int64  `json:"remainingMs"`
	Display     string `json:"display"`
}

// CountdownStream streams the visitor's countdown as server-sent events: one
// "tick" event whenever the displayed MM:SS changes, then "expired" after the
// final 00:00 tick. The stream only reads the deadline the page stored; a
// reconnect after expiry gets 00:00 and "expired" again. Closing the
// connection cancels the countdown.
func (h *Handlers) CountdownStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	timer, err := h.service.Timer(ctx, h.stores(w, r))
	switch {
	case errors.Is(err, landing.ErrTimerDisabled):
		httpx.WriteError(ctx, w, httpx.NewError("timer_disabled", "the offer has no active countdown", http.StatusNotFound))
		return
	case errors.Is(err, landing.ErrNoDeadline):
		httpx.WriteError(ctx, w, httpx.NewError("no_deadline", "load the offer page to start the countdown", http.StatusNotFound))
		return
	case err != nil:
		logger.Error("stream: resolve countdown failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("countdown_unavailable", "countdown could not be resolved", http.StatusInternalServerError))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("streaming_unsupported", "streaming is not supported", http.StatusInternalServerError))
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	var (
		last       string
		expired    atomic.Bool
		brokenOnce sync.Once
		broken     = make(chan struct{})
	)
	onTick := func(m, s int, remainingMs int64) {
		if remainingMs == 0 {
			expired.Store(true)
		}
		display := countdown.FormatDigits(m) + ":" + countdown.FormatDigits(s)
		if display == last {
			return
		}
		last = display
		if err := writeEvent(w, "tick", tickPayload{Minutes: m, Seconds: s, RemainingMs: remainingMs, Display: display}); err != nil {
			brokenOnce.Do(func() { close(broken) })
			return
		}
		flusher.Flush()
	}

	handle := countdown.Run(h.service.Clock(), timer.Deadline, h.tick, onTick)
	select {
	case <-handle.Done():
	case <-broken:
		handle.Cancel()
		<-handle.Done()
		return
	case <-ctx.Done():
		handle.Cancel()
		<-handle.Done()
		return
	}

	select {
	case <-broken:
		return
	default:
	}
	if expired.Load() {
		_ = writeEvent(w, "expired", map[string]int64{"deadline": timer.Deadline})
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
