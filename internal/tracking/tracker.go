// Package tracking turns checkout link clicks into a single debounced
// conversion event per cool-down window.
package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
)

// Defaults applied by NewTracker.
const (
	DefaultCooldown        = 1200 * time.Millisecond
	DefaultSource          = "landing"
	DefaultContentFallback = "Producto"
)

// Result is the tracker's verdict on one click.
type Result string

const (
	// Ignored: the link is not a checkout link.
	Ignored Result = "ignored"
	// Suppressed: a checkout link clicked while the tracker was locked.
	Suppressed Result = "suppressed"
	// Tracked: the click fired an event and locked the tracker.
	Tracked Result = "tracked"
)

// Click is one link click reported by the page.
type Click struct {
	Href      string
	Title     string
	PageURL   string
	Scope     string
	ClientIP  string
	UserAgent string
}

// Tracker owns the armed/locked state machine. The only way to change that
// state is HandleClick.
type Tracker struct {
	matcher  *Matcher
	lock     Lock
	sink     Sink
	clock    clock.Clock
	cooldown time.Duration
	source   string
	fallback string
	newID    func() string
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithLock replaces the in-process lock, e.g. with a RedisLock.
func WithLock(l Lock) Option {
	return func(t *Tracker) {
		if l != nil {
			t.lock = l
		}
	}
}

// WithClock sets the time source for the default lock and event timestamps.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithCooldown sets how long the tracker stays locked after an event.
func WithCooldown(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.cooldown = d
		}
	}
}

// WithSource sets the source tag attached to events.
func WithSource(source string) Option {
	return func(t *Tracker) {
		if s := strings.TrimSpace(source); s != "" {
			t.source = s
		}
	}
}

// WithContentFallback sets the content name used when a click has no title.
func WithContentFallback(name string) Option {
	return func(t *Tracker) {
		if n := strings.TrimSpace(name); n != "" {
			t.fallback = n
		}
	}
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// NewTracker builds an armed tracker. A nil sink drops events.
func NewTracker(matcher *Matcher, sink Sink, opts ...Option) *Tracker {
	if matcher == nil {
		matcher = MustMatcher(DefaultCheckoutPattern)
	}
	t := &Tracker{
		matcher:  matcher,
		sink:     sink,
		clock:    clock.Real(),
		cooldown: DefaultCooldown,
		source:   DefaultSource,
		fallback: DefaultContentFallback,
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.lock == nil {
		t.lock = NewMemoryLock(t.clock)
	}
	return t
}

// HandleClick applies one click to the state machine. On Tracked the returned
// event is the one handed to the sink; otherwise it is the zero Event.
func (t *Tracker) HandleClick(ctx context.Context, click Click) (Result, Event) {
	result, ev := t.handle(ctx, click)
	metrics.CheckoutClicks.WithLabelValues(string(result)).Inc()
	return result, ev
}

func (t *Tracker) handle(ctx context.Context, click Click) (Result, Event) {
	if !t.matcher.Match(click.Href) {
		return Ignored, Event{}
	}

	logger := observability.FromContext(ctx)
	acquired, err := t.lock.Acquire(ctx, click.Scope, t.cooldown)
	if err != nil {
		// fail open: an unreachable lock must not hide the conversion
		logger.Warn("tracking: checkout lock unavailable", zap.Error(err))
		acquired = true
	}
	if !acquired {
		return Suppressed, Event{}
	}

	content := strings.TrimSpace(click.Title)
	if content == "" {
		content = t.fallback
	}
	ev := Event{
		ID:          t.newID(),
		Name:        EventInitiateCheckout,
		ContentName: content,
		Source:      t.source,
		URL:         click.Href,
		PageURL:     click.PageURL,
		Scope:       click.Scope,
		ClientIP:    click.ClientIP,
		UserAgent:   click.UserAgent,
		Time:        t.clock.Now(),
	}
	t.deliver(ctx, logger, ev)
	return Tracked, ev
}

// deliver swallows every sink error and panic.
func (t *Tracker) deliver(ctx context.Context, logger *zap.Logger, ev Event) {
	if t.sink == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			metrics.SinkFailures.WithLabelValues(t.sink.Name()).Inc()
			logger.Debug("tracking: sink panicked", zap.String("panic", fmt.Sprint(rec)))
		}
	}()
	if err := t.sink.Send(ctx, ev); err != nil {
		metrics.SinkFailures.WithLabelValues(t.sink.Name()).Inc()
		logger.Debug("tracking: sink failed", zap.String("sink", t.sink.Name()), zap.Error(err))
	}
}
