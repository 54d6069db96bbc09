// Package countdown derives a stable per-visitor offer deadline and drives the
// repeating tick that reports the time left until it.
package countdown

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
)

const msPerMinute = 60_000

// Resolver returns the deadline for a timer key, creating and persisting one
// only when nothing valid is stored.
type Resolver struct {
	store Store
	clock clock.Clock
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the time source.
func WithClock(c clock.Clock) ResolverOption {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewResolver builds a Resolver over store.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store, clock: clock.Real()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveDeadline returns the absolute deadline (ms since epoch) for key.
//
// A stored deadline that parses and lies strictly in the future is returned
// untouched, so reloading never grants more time. Otherwise a new deadline of
// now + minutesIfNew is stored and returned; zero or negative minutes give a
// deadline that has already passed. When persisting fails the fresh deadline
// is still returned together with the error.
func (r *Resolver) ResolveDeadline(ctx context.Context, key string, minutesIfNew float64) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "countdown.ResolveDeadline", attribute.String("countdown.key", key))
	defer span.End()

	name := StorageName(key)
	now := r.clock.Now().UnixMilli()

	reason := "absent"
	raw, ok, err := r.store.Get(ctx, name)
	if err != nil {
		observability.FromContext(ctx).Warn("countdown: stored deadline unreadable",
			zap.String("key", key), zap.Error(err))
		reason = "store_error"
	} else if ok {
		end, perr := parseDeadline(raw)
		switch {
		case perr != nil:
			reason = "malformed"
		case end > now:
			metrics.DeadlinesReused.Inc()
			return end, nil
		default:
			reason = "elapsed"
		}
	}

	end := now + minutesToMillis(minutesIfNew)
	metrics.DeadlinesIssued.WithLabelValues(reason).Inc()
	if err := r.store.Set(ctx, name, strconv.FormatInt(end, 10)); err != nil {
		return end, fmt.Errorf("countdown: persist deadline for %q: %w", key, err)
	}
	return end, nil
}

// Lookup returns the stored deadline for key without creating or replacing
// one. ok is false when nothing usable is stored. A deadline that has already
// passed is returned as is.
func (r *Resolver) Lookup(ctx context.Context, key string) (deadline int64, ok bool, err error) {
	raw, found, err := r.store.Get(ctx, StorageName(key))
	if err != nil {
		return 0, false, fmt.Errorf("countdown: read deadline for %q: %w", key, err)
	}
	if !found {
		return 0, false, nil
	}
	end, perr := parseDeadline(raw)
	if perr != nil {
		return 0, false, nil
	}
	return end, true, nil
}

// parseDeadline accepts a whole base-10 integer only. A value with trailing
// characters such as "1800000000000x" is malformed, not read as its digit
// prefix.
func parseDeadline(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

func minutesToMillis(minutes float64) int64 {
	if math.IsNaN(minutes) {
		return 0
	}
	ms := minutes * msPerMinute
	switch {
	case ms > math.MaxInt64/2:
		return math.MaxInt64 / 2
	case ms < math.MinInt64/2:
		return math.MinInt64 / 2
	}
	return int64(ms)
}
