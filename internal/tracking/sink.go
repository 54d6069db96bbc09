package tracking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// EventInitiateCheckout is the conversion-intent event fired on checkout clicks.
const EventInitiateCheckout = "InitiateCheckout"

// Event is one tracked conversion signal.
type Event struct {
	ID          string
	Name        string
	ContentName string
	Source      string
	URL         string
	PageURL     string
	Scope       string
	ClientIP    string
	UserAgent   string
	Time        time.Time
}

// Sink receives tracked events. Errors are reported to the tracker, which
// records and drops them.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink builds a LogSink; a nil logger discards events.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, ev Event) error {
	s.logger.Info("tracking event",
		zap.String("event", ev.Name),
		zap.String("eventID", ev.ID),
		zap.String("contentName", ev.ContentName),
		zap.String("source", ev.Source),
		zap.String("url", ev.URL),
		zap.Time("time", ev.Time),
	)
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Name() string { return "multi" }

func (m MultiSink) Send(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, ev); err != nil {
			errs = append(errs, &SinkError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// SinkError attributes a delivery failure to one sink.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string { return "tracking: sink " + e.Sink + ": " + e.Err.Error() }

func (e *SinkError) Unwrap() error { return e.Err }
