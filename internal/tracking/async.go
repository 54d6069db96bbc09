package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
)

// ErrQueueFull is returned when AsyncSink cannot accept another event.
var ErrQueueFull = errors.New("tracking: event queue full")

// AsyncSink hands events to a background worker so slow sinks never delay the
// click response. Delivery errors are logged and counted.
type AsyncSink struct {
	next    Sink
	logger  *zap.Logger
	timeout time.Duration
	queue   chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewAsyncSink starts a worker delivering to next with a queue of size buffer.
func NewAsyncSink(next Sink, buffer int, logger *zap.Logger) *AsyncSink {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AsyncSink{
		next:    next,
		logger:  logger,
		timeout: 10 * time.Second,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) Name() string { return s.next.Name() }

// Send enqueues ev without blocking.
func (s *AsyncSink) Send(_ context.Context, ev Event) (err error) {
	defer func() {
		// send on a closed queue
		if recover() != nil {
			err = ErrQueueFull
		}
	}()
	select {
	case s.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to end.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.queue) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.next.Send(ctx, ev); err != nil {
			metrics.SinkFailures.WithLabelValues(s.next.Name()).Inc()
			s.logger.Debug("tracking: async delivery failed", zap.String("sink", s.next.Name()), zap.Error(err))
		}
		cancel()
	}
}
