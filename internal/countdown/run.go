package countdown

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
)

// DefaultTickInterval is finer than a second so the seconds digit never
// visibly skips because of scheduling drift.
const DefaultTickInterval = 250 * time.Millisecond

// TickFunc receives the whole minutes and seconds (0-59) left plus the exact
// remaining milliseconds.
type TickFunc func(minutes, seconds int, remainingMs int64)

// Handle controls a running countdown.
type Handle struct {
	stopped    atomic.Bool
	cancelOnce sync.Once
	cancelled  chan struct{}
	done       chan struct{}
}

// Run evaluates the countdown immediately and then every period until the
// deadline is reached. The tick reporting 0/0 with zero remaining is the last
// one; after it the loop is gone for good. Ticks never overlap: the first runs
// on the caller's goroutine before Run returns, the rest on one loop goroutine.
func Run(clk clock.Clock, deadline int64, period time.Duration, onTick TickFunc) *Handle {
	if clk == nil {
		clk = clock.Real()
	}
	if period <= 0 {
		period = DefaultTickInterval
	}
	h := &Handle{cancelled: make(chan struct{}), done: make(chan struct{})}

	if !h.tick(clk, deadline, onTick) {
		close(h.done)
		return h
	}

	ticker := clk.NewTicker(period)
	go h.loop(clk, ticker, deadline, onTick)
	return h
}

// Cancel stops further ticks. A tick already in progress completes. Calling
// Cancel more than once, or after the countdown finished, does nothing.
func (h *Handle) Cancel() {
	h.stopped.Store(true)
	h.cancelOnce.Do(func() { close(h.cancelled) })
}

// Running reports whether ticks may still be delivered.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed once the loop has exited, by expiry or cancellation.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) loop(clk clock.Clock, ticker clock.Ticker, deadline int64, onTick TickFunc) {
	defer close(h.done)
	defer ticker.Stop()
	for {
		select {
		case <-h.cancelled:
			return
		case <-ticker.C():
			if !h.tick(clk, deadline, onTick) {
				return
			}
		}
	}
}

// tick reports whether more ticks are due.
func (h *Handle) tick(clk clock.Clock, deadline int64, onTick TickFunc) bool {
	if h.stopped.Load() {
		return false
	}
	remaining := Remaining(deadline, clk.Now())
	m, s := Split(remaining)
	if onTick != nil {
		onTick(m, s, remaining)
	}
	return remaining > 0
}

// Remaining returns max(0, deadline - now) in milliseconds.
func Remaining(deadline int64, now time.Time) int64 {
	left := deadline - now.UnixMilli()
	if left < 0 {
		return 0
	}
	return left
}

// Split converts remaining milliseconds into whole minutes and seconds.
func Split(remainingMs int64) (minutes, seconds int) {
	if remainingMs <= 0 {
		return 0, 0
	}
	total := remainingMs / 1000
	return int(total / 60), int(total % 60)
}

// FormatDigits zero-pads to two digits, as shown in the timer pills.
func FormatDigits(n int) string {
	return fmt.Sprintf("%02d", n)
}
