// Package clock abstracts wall-clock time so countdowns and cool-downs can be
// driven by a manual clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is the time source used by the countdown engine and the click tracker.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

// Ticker delivers ticks at a fixed period until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is a cancellable one-shot callback.
type Timer interface {
	Stop() bool
}

// Real returns the Clock backed by package time.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Fake is a manually advanced Clock. Tickers behave like time.Ticker: the
// channel holds at most one pending tick and slow receivers miss ticks.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

// NewFake returns a Fake clock positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now implements Clock.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t without firing tickers or timers.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// NewTicker implements Clock.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{clock: f, period: d, next: f.now.Add(d), ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

// AfterFunc implements Clock.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clock: f, at: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every ticker and timer that
// falls due on the way in chronological order. Timer callbacks run on the
// caller's goroutine.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		at, fire := f.nextEventLocked(target)
		if fire == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = at
		f.mu.Unlock()
		fire()
	}
}

// Pending reports the number of active tickers and unfired timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers) + len(f.timers)
}

func (f *Fake) nextEventLocked(limit time.Time) (time.Time, func()) {
	type event struct {
		at   time.Time
		fire func()
	}
	var events []event
	for _, t := range f.tickers {
		if !t.next.After(limit) {
			tk := t
			events = append(events, event{at: tk.next, fire: func() { tk.fire() }})
		}
	}
	for _, t := range f.timers {
		if !t.at.After(limit) {
			tm := t
			events = append(events, event{at: tm.at, fire: func() { tm.fire() }})
		}
	}
	if len(events) == 0 {
		return time.Time{}, nil
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })
	return events[0].at, events[0].fire
}

func (f *Fake) removeTicker(t *fakeTicker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cur := range f.tickers {
		if cur == t {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
}

func (f *Fake) removeTimer(t *fakeTimer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cur := range f.timers {
		if cur == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTicker struct {
	clock  *Fake
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() { t.clock.removeTicker(t) }

func (t *fakeTicker) fire() {
	t.clock.mu.Lock()
	at := t.next
	t.next = t.next.Add(t.period)
	t.clock.mu.Unlock()
	select {
	case t.ch <- at:
	default:
	}
}

type fakeTimer struct {
	clock *Fake
	at    time.Time
	fn    func()
}

func (t *fakeTimer) Stop() bool { return t.clock.removeTimer(t) }

func (t *fakeTimer) fire() {
	if t.clock.removeTimer(t) {
		t.fn()
	}
}
