package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
)

// State is the debounce state of one scope.
type State int

const (
	// Armed accepts the next matching click.
	Armed State = iota
	// Locked ignores matching clicks until the cool-down ends.
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "armed"
}

// Lock moves a scope from Armed to Locked for ttl. Acquire reports true only
// for the caller that made the transition; the scope re-arms by itself.
type Lock interface {
	Acquire(ctx context.Context, scope string, ttl time.Duration) (bool, error)
}

// MemoryLock keeps the per-scope state in process, re-arming through the
// clock's timers.
type MemoryLock struct {
	clock  clock.Clock
	mu     sync.Mutex
	locked map[string]clock.Timer
}

// NewMemoryLock builds an in-process lock driven by clk.
func NewMemoryLock(clk clock.Clock) *MemoryLock {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryLock{clock: clk, locked: make(map[string]clock.Timer)}
}

// Acquire implements Lock.
func (l *MemoryLock) Acquire(_ context.Context, scope string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locked[scope]; ok {
		return false, nil
	}
	var timer clock.Timer
	timer = l.clock.AfterFunc(ttl, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.locked[scope] == timer {
			delete(l.locked, scope)
		}
	})
	l.locked[scope] = timer
	return true, nil
}

// State reports the current state of scope.
func (l *MemoryLock) State(scope string) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locked[scope]; ok {
		return Locked
	}
	return Armed
}
