package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ingveliz02ia/Club-del-cafe/internal/clock"
)

type tick struct {
	m, s int
	ms   int64
}

func collector() (TickFunc, chan tick) {
	ch := make(chan tick, 1024)
	return func(m, s int, ms int64) { ch <- tick{m, s, ms} }, ch
}

func next(t *testing.T, ch chan tick) tick {
	t.Helper()
	select {
	case tk := <-ch:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return tick{}
	}
}

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not stop")
	}
}

func TestRunFirstTickIsImmediate(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(0))
	onTick, ch := collector()

	h := Run(clk, 125_000, DefaultTickInterval, onTick)
	defer h.Cancel()

	select {
	case tk := <-ch:
		require.Equal(t, tick{2, 5, 125_000}, tk)
	default:
		t.Fatal("first tick must be delivered before Run returns")
	}
	require.True(t, h.Running())
}

func TestRunTicksUntilZeroThenStops(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(0))
	onTick, ch := collector()

	h := Run(clk, 1_000, 250*time.Millisecond, onTick)
	got := []tick{next(t, ch)}
	for i := 0; i < 4; i++ {
		clk.Advance(250 * time.Millisecond)
		got = append(got, next(t, ch))
	}

	require.Equal(t, []tick{
		{0, 1, 1000},
		{0, 0, 750},
		{0, 0, 500},
		{0, 0, 250},
		{0, 0, 0},
	}, got)

	waitDone(t, h)
	require.False(t, h.Running())
	require.Zero(t, clk.Pending(), "ticker must be stopped after the final tick")

	clk.Advance(10 * time.Second)
	select {
	case tk := <-ch:
		t.Fatalf("unexpected tick after expiry: %+v", tk)
	default:
	}

	h.Cancel()
	h.Cancel()
}

func TestRunInvariantsAcrossTicks(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(0))
	onTick, ch := collector()

	h := Run(clk, 61_500, 250*time.Millisecond, onTick)
	prev := next(t, ch)
	for prev.ms > 0 {
		clk.Advance(250 * time.Millisecond)
		cur := next(t, ch)
		require.GreaterOrEqual(t, cur.m, 0)
		require.GreaterOrEqual(t, cur.s, 0)
		require.LessOrEqual(t, cur.s, 59)
		require.LessOrEqual(t, cur.ms, prev.ms)
		prev = cur
	}
	waitDone(t, h)
}

func TestRunAlreadyExpired(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(5_000))
	onTick, ch := collector()

	h := Run(clk, 4_000, DefaultTickInterval, onTick)

	require.Equal(t, tick{0, 0, 0}, next(t, ch))
	require.False(t, h.Running())
	require.Zero(t, clk.Pending())
	h.Cancel()
}

func TestRunCancelStopsTicks(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(0))
	onTick, ch := collector()

	h := Run(clk, 60_000, 250*time.Millisecond, onTick)
	next(t, ch)
	h.Cancel()
	waitDone(t, h)

	clk.Advance(5 * time.Second)
	select {
	case tk := <-ch:
		t.Fatalf("unexpected tick after cancel: %+v", tk)
	default:
	}
	require.Zero(t, clk.Pending())
}

func TestRunCancelFromCallback(t *testing.T) {
	clk := clock.NewFake(time.UnixMilli(0))
	var h *Handle
	calls := 0
	h = Run(clk, 60_000, 250*time.Millisecond, func(int, int, int64) {
		calls++
		if calls == 2 {
			h.Cancel()
		}
	})
	clk.Advance(250 * time.Millisecond)
	waitDone(t, h)
	clk.Advance(time.Second)
	require.Equal(t, 2, calls)
}

func TestSplit(t *testing.T) {
	cases := []struct {
		ms   int64
		m, s int
	}{
		{125_000, 2, 5},
		{900_000, 15, 0},
		{59_999, 0, 59},
		{999, 0, 0},
		{0, 0, 0},
		{-10, 0, 0},
	}
	for _, tc := range cases {
		m, s := Split(tc.ms)
		require.Equal(t, tc.m, m, "ms=%d", tc.ms)
		require.Equal(t, tc.s, s, "ms=%d", tc.ms)
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	require.EqualValues(t, 0, Remaining(1_000, time.UnixMilli(2_000)))
	require.EqualValues(t, 500, Remaining(2_500, time.UnixMilli(2_000)))
}

func TestFormatDigits(t *testing.T) {
	require.Equal(t, "05", FormatDigits(5))
	require.Equal(t, "15", FormatDigits(15))
	require.Equal(t, "120", FormatDigits(120))
}
