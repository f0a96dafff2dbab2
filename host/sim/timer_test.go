package sim

import (
	"errors"
	"testing"
	"time"

	"msclock/core"
)

func TestTimerPeriod(t *testing.T) {
	testCases := []struct {
		clockHz uint32
		src     core.ClockSource
		reload  uint32
		want    time.Duration
	}{
		{8_000_000, core.ClockSourceCore, 7999, time.Millisecond},
		{72_000_000, core.ClockSourceCore, 71999, time.Millisecond},
		{8_000_000, core.ClockSourceExternal, 999, time.Millisecond},
		{1_000_000, core.ClockSourceCore, 1999, 2 * time.Millisecond},
	}

	for _, tc := range testCases {
		tm := NewTimer(tc.clockHz, nil)
		tm.Configure(tc.src, tc.reload)
		if got := tm.Period(); got != tc.want {
			t.Errorf("%d Hz src=%d reload=%d: period %v, want %v", tc.clockHz, tc.src, tc.reload, got, tc.want)
		}
	}
}

func TestTimerNeedsCountingAndInterrupt(t *testing.T) {
	tm := NewTimer(1_000_000, nil)
	tm.Configure(core.ClockSourceCore, 999)
	tm.EnableCounting()
	time.Sleep(20 * time.Millisecond)
	if n := tm.Fired(); n != 0 {
		t.Errorf("fired %d times with the interrupt masked", n)
	}
	tm.Stop()
}

func TestTimerDrivesClock(t *testing.T) {
	var clock core.ClockState
	tm := NewTimer(8_000_000, clock.Fire)
	if err := clock.Start(tm, 8_000_000); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tm.Stop()

	if got := tm.Period(); got != time.Millisecond {
		t.Errorf("period = %v, want 1ms", got)
	}

	start := clock.Millis()
	clock.SleepMs(20)
	elapsed := clock.Since(start)
	if elapsed < 20 {
		t.Errorf("SleepMs(20) returned after %d ticks", elapsed)
	}
	if elapsed > 21 {
		t.Logf("SleepMs(20) overshot to %d ticks (loaded host?)", elapsed)
	}

	tm.Stop()
	stopped := clock.Millis()
	time.Sleep(10 * time.Millisecond)
	if got := clock.Millis(); got != stopped {
		t.Errorf("clock advanced from %d to %d after Stop", stopped, got)
	}
	if stopped != tm.Fired() {
		t.Errorf("clock at %d, timer fired %d times", stopped, tm.Fired())
	}
}

func TestTimerRejectsSlowClock(t *testing.T) {
	var clock core.ClockState
	tm := NewTimer(500, clock.Fire)
	if err := clock.Start(tm, 500); !errors.Is(err, core.ErrReloadRange) {
		t.Errorf("Start at 500 Hz = %v, want %v", err, core.ErrReloadRange)
	}
	tm.Stop()
}
