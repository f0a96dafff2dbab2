// Package sim runs the clock core on a development host: a periodic OS
// timer plays the tick interrupt and a synthetic waveform plays the ADC.
package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"msclock/core"
)

// MaxReload matches the 24-bit SysTick counter of the real target, so
// reload range errors show up in simulation too.
const MaxReload = 0xFFFFFF

// ExternalDivider is the divider between the core clock and the external
// reference clock, as on Cortex-M SysTick.
const ExternalDivider = 8

// Timer emulates a periodic hardware timer. Every expiry calls Fire from
// the timer goroutine, which plays the interrupt context.
type Timer struct {
	clockHz uint32
	fire    func()

	mu       sync.Mutex
	src      core.ClockSource
	reload   uint32
	counting bool
	irq      bool
	stop     chan struct{}
	done     chan struct{}

	fired atomic.Uint64
}

// NewTimer creates a stopped timer on a core clock of clockHz. fire is
// normally core.OnTimerInterrupt.
func NewTimer(clockHz uint32, fire func()) *Timer {
	return &Timer{clockHz: clockHz, fire: fire}
}

// Configure implements core.TimerSource.
func (t *Timer) Configure(src core.ClockSource, reload uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.src = src
	t.reload = reload
}

// Reset implements core.TimerSource. The OS timer restarts its period when
// it is armed, so there is no count to clear.
func (t *Timer) Reset() {}

// EnableCounting implements core.TimerSource.
func (t *Timer) EnableCounting() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counting = true
	t.startLocked()
}

// EnableInterrupt implements core.TimerSource.
func (t *Timer) EnableInterrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.irq = true
	t.startLocked()
}

// MaxReload implements core.TimerSource.
func (t *Timer) MaxReload() uint32 {
	return MaxReload
}

// Period is the time between two expiries for the current configuration.
func (t *Timer) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.periodLocked()
}

func (t *Timer) periodLocked() time.Duration {
	hz := uint64(t.clockHz)
	if t.src == core.ClockSourceExternal {
		hz /= ExternalDivider
	}
	if hz == 0 {
		return 0
	}
	return time.Duration((uint64(t.reload) + 1) * uint64(time.Second) / hz)
}

// Fired returns the number of expiries delivered so far.
func (t *Timer) Fired() uint64 {
	return t.fired.Load()
}

// Stop stops the timer and waits for the timer goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.counting, t.irq = false, false
	t.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (t *Timer) startLocked() {
	if !t.counting || !t.irq || t.stop != nil {
		return
	}
	period := t.periodLocked()
	if period <= 0 {
		return
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(period, t.stop, t.done)
}

func (t *Timer) expire() {
	t.fired.Add(1)
	if t.fire != nil {
		t.fire()
	}
}

// runTicker delivers expiries from a time.Ticker. A slow handler makes the
// ticker drop expiries.
func (t *Timer) runTicker(period time.Duration, stop <-chan struct{}) {
	tk := time.NewTicker(period)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.expire()
		}
	}
}
