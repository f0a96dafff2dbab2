package core

import "errors"

// TickHz is the tick rate of the system clock: one tick per millisecond.
const TickHz = 1000

// ClockSource selects what drives a hardware timer's counter.
type ClockSource uint8

const (
	// ClockSourceCore counts processor clock cycles.
	ClockSourceCore ClockSource = iota
	// ClockSourceExternal counts an implementation-defined reference clock.
	ClockSourceExternal
)

// TimerSource is the periodic interrupt source a TickCounter owns.
//
// Setup must be called in this order: Configure, Reset, EnableCounting,
// EnableInterrupt. The reload value is computed from the final (frozen)
// clock frequency, so the clock tree must be configured before Configure.
type TimerSource interface {
	// Configure selects the clock source and loads the reload value.
	Configure(src ClockSource, reload uint32)

	// Reset zeroes the current count.
	Reset()

	// EnableCounting starts the counter.
	EnableCounting()

	// EnableInterrupt unmasks the timer's interrupt. From this point the
	// handler registered for it (see OnTimerInterrupt) may run at any time.
	EnableInterrupt()

	// MaxReload is the largest reload value the counter can hold.
	MaxReload() uint32
}

var (
	// ErrTimerClaimed is returned when a timer handle is used to build a
	// second TickCounter. Handles are unique capabilities.
	ErrTimerClaimed = errors.New("timer source already owned by a tick counter")

	// ErrReloadRange is returned when the reload value for a 1 ms tick does
	// not fit the timer's counter.
	ErrReloadRange = errors.New("reload value out of range for timer")

	// ErrTimerHandle is returned for a nil timer handle or one whose type
	// cannot be compared, so ownership could not be tracked.
	ErrTimerHandle = errors.New("timer handle is nil or not comparable")
)

// ReloadValue returns the reload value that makes a reload-to-zero counter
// clocked at clockHz fire tickHz times per second. The counter passes
// through reload+1 states per period, hence the -1.
//
// Timers that count 0..reload exclusive need reload = clockHz/tickHz instead;
// check the part's reference manual before reusing this for another timer.
//
// It returns 0 when tickHz is 0 or clockHz < tickHz, where no reload value
// gives the requested rate.
func ReloadValue(clockHz, tickHz uint32) uint32 {
	if tickHz == 0 || clockHz < tickHz {
		return 0
	}
	return clockHz/tickHz - 1
}
