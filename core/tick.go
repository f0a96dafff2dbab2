package core

import "reflect"

// TickCounter counts timer interrupts. It owns its TimerSource: once a
// timer has been handed to NewTickCounter nothing else may touch it.
//
// elapsed is only ever modified by OnFire, and OnFire only ever runs inside
// ClockState.WithMut, so readers going through ClockState.WithRef never see
// a torn value even where a 64-bit load is two instructions.
type TickCounter struct {
	timer   TimerSource
	elapsed uint64
}

// claimedTimers holds every handle that has been turned into a TickCounter.
// Written only during startup.
var claimedTimers []TimerSource

// NewTickCounter claims timer, configures it for one interrupt per
// millisecond from a clock of clockHz and starts it. The returned counter
// starts at zero.
//
// The timer interrupt is live when this returns. Use Start (or call this
// inside the same critical section as ClockState.Install) so no firing is
// lost between the two.
//
// The handle must be of a comparable type, normally a pointer, so that a
// second claim can be recognised; anything else yields ErrTimerHandle.
func NewTickCounter(timer TimerSource, clockHz uint32) (*TickCounter, error) {
	if typ := reflect.TypeOf(timer); typ == nil || !typ.Comparable() {
		return nil, ErrTimerHandle
	}
	for _, t := range claimedTimers {
		if t == timer {
			return nil, ErrTimerClaimed
		}
	}

	div := clockHz / TickHz
	if div < 2 || div-1 > timer.MaxReload() {
		return nil, ErrReloadRange
	}
	claimedTimers = append(claimedTimers, timer)

	timer.Configure(ClockSourceCore, ReloadValue(clockHz, TickHz))
	timer.Reset()
	timer.EnableCounting()
	timer.EnableInterrupt()

	return &TickCounter{timer: timer}, nil
}

// OnFire records one timer firing. Interrupt context only.
func (c *TickCounter) OnFire() {
	c.elapsed++
}

// Elapsed returns the number of firings so far.
func (c *TickCounter) Elapsed() uint64 {
	return c.elapsed
}
