//go:build tinygo

package core

import "runtime/interrupt"

// criticalState is the saved interrupt mask returned by enterCritical.
type criticalState = interrupt.State

// enterCritical masks interrupts and returns the previous state.
// Nesting is allowed: the timer handler itself runs inside one.
func enterCritical() criticalState {
	return interrupt.Disable()
}

// exitCritical restores the interrupt state saved by enterCritical.
func exitCritical(state criticalState) {
	interrupt.Restore(state)
}
