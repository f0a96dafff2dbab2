//go:build !tinygo

package core

import "sync"

// criticalState is a placeholder for the interrupt mask on regular Go.
type criticalState uintptr

// On regular Go the "interrupt" is a goroutine (see host/sim), so masking
// interrupts is emulated with a process-wide mutex. Unlike the hardware mask
// it is not reentrant: a critical section must never open another one.
var criticalMu sync.Mutex

func enterCritical() criticalState {
	criticalMu.Lock()
	return 0
}

func exitCritical(state criticalState) {
	criticalMu.Unlock()
}
