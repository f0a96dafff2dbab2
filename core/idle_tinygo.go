//go:build tinygo && cortexm

package core

import "device/arm"

// cpuRelax waits for the next interrupt. The tick interrupt wakes the core
// at least once per millisecond, so this never delays a deadline check by
// more than one tick.
func cpuRelax() {
	arm.Asm("wfi")
}
