//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"msclock/core"
)

// Cortex-M SysTick registers (ARMv6-M/ARMv8-M, System Control Space).
// Both RP2040 and RP2350 leave SysTick to the application: the TinyGo
// runtime keeps time with the chip's own TIMER peripheral.
const (
	systBase = 0xE000E010
	systCSR  = systBase + 0x00 // Control and status
	systRVR  = systBase + 0x04 // Reload value
	systCVR  = systBase + 0x08 // Current value, any write clears it

	systCSREnable    = 1 << 0
	systCSRTickInt   = 1 << 1
	systCSRClkSource = 1 << 2 // 1 = processor clock

	systMaxReload = 0x00FFFFFF // 24-bit down counter
)

var (
	systCSRReg = (*volatile.Register32)(unsafe.Pointer(uintptr(systCSR)))
	systRVRReg = (*volatile.Register32)(unsafe.Pointer(uintptr(systRVR)))
	systCVRReg = (*volatile.Register32)(unsafe.Pointer(uintptr(systCVR)))
)

// sysTick is the SysTick timer as a core.TimerSource. There is one SysTick
// per core, so there is exactly one handle.
type sysTick struct{}

var systick = &sysTick{}

func (*sysTick) Configure(src core.ClockSource, reload uint32) {
	// Stop the counter while it is reprogrammed.
	systCSRReg.ClearBits(systCSREnable | systCSRTickInt)
	if src == core.ClockSourceCore {
		systCSRReg.SetBits(systCSRClkSource)
	} else {
		systCSRReg.ClearBits(systCSRClkSource)
	}
	systRVRReg.Set(reload & systMaxReload)
}

func (*sysTick) Reset() {
	systCVRReg.Set(0)
}

func (*sysTick) EnableCounting() {
	systCSRReg.SetBits(systCSREnable)
}

func (*sysTick) EnableInterrupt() {
	systCSRReg.SetBits(systCSRTickInt)
}

func (*sysTick) MaxReload() uint32 {
	return systMaxReload
}

//export SysTick_Handler
func sysTickHandler() {
	core.OnTimerInterrupt()
}
