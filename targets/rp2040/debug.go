//go:build rp2040 || rp2350

package main

import "machine"

var debugUART *machine.UART

// InitDebugUART sets up UART0 on its default pins (GP0 TX, GP1 RX) at
// 115200 baud for the diagnostic stream. Returns false if the UART could
// not be configured; output is then dropped.
func InitDebugUART() bool {
	uart := machine.UART0
	err := uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		return false
	}
	debugUART = uart
	return true
}

// debugWrite is the core.DebugWriter for the UART. Errors are ignored: the
// diagnostic stream has no backpressure.
func debugWrite(line []byte) {
	if debugUART == nil {
		return
	}
	debugUART.Write(line)
}
