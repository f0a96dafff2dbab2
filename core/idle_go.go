//go:build !tinygo

package core

import "runtime"

// cpuRelax lets the goroutine playing the timer interrupt run.
func cpuRelax() {
	runtime.Gosched()
}
