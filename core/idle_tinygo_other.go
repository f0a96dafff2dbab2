//go:build tinygo && !cortexm

package core

func cpuRelax() {}
