//go:build !tinygo

package spi

// interruptState stands in for runtime/interrupt.State on hosted builds,
// where there are no maskable interrupts.
type interruptState uintptr

func disableInterrupts() interruptState { return 0 }

func restoreInterrupts(interruptState) {}
