package spi

import "time"

// NoDelay satisfies Delayer for device configurations whose transactions
// never carry Delay operations. Executing a Delay through it is a
// configuration bug, not a runtime condition, so it panics rather than
// returning an error.
type NoDelay struct{}

func (NoDelay) Delay(time.Duration) { noDelayPanic() }

//go:noinline
func noDelayPanic() {
	panic("spi: Delay operation on a device constructed with NoDelay")
}
