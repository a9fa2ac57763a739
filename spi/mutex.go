package spi

import "sync"

// MutexBus lets devices on different goroutines share a bus. Each
// transaction blocks until it holds the bus; there is no timeout, so callers
// needing a bounded wait must arrange it around the Transact call.
type MutexBus struct {
	mu  sync.Mutex
	bus Bus
}

// NewMutexBus wraps bus for cross-goroutine sharing.
func NewMutexBus(bus Bus) *MutexBus { return &MutexBus{bus: bus} }

// MutexDevice is one peripheral on a MutexBus.
type MutexDevice struct {
	shared *MutexBus
	cs     SelectPin
	delay  Delayer
}

var _ Device = (*MutexDevice)(nil)

// NewMutexDevice attaches a peripheral with select line cs to a mutex bus.
// A nil delay means transactions must not carry Delay operations (NoDelay).
func NewMutexDevice(shared *MutexBus, cs SelectPin, delay Delayer) *MutexDevice {
	if delay == nil {
		delay = NoDelay{}
	}
	return &MutexDevice{shared: shared, cs: cs, delay: delay}
}

// Transact runs ops as one chip-select window, blocking first until no other
// device holds the bus. Operations of concurrent transactions never
// interleave.
func (d *MutexDevice) Transact(ops ...Operation) error {
	d.shared.mu.Lock()
	defer d.shared.mu.Unlock()
	return transact(d.shared.bus, d.cs, d.delay, ops)
}
