package spi

// CriticalSectionBus shares a bus by masking interrupts for the whole
// transaction, the strategy for interrupt handlers and schedulerless
// firmware. It bounds how long competing work can be locked out by exactly
// the transaction length, so transactions must be short and must never
// suspend: a Delay backed by a sleeping Delayer deadlocks here because the
// timekeeping interrupts are masked too. Busy-wait delayers are fine.
//
// On builds without the tinygo tag masking is a no-op and the wrapper
// degrades to an unsynchronized bus, which is what tests run against.
type CriticalSectionBus struct {
	bus Bus
}

// NewCriticalSectionBus wraps bus for interrupt-masked sharing.
func NewCriticalSectionBus(bus Bus) *CriticalSectionBus {
	return &CriticalSectionBus{bus: bus}
}

// CriticalSectionDevice is one peripheral on a CriticalSectionBus.
type CriticalSectionDevice struct {
	shared *CriticalSectionBus
	cs     SelectPin
	delay  Delayer
}

var _ Device = (*CriticalSectionDevice)(nil)

// NewCriticalSectionDevice attaches a peripheral with select line cs to an
// interrupt-masked bus. A nil delay means transactions must not carry Delay
// operations (NoDelay).
func NewCriticalSectionDevice(shared *CriticalSectionBus, cs SelectPin, delay Delayer) *CriticalSectionDevice {
	if delay == nil {
		delay = NoDelay{}
	}
	return &CriticalSectionDevice{shared: shared, cs: cs, delay: delay}
}

// Transact masks interrupts, runs ops as one chip-select window and restores
// the previous interrupt state, also on panic paths.
func (d *CriticalSectionDevice) Transact(ops ...Operation) error {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return transact(d.shared.bus, d.cs, d.delay, ops)
}
