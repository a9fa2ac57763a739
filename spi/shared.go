package spi

// SharedBus lets several devices on one goroutine take turns on a bus. It is
// the cooperative single-threaded flavour of sharing: there is no lock, only
// a runtime check that transactions never nest. Handing a SharedBus to more
// than one goroutine is a data race; use MutexBus there instead.
type SharedBus struct {
	bus   Bus
	inUse bool
}

// NewSharedBus wraps bus for single-goroutine sharing.
func NewSharedBus(bus Bus) *SharedBus { return &SharedBus{bus: bus} }

// acquire flags the bus busy for the length of one transaction. Re-entry
// means a device callback or interrupt handler started a transaction while
// one was already running, which would interleave two chip-select windows.
// That is a programming error, so it panics rather than failing softly.
func (s *SharedBus) acquire() {
	if s.inUse {
		reentrantPanic()
	}
	s.inUse = true
}

func (s *SharedBus) release() { s.inUse = false }

//go:noinline
func reentrantPanic() {
	panic("spi: nested transaction on a SharedBus; the bus is single-goroutine and non-reentrant")
}

// SharedDevice is one peripheral on a SharedBus.
type SharedDevice struct {
	shared *SharedBus
	cs     SelectPin
	delay  Delayer
}

var _ Device = (*SharedDevice)(nil)

// NewSharedDevice attaches a peripheral with select line cs to a shared bus.
// A nil delay means transactions must not carry Delay operations (NoDelay).
func NewSharedDevice(shared *SharedBus, cs SelectPin, delay Delayer) *SharedDevice {
	if delay == nil {
		delay = NoDelay{}
	}
	return &SharedDevice{shared: shared, cs: cs, delay: delay}
}

// Transact runs ops as one chip-select window with the bus held. The bus is
// released however the transaction ends, including by panic, so a recovered
// NoDelay misuse does not wedge the flag.
func (d *SharedDevice) Transact(ops ...Operation) error {
	d.shared.acquire()
	defer d.shared.release()
	return transact(d.shared.bus, d.cs, d.delay, ops)
}
