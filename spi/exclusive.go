package spi

// ExclusiveDevice owns its bus outright: the one-peripheral case, with no
// locking at all.
type ExclusiveDevice struct {
	bus   Bus
	cs    SelectPin
	delay Delayer
}

var _ Device = (*ExclusiveDevice)(nil)

// NewExclusiveDevice wraps bus with cs as the peripheral's select line.
// A nil delay means transactions must not carry Delay operations (NoDelay).
func NewExclusiveDevice(bus Bus, cs SelectPin, delay Delayer) *ExclusiveDevice {
	if delay == nil {
		delay = NoDelay{}
	}
	return &ExclusiveDevice{bus: bus, cs: cs, delay: delay}
}

// Transact runs ops as one chip-select window.
func (d *ExclusiveDevice) Transact(ops ...Operation) error {
	return transact(d.bus, d.cs, d.delay, ops)
}
