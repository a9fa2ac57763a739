// Package spi gives peripherals chip-select aware access to SPI buses that
// may be shared.
//
// A Device runs whole transactions: it asserts the peripheral's select line,
// executes the operations in order, releases the line and reports the first
// failure. The select line is released on every path, so a failed transfer
// never leaves a peripheral hanging on the bus. Four implementations cover
// the usual ownership models:
//
//	ExclusiveDevice        sole owner of the bus, no locking
//	SharedDevice           several devices on one goroutine, re-entry checked
//	MutexDevice            several goroutines, blocking mutual exclusion
//	CriticalSectionDevice  interrupt masking on TinyGo targets
//
// Bus matches tinygo.org/x/drivers.SPI, so machine SPI ports and anything
// else written against the drivers interface plugs in directly.
package spi

import (
	"time"

	"tinygo.org/x/drivers"
)

// ---------------- Capabilities ----------------

// Bus is the word-shifting capability of an SPI port, the subset the device
// wrappers need. It mirrors tinygo.org/x/drivers.SPI.
type Bus interface {
	// Tx shifts w out while filling r. Either slice may be nil: w alone
	// writes, r alone reads, both make a full-duplex transfer.
	Tx(w, r []byte) error
	// Transfer shifts a single byte both ways.
	Transfer(b byte) (byte, error)
}

// The two interfaces stay interchangeable in both directions.
var (
	_ Bus         = (drivers.SPI)(nil)
	_ drivers.SPI = (Bus)(nil)
)

// SelectPin drives a peripheral's chip-select input. Implementations report
// faults so callers can tell select-line trouble from bus trouble; pins that
// cannot fail simply return nil.
type SelectPin interface {
	// Select asserts the line; the peripheral is addressed.
	Select() error
	// Deselect returns the line to idle.
	Deselect() error
}

// OutputPin is a plain GPIO output, the shape of machine.Pin on TinyGo
// targets.
type OutputPin interface {
	Set(level bool)
}

// ActiveLow adapts an output pin to a SelectPin that idles high, the usual
// chip-select wiring.
func ActiveLow(p OutputPin) SelectPin { return activePin{p: p, idle: true} }

// ActiveHigh adapts an output pin to a SelectPin that idles low.
func ActiveHigh(p OutputPin) SelectPin { return activePin{p: p, idle: false} }

type activePin struct {
	p    OutputPin
	idle bool
}

func (a activePin) Select() error   { a.p.Set(!a.idle); return nil }
func (a activePin) Deselect() error { a.p.Set(a.idle); return nil }

// Delayer pauses the transaction between operations while the peripheral
// stays selected. On hosted targets spi.DelayerFunc(time.Sleep) serves:
// sleeping suspends only the calling goroutine, so other goroutines keep
// running while the delay elapses. Devices whose transactions never delay
// can use NoDelay.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayerFunc adapts a function to the Delayer interface.
type DelayerFunc func(time.Duration)

func (f DelayerFunc) Delay(d time.Duration) { f(d) }

// ---------------- Operations ----------------

type opKind uint8

const (
	opDelay opKind = iota // the zero Operation is a zero-length delay
	opRead
	opWrite
	opTransfer
)

func (k opKind) name() string {
	switch k {
	case opRead:
		return "read"
	case opWrite:
		return "write"
	case opTransfer:
		return "transfer"
	}
	return "delay"
}

// Operation is one step of a transaction. Build operations with Read, Write,
// Transfer and Delay; the zero value is a zero-length delay.
type Operation struct {
	kind opKind
	w, r []byte
	d    time.Duration
}

// Read fills buf from the bus while shifting zeros out.
func Read(buf []byte) Operation { return Operation{kind: opRead, r: buf} }

// Write shifts buf out and discards whatever comes back.
func Write(buf []byte) Operation { return Operation{kind: opWrite, w: buf} }

// Transfer shifts w out while filling r, full duplex. The slices may alias
// for an in-place exchange.
func Transfer(w, r []byte) Operation { return Operation{kind: opTransfer, w: w, r: r} }

// Delay pauses between neighbouring operations with the peripheral still
// selected. Executing a Delay on a device built with NoDelay panics.
func Delay(d time.Duration) Operation { return Operation{kind: opDelay, d: d} }

// ---------------- Device ----------------

// Device is one peripheral's handle on a bus.
//
// Transact runs ops as a single chip-select window: select, operations in
// order until the first failure, deselect. Transactions are atomic with
// respect to other devices on the same shared bus and are never retried or
// cancelled part way through.
type Device interface {
	Transact(ops ...Operation) error
}

// transact is the select/operate/deselect cycle every device flavour runs
// once it holds the bus.
func transact(bus Bus, cs SelectPin, delay Delayer, ops []Operation) error {
	if err := cs.Select(); err != nil {
		return &Error{Kind: KindChipSelectFault, Op: "select", Err: err}
	}

	var failed *Error
	for i := range ops {
		if err := runOp(bus, delay, &ops[i]); err != nil {
			failed = &Error{Kind: declaredKind(err), Op: ops[i].kind.name(), Err: err}
			break
		}
	}

	// The peripheral is deselected whether or not an operation failed.
	csErr := cs.Deselect()
	if failed != nil {
		// The operation failure stays the reported one; a deselect fault on
		// top is recorded, not promoted.
		failed.DeselectErr = csErr
		return failed
	}
	if csErr != nil {
		return &Error{Kind: KindChipSelectFault, Op: "deselect", Err: csErr}
	}
	return nil
}

func runOp(bus Bus, delay Delayer, op *Operation) error {
	switch op.kind {
	case opRead:
		return bus.Tx(nil, op.r)
	case opWrite:
		return bus.Tx(op.w, nil)
	case opTransfer:
		return bus.Tx(op.w, op.r)
	default:
		delay.Delay(op.d)
		return nil
	}
}
