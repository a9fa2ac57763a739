package mcp2515

import (
	"errors"
	"time"

	"halbus-go/can"
	"halbus-go/spi"
	"halbus-go/x/mathx"
)

// Errors returned by the driver. Bus and select-line failures pass through
// as the spi package's transaction errors.
var (
	ErrBitrate   = errors.New("mcp2515: unknown bitrate preset")
	ErrMode      = errors.New("mcp2515: mode change did not take")
	ErrTXBusy    = errors.New("mcp2515: transmit buffer busy")
	ErrNoMessage = errors.New("mcp2515: no received frame waiting")
)

// resetSettle is the post-reset oscillator start-up wait.
const resetSettle = 10 * time.Millisecond

// Config selects bit timing and test modes.
type Config struct {
	Bitrate Bitrate
	// Loopback keeps the controller off the wire and reflects transmitted
	// frames into its own receive buffers, for self-test without a bus.
	Loopback bool
}

// Device is one MCP2515 behind a chip-select aware SPI device handle. It is
// not safe for concurrent use; on a bus shared across goroutines that is the
// device handle's job, not this driver's.
type Device struct {
	dev spi.Device

	// Fixed buffers keep transactions allocation-free.
	cmd [2]byte
	buf [14]byte
}

// New wraps dev, which must carry the device's chip-select line. The
// controller is not touched until Configure.
func New(dev spi.Device) *Device {
	return &Device{dev: dev}
}

// Configure resets the controller, programs bit timing, opens both receive
// buffers with rollover and enters normal (or loopback) mode.
func (d *Device) Configure(cfg Config) error {
	if int(cfg.Bitrate) >= len(cnfPresets) {
		return ErrBitrate
	}
	if err := d.Reset(); err != nil {
		return err
	}
	// Reset leaves the controller in configuration mode, the only mode in
	// which CNF registers accept writes. CNF3..CNF1 are consecutive, so one
	// burst programs all three.
	cnf := cnfPresets[cfg.Bitrate]
	if err := d.dev.Transact(spi.Write([]byte{cmdWrite, regCNF3, cnf[0], cnf[1], cnf[2]})); err != nil {
		return err
	}
	if err := d.writeRegister(regRXB0CTRL, rxmAcceptAny|rxb0Rollover); err != nil {
		return err
	}
	if err := d.writeRegister(regRXB1CTRL, rxmAcceptAny); err != nil {
		return err
	}
	mode := byte(modeNormal)
	if cfg.Loopback {
		mode = modeLoopback
	}
	return d.setMode(mode)
}

// Reset issues the SPI reset instruction and waits out the oscillator
// start-up. The wait rides inside the same select window; the controller
// ignores the bus while restarting and the rising chip-select edge afterwards
// re-arms its SPI interface.
func (d *Device) Reset() error {
	d.cmd[0] = cmdReset
	return d.dev.Transact(spi.Write(d.cmd[:1]), spi.Delay(resetSettle))
}

// Send loads f into transmit buffer 0 and requests transmission. It returns
// ErrTXBusy while the previous frame still waits on arbitration; whether to
// retry, queue or drop is the caller's policy.
func (d *Device) Send(f can.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	status, err := d.ReadStatus()
	if err != nil {
		return err
	}
	if status.TXBusy() {
		return ErrTXBusy
	}

	sidh, sidl, eid8, eid0 := encodeID(f.ID)
	dlc := f.Len & dlcMask
	if f.RTR {
		dlc |= dlcRTR
	}
	load := append(d.buf[:0], cmdLoadTX0, sidh, sidl, eid8, eid0, dlc)
	if !f.RTR {
		load = append(load, f.Data[:f.Len]...)
	}
	if err := d.dev.Transact(spi.Write(load)); err != nil {
		return err
	}
	d.cmd[0] = cmdRTS0
	return d.dev.Transact(spi.Write(d.cmd[:1]))
}

// Receive fetches one frame from whichever receive buffer is full, buffer 0
// first. It returns ErrNoMessage when both are empty; the caller polls.
// Reading through the READ RX BUFFER instruction clears the buffer-full flag
// on the chip-select rising edge, so no flag write is needed.
func (d *Device) Receive() (can.Frame, error) {
	status, err := d.ReadStatus()
	if err != nil {
		return can.Frame{}, err
	}
	switch {
	case status&StatusRX0Full != 0:
		d.cmd[0] = cmdReadRX0
	case status&StatusRX1Full != 0:
		d.cmd[0] = cmdReadRX1
	default:
		return can.Frame{}, ErrNoMessage
	}
	image := d.buf[:13] // SIDH SIDL EID8 EID0 DLC D0..D7
	if err := d.dev.Transact(spi.Write(d.cmd[:1]), spi.Read(image)); err != nil {
		return can.Frame{}, err
	}
	return decodeFrame(image), nil
}

// ReadStatus fetches the interrupt/request snapshot via the dedicated
// single-byte instruction.
func (d *Device) ReadStatus() (Status, error) {
	d.cmd[0] = cmdReadStatus
	var in [1]byte
	if err := d.dev.Transact(spi.Write(d.cmd[:1]), spi.Read(in[:])); err != nil {
		return 0, err
	}
	return Status(in[0]), nil
}

// ReadErrors fetches the error flag register.
func (d *Device) ReadErrors() (ErrorFlags, error) {
	v, err := d.readRegister(regEFLG)
	return ErrorFlags(v), err
}

// ClearOverruns resets the receive overrun flags after the caller has noted
// them.
func (d *Device) ClearOverruns() error {
	return d.bitModify(regEFLG, byte(ErrRX0Overrun|ErrRX1Overrun), 0)
}

// ---------------- low-level instruction helpers ----------------

func (d *Device) readRegister(reg byte) (byte, error) {
	d.cmd[0] = cmdRead
	d.cmd[1] = reg
	var in [1]byte
	if err := d.dev.Transact(spi.Write(d.cmd[:2]), spi.Read(in[:])); err != nil {
		return 0, err
	}
	return in[0], nil
}

func (d *Device) writeRegister(reg, val byte) error {
	return d.dev.Transact(spi.Write([]byte{cmdWrite, reg, val}))
}

func (d *Device) bitModify(reg, mask, val byte) error {
	return d.dev.Transact(spi.Write([]byte{cmdBitModify, reg, mask, val}))
}

// setMode requests an operating mode and reads CANSTAT back to confirm the
// controller took it; a mismatch usually means no controller is wired at all.
func (d *Device) setMode(mode byte) error {
	if err := d.bitModify(regCANCTRL, modeMask, mode); err != nil {
		return err
	}
	got, err := d.readRegister(regCANSTAT)
	if err != nil {
		return err
	}
	if got&modeMask != mode {
		return ErrMode
	}
	return nil
}

// ---------------- identifier codec ----------------

// encodeID lays an identifier out across the SIDH/SIDL/EID8/EID0 registers.
// An extended identifier splits into its 11 leading bits (SIDH/SIDL high
// side, the part that arbitrates against standard frames) and its 18 low
// bits (SIDL low two, EID8, EID0), with the EXIDE bit between them.
func encodeID(id can.ID) (sidh, sidl, eid8, eid0 byte) {
	bits := id.Bits()
	if !id.IsExtended() {
		sidh = byte(bits >> 3)
		sidl = byte(bits&0x07) << 5
		return
	}
	base := bits >> 18
	sidh = byte(base >> 3)
	sidl = byte(base&0x07)<<5 | sidlIDE | byte(bits>>16)&0x03
	eid8 = byte(bits >> 8)
	eid0 = byte(bits)
	return
}

// decodeFrame rebuilds a frame from a 13-byte receive buffer image. The
// register fields mask to the identifier widths by construction, which is
// exactly the guarantee the unchecked constructors ask for.
func decodeFrame(image []byte) can.Frame {
	sidh, sidl, eid8, eid0, dlc := image[0], image[1], image[2], image[3], image[4]

	var f can.Frame
	if sidl&sidlIDE != 0 {
		raw := uint32(sidh)<<21 | uint32(sidl>>5)<<18 |
			uint32(sidl&0x03)<<16 | uint32(eid8)<<8 | uint32(eid0)
		f.ID = can.ExtendedIDUnchecked(raw)
		f.RTR = dlc&dlcRTR != 0
	} else {
		raw := uint16(sidh)<<3 | uint16(sidl)>>5
		f.ID = can.StandardIDUnchecked(raw)
		f.RTR = sidl&sidlSRR != 0
	}
	f.Len = mathx.Min(dlc&dlcMask, can.MaxDataLen)
	if !f.RTR {
		copy(f.Data[:], image[5:5+f.Len])
	}
	return f
}
