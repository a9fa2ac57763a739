// Package mcp2515 drives the Microchip MCP2515 stand-alone CAN controller
// over a shared SPI bus. The controller carries the whole CAN protocol
// engine; this driver moves frames in and out through the SPI instruction
// set and leaves arbitration to the silicon.
package mcp2515

// SPI instruction set.
const (
	cmdReset      = 0xC0
	cmdRead       = 0x03
	cmdWrite      = 0x02
	cmdReadRX0    = 0x90 // read RX buffer 0 starting at RXB0SIDH
	cmdReadRX1    = 0x94 // read RX buffer 1 starting at RXB1SIDH
	cmdLoadTX0    = 0x40 // load TX buffer 0 starting at TXB0SIDH
	cmdRTS0       = 0x81 // request to send TX buffer 0
	cmdReadStatus = 0xA0
	cmdBitModify  = 0x05
)

// Register map (the control subset this driver touches).
const (
	regCANSTAT = 0x0E
	regCANCTRL = 0x0F

	regCNF3 = 0x28 // CNF3..CNF1 are consecutive, written in one burst
	regCNF2 = 0x29
	regCNF1 = 0x2A

	regCANINTE = 0x2B
	regCANINTF = 0x2C
	regEFLG    = 0x2D

	regTXB0CTRL = 0x30
	regRXB0CTRL = 0x60
	regRXB1CTRL = 0x70
)

// CANCTRL / CANSTAT request-operation field (bits 7..5).
const (
	modeNormal   = 0x00
	modeSleep    = 0x20
	modeLoopback = 0x40
	modeListen   = 0x60
	modeConfig   = 0x80
	modeMask     = 0xE0
)

// RXBnCTRL bits.
const (
	rxmAcceptAny = 0x60 // RXM[1:0] = 11, acceptance filters off
	rxb0Rollover = 0x04 // BUKT: RXB0 overflows into RXB1
)

// Buffer-image ID field bits (TXBnSIDL / RXBnSIDL / DLC).
const (
	sidlIDE = 0x08 // extended frame (EXIDE on TX, IDE on RX)
	sidlSRR = 0x10 // RX only: standard remote request
	dlcRTR  = 0x40 // TX both formats, RX extended format only
	dlcMask = 0x0F
)

// Status reports the READ STATUS instruction snapshot.
type Status byte

const (
	StatusRX0Full Status = 1 << 0
	StatusRX1Full Status = 1 << 1
	StatusTX0Req  Status = 1 << 2
	StatusTX0Sent Status = 1 << 3
	StatusTX1Req  Status = 1 << 4
	StatusTX1Sent Status = 1 << 5
	StatusTX2Req  Status = 1 << 6
	StatusTX2Sent Status = 1 << 7
)

// RXPending reports whether either receive buffer holds a frame.
func (s Status) RXPending() bool { return s&(StatusRX0Full|StatusRX1Full) != 0 }

// TXBusy reports whether transmit buffer 0 still has a pending request.
func (s Status) TXBusy() bool { return s&StatusTX0Req != 0 }

// ErrorFlags reports the EFLG register.
type ErrorFlags byte

const (
	ErrWarning    ErrorFlags = 1 << 0 // TEC or REC above 95
	ErrRXWarning  ErrorFlags = 1 << 1
	ErrTXWarning  ErrorFlags = 1 << 2
	ErrRXPassive  ErrorFlags = 1 << 3
	ErrTXPassive  ErrorFlags = 1 << 4
	ErrBusOff     ErrorFlags = 1 << 5
	ErrRX0Overrun ErrorFlags = 1 << 6
	ErrRX1Overrun ErrorFlags = 1 << 7
)

// Overrun reports whether a receive buffer was overwritten before it was
// read.
func (f ErrorFlags) Overrun() bool { return f&(ErrRX0Overrun|ErrRX1Overrun) != 0 }

// Bitrate selects a CNF1/CNF2/CNF3 bit-timing preset. The presets assume the
// common 8 MHz oscillator; other crystals need their own CNF values written
// directly.
type Bitrate uint8

const (
	Bitrate125k Bitrate = iota
	Bitrate250k
	Bitrate500k
)

// cnf values are listed CNF3 first, the burst order on the wire.
var cnfPresets = [...][3]byte{
	Bitrate125k: {0x85, 0xB1, 0x01},
	Bitrate250k: {0x85, 0xB1, 0x00},
	Bitrate500k: {0x82, 0x90, 0x00},
}
