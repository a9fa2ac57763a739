// Package mcp3008 reads the Microchip MCP3008 10-bit, eight-channel ADC over
// SPI. Every conversion is one three-byte full-duplex transfer: start bit,
// mode/channel nibble, then the sample clocked back in the low ten bits.
package mcp3008

import (
	"errors"

	"halbus-go/spi"
	"halbus-go/x/mathx"
)

// Channels is the number of single-ended inputs.
const Channels = 8

// maxCount is the full-scale conversion result.
const maxCount = 1023

// ErrChannel is returned for channel numbers outside 0..7.
var ErrChannel = errors.New("mcp3008: channel out of range")

// Device is one MCP3008 behind a chip-select aware SPI device handle.
type Device struct {
	dev spi.Device

	w [3]byte
	r [3]byte
}

// New wraps dev, which must carry the device's chip-select line. The ADC has
// no configuration registers; there is nothing further to set up.
func New(dev spi.Device) *Device {
	return &Device{dev: dev}
}

// Read converts channel (0..7) single-ended and returns the raw count,
// 0..1023.
func (d *Device) Read(channel uint8) (uint16, error) {
	return d.convert(channel, true)
}

// ReadDifferential converts input pair `channel` in differential mode, where
// the pair index follows the datasheet table (0 = CH0+ CH1-, 1 = CH0- CH1+,
// and so on). Results below ground read as zero.
func (d *Device) ReadDifferential(channel uint8) (uint16, error) {
	return d.convert(channel, false)
}

// ReadMillivolts converts channel and scales the count against the reference
// rail, given in millivolts. Integer round-to-nearest, no floats.
func (d *Device) ReadMillivolts(channel uint8, vrefMillivolts uint32) (uint32, error) {
	raw, err := d.Read(channel)
	if err != nil {
		return 0, err
	}
	return mathx.RoundDiv(uint32(raw)*vrefMillivolts, maxCount), nil
}

func (d *Device) convert(channel uint8, singleEnded bool) (uint16, error) {
	if channel >= Channels {
		return 0, ErrChannel
	}
	d.w[0] = 0x01 // start bit
	d.w[1] = channel << 4
	if singleEnded {
		d.w[1] |= 0x80
	}
	d.w[2] = 0x00
	if err := d.dev.Transact(spi.Transfer(d.w[:], d.r[:])); err != nil {
		return 0, err
	}
	return uint16(d.r[1]&0x03)<<8 | uint16(d.r[2]), nil
}
