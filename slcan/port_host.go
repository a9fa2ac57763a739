//go:build !(rp2040 || rp2350)

package slcan

import (
	"github.com/tarm/serial"
)

// Dial opens the serial device an SLCAN adapter sits behind and wraps it in
// a Port. baud is the UART rate to the adapter, typically 115200 or 1M, not
// the CAN bitrate; that is picked later with Open.
func Dial(device string, baud int) (*Port, error) {
	s, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, err
	}
	return NewPort(s), nil
}
