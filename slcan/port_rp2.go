//go:build rp2040

package slcan

import (
	"context"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// NewUARTPort wraps an already-configured uartx UART in a Port, making an
// RP2040 board an SLCAN endpoint for whatever sits on the other end of the
// line.
func NewUARTPort(u *uartx.UART) *Port {
	return NewPort(uartStream{u: u})
}

// uartStream adapts uartx's context-based receive to io.Reader. Reads block
// until at least one byte arrives.
type uartStream struct{ u *uartx.UART }

func (s uartStream) Read(p []byte) (int, error) {
	return s.u.RecvSomeContext(context.Background(), p)
}

func (s uartStream) Write(p []byte) (int, error) { return s.u.Write(p) }
