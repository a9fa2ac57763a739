package slcan

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"halbus-go/can"
)

// Bitrate selects the CAN bitrate an adapter is opened at. The values are
// the Lawicel S command codes.
type Bitrate uint8

const (
	Bitrate10k Bitrate = iota
	Bitrate20k
	Bitrate50k
	Bitrate100k
	Bitrate125k
	Bitrate250k
	Bitrate500k
	Bitrate800k
	Bitrate1M
)

// ErrBitrate reports a bitrate code the protocol has no S command for.
var ErrBitrate = errors.New("slcan: no such bitrate code")

// Port drives an SLCAN adapter over a byte stream and implements can.Bus.
// Receive reassembles CR-terminated lines across arbitrarily chunked reads
// and skips everything that is not a frame (command acks, status replies).
//
// One goroutine may call Receive while others call Send; the write side is
// serialised internally.
type Port struct {
	rw io.ReadWriter

	wmu  sync.Mutex
	wbuf []byte

	// Receive-side state, owned by the single receiving goroutine.
	rbuf    []byte
	pending []byte
}

var _ can.Bus = (*Port)(nil)

// NewPort wraps an open byte stream to an SLCAN adapter. The adapter channel
// is not touched; call Open to select a bitrate and go on-bus.
func NewPort(rw io.ReadWriter) *Port {
	return &Port{
		rw:      rw,
		wbuf:    make([]byte, 0, maxLineLen),
		rbuf:    make([]byte, 64),
		pending: make([]byte, 0, 2*maxLineLen),
	}
}

// Open selects the bitrate and opens the adapter's CAN channel.
func (p *Port) Open(b Bitrate) error {
	if b > Bitrate1M {
		return ErrBitrate
	}
	if err := p.command('S', '0'+byte(b), cr); err != nil {
		return err
	}
	return p.command('O', cr)
}

// Send encodes f and writes its line to the adapter.
func (p *Port) Send(f can.Frame) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	line, err := AppendFrame(p.wbuf[:0], f)
	if err != nil {
		return err
	}
	p.wbuf = line[:0]
	_, err = p.rw.Write(line)
	return err
}

// Receive blocks until the adapter delivers a frame line and decodes it.
// Malformed frame lines return their decode error; the port stays usable and
// the next call reads on. Errors from the underlying stream pass through, so
// after the stream is closed Receive reports whatever its Read reports.
func (p *Port) Receive() (can.Frame, error) {
	for {
		if line, ok := p.nextLine(); ok {
			switch line[0] {
			case 't', 'T', 'r', 'R':
				return ParseFrame(line)
			}
			// Ack, transmit echo (z/Z), bell or status reply. Not ours.
			continue
		}
		n, err := p.rw.Read(p.rbuf)
		if n > 0 {
			p.pending = append(p.pending, p.rbuf[:n]...)
			continue
		}
		if err != nil {
			return can.Frame{}, err
		}
	}
}

// nextLine pops the next non-empty CR-terminated line out of the pending
// buffer, without its terminator.
func (p *Port) nextLine() ([]byte, bool) {
	for {
		i := bytes.IndexByte(p.pending, cr)
		if i < 0 {
			return nil, false
		}
		line := p.pending[:i]
		p.pending = p.pending[i+1:]
		if len(line) == 0 {
			continue // bare ack
		}
		return line, true
	}
}

// Close takes the adapter off-bus and closes the underlying stream when it
// has a Close method. The C command is best effort: a stream that is already
// dead should not mask the close itself.
func (p *Port) Close() error {
	p.command('C', cr)
	if c, ok := p.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Port) command(cmd ...byte) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	_, err := p.rw.Write(cmd)
	return err
}
