//go:build linux && !(rp2040 || rp2350)

package socketcan

import (
	"errors"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"halbus-go/can"
)

// Filter is a kernel acceptance filter: a received frame passes when
// id & Mask == ID & Mask, with the EFF and RTR flag bits taking part like
// identifier bits.
type Filter struct {
	ID   uint32
	Mask uint32
}

// MatchID builds a filter that passes exactly one identifier in its format:
// the flag bit is part of the match, so a standard and an extended identifier
// with the same bits do not pass each other's filter.
func MatchID(id can.ID) Filter {
	if id.IsExtended() {
		return Filter{
			ID:   id.Bits() | unix.CAN_EFF_FLAG,
			Mask: unix.CAN_EFF_MASK | unix.CAN_EFF_FLAG,
		}
	}
	return Filter{
		ID:   id.Bits(),
		Mask: unix.CAN_SFF_MASK | unix.CAN_EFF_FLAG,
	}
}

// Config carries the socket options applied before binding.
type Config struct {
	// Filters installs kernel-side acceptance filters. Empty means the
	// kernel default: every frame on the interface is delivered.
	Filters []Filter
	// DisableLoopback stops the kernel echoing this socket's frames back
	// to other local sockets on the same interface.
	DisableLoopback bool
}

// Bus is one bound CAN_RAW socket. The descriptor is registered with the
// runtime poller, so Send and Receive block their goroutine only, and Close
// unblocks them.
type Bus struct {
	file *os.File
}

var _ can.Bus = (*Bus)(nil)

// Dial binds a raw socket to the named interface with default options.
func Dial(ifname string) (*Bus, error) {
	return DialConfig(ifname, Config{})
}

// DialConfig binds a raw socket to the named interface, e.g. "can0" or a
// vcan test interface.
func DialConfig(ifname string, cfg Config) (*Bus, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, err
	}
	if len(cfg.Filters) > 0 {
		fs := make([]unix.CanFilter, len(cfg.Filters))
		for i, f := range cfg.Filters {
			fs[i] = unix.CanFilter{Id: f.ID, Mask: f.Mask}
		}
		if err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, fs); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	if cfg.DisableLoopback {
		if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_LOOPBACK, 0); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, err
	}
	// Hand the descriptor to the runtime poller so reads park the
	// goroutine instead of the thread.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Bus{file: os.NewFile(uintptr(fd), ifname)}, nil
}

// Send writes one frame. A full transmit queue surfaces as ENOBUFS; callers
// that need backpressure should pace themselves on it.
func (b *Bus) Send(f can.Frame) error {
	img, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := b.file.Write(img); err != nil {
		if errors.Is(err, os.ErrClosed) {
			return can.ErrClosed
		}
		return err
	}
	return nil
}

// Receive blocks until the kernel delivers a frame or the bus is closed.
func (b *Bus) Receive() (can.Frame, error) {
	var buf [16]byte
	n, err := b.file.Read(buf[:])
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return can.Frame{}, can.ErrClosed
		}
		return can.Frame{}, err
	}
	var f can.Frame
	if err := f.UnmarshalBinary(buf[:n]); err != nil {
		return can.Frame{}, err
	}
	return f, nil
}

// Close closes the socket and unblocks pending Send and Receive calls.
func (b *Bus) Close() error {
	if err := b.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
