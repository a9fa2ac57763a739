package can

import (
	"errors"
	"sync"
)

// ErrClosed is returned from Send and Receive after a bus endpoint closes.
var ErrClosed = errors.New("can: bus closed")

// Bus is a frame transport endpoint. Send and Receive block until the frame
// moves or the endpoint fails; Receive returns ErrClosed once the endpoint
// is closed and drained.
type Bus interface {
	Send(Frame) error
	Receive() (Frame, error)
	Close() error
}

// ---------------- Loopback ----------------

// Loopback is an in-memory hub for tests and examples: every frame sent on
// one endpoint is received by all the others, the way nodes share a wire.
// A sender does not hear its own frames.
type Loopback struct {
	mu    sync.Mutex
	ports []*loopPort
}

func NewLoopback() *Loopback { return &Loopback{} }

// Open attaches a new endpoint whose receive queue holds up to queue frames.
// When the queue is full the oldest frame is dropped for the new one.
func (l *Loopback) Open(queue int) Bus {
	if queue <= 0 {
		queue = 8
	}
	p := &loopPort{hub: l, ch: make(chan Frame, queue)}
	l.mu.Lock()
	l.ports = append(l.ports, p)
	l.mu.Unlock()
	return p
}

func (l *Loopback) broadcast(from *loopPort, f Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.ports {
		if p == from {
			continue
		}
		select {
		case p.ch <- f:
		default:
			// Drop the oldest queued frame to make room.
			select {
			case <-p.ch:
			default:
			}
			select {
			case p.ch <- f:
			default:
			}
		}
	}
}

func (l *Loopback) detach(p *loopPort) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, x := range l.ports {
		if x == p {
			l.ports = append(l.ports[:i], l.ports[i+1:]...)
			return
		}
	}
}

type loopPort struct {
	hub *Loopback
	ch  chan Frame

	mu     sync.Mutex
	closed bool
}

func (p *loopPort) Send(f Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	p.hub.broadcast(p, f)
	return nil
}

func (p *loopPort) Receive() (Frame, error) {
	f, ok := <-p.ch
	if !ok {
		return Frame{}, ErrClosed
	}
	return f, nil
}

func (p *loopPort) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	p.hub.detach(p)
	close(p.ch)
	return nil
}
