package can

import "sync"

// Receiver is the read side of a Bus.
type Receiver interface {
	Receive() (Frame, error)
}

// Mux fans frames from one receiver out to any number of filtered
// subscriptions. A single goroutine owns the receiver; each subscription
// gets its own buffered channel. When a subscriber falls behind, the oldest
// queued frame is dropped so the channel keeps the freshest traffic.
//
// The mux stops when Receive returns an error, normally ErrClosed after the
// underlying bus is closed. Done is closed at that point and every
// subscription channel with it; Err reports the cause.
type Mux struct {
	src  Receiver
	qLen int
	done chan struct{}

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
	err    error
}

// NewMux starts a mux reading from src. queueLen bounds each subscription's
// channel; values below 1 fall back to 8.
func NewMux(src Receiver, queueLen int) *Mux {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	m := &Mux{src: src, qLen: queueLen, done: make(chan struct{})}
	go m.run()
	return m
}

func (m *Mux) run() {
	for {
		f, err := m.src.Receive()
		if err != nil {
			m.mu.Lock()
			m.err = err
			m.closed = true
			subs := m.subs
			m.subs = nil
			m.mu.Unlock()
			for _, s := range subs {
				close(s.ch)
			}
			close(m.done)
			return
		}

		m.mu.Lock()
		for _, s := range m.subs {
			if s.filter != nil && !s.filter(f) {
				continue
			}
			select {
			case s.ch <- f:
			default:
				// Drop the oldest queued frame to make room.
				select {
				case <-s.ch:
				default:
				}
				select {
				case s.ch <- f:
				default:
				}
			}
		}
		m.mu.Unlock()
	}
}

// Subscribe registers filter and returns the subscription. A nil filter
// accepts every frame. Subscribing to a stopped mux yields a subscription
// whose channel is already closed.
func (m *Mux) Subscribe(filter Filter) *Subscription {
	s := &Subscription{filter: filter, ch: make(chan Frame, m.qLen), mux: m}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(s.ch)
		return s
	}
	m.subs = append(m.subs, s)
	m.mu.Unlock()
	return s
}

// Done is closed when the reader goroutine exits.
func (m *Mux) Done() <-chan struct{} { return m.done }

// Err returns the receive error that stopped the mux; nil while running.
func (m *Mux) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Subscription is one filtered view of the mux's traffic.
type Subscription struct {
	filter Filter
	ch     chan Frame
	mux    *Mux
}

// Frames is the delivery channel. It closes when the subscription is
// cancelled or the mux stops.
func (s *Subscription) Frames() <-chan Frame { return s.ch }

// Cancel removes the subscription and closes its channel. Cancelling twice,
// or after the mux has stopped, is harmless.
func (s *Subscription) Cancel() {
	m := s.mux
	m.mu.Lock()
	for i, x := range m.subs {
		if x == s {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			m.mu.Unlock()
			close(s.ch)
			return
		}
	}
	m.mu.Unlock()
}
