package multiplayer

import (
	"errors"
	"sync"
)

// ErrChannelClosed is returned when sending on a closed channel.
var ErrChannelClosed = errors.New("multiplayer: channel closed")

// Channel is a bidirectional, message-oriented link to the other peer.
// Send must not block; implementations buffer and drop the oldest message
// when the buffer is full.
type Channel interface {
	Send(msg Message) error
	Inbound() <-chan Message
	Done() <-chan struct{}
	Close() error
}

// DefaultBufferSize is the per-direction message buffer of channels.
const DefaultBufferSize = 64

// PipeEnd is one end of an in-memory Channel pair.
type PipeEnd struct {
	in       chan Message
	peer     *PipeEnd
	done     chan struct{}
	doneOnce *sync.Once
}

// NewPipe creates two connected channel ends. Closing either end closes both.
func NewPipe(bufferSize int) (*PipeEnd, *PipeEnd) {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	done := make(chan struct{})
	once := &sync.Once{}
	a := &PipeEnd{in: make(chan Message, bufferSize), done: done, doneOnce: once}
	b := &PipeEnd{in: make(chan Message, bufferSize), done: done, doneOnce: once}
	a.peer, b.peer = b, a
	return a, b
}

// Send delivers msg to the other end.
// If the buffer is full, the oldest message is dropped to prevent blocking.
func (p *PipeEnd) Send(msg Message) error {
	select {
	case <-p.done:
		return ErrChannelClosed
	default:
	}
	offer(p.peer.in, msg)
	return nil
}

// Inbound returns messages sent by the other end.
func (p *PipeEnd) Inbound() <-chan Message {
	return p.in
}

// Done is closed when the pipe is closed.
func (p *PipeEnd) Done() <-chan struct{} {
	return p.done
}

// Close closes both ends. Safe to call multiple times.
func (p *PipeEnd) Close() error {
	p.doneOnce.Do(func() {
		close(p.done)
	})
	return nil
}

// offer enqueues msg, dropping the oldest queued message if ch is full.
func offer(ch chan Message, msg Message) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}
