package amqp10

import (
	"context"
	"sync"
)

// Pending is a deferred result fulfilled exactly once. Long-running
// outcomes such as detach completion or credit acknowledgment are exposed
// as a Pending rather than blocking the caller.
type Pending struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// fulfill resolves (err == nil) or rejects the pending result; later
// calls are ignored
func (p *Pending) fulfill(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done returns a channel closed once the result is fulfilled
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the terminal error; only valid after Done is closed
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the result is fulfilled or ctx expires. Cancellation
// abandons the wait only; link state is never mutated by it.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DetachEvent reports how a detach handshake completed
type DetachEvent struct {
	Closed bool
	Err    *Error
}

// notify performs a non-blocking send to every registered channel. A
// listener that is not draining its channel misses the occurrence rather
// than stalling frame dispatch.
func notifyMessage(chans []chan *Message, m *Message) {
	for _, c := range chans {
		select {
		case c <- m:
		default:
		}
	}
}

func notifyError(chans []chan *Error, e *Error) {
	for _, c := range chans {
		select {
		case c <- e:
		default:
		}
	}
}

func notifyCredit(chans []chan *Link, l *Link) {
	for _, c := range chans {
		select {
		case c <- l:
		default:
		}
	}
}

func notifyDetach(chans []chan DetachEvent, ev DetachEvent) {
	for _, c := range chans {
		select {
		case c <- ev:
		default:
		}
	}
}
