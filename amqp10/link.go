package amqp10

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mbroadst/go-amqp10/internal/frame"
)

// Link represents one end of an AMQP 1.0 link within a session.
//
// All state mutation happens on synchronous method calls driven either by
// the session's frame dispatcher or directly by the caller; the
// surrounding connection layer must serialize frame delivery per link.
// The internal mutex guards against data races only, it does not order
// whole operations.
type Link struct {
	session Session
	handle  uint32
	role    Role
	name    string
	opts    linkOptions

	mu sync.Mutex

	// Lifecycle
	state           LinkState
	attached        bool
	remoteHandle    uint32
	hasRemoteHandle bool
	cleanupOnce     *sync.Once

	// Flow control
	linkCredit   uint32
	totalCredits uint32
	available    uint32
	drain        bool

	// Delivery accounting (the sender is authoritative)
	deliveryCount        uint32
	initialDeliveryCount uint32

	// Deferred results, re-armed each handshake cycle
	pendingDetach *Pending
	pendingCredit *Pending

	// Notifications
	notifyMu     sync.Mutex
	messageChans []chan *Message
	errorChans   []chan *Error
	creditChans  []chan *Link
	detachChans  []chan DetachEvent

	logger  *slog.Logger
	metrics MetricsCollector
}

// NewLink creates a link on the given session. The handle must be unique
// within the session for the link's lifetime; the role never changes
// after construction.
func NewLink(session Session, handle uint32, role Role, opts ...LinkOption) *Link {
	options := linkOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.name == "" {
		options.name = fmt.Sprintf("link-%s", uuid.NewString())
	}

	return &Link{
		session:     session,
		handle:      handle,
		role:        role,
		name:        options.name,
		opts:        options,
		state:       LinkStateDetached,
		cleanupOnce: new(sync.Once),
		logger:      options.logger.With("role", role.String()),
		metrics:     options.metrics,
	}
}

// Name returns the link name
func (l *Link) Name() string {
	return l.name
}

// Handle returns the session-local link handle
func (l *Link) Handle() uint32 {
	return l.handle
}

// Role returns the link's fixed role
func (l *Link) Role() Role {
	return l.role
}

// RemoteHandle returns the peer's handle for this link; ok is false until
// the peer's Attach has been received
func (l *Link) RemoteHandle() (uint32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remoteHandle, l.hasRemoteHandle
}

// State returns the current lifecycle state
func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsAttached reports whether the attach handshake has completed
func (l *Link) IsAttached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attached
}

// Credit returns the current link credit
func (l *Link) Credit() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.linkCredit
}

// TotalCredits returns the cumulative credit ever granted on this link
func (l *Link) TotalCredits() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCredits
}

// Available returns the peer-reported backlog
func (l *Link) Available() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

// Draining reports whether the peer has requested a drain
func (l *Link) Draining() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.drain
}

// DeliveryCount returns the link's delivery counter
func (l *Link) DeliveryCount() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deliveryCount
}

// Attach starts the attach handshake. The link must be detached; the
// handshake completes when the peer's Attach arrives via HandleFrame.
func (l *Link) Attach() error {
	l.mu.Lock()
	if err := l.fire(eventSendAttach); err != nil {
		l.mu.Unlock()
		return err
	}

	attach := l.buildAttach()
	if l.role == RoleSender {
		// the sender is authoritative for delivery numbering
		l.deliveryCount = attach.InitialDeliveryCount
		l.initialDeliveryCount = attach.InitialDeliveryCount
	}
	l.linkCredit = 0
	l.totalCredits = 0
	l.available = 0
	l.drain = false

	// re-arm the per-cycle completion machinery
	l.cleanupOnce = new(sync.Once)
	l.pendingDetach = nil
	l.pendingCredit = nil

	f := frame.NewAttachFrame(l.session.Channel(), attach)
	l.mu.Unlock()

	if err := l.session.Send(f); err != nil {
		return fmt.Errorf("attach %s: %w", l.name, err)
	}
	return nil
}

// buildAttach assembles the Attach performative from the link options.
// Callers hold the link mutex.
func (l *Link) buildAttach() *frame.Attach {
	attach := &frame.Attach{
		Name:                 l.name,
		Handle:               l.handle,
		Role:                 l.role.wire(),
		SenderSettleMode:     uint8(l.session.SenderSettleMode()),
		ReceiverSettleMode:   uint8(l.opts.receiverSettleMode),
		InitialDeliveryCount: l.opts.initialDeliveryCount,
		MaxMessageSize:       l.opts.maxMessageSize,
	}

	if l.opts.sourceAddress != "" {
		attach.Source = &frame.Source{Address: resolveTerminus(l.opts.sourceAddress)}
	} else if l.opts.dynamic && l.role == RoleReceiver {
		attach.Source = &frame.Source{Dynamic: true}
	}

	if l.opts.targetAddress != "" {
		attach.Target = &frame.Target{Address: resolveTerminus(l.opts.targetAddress)}
	} else if l.opts.dynamic && l.role == RoleSender {
		attach.Target = &frame.Target{Dynamic: true}
	}

	return attach
}

// attachReceived completes the attach handshake with the peer's Attach
func (l *Link) attachReceived(a *frame.Attach) error {
	l.mu.Lock()
	if err := l.fire(eventAttachReceived); err != nil {
		l.mu.Unlock()
		return err
	}

	l.remoteHandle = a.Handle
	l.hasRemoteHandle = true
	l.attached = true
	if l.role == RoleReceiver {
		l.deliveryCount = a.InitialDeliveryCount
		l.initialDeliveryCount = a.InitialDeliveryCount
	}
	policy := l.opts.creditPolicy
	l.mu.Unlock()

	l.session.LinkAttached(l)
	if l.metrics != nil {
		l.metrics.LinkAttached()
	}
	l.logger.Debug("link attached",
		"link", l.name,
		"handle", l.handle,
		"remoteHandle", a.Handle)

	// evaluate the receive-credit policy for a possible initial grant
	if policy != nil {
		policy(l)
	}
	return nil
}

// Detach starts the detach handshake, transmitting a closing Detach. The
// returned Pending resolves once the peer answers and the link reports
// detach completion with closed=true and no error; it rejects if an error
// notification arrives first or the completion reports closed=false.
func (l *Link) Detach() (*Pending, error) {
	l.mu.Lock()
	if err := l.fire(eventSendDetach); err != nil {
		l.mu.Unlock()
		return nil, err
	}

	pending := newPending()
	l.pendingDetach = pending
	f := frame.NewDetachFrame(l.session.Channel(), &frame.Detach{
		Handle: l.handle,
		Closed: true,
	})
	l.mu.Unlock()

	if err := l.session.Send(f); err != nil {
		pending.fulfill(err)
		return nil, fmt.Errorf("detach %s: %w", l.name, err)
	}
	return pending, nil
}

// detachReceived processes the peer's Detach. A Detach arriving while
// attached is peer-initiated and is answered with exactly one local
// closing Detach before the transition; a Detach arriving while detaching
// answers our own Detach and must not be echoed (AMQP 1.0 section 2.6.6).
func (l *Link) detachReceived(d *frame.Detach) error {
	l.mu.Lock()
	if l.state == LinkStateAttached {
		// echo a closing Detach before transitioning
		f := frame.NewDetachFrame(l.session.Channel(), &frame.Detach{
			Handle: l.handle,
			Closed: true,
		})
		if err := l.session.Send(f); err != nil {
			l.logger.Warn("detach echo failed", "link", l.name, "error", err)
		}
	}

	if err := l.fire(eventDetachReceived); err != nil {
		l.mu.Unlock()
		return err
	}
	if l.state == LinkStateDetaching {
		// peer-initiated path; the echo already answered, so converge
		if err := l.fire(eventDetached); err != nil {
			l.mu.Unlock()
			return err
		}
	}
	l.mu.Unlock()

	var peerErr *Error
	if d.Error != nil {
		peerErr = newPeerError(d.Error)
	}
	l.completeDetach(d.Closed, peerErr)
	return nil
}

// completeDetach performs detach cleanup and notification exactly once
// per handshake cycle, regardless of which side initiated
func (l *Link) completeDetach(closed bool, peerErr *Error) {
	l.mu.Lock()
	once := l.cleanupOnce
	l.mu.Unlock()

	once.Do(func() {
		if peerErr != nil {
			l.errorReceived(peerErr)
		}

		l.session.LinkDetached(l, closed, peerErr)

		l.mu.Lock()
		l.attached = false
		l.hasRemoteHandle = false
		pending := l.pendingDetach
		l.pendingDetach = nil
		l.mu.Unlock()

		ev := DetachEvent{Closed: closed, Err: peerErr}
		if pending != nil {
			switch {
			case peerErr != nil:
				pending.fulfill(peerErr)
			case !closed:
				pending.fulfill(ErrHalfDetached)
			default:
				pending.fulfill(nil)
			}
		}

		l.notifyMu.Lock()
		chans := append([]chan DetachEvent(nil), l.detachChans...)
		l.notifyMu.Unlock()
		notifyDetach(chans, ev)

		if l.metrics != nil {
			l.metrics.LinkDetached()
		}
		l.logger.Debug("link detached",
			"link", l.name,
			"handle", l.handle,
			"closed", closed,
			"error", peerErr)
	})
}

// errorReceived propagates a peer-reported error: listeners are notified
// and any pending credit result rejects before detach completion runs
func (l *Link) errorReceived(err *Error) {
	l.mu.Lock()
	pendingCredit := l.pendingCredit
	l.pendingCredit = nil
	l.mu.Unlock()

	if pendingCredit != nil {
		pendingCredit.fulfill(err)
	}

	l.notifyMu.Lock()
	chans := append([]chan *Error(nil), l.errorChans...)
	l.notifyMu.Unlock()
	notifyError(chans, err)

	if l.metrics != nil {
		l.metrics.LinkError(err)
	}
}

// creditChanged fires the credit-change notification and resolves a
// pending AddCredits result
func (l *Link) creditChanged() {
	l.mu.Lock()
	pending := l.pendingCredit
	l.pendingCredit = nil
	l.mu.Unlock()

	if pending != nil {
		pending.fulfill(nil)
	}

	l.notifyMu.Lock()
	chans := append([]chan *Link(nil), l.creditChans...)
	l.notifyMu.Unlock()
	notifyCredit(chans, l)
}

// HandleFrame dispatches an inbound performative addressed to this link.
// The session dispatcher must deliver a link's frames in arrival order
// from a single goroutine.
func (l *Link) HandleFrame(body frame.Body) error {
	switch b := body.(type) {
	case *frame.Attach:
		return l.attachReceived(b)
	case *frame.Flow:
		return l.flowReceived(b)
	case *frame.Transfer:
		return l.messageReceived(b)
	case *frame.Detach:
		return l.detachReceived(b)
	default:
		return fmt.Errorf("unexpected frame for link %s: %T", l.name, body)
	}
}

// NotifyMessage registers a listener for received messages
func (l *Link) NotifyMessage(c chan *Message) chan *Message {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.messageChans = append(l.messageChans, c)
	return c
}

// NotifyError registers a listener for peer-reported errors
func (l *Link) NotifyError(c chan *Error) chan *Error {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.errorChans = append(l.errorChans, c)
	return c
}

// NotifyCreditChange registers a listener for link-credit changes
func (l *Link) NotifyCreditChange(c chan *Link) chan *Link {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.creditChans = append(l.creditChans, c)
	return c
}

// NotifyDetach registers a listener for detach completion
func (l *Link) NotifyDetach(c chan DetachEvent) chan DetachEvent {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()
	l.detachChans = append(l.detachChans, c)
	return c
}
