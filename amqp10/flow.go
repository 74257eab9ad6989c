package amqp10

import (
	"fmt"

	"github.com/mbroadst/go-amqp10/internal/frame"
	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// FlowOption adjusts the Flow frame emitted by AddCredits
type FlowOption func(*flowOptions)

type flowOptions struct {
	drain bool
	echo  bool
}

// WithDrain asks the sender to drain: use its remaining credit
// immediately or advance its delivery counter past it
func WithDrain() FlowOption {
	return func(o *flowOptions) {
		o.drain = true
	}
}

// WithEcho requests the peer reply with its own Flow
func WithEcho() FlowOption {
	return func(o *flowOptions) {
		o.echo = true
	}
}

// CanSend reports whether a transfer may be sent now: the link holds at
// least one credit and the session window permits, unless session-level
// flow control is disabled
func (l *Link) CanSend() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.linkCredit < 1 {
		return false
	}
	if !l.session.FlowControlEnabled() {
		return true
	}
	return l.session.Windows().RemoteIncomingWindow >= 1
}

// AddCredits grants the peer permission for n more transfers. Receiver
// role only; the link must be attached, since a Flow for an unattached
// handle is a session error. The session incoming window widens by n and
// a single Flow frame is transmitted carrying the cumulative credit total
// and the session window snapshot.
//
// The returned Pending resolves when a later credit-change notification
// fires and rejects if an error notification arrives first.
func (l *Link) AddCredits(credits uint32, opts ...FlowOption) (*Pending, error) {
	if l.role != RoleReceiver {
		return nil, ErrSenderCannotGrant
	}

	var fo flowOptions
	for _, opt := range opts {
		opt(&fo)
	}

	l.mu.Lock()
	if l.state != LinkStateAttached {
		l.mu.Unlock()
		return nil, &Error{
			Kind:      KindStateViolation,
			Condition: protocol.ConditionUnattachedHandle,
			Reason:    "cannot grant credit before attach",
		}
	}

	l.linkCredit += credits
	l.totalCredits += credits
	l.session.WidenIncomingWindow(credits)

	windows := l.session.Windows()
	handle := l.handle
	deliveryCount := l.deliveryCount
	total := l.totalCredits
	flow := &frame.Flow{
		NextIncomingID: &windows.NextIncomingID,
		IncomingWindow: windows.IncomingWindow,
		NextOutgoingID: windows.NextOutgoingID,
		OutgoingWindow: windows.OutgoingWindow,
		Handle:         &handle,
		DeliveryCount:  &deliveryCount,
		LinkCredit:     &total,
		Drain:          fo.drain,
		Echo:           fo.echo,
	}

	pending := newPending()
	l.pendingCredit = pending
	f := frame.NewFlowFrame(l.session.Channel(), flow)
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.CreditsGranted(credits)
	}
	l.logger.Debug("credit granted",
		"link", l.name,
		"credits", credits,
		"total", total)

	if err := l.session.Send(f); err != nil {
		pending.fulfill(err)
		return nil, fmt.Errorf("grant credit %s: %w", l.name, err)
	}
	return pending, nil
}

// grantFromPolicy is the AddCredits entry point used by credit policies;
// grant failures surface through the error notification path
func (l *Link) grantFromPolicy(credits uint32) {
	if credits == 0 {
		return
	}
	if _, err := l.AddCredits(credits); err != nil {
		l.logger.Warn("credit policy grant failed", "link", l.name, "error", err)
	}
}

// flowReceived applies an inbound Flow frame. Senders adopt the peer's
// link fields from link-specific flows and fire the credit-change
// notification; session-wide flows leave link state untouched. Receivers
// adopt only the peer's drain flag.
func (l *Link) flowReceived(fl *frame.Flow) error {
	if l.role == RoleReceiver {
		l.mu.Lock()
		if fl.LinkSpecific() {
			l.drain = fl.Drain
		}
		l.mu.Unlock()
		return nil
	}

	if !fl.LinkSpecific() {
		// session-wide flow; the session accounts for its own windows
		return nil
	}

	l.mu.Lock()
	if fl.Available != nil {
		l.available = *fl.Available
	}
	if fl.DeliveryCount != nil {
		l.deliveryCount = *fl.DeliveryCount
	}
	if fl.LinkCredit != nil {
		l.linkCredit = *fl.LinkCredit
		l.totalCredits += *fl.LinkCredit
	}
	l.drain = fl.Drain

	// drain request: advance the delivery counter past the remaining
	// credit and report back (AMQP 1.0 section 2.6.7)
	var drainResponse *frame.Frame
	if fl.Drain && l.linkCredit > 0 {
		l.deliveryCount += l.linkCredit
		l.linkCredit = 0

		windows := l.session.Windows()
		handle := l.handle
		deliveryCount := l.deliveryCount
		var credit uint32
		drainResponse = frame.NewFlowFrame(l.session.Channel(), &frame.Flow{
			NextIncomingID: &windows.NextIncomingID,
			IncomingWindow: windows.IncomingWindow,
			NextOutgoingID: windows.NextOutgoingID,
			OutgoingWindow: windows.OutgoingWindow,
			Handle:         &handle,
			DeliveryCount:  &deliveryCount,
			LinkCredit:     &credit,
			Drain:          true,
		})
	}
	credit := l.linkCredit
	l.mu.Unlock()

	if drainResponse != nil {
		if err := l.session.Send(drainResponse); err != nil {
			return fmt.Errorf("drain response %s: %w", l.name, err)
		}
	}

	if l.metrics != nil {
		l.metrics.FlowReceived()
	}
	l.logger.Debug("flow received", "link", l.name, "credit", credit)

	l.creditChanged()
	return nil
}
