package amqp10

import (
	"github.com/mbroadst/go-amqp10/internal/frame"
	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// Role fixes the direction of a link at construction
type Role int

const (
	RoleSender Role = iota
	RoleReceiver
)

func (r Role) String() string {
	if r == RoleReceiver {
		return "receiver"
	}
	return "sender"
}

// wire returns the boolean wire encoding of the role
func (r Role) wire() bool {
	if r == RoleReceiver {
		return protocol.RoleReceiver
	}
	return protocol.RoleSender
}

// SenderSettleMode controls whether transfers leave the sender settled
type SenderSettleMode uint8

const (
	SenderSettleUnsettled SenderSettleMode = protocol.SenderSettleUnsettled
	SenderSettleSettled   SenderSettleMode = protocol.SenderSettleSettled
	SenderSettleMixed     SenderSettleMode = protocol.SenderSettleMixed
)

// ReceiverSettleMode controls when the receiver settles deliveries
type ReceiverSettleMode uint8

const (
	ReceiverSettleFirst  ReceiverSettleMode = protocol.ReceiverSettleFirst
	ReceiverSettleSecond ReceiverSettleMode = protocol.ReceiverSettleSecond
)

// SessionWindows is a point-in-time snapshot of the session's transfer
// window fields
type SessionWindows struct {
	NextIncomingID       uint32
	IncomingWindow       uint32
	NextOutgoingID       uint32
	OutgoingWindow       uint32
	RemoteIncomingWindow uint32
}

// Session is the surface a link consumes from its owning session. The
// session owns the handle, name and remote-handle registries; the link
// mutates them only through the hooks below, never by reaching into
// session internals.
type Session interface {
	// Channel returns the session's channel number
	Channel() uint16

	// Windows returns a snapshot of the session window fields
	Windows() SessionWindows

	// SenderSettleMode returns the session's configured settle mode
	SenderSettleMode() SenderSettleMode

	// FlowControlEnabled reports whether session-level window flow
	// control restricts sends
	FlowControlEnabled() bool

	// Send transmits a frame on the session's channel
	Send(f *frame.Frame) error

	// WidenIncomingWindow grows the session incoming window when this
	// link grants receive credit
	WidenIncomingWindow(n uint32)

	// LinkAttached registers the link under its remote handle once the
	// peer's Attach has been processed
	LinkAttached(l *Link)

	// LinkDetached removes the link from the remote-handle, name and
	// allocated-handle registries after the detach handshake completes
	LinkDetached(l *Link, closed bool, err *Error)
}
