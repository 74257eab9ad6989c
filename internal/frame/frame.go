package frame

import (
	"fmt"

	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// Body is implemented by every performative that can travel in a frame.
// Byte-level encoding of the AMQP type system is the transport
// collaborator's job; this package only models the frame shapes the link
// engine exchanges with it.
type Body interface {
	Descriptor() uint64
}

// Frame pairs a performative body with the session channel it travels on
type Frame struct {
	Channel uint16
	Body    Body
}

// Error is the wire shape of an AMQP error carried inside performatives
type Error struct {
	Condition   string
	Description string
	Info        map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Description == "" {
		return e.Condition
	}
	return fmt.Sprintf("%s: %s", e.Condition, e.Description)
}

// Source describes the source terminus of a link
type Source struct {
	Address string
	Dynamic bool
}

// Target describes the target terminus of a link
type Target struct {
	Address string
	Dynamic bool
}

// Attach is the performative opening one end of a link
type Attach struct {
	Name                 string
	Handle               uint32
	Role                 bool // protocol.RoleSender or protocol.RoleReceiver
	SenderSettleMode     uint8
	ReceiverSettleMode   uint8
	Source               *Source
	Target               *Target
	InitialDeliveryCount uint32
	MaxMessageSize       uint64
}

// Descriptor returns the performative descriptor code
func (a *Attach) Descriptor() uint64 { return protocol.DescriptorAttach }

// Flow carries session window state and, when Handle is set, link credit.
// Pointer fields are nil when absent from the wire frame.
type Flow struct {
	NextIncomingID *uint32
	IncomingWindow uint32
	NextOutgoingID uint32
	OutgoingWindow uint32
	Handle         *uint32
	DeliveryCount  *uint32
	LinkCredit     *uint32
	Available      *uint32
	Drain          bool
	Echo           bool
}

// Descriptor returns the performative descriptor code
func (f *Flow) Descriptor() uint64 { return protocol.DescriptorFlow }

// LinkSpecific reports whether the flow targets a single link rather than
// the whole session
func (f *Flow) LinkSpecific() bool { return f.Handle != nil }

// Transfer carries one message delivery. Message is the decoded message
// object supplied by the codec collaborator; it is opaque at this layer.
type Transfer struct {
	Handle     uint32
	DeliveryID uint32
	Settled    bool
	Message    any
}

// Descriptor returns the performative descriptor code
func (t *Transfer) Descriptor() uint64 { return protocol.DescriptorTransfer }

// Detach is the performative closing one end of a link
type Detach struct {
	Handle uint32
	Closed bool
	Error  *Error
}

// Descriptor returns the performative descriptor code
func (d *Detach) Descriptor() uint64 { return protocol.DescriptorDetach }

// NewAttachFrame wraps an Attach body for the given channel
func NewAttachFrame(channel uint16, body *Attach) *Frame {
	return &Frame{Channel: channel, Body: body}
}

// NewFlowFrame wraps a Flow body for the given channel
func NewFlowFrame(channel uint16, body *Flow) *Frame {
	return &Frame{Channel: channel, Body: body}
}

// NewTransferFrame wraps a Transfer body for the given channel
func NewTransferFrame(channel uint16, body *Transfer) *Frame {
	return &Frame{Channel: channel, Body: body}
}

// NewDetachFrame wraps a Detach body for the given channel
func NewDetachFrame(channel uint16, body *Detach) *Frame {
	return &Frame{Channel: channel, Body: body}
}
