package amqp10

import (
	"fmt"

	"github.com/mbroadst/go-amqp10/internal/frame"
	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// ErrorKind classifies link errors
type ErrorKind int

const (
	// KindStateViolation marks an operation illegal for the link's
	// current role or state
	KindStateViolation ErrorKind = iota
	// KindCapacityViolation marks a send attempted without credit
	KindCapacityViolation
	// KindPeerError marks an error reported by the remote peer inside a
	// Detach frame
	KindPeerError
)

func (k ErrorKind) String() string {
	switch k {
	case KindStateViolation:
		return "state violation"
	case KindCapacityViolation:
		return "capacity violation"
	case KindPeerError:
		return "peer error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error represents an AMQP link error
type Error struct {
	Kind      ErrorKind
	Condition string // AMQP error condition, e.g. "amqp:link:detach-forced"
	Reason    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Condition == "" {
		return fmt.Sprintf("amqp link %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("amqp link %s (%s): %s", e.Kind, e.Condition, e.Reason)
}

// Is matches any *Error of the same kind and condition, so sentinel
// comparisons via errors.Is survive wrapping
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Condition == "" || e.Condition == t.Condition)
}

// Predefined errors for the common violations
var (
	ErrInsufficientCredit = &Error{
		Kind:      KindCapacityViolation,
		Condition: protocol.ConditionTransferLimitExceeded,
		Reason:    "cannot send without credit",
	}

	ErrSenderCannotGrant = &Error{
		Kind:      KindStateViolation,
		Condition: protocol.ConditionNotAllowed,
		Reason:    "cannot grant credit as a sender",
	}

	ErrReceiverCannotSend = &Error{
		Kind:      KindStateViolation,
		Condition: protocol.ConditionNotAllowed,
		Reason:    "cannot send as a receiver",
	}

	ErrLinkDetached = &Error{
		Kind:      KindStateViolation,
		Condition: protocol.ConditionIllegalState,
		Reason:    "link is detached",
	}

	ErrHalfDetached = &Error{
		Kind:      KindStateViolation,
		Condition: protocol.ConditionIllegalState,
		Reason:    "detach completed without close",
	}
)

// newStateError reports an event that is illegal for the current state
func newStateError(state LinkState, event linkEvent) *Error {
	return &Error{
		Kind:      KindStateViolation,
		Condition: protocol.ConditionIllegalState,
		Reason:    fmt.Sprintf("event %s invalid in state %s", event, state),
	}
}

// newPeerError converts a wire-level error from a Detach frame
func newPeerError(we *frame.Error) *Error {
	return &Error{
		Kind:      KindPeerError,
		Condition: we.Condition,
		Reason:    we.Description,
	}
}
