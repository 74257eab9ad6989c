package amqp10

// LinkState represents the lifecycle state of a link
type LinkState int32

const (
	LinkStateDetached LinkState = iota
	LinkStateAttaching
	LinkStateAttached
	LinkStateDetaching
)

func (s LinkState) String() string {
	switch s {
	case LinkStateDetached:
		return "DETACHED"
	case LinkStateAttaching:
		return "ATTACHING"
	case LinkStateAttached:
		return "ATTACHED"
	case LinkStateDetaching:
		return "DETACHING"
	default:
		return "UNKNOWN"
	}
}

// linkEvent drives state machine transitions
type linkEvent int

const (
	eventSendAttach linkEvent = iota
	eventAttachReceived
	eventSendDetach
	eventDetachReceived
	eventDetached
)

func (e linkEvent) String() string {
	switch e {
	case eventSendAttach:
		return "sendAttach"
	case eventAttachReceived:
		return "attachReceived"
	case eventSendDetach:
		return "sendDetach"
	case eventDetachReceived:
		return "detachReceived"
	case eventDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// transitions maps (state, event) to the next state. A pair absent from
// the table is a protocol violation and fails rather than no-ops.
var transitions = map[LinkState]map[linkEvent]LinkState{
	LinkStateDetached: {
		eventSendAttach: LinkStateAttaching,
	},
	LinkStateAttaching: {
		eventAttachReceived: LinkStateAttached,
	},
	LinkStateAttached: {
		eventSendDetach:     LinkStateDetaching,
		eventDetachReceived: LinkStateDetaching,
	},
	LinkStateDetaching: {
		eventDetachReceived: LinkStateDetached,
		eventDetached:       LinkStateDetached,
	},
}

// fire advances the state machine, returning a state-violation error for
// any (state, event) pair outside the transition table. Callers hold the
// link mutex.
func (l *Link) fire(event linkEvent) error {
	next, ok := transitions[l.state][event]
	if !ok {
		return newStateError(l.state, event)
	}

	l.logger.Debug("link state transition",
		"link", l.name,
		"handle", l.handle,
		"event", event.String(),
		"from", l.state.String(),
		"to", next.String())

	l.state = next
	return nil
}
