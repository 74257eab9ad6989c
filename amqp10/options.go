package amqp10

import (
	"log/slog"
)

// LinkOption is a functional option for link construction
type LinkOption func(*linkOptions)

// linkOptions is the immutable configuration captured at construction
type linkOptions struct {
	name                 string
	sourceAddress        string
	targetAddress        string
	dynamic              bool
	receiverSettleMode   ReceiverSettleMode
	initialDeliveryCount uint32
	maxMessageSize       uint64
	creditPolicy         CreditPolicy
	logger               *slog.Logger
	metrics              MetricsCollector
}

// WithName sets the link name; a UUID-derived name is generated when unset
func WithName(name string) LinkOption {
	return func(o *linkOptions) {
		o.name = name
	}
}

// WithSource sets the source terminus address. Full amqp:// addresses are
// resolved to their terminus name at attach time.
func WithSource(address string) LinkOption {
	return func(o *linkOptions) {
		o.sourceAddress = address
	}
}

// WithTarget sets the target terminus address
func WithTarget(address string) LinkOption {
	return func(o *linkOptions) {
		o.targetAddress = address
	}
}

// WithDynamicTerminus requests a peer-created terminus in the Attach
func WithDynamicTerminus() LinkOption {
	return func(o *linkOptions) {
		o.dynamic = true
	}
}

// WithReceiverSettleMode sets the receiver settle mode carried in the Attach
func WithReceiverSettleMode(mode ReceiverSettleMode) LinkOption {
	return func(o *linkOptions) {
		o.receiverSettleMode = mode
	}
}

// WithInitialDeliveryCount seeds the sender's delivery counter
func WithInitialDeliveryCount(count uint32) LinkOption {
	return func(o *linkOptions) {
		o.initialDeliveryCount = count
	}
}

// WithMaxMessageSize caps the message size advertised in the Attach; zero
// means unlimited
func WithMaxMessageSize(size uint64) LinkOption {
	return func(o *linkOptions) {
		o.maxMessageSize = size
	}
}

// WithCreditPolicy installs the credit-replenishment strategy evaluated
// after attach and after each received message
func WithCreditPolicy(policy CreditPolicy) LinkOption {
	return func(o *linkOptions) {
		o.creditPolicy = policy
	}
}

// WithLogger sets the structured logger used for transition and frame
// diagnostics
func WithLogger(logger *slog.Logger) LinkOption {
	return func(o *linkOptions) {
		o.logger = logger
	}
}

// WithMetrics installs a metrics collector
func WithMetrics(collector MetricsCollector) LinkOption {
	return func(o *linkOptions) {
		o.metrics = collector
	}
}
