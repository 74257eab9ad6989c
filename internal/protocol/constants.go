package protocol

// AMQP protocol version
const (
	ProtocolVersionMajor    = 1
	ProtocolVersionMinor    = 0
	ProtocolVersionRevision = 0

	ProtocolHeader = "AMQP\x00\x01\x00\x00"
)

// Performative descriptor codes (AMQP 1.0 part 2.7)
const (
	DescriptorOpen        = 0x10
	DescriptorBegin       = 0x11
	DescriptorAttach      = 0x12
	DescriptorFlow        = 0x13
	DescriptorTransfer    = 0x14
	DescriptorDisposition = 0x15
	DescriptorDetach      = 0x16
	DescriptorEnd         = 0x17
	DescriptorClose       = 0x18
)

// Link roles (AMQP 1.0 section 2.8.1); on the wire the role is a boolean
// where true identifies the receiver
const (
	RoleSender   = false
	RoleReceiver = true
)

// Sender settle modes (AMQP 1.0 section 2.8.2)
const (
	SenderSettleUnsettled = 0
	SenderSettleSettled   = 1
	SenderSettleMixed     = 2
)

// Receiver settle modes (AMQP 1.0 section 2.8.3)
const (
	ReceiverSettleFirst  = 0
	ReceiverSettleSecond = 1
)

// AMQP error conditions (AMQP 1.0 section 2.8.14-2.8.16)
const (
	ConditionInternalError        = "amqp:internal-error"
	ConditionNotFound             = "amqp:not-found"
	ConditionDecodeError          = "amqp:decode-error"
	ConditionResourceLimitExceeded = "amqp:resource-limit-exceeded"
	ConditionNotAllowed           = "amqp:not-allowed"
	ConditionIllegalState         = "amqp:illegal-state"

	ConditionDetachForced          = "amqp:link:detach-forced"
	ConditionTransferLimitExceeded = "amqp:link:transfer-limit-exceeded"
	ConditionMessageSizeExceeded   = "amqp:link:message-size-exceeded"
	ConditionLinkRedirect          = "amqp:link:redirect"
	ConditionLinkStolen            = "amqp:link:stolen"

	ConditionWindowViolation  = "amqp:session:window-violation"
	ConditionErrantLink       = "amqp:session:errant-link"
	ConditionHandleInUse      = "amqp:session:handle-in-use"
	ConditionUnattachedHandle = "amqp:session:unattached-handle"
)

// Defaults
const (
	DefaultPort    = 5672
	DefaultTLSPort = 5671

	// DefaultMaxMessageSize of zero means no limit is imposed
	DefaultMaxMessageSize = 0
)
