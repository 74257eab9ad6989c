package amqp10

import "time"

// Properties carries the immutable message properties section of an AMQP
// 1.0 message
type Properties struct {
	MessageID          string
	UserID             []byte
	To                 string
	Subject            string
	ReplyTo            string
	CorrelationID      string
	ContentType        string
	ContentEncoding    string
	AbsoluteExpiryTime time.Time
	CreationTime       time.Time
	GroupID            string
	GroupSequence      uint32
	ReplyToGroupID     string
}

// Message represents a decoded AMQP message moving through a link. Body
// holds the already-decoded payload bytes; section encoding belongs to
// the codec collaborator.
type Message struct {
	Properties            Properties
	ApplicationProperties map[string]any
	Body                  []byte

	// Delivery metadata, set on received messages
	DeliveryID uint32
	Settled    bool
}
