package amqp10

import (
	"fmt"

	"github.com/mbroadst/go-amqp10/internal/frame"
	"github.com/mbroadst/go-amqp10/internal/protocol"
)

// SendMessage transmits msg as a single Transfer frame under deliveryID,
// the caller-supplied correlation id. Delivery ids must be assigned
// monotonically and sends never reordered relative to each other.
//
// One link credit is consumed by the act of sending, independent of any
// downstream acknowledgment; with no credit the send fails and nothing is
// transmitted.
func (l *Link) SendMessage(deliveryID uint32, msg *Message) (uint32, error) {
	if l.role != RoleSender {
		return 0, ErrReceiverCannotSend
	}

	l.mu.Lock()
	if l.state != LinkStateAttached {
		l.mu.Unlock()
		return 0, ErrLinkDetached
	}
	if l.linkCredit < 1 {
		l.mu.Unlock()
		return 0, ErrInsufficientCredit
	}

	transfer := &frame.Transfer{
		Handle:     l.handle,
		DeliveryID: deliveryID,
		Settled:    l.session.SenderSettleMode() == SenderSettleSettled,
		Message:    msg,
	}
	l.linkCredit--
	l.deliveryCount++
	f := frame.NewTransferFrame(l.session.Channel(), transfer)
	l.mu.Unlock()

	if err := l.session.Send(f); err != nil {
		return 0, fmt.Errorf("send %s: %w", l.name, err)
	}

	if l.metrics != nil {
		l.metrics.MessageSent()
	}
	l.logger.Debug("transfer sent", "link", l.name, "deliveryId", deliveryID)
	return deliveryID, nil
}

// messageReceived consumes one credit for an inbound Transfer, fires the
// message-received notification, then lets the credit policy decide on
// replenishment
func (l *Link) messageReceived(t *frame.Transfer) error {
	if l.role != RoleReceiver {
		return &Error{
			Kind:      KindStateViolation,
			Condition: protocol.ConditionNotAllowed,
			Reason:    "cannot receive as a sender",
		}
	}

	msg, ok := t.Message.(*Message)
	if !ok || msg == nil {
		return &Error{
			Kind:      KindStateViolation,
			Condition: protocol.ConditionDecodeError,
			Reason:    fmt.Sprintf("transfer %d carries no decoded message", t.DeliveryID),
		}
	}

	l.mu.Lock()
	if l.state != LinkStateAttached {
		l.mu.Unlock()
		return ErrLinkDetached
	}
	if l.linkCredit == 0 {
		l.mu.Unlock()
		return &Error{
			Kind:      KindCapacityViolation,
			Condition: protocol.ConditionTransferLimitExceeded,
			Reason:    "transfer received without credit",
		}
	}
	l.linkCredit--
	policy := l.opts.creditPolicy
	l.mu.Unlock()

	msg.DeliveryID = t.DeliveryID
	msg.Settled = t.Settled

	if l.metrics != nil {
		l.metrics.MessageReceived()
	}
	l.logger.Debug("transfer received", "link", l.name, "deliveryId", t.DeliveryID)

	l.notifyMu.Lock()
	chans := append([]chan *Message(nil), l.messageChans...)
	l.notifyMu.Unlock()
	notifyMessage(chans, msg)

	if policy != nil {
		policy(l)
	}
	return nil
}
