package amqp10

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbroadst/go-amqp10/internal/frame"
)

func TestCanSend(t *testing.T) {
	tests := []struct {
		name         string
		credit       uint32
		remoteWindow uint32
		flowControl  bool
		want         bool
	}{
		{"credit and window", 5, 10, true, true},
		{"no credit", 0, 10, true, false},
		{"credit but closed window", 5, 0, true, false},
		{"closed window ignored when control disabled", 5, 0, false, true},
		{"no credit even without control", 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSession()
			s.flowControl = tt.flowControl
			s.windows.RemoteIncomingWindow = tt.remoteWindow

			l := newAttachedLink(t, s, RoleSender)
			if tt.credit > 0 {
				grantCredit(t, l, tt.credit)
			}

			assert.Equal(t, tt.want, l.CanSend())
		})
	}
}

func TestAddCreditsAsSenderFails(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleSender)
	before := len(s.sentFrames())

	pending, err := l.AddCredits(10)
	require.Error(t, err)
	assert.Nil(t, pending)
	assert.True(t, errors.Is(err, ErrSenderCannotGrant))
	assert.Len(t, s.sentFrames(), before, "no flow frame on a failed grant")
}

func TestAddCreditsBeforeAttachFails(t *testing.T) {
	s := newFakeSession()
	l := NewLink(s, 1, RoleReceiver)

	_, err := l.AddCredits(10)
	require.Error(t, err)

	var linkErr *Error
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, KindStateViolation, linkErr.Kind)
}

// Scenario: receiver grants 10 credits; counters, the session window and
// exactly one flow frame must all reflect it.
func TestAddCreditsOnReceiver(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleReceiver)
	windowBefore := s.Windows().IncomingWindow
	framesBefore := len(s.sentFrames())

	pending, err := l.AddCredits(10)
	require.NoError(t, err)
	require.NotNil(t, pending)

	assert.Equal(t, uint32(10), l.Credit())
	assert.Equal(t, uint32(10), l.TotalCredits())
	assert.Equal(t, windowBefore+10, s.Windows().IncomingWindow)

	frames := s.sentFrames()
	require.Len(t, frames, framesBefore+1, "exactly one flow frame")

	f := frames[len(frames)-1]
	assert.Equal(t, s.Channel(), f.Channel)

	flow, ok := f.Body.(*frame.Flow)
	require.True(t, ok)
	require.NotNil(t, flow.Handle)
	assert.Equal(t, l.Handle(), *flow.Handle)
	require.NotNil(t, flow.LinkCredit)
	assert.Equal(t, uint32(10), *flow.LinkCredit, "flow carries the cumulative total")
	require.NotNil(t, flow.DeliveryCount)
	assert.Equal(t, l.DeliveryCount(), *flow.DeliveryCount)
	assert.False(t, flow.Drain)
	assert.Equal(t, s.Windows().IncomingWindow, flow.IncomingWindow, "window snapshot includes the widened grant")
}

func TestAddCreditsAccumulates(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleReceiver)

	_, err := l.AddCredits(4)
	require.NoError(t, err)
	_, err = l.AddCredits(6)
	require.NoError(t, err)

	assert.Equal(t, uint32(10), l.Credit())
	assert.Equal(t, uint32(10), l.TotalCredits())

	flow, ok := s.lastFrame(t).Body.(*frame.Flow)
	require.True(t, ok)
	assert.Equal(t, uint32(10), *flow.LinkCredit)
}

func TestAddCreditsWithDrain(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleReceiver)

	_, err := l.AddCredits(3, WithDrain())
	require.NoError(t, err)

	flow, ok := s.lastFrame(t).Body.(*frame.Flow)
	require.True(t, ok)
	assert.True(t, flow.Drain)
}

func TestAddCreditsPendingRejectsOnError(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleReceiver)

	pending, err := l.AddCredits(10)
	require.NoError(t, err)

	select {
	case <-pending.Done():
		t.Fatal("pending resolved before any notification")
	default:
	}

	peerErr := &Error{Kind: KindPeerError, Condition: "amqp:link:detach-forced", Reason: "boom"}
	l.errorReceived(peerErr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.ErrorIs(t, pending.Wait(ctx), peerErr)
}

// Sender adopts available, deliveryCount and linkCredit from a
// link-specific flow and accumulates the grant into totalCredits.
func TestFlowReceivedOnSender(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleSender)

	creditChange := l.NotifyCreditChange(make(chan *Link, 1))

	handle := l.Handle()
	available := uint32(3)
	deliveryCount := uint32(12)
	credit := uint32(5)
	require.NoError(t, l.HandleFrame(&frame.Flow{
		Handle:        &handle,
		Available:     &available,
		DeliveryCount: &deliveryCount,
		LinkCredit:    &credit,
	}))

	assert.Equal(t, uint32(3), l.Available())
	assert.Equal(t, uint32(12), l.DeliveryCount())
	assert.Equal(t, uint32(5), l.Credit())
	assert.Equal(t, uint32(5), l.TotalCredits())

	select {
	case got := <-creditChange:
		assert.Same(t, l, got)
	default:
		t.Fatal("credit-change notification did not fire")
	}
}

func TestSessionWideFlowLeavesLinkUntouched(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleSender)
	grantCredit(t, l, 5)

	creditChange := l.NotifyCreditChange(make(chan *Link, 1))

	require.NoError(t, l.HandleFrame(&frame.Flow{IncomingWindow: 1}))

	assert.Equal(t, uint32(5), l.Credit())
	select {
	case <-creditChange:
		t.Fatal("session-wide flow must not fire credit-change")
	default:
	}
}

func TestFlowReceivedOnReceiverAdoptsDrainOnly(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleReceiver)
	_, err := l.AddCredits(8)
	require.NoError(t, err)

	handle := l.Handle()
	credit := uint32(99)
	deliveryCount := uint32(42)
	require.NoError(t, l.HandleFrame(&frame.Flow{
		Handle:        &handle,
		LinkCredit:    &credit,
		DeliveryCount: &deliveryCount,
		Drain:         true,
	}))

	assert.Equal(t, uint32(8), l.Credit(), "receiver must not adopt credit")
	assert.True(t, l.Draining())
}

// Drain handling on the sender: remaining credit is burned into the
// delivery counter and reported back with zero credit.
func TestSenderDrain(t *testing.T) {
	s := newFakeSession()
	l := newAttachedLink(t, s, RoleSender)

	handle := l.Handle()
	deliveryCount := uint32(10)
	credit := uint32(4)
	require.NoError(t, l.HandleFrame(&frame.Flow{
		Handle:        &handle,
		DeliveryCount: &deliveryCount,
		LinkCredit:    &credit,
		Drain:         true,
	}))

	assert.Equal(t, uint32(0), l.Credit())
	assert.Equal(t, uint32(14), l.DeliveryCount())

	flow, ok := s.lastFrame(t).Body.(*frame.Flow)
	require.True(t, ok)
	assert.True(t, flow.Drain)
	require.NotNil(t, flow.LinkCredit)
	assert.Equal(t, uint32(0), *flow.LinkCredit)
	require.NotNil(t, flow.DeliveryCount)
	assert.Equal(t, uint32(14), *flow.DeliveryCount)
}
