package amqp10

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbroadst/go-amqp10/internal/frame"
)

// detachRecord captures a LinkDetached callback
type detachRecord struct {
	link   *Link
	closed bool
	err    *Error
}

// fakeSession is an in-memory Session recording everything the link does
type fakeSession struct {
	mu sync.Mutex

	channel     uint16
	windows     SessionWindows
	settleMode  SenderSettleMode
	flowControl bool

	sent     []*frame.Frame
	sendErr  error
	attached []*Link
	detached []detachRecord
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channel: 7,
		windows: SessionWindows{
			NextIncomingID:       10,
			IncomingWindow:       100,
			NextOutgoingID:       20,
			OutgoingWindow:       100,
			RemoteIncomingWindow: 50,
		},
		flowControl: true,
	}
}

func (s *fakeSession) Channel() uint16 {
	return s.channel
}

func (s *fakeSession) Windows() SessionWindows {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows
}

func (s *fakeSession) SenderSettleMode() SenderSettleMode {
	return s.settleMode
}

func (s *fakeSession) FlowControlEnabled() bool {
	return s.flowControl
}

func (s *fakeSession) Send(f *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, f)
	return nil
}

func (s *fakeSession) WidenIncomingWindow(n uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows.IncomingWindow += n
}

func (s *fakeSession) LinkAttached(l *Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = append(s.attached, l)
}

func (s *fakeSession) LinkDetached(l *Link, closed bool, err *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = append(s.detached, detachRecord{link: l, closed: closed, err: err})
}

// sentFrames returns a snapshot of everything transmitted so far
func (s *fakeSession) sentFrames() []*frame.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*frame.Frame(nil), s.sent...)
}

// lastFrame returns the most recently transmitted frame
func (s *fakeSession) lastFrame(t *testing.T) *frame.Frame {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "no frames transmitted")
	return s.sent[len(s.sent)-1]
}

// newAttachedLink drives a link through a completed attach handshake
func newAttachedLink(t *testing.T, s *fakeSession, role Role, opts ...LinkOption) *Link {
	t.Helper()

	l := NewLink(s, 1, role, opts...)
	require.NoError(t, l.Attach())
	require.NoError(t, l.HandleFrame(&frame.Attach{
		Name:                 l.Name(),
		Handle:               99,
		Role:                 !role.wire(),
		InitialDeliveryCount: 5,
	}))
	require.Equal(t, LinkStateAttached, l.State())
	return l
}

// grantCredit hands a sender link n credits via a link-specific flow
func grantCredit(t *testing.T, l *Link, n uint32) {
	t.Helper()

	handle := l.Handle()
	credit := n
	require.NoError(t, l.HandleFrame(&frame.Flow{
		Handle:     &handle,
		LinkCredit: &credit,
	}))
}
