package reactor

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// pipeSubscriber forwards a single byte read to a channel, then shuts
// the loop down.
type pipeSubscriber struct {
	Base
	got chan byte
}

func (s *pipeSubscriber) OnInput(p *Poll) error {
	var buf [1]byte
	fd := s.FD()
	n, err := unix.Read(int(fd), buf[:])
	if err != nil {
		return err
	}
	if n > 0 {
		s.got <- buf[0]
	}
	p.Shutdown()
	return nil
}

func (s *pipeSubscriber) OnError(p *Poll, revents int16) error {
	return DefaultOnError(p, s, revents, nil)
}

func TestLoopDispatchesReadyFD(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poll := New(logger)

	sub := &pipeSubscriber{
		Base: NewBase(int32(r.Fd()), unix.POLLIN, "test-pipe"),
		got:  make(chan byte, 1),
	}
	poll.Subscribe(sub)

	go func() {
		_, _ = w.Write([]byte{42})
	}()

	done := make(chan error, 1)
	go func() { done <- poll.Loop() }()

	select {
	case b := <-sub.got:
		assert.Equal(t, byte(42), b)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after shutdown")
	}
}

func TestUnsubscribeTombstonesEntry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poll := New(logger)
	sub := &pipeSubscriber{Base: NewBase(7, unix.POLLIN, "seven"), got: make(chan byte, 1)}
	poll.Subscribe(sub)

	poll.Unsubscribe(sub)

	assert.Equal(t, deletedFD, poll.fds[0].Fd)
	_, stillTracked := poll.subs[7]
	assert.False(t, stillTracked)
}

func TestNotifySubscriberChangedPropagatesMask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poll := New(logger)
	sub := &pipeSubscriber{Base: NewBase(11, unix.POLLIN, "dirty-sub"), got: make(chan byte, 1)}
	poll.Subscribe(sub)

	sub.SetMask(unix.POLLIN | unix.POLLOUT)
	require.True(t, sub.Dirty())

	poll.NotifySubscriberChanged(sub)

	assert.False(t, sub.Dirty())
	assert.Equal(t, int16(unix.POLLIN|unix.POLLOUT), poll.fds[0].Events)
}

func TestNotifySubscriberChangedPropagatesDisable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poll := New(logger)
	sub := &pipeSubscriber{Base: NewBase(13, unix.POLLIN, "toggle-sub"), got: make(chan byte, 1)}
	poll.Subscribe(sub)

	sub.Disable()
	require.True(t, sub.Dirty())

	poll.NotifySubscriberChanged(sub)

	assert.False(t, sub.Dirty())
	assert.Equal(t, int32(-13), poll.fds[0].Fd)
}

func TestAlarmOrderingByDeadline(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poll := New(logger)

	var fired []int
	a1, err := NewAlarm(50*time.Millisecond, func() { fired = append(fired, 1) })
	require.NoError(t, err)
	a2, err := NewAlarm(10*time.Millisecond, func() { fired = append(fired, 2) })
	require.NoError(t, err)

	poll.SubscribeAlarm(a1)
	poll.SubscribeAlarm(a2)

	poll.drainAlarms(time.Now().Add(100 * time.Millisecond))

	assert.Equal(t, []int{2, 1}, fired)
	assert.Empty(t, poll.alarms)
}
