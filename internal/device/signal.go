package device

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/reactor"
)

// sigaddset sets the bit for sig in a Sigset_t, matching glibc's
// sigaddset without depending on a cgo binding for it.
func sigaddset(set *unix.Sigset_t, sig unix.Signal) {
	word := int(sig-1) / 64
	bit := uint(int(sig-1) % 64)
	set.Val[word] |= 1 << bit
}

// SignalReceiver converts SIGINT/SIGTERM into a pollable fd via
// signalfd, so shutdown is handled on the same single-threaded reactor
// as every other subscriber instead of in an async-signal-unsafe
// handler (spec.md §4.E, §9; grounded on the original KillReceiver).
type SignalReceiver struct {
	reactor.Base
	fd int
}

// NewSignalReceiver blocks SIGINT and SIGTERM in the calling thread's
// signal mask and opens a signalfd that becomes readable when either
// arrives.
func NewSignalReceiver() (*SignalReceiver, error) {
	var mask unix.Sigset_t
	sigaddset(&mask, unix.SIGINT)
	sigaddset(&mask, unix.SIGTERM)

	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &mask, nil); err != nil {
		return nil, err
	}

	fd, err := unix.Signalfd(-1, &mask, 0)
	if err != nil {
		return nil, err
	}

	return &SignalReceiver{
		Base: reactor.NewBase(int32(fd), unix.POLLIN|unix.POLLERR|unix.POLLHUP, "signal-receiver"),
		fd:   fd,
	}, nil
}

// OnInput shuts the reactor down; it does not bother decoding which
// signal arrived; SIGINT and SIGTERM both mean "stop" (spec.md §9).
func (s *SignalReceiver) OnInput(p *reactor.Poll) error {
	var info unix.SignalfdSiginfo
	_, _ = unix.Read(s.fd, (*[unsafe.Sizeof(info)]byte)(unsafe.Pointer(&info))[:])
	p.Shutdown()
	return nil
}

func (s *SignalReceiver) OnError(p *reactor.Poll, revents int16) error {
	p.Shutdown()
	return nil
}

// Close closes the signalfd.
func (s *SignalReceiver) Close() error {
	return unix.Close(s.fd)
}
