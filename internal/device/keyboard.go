package device

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/keyremaperr"
	"github.com/uplg/keyremap/internal/reactor"
	"github.com/uplg/keyremap/internal/remap"
)

// maxEventsPerRead bounds a single read(2) the same way the original
// keyboard listener does: a fixed 64-event buffer, never grown.
const maxEventsPerRead = 64

// Keyboard is a grabbed physical keyboard device subscribed to the
// reactor. Every ready read is split into EV_SYN packets by engine and
// forwarded, packet by packet, to sink.
type Keyboard struct {
	reactor.Base
	path   string
	fd     int
	engine *remap.Engine
	sink   interface{ Consume([]byte) }
	onGone func()
	logger *slog.Logger
}

// grabKeyboard opens path read-only and attempts an exclusive grab via
// EVIOCGRAB. It fails with keyremaperr.ErrGrabContended if another
// process already holds the device (spec.md §4.E).
func grabKeyboard(path string, engine *remap.Engine, sink interface{ Consume([]byte) }, onGone func(), logger *slog.Logger) (*Keyboard, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		if err == unix.EACCES {
			return nil, fmt.Errorf("%w: opening %s", keyremaperr.ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: opening %s: %v", keyremaperr.ErrInit, path, err)
	}

	if err := unix.IoctlSetInt(fd, evGrab, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %s", keyremaperr.ErrGrabContended, path)
	}

	k := &Keyboard{
		Base:   reactor.NewBase(int32(fd), unix.POLLIN|unix.POLLERR, path),
		path:   path,
		fd:     fd,
		engine: engine,
		sink:   sink,
		onGone: onGone,
		logger: logger,
	}
	return k, nil
}

// OnInput reads up to maxEventsPerRead raw input_event records, feeds
// them through the remap engine, and forwards surviving packets to the
// sink. A zero-byte or error read means the device disconnected; a read
// shorter than one full event record is fatal for this subscriber too
// (spec.md §4.E) — both cases unsubscribe via onGone rather than leaving
// a dead fd registered with the reactor.
func (k *Keyboard) OnInput(p *reactor.Poll) error {
	buf := make([]byte, maxEventsPerRead*remap.EventSize)
	n, err := unix.Read(k.fd, buf)
	if err != nil || n == 0 {
		k.logger.Info("device: disconnected", "path", k.path)
		k.onGone()
		return nil
	}
	if n < remap.EventSize {
		k.onGone()
		return fmt.Errorf("%w: short read (%d bytes) from %s", keyremaperr.ErrInvalidRead, n, k.path)
	}

	k.engine.OnKeystroke(buf[:n], k.sink.Consume)
	return nil
}

func (k *Keyboard) OnError(p *reactor.Poll, revents int16) error {
	return reactor.DefaultOnError(p, k, revents, k.logger)
}

// Close releases the grab and closes the descriptor.
func (k *Keyboard) Close() error {
	_ = unix.IoctlSetInt(k.fd, evGrab, 0)
	return unix.Close(k.fd)
}
