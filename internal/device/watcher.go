package device

import (
	"encoding/binary"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/reactor"
)

// inotifyEventHeaderSize is sizeof(struct inotify_event) sans the
// trailing variable-length name: wd(int32) + mask(uint32) +
// cookie(uint32) + len(uint32).
const inotifyEventHeaderSize = 16

// dirWatchBufSize matches the original's 1024-inotify_event scratch
// buffer.
const dirWatchBufSize = 1024 * inotifyEventHeaderSize

// DirWatcher subscribes to /dev/input create/delete notifications and
// invokes onChange whenever anything appears or disappears there
// (spec.md §4.E's hot-plug requirement).
type DirWatcher struct {
	reactor.Base
	fd       int
	watch    int32
	onChange func()
	logger   *slog.Logger
}

// NewDirWatcher opens an inotify instance watching /dev/input for
// IN_CREATE|IN_DELETE.
func NewDirWatcher(onChange func(), logger *slog.Logger) (*DirWatcher, error) {
	fd, err := unix.InotifyInit1(0)
	if err != nil {
		return nil, err
	}
	watch, err := unix.InotifyAddWatch(fd, "/dev/input", unix.IN_CREATE|unix.IN_DELETE)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &DirWatcher{
		Base:     reactor.NewBase(int32(fd), unix.POLLIN|unix.POLLERR|unix.POLLHUP, "device-listener"),
		fd:       fd,
		watch:    int32(watch),
		onChange: onChange,
		logger:   logger,
	}, nil
}

// OnInput drains pending inotify events and calls onChange once per
// non-empty event, mirroring the original's "if (event->len)" guard
// (directory entries without a name, like overflow markers, are
// ignored).
func (w *DirWatcher) OnInput(p *reactor.Poll) error {
	buf := make([]byte, dirWatchBufSize)
	n, err := unix.Read(w.fd, buf)
	if err != nil || n <= 0 {
		return nil
	}

	off := 0
	for off+inotifyEventHeaderSize <= n {
		entryNameLen := binary.LittleEndian.Uint32(buf[off+12 : off+16])
		if entryNameLen > 0 {
			w.onChange()
		}
		off += inotifyEventHeaderSize + int(entryNameLen)
	}
	return nil
}

func (w *DirWatcher) OnError(p *reactor.Poll, revents int16) error {
	return nil
}

// Close stops the watch and closes the inotify descriptor.
func (w *DirWatcher) Close() error {
	_, _ = unix.InotifyRmWatch(w.fd, uint32(w.watch))
	return unix.Close(w.fd)
}
