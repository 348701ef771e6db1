package device

import (
	"fmt"
	"log/slog"

	"github.com/uplg/keyremap/internal/keyremaperr"
	"github.com/uplg/keyremap/internal/reactor"
	"github.com/uplg/keyremap/internal/remap"
)

// Sink is the minimal contract the grab manager needs from a virtual
// device sink: a single opaque-buffer consumer.
type Sink interface {
	Consume([]byte)
}

// Manager owns the match-and-grab policy (spec.md §4.E): it tracks which
// device paths are currently grabbed, reacts to hot-plug notifications
// by re-scanning, and drives the reactor loop.
type Manager struct {
	poll          *reactor.Poll
	engine        *remap.Engine
	sink          Sink
	keyboardNames []string
	grabbed       map[string]*Keyboard
	watcher       *DirWatcher
	signals       *SignalReceiver
	logger        *slog.Logger
}

// NewManager constructs a Manager. It does not grab anything yet; call
// Run to perform the initial scan and enter the event loop.
func NewManager(keyboardNames []string, engine *remap.Engine, sink Sink, logger *slog.Logger) *Manager {
	return &Manager{
		poll:          reactor.New(logger),
		engine:        engine,
		sink:          sink,
		keyboardNames: keyboardNames,
		grabbed:       make(map[string]*Keyboard),
		logger:        logger,
	}
}

// Run performs the initial match-and-grab scan, subscribes the device
// watcher and signal receiver, and blocks in the reactor loop until a
// signal arrives or the loop errors out.
func (m *Manager) Run() error {
	watcher, err := NewDirWatcher(m.refresh, m.logger)
	if err != nil {
		return fmt.Errorf("%w: device watcher: %v", keyremaperr.ErrInit, err)
	}
	m.watcher = watcher
	m.poll.Subscribe(watcher)

	signals, err := NewSignalReceiver()
	if err != nil {
		return fmt.Errorf("%w: signal receiver: %v", keyremaperr.ErrInit, err)
	}
	m.signals = signals
	m.poll.Subscribe(signals)

	m.refresh()

	return m.poll.Loop()
}

// refresh re-enumerates /dev/input and grabs every not-yet-grabbed
// device whose name matches a configured keyboard name (spec.md §4.E's
// match-and-grab policy). It is called at startup and on every hot-plug
// notification.
func (m *Manager) refresh() {
	devices, err := Enumerate()
	if err != nil {
		m.logger.Warn("device: enumeration failed", "error", err)
		return
	}

	for _, d := range devices {
		if _, already := m.grabbed[d.Driver]; already {
			continue
		}
		for _, name := range m.keyboardNames {
			if name != d.Name {
				continue
			}
			if err := m.grab(d.Driver); err != nil {
				m.logger.Warn("device: grab failed", "path", d.Driver, "error", err)
			} else {
				m.logger.Info("device: grabbed", "name", d.Name, "path", d.Driver)
			}
			break
		}
	}
}

// grab opens and grabs device, subscribing it to the reactor. It fails
// with keyremaperr.ErrDuplicateGrab if device is already tracked.
func (m *Manager) grab(path string) error {
	if _, already := m.grabbed[path]; already {
		return fmt.Errorf("%w: %s", keyremaperr.ErrDuplicateGrab, path)
	}

	kb, err := grabKeyboard(path, m.engine, m.sink, func() { m.ungrab(path) }, m.logger)
	if err != nil {
		return err
	}

	m.grabbed[path] = kb
	m.poll.Subscribe(kb)
	return nil
}

// ungrab removes path from tracking and unsubscribes its keyboard
// subscriber; called when a device disconnects.
func (m *Manager) ungrab(path string) {
	kb, ok := m.grabbed[path]
	if !ok {
		return
	}
	m.poll.Unsubscribe(kb)
	delete(m.grabbed, path)
	_ = kb.Close()
	m.logger.Info("device: ungrabbed", "path", path)
}
