// Package reactor implements the single-threaded poll(2)-based event
// multiplexer (spec.md §4.D, §5): a bounded-wait readiness loop over a
// small, dynamic set of subscribers (grabbed keyboards, the device
// directory watcher, the signal receiver), plus a best-effort alarm
// queue drained when a wait times out or more than the wait quantum has
// passed since the last drain.
package reactor

import (
	"fmt"
	"log/slog"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/keyremaperr"
)

// WaitQuantum bounds each call to poll(2); alarms are only ever checked
// when a wait times out or this much real time has elapsed since the
// last check (spec.md §4.D, §5).
const WaitQuantum = 100 * time.Millisecond

// CompactionThreshold: the descriptor table is rebuilt without its
// tombstones once it holds more than this many entries (live and
// tombstoned together) per live subscriber.
const CompactionThreshold = 3

// deletedFD marks a tombstoned table slot. It must never collide with a
// real fd (including a disabled, negated one), so it is not simply -1.
const deletedFD int32 = -1 << 30

type alarmEntry struct {
	deadline time.Time
	seq      int
	alarm    *Alarm
}

// Alarm fires callback once, no earlier than after delay has elapsed.
// Poll does not schedule it precisely: it is only checked when the
// surrounding poll(2) wait times out or expires, the same tradeoff the
// reference multiplexer makes in favor of a single syscall-driven loop.
type Alarm struct {
	delay    time.Duration
	callback func()
}

// NewAlarm constructs an Alarm. delay must be positive.
func NewAlarm(delay time.Duration, callback func()) (*Alarm, error) {
	if delay <= 0 {
		return nil, fmt.Errorf("reactor: illegal alarm delay %s", delay)
	}
	return &Alarm{delay: delay, callback: callback}, nil
}

// Poll is the event loop. It is not safe for concurrent use — the whole
// point is that every subscriber runs on one goroutine (spec.md §5).
type Poll struct {
	fds      []unix.PollFd
	subs     map[int32]Subscriber
	alarms   []alarmEntry
	alarmSeq int
	shutdown bool
	logger   *slog.Logger
}

// New constructs an empty Poll and ignores SIGPIPE, so a write to a
// vanished consumer never kills the process (grounded on the original
// multiplexer's constructor; see SPEC_FULL.md §5).
func New(logger *slog.Logger) *Poll {
	signal.Ignore(syscall.SIGPIPE)
	if logger == nil {
		logger = slog.Default()
	}
	return &Poll{
		subs:   make(map[int32]Subscriber),
		logger: logger,
	}
}

// Subscribe registers s in both the descriptor table and the
// fd-to-subscriber map.
func (p *Poll) Subscribe(s Subscriber) {
	p.fds = append(p.fds, unix.PollFd{Fd: s.FD(), Events: s.Mask()})
	p.subs[s.FD()] = s
}

// SubscribeAlarm schedules a, ordered by wake time with insertion order
// as the tiebreak.
func (p *Poll) SubscribeAlarm(a *Alarm) {
	p.alarms = append(p.alarms, alarmEntry{
		deadline: time.Now().Add(a.delay),
		seq:      p.alarmSeq,
		alarm:    a,
	})
	p.alarmSeq++
	sort.SliceStable(p.alarms, func(i, j int) bool {
		if p.alarms[i].deadline.Equal(p.alarms[j].deadline) {
			return p.alarms[i].seq < p.alarms[j].seq
		}
		return p.alarms[i].deadline.Before(p.alarms[j].deadline)
	})
}

// Unsubscribe removes s from the subscriber map and tombstones its
// descriptor table entries; the table is only physically shrunk by a
// later compaction.
func (p *Poll) Unsubscribe(s Subscriber) {
	fd := s.FD()
	if _, ok := p.subs[fd]; !ok {
		return
	}
	delete(p.subs, fd)
	for i := range p.fds {
		if p.fds[i].Fd == fd {
			p.fds[i].Fd = deletedFD
		}
	}
}

func (p *Poll) compact() {
	newTable := p.fds[:0:0]
	for _, fd := range p.fds {
		if fd.Fd != deletedFD {
			newTable = append(newTable, fd)
		}
	}
	p.fds = newTable
}

// Shutdown stops the loop before its next iteration.
func (p *Poll) Shutdown() {
	p.shutdown = true
}

// NotifySubscriberChanged propagates an fd/mask change made via
// Base.SetFD/SetMask/Disable/Enable into the descriptor table. It is a
// no-op unless s reports itself dirty.
func (p *Poll) NotifySubscriberChanged(s Subscriber) {
	if !s.Dirty() {
		return
	}
	absFD := s.FD()
	if absFD < 0 {
		absFD = -absFD
	}
	for i := range p.fds {
		if p.fds[i].Fd == absFD {
			p.fds[i].Fd = s.FD()
			p.fds[i].Events = s.Mask()
			s.ClearDirty()
			break
		}
	}
}

// Loop runs until Shutdown is called or the subscriber set is empty.
func (p *Poll) Loop() error {
	lastCheck := time.Now()
	for !p.shutdown && len(p.subs) > 0 {
		if len(p.fds) > CompactionThreshold*len(p.subs) {
			p.compact()
		}

		n, err := unix.Poll(p.fds, int(WaitQuantum/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("%w: poll: %v", keyremaperr.ErrInternal, err)
		}

		if n == 0 || time.Since(lastCheck) > WaitQuantum {
			lastCheck = time.Now()
			p.drainAlarms(lastCheck)
			continue
		}

		for i := range p.fds {
			pfd := p.fds[i]
			if pfd.Revents == 0 {
				continue
			}
			sub, ok := p.subs[pfd.Fd]
			if !ok {
				return fmt.Errorf("%w: no subscriber for fd %d", keyremaperr.ErrInternal, pfd.Fd)
			}

			var dispatchErr error
			switch {
			case pfd.Revents&unix.POLLIN != 0:
				dispatchErr = sub.OnInput(p)
			case pfd.Revents&unix.POLLOUT != 0:
				dispatchErr = sub.OnOutput(p)
			default:
				dispatchErr = sub.OnError(p, pfd.Revents)
			}
			if dispatchErr != nil {
				p.logger.Warn("reactor: subscriber error",
					"subscriber", sub.Name(),
					"events", pfd.Events,
					"fd", pfd.Fd,
					"revents", pfd.Revents,
					"error", dispatchErr)
			}
		}
	}
	return nil
}

func (p *Poll) drainAlarms(now time.Time) {
	i := 0
	for ; i < len(p.alarms); i++ {
		if p.alarms[i].deadline.After(now) {
			break
		}
		p.alarms[i].alarm.callback()
	}
	p.alarms = p.alarms[i:]
}

// DefaultOnError is the shared fallback OnError behavior: log and
// unsubscribe. Subscribers that don't need custom error handling call
// this directly from their OnError method.
func DefaultOnError(p *Poll, s Subscriber, revents int16, logger *slog.Logger) error {
	if logger == nil {
		logger = p.logger
	}
	logger.Warn("reactor: subscriber disconnected", "subscriber", s.Name(), "revents", revents)
	p.Unsubscribe(s)
	return nil
}
