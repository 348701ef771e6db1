package reactor

// Subscriber is a pollable participant in the event loop: a grabbed
// keyboard device, the /dev/input directory watcher, or the signal
// receiver (spec.md §4.D, §4.E).
type Subscriber interface {
	FD() int32
	Mask() int16
	Name() string

	OnInput(p *Poll) error
	OnOutput(p *Poll) error
	OnError(p *Poll, revents int16) error

	// Dirty reports whether FD()/Mask() changed since the last time the
	// poll descriptor table was synced; ClearDirty resets the flag.
	Dirty() bool
	ClearDirty()
}

// Base implements the no-op OnOutput that most subscribers share, plus
// fd/mask/dirty bookkeeping. Embed it and supply OnInput and OnError;
// an OnError that should log and unsubscribe can call DefaultOnError.
type Base struct {
	fd    int32
	mask  int16
	name  string
	dirty bool
}

// NewBase constructs a Base subscriber.
func NewBase(fd int32, mask int16, name string) Base {
	return Base{fd: fd, mask: mask, name: name}
}

func (b *Base) FD() int32            { return b.fd }
func (b *Base) Mask() int16          { return b.mask }
func (b *Base) Name() string         { return b.name }
func (b *Base) Dirty() bool          { return b.dirty }
func (b *Base) ClearDirty()          { b.dirty = false }
func (b *Base) OnOutput(*Poll) error { return nil }

// SetFD updates the descriptor and marks the subscriber dirty so the
// next NotifySubscriberChanged call propagates it into the poll table.
func (b *Base) SetFD(fd int32) { b.fd = fd; b.dirty = true }

// SetMask updates the requested event mask and marks the subscriber
// dirty.
func (b *Base) SetMask(mask int16) { b.mask = mask; b.dirty = true }

// Disable negates the descriptor so poll(2) ignores it while keeping the
// original value recoverable via Enable (spec.md's grab/release needs a
// device to stop being polled without losing its fd).
func (b *Base) Disable() {
	if b.fd > 0 {
		b.fd = -b.fd
	}
	b.dirty = true
}

// Enable restores a descriptor previously negated by Disable.
func (b *Base) Enable() {
	if b.fd < 0 {
		b.fd = -b.fd
	}
	b.dirty = true
}
