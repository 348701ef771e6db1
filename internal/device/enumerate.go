// Package device implements the grab manager (spec.md §4.E): it
// enumerates character devices under /dev/input, matches them against
// configured keyboard names, grabs exclusive access, and feeds every
// read event packet into the remap engine and onward to the sink.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/keyremaperr"
)

// eviocgbitKey1Len is sized for the EV_KEY capability bitmap up through
// KEY_1 (code 2): one word is enough to test bit 2.
const eviocgbitKey1Len = 4

const (
	key1    = 2
	evKey   = 0x01
	evGrab  = 0x40044590 // EVIOCGRAB: _IOW('E', 0x90, int)
	nameLen = 256
)

// Descriptor identifies one enumerated input device: its kernel-reported
// name and the character-device path backing it.
type Descriptor struct {
	Driver string
	Name   string
}

// String reproduces the original grab manager's device listing format
// verbatim (spec.md §6, SPEC_FULL.md §5).
func (d Descriptor) String() string {
	return fmt.Sprintf("Device( name='%s' driver='%s')", d.Name, d.Driver)
}

// Enumerate lists every character device under /dev/input that reports
// the EV_KEY capability for KEY_1 — the same "is this a real keyboard"
// heuristic as the original (a device that can send the main-row "1" is
// assumed to be a full keyboard; numpad-only devices do not report that
// key and are not listed).
func Enumerate() ([]Descriptor, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("%w: reading /dev/input: %v", keyremaperr.ErrInit, err)
	}

	var out []Descriptor
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path, err := filepath.Abs(filepath.Join("/dev/input", entry.Name()))
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Mode()&os.ModeCharDevice == 0 {
			continue
		}

		desc, ok := probe(path)
		if ok {
			out = append(out, desc)
		}
	}
	return out, nil
}

// probe opens path read-write (matching libevdev_new_from_fd's
// requirement), checks the EV_KEY/KEY_1 capability bit, and reads the
// device name. It returns ok=false for anything that can't be opened or
// isn't a keyboard; such devices are silently skipped, matching the
// original enumerator.
func probe(path string) (Descriptor, bool) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return Descriptor{}, false
	}
	defer unix.Close(fd)

	if !hasKey1(fd) {
		return Descriptor{}, false
	}

	return Descriptor{Driver: path, Name: deviceName(fd)}, true
}

func hasKey1(fd int) bool {
	var bits [eviocgbitKey1Len]byte
	req := evIOCGBit(evKey, eviocgbitKey1Len)
	if err := ioctlBytes(fd, req, bits[:]); err != nil {
		return false
	}
	return bits[key1/8]&(1<<(key1%8)) != 0
}

func deviceName(fd int) string {
	var buf [nameLen]byte
	req := evIOCGName(nameLen)
	if err := ioctlBytes(fd, req, buf[:]); err != nil {
		return ""
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// evIOCGName/evIOCGBit reproduce the kernel's _IOC(_IOC_READ, 'E', nr,
// size) encoding for EVIOCGNAME(len) and EVIOCGBIT(ev, len), since
// golang.org/x/sys/unix does not expose their length-parameterized
// forms directly.
func evIOCGName(length int) uint {
	return iocEncode(iocRead, 'E', 0x06, length)
}

func evIOCGBit(ev, length int) uint {
	return iocEncode(iocRead, 'E', 0x20+uint(ev), length)
}

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func iocEncode(dir uint, typ byte, nr uint, size int) uint {
	return (dir << 30) | (uint(size) << 16) | (uint(typ) << 8) | nr
}

// ioctlBytes issues an ioctl whose third argument is a pointer into buf,
// the pattern EVIOCGBIT/EVIOCGNAME need (golang.org/x/sys/unix only
// wraps the fixed-size int and termios ioctl forms directly).
func ioctlBytes(fd int, req uint, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}
