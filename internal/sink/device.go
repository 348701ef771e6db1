// Package sink implements the virtual device sink (spec.md §4.B): it
// opens /dev/uinput, advertises a full keyboard plus a relative pointer
// capability set, and exposes a single opaque-buffer Consume call.
//
// Grounded directly on the original /dev/uinput setup (UInput.h): the
// same ioctl sequence, advertised capability set, and legacy
// uinput_user_dev device-descriptor write, translated from raw C
// ioctl/write calls into golang.org/x/sys/unix.
package sink

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/uplg/keyremap/internal/keyremaperr"
)

// ioctl request codes for /dev/uinput, computed via the standard Linux
// _IOW('U', nr, int) / _IO('U', nr) encoding and cross-checked against
// real-world Go uinput clients in the retrieval pack.
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
)

// Event types and codes from linux/input-event-codes.h, restricted to
// what this sink advertises.
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08

	btnMouse   = 0x110
	btnLeft    = 0x110
	btnRight   = 0x111
	btnMiddle  = 0x112
	btnForward = 0x115
	btnBack    = 0x116
	btnTouch   = 0x14a
)

const (
	uinputMaxNameSize = 80
	absCnt            = 64
	busUSB            = 0x03
	deviceName        = "keyremap-virtual-keyboard"
)

// Device is the open /dev/uinput character device backing the synthetic
// keyboard.
type Device struct {
	fd int
}

// Open creates and registers the virtual device with the kernel. An
// access error (EACCES/EPERM) opening the node is reported as
// keyremaperr.ErrPermissionDenied; any other failure — opening the node,
// an ioctl, the device-descriptor write, or UI_DEV_CREATE — is reported
// as keyremaperr.ErrInit (spec.md §7).
func Open() (*Device, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if err == unix.EACCES || err == unix.EPERM {
			return nil, fmt.Errorf("%w: opening /dev/uinput: %v", keyremaperr.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: opening /dev/uinput: %v", keyremaperr.ErrInit, err)
	}

	d := &Device{fd: fd}
	if err := d.setup(); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return d, nil
}

func (d *Device) ioctlSetInt(req uint, val int) error {
	if err := unix.IoctlSetInt(d.fd, req, val); err != nil {
		return fmt.Errorf("%w: ioctl %#x(%d): %v", keyremaperr.ErrInit, req, val, err)
	}
	return nil
}

func (d *Device) setup() error {
	if err := d.ioctlSetInt(uiSetEvBit, evKey); err != nil {
		return err
	}
	if err := d.ioctlSetInt(uiSetEvBit, evRel); err != nil {
		return err
	}
	if err := d.ioctlSetInt(uiSetEvBit, evSyn); err != nil {
		return err
	}
	for key := 0; key <= 255; key++ {
		if err := d.ioctlSetInt(uiSetKeyBit, key); err != nil {
			return err
		}
	}
	for _, btn := range []int{btnMouse, btnLeft, btnRight, btnMiddle, btnForward, btnBack, btnTouch} {
		if err := d.ioctlSetInt(uiSetKeyBit, btn); err != nil {
			return err
		}
	}
	for _, rel := range []int{relX, relY, relWheel} {
		if err := d.ioctlSetInt(uiSetRelBit, rel); err != nil {
			return err
		}
	}

	desc := buildUinputUserDev()
	n, err := unix.Write(d.fd, desc)
	if err != nil || n != len(desc) {
		return fmt.Errorf("%w: writing uinput_user_dev: %v", keyremaperr.ErrInit, err)
	}

	if err := d.ioctlSetInt(uiDevCreate, 0); err != nil {
		return err
	}
	return nil
}

// buildUinputUserDev encodes the legacy struct uinput_user_dev: a
// name[80], an 8-byte input_id, a 4-byte ff_effects_max, and four
// [64]int32 axis tables, 1116 bytes total.
func buildUinputUserDev() []byte {
	buf := make([]byte, uinputMaxNameSize+8+4+4*absCnt*4)
	copy(buf[:uinputMaxNameSize], deviceName)

	idOff := uinputMaxNameSize
	binary.LittleEndian.PutUint16(buf[idOff:idOff+2], busUSB)   // bustype
	binary.LittleEndian.PutUint16(buf[idOff+2:idOff+4], 0x1)    // vendor
	binary.LittleEndian.PutUint16(buf[idOff+4:idOff+6], 0x1)    // product
	binary.LittleEndian.PutUint16(buf[idOff+6:idOff+8], 0x1)    // version
	// ff_effects_max and the four axis tables are left zeroed: this
	// sink advertises no absolute axes.
	return buf
}

// Consume writes buf to the virtual device in a single best-effort
// write(2) call, matching the original sink's "fire and forget" contract
// (spec.md §4.B): the remap engine forwards whole packets, and a short
// or failed write here never blocks or retries.
func (d *Device) Consume(buf []byte) {
	_, _ = unix.Write(d.fd, buf)
}

// Close destroys the virtual device and releases the file descriptor.
func (d *Device) Close() error {
	_ = d.ioctlSetInt(uiDevDestroy, 0)
	return unix.Close(d.fd)
}
