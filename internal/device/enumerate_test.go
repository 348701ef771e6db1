package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorString(t *testing.T) {
	d := Descriptor{Driver: "/dev/input/event3", Name: "My Keyboard"}
	assert.Equal(t, "Device( name='My Keyboard' driver='/dev/input/event3')", d.String())
}

func TestEvIOCGNameEncoding(t *testing.T) {
	// EVIOCGNAME(256) is a well-known constant: 0x81004506 on most
	// 64-bit kernels' ioctl ABI (_IOC_READ, 'E', 0x06, 256).
	assert.EqualValues(t, 0x81004506, evIOCGName(256))
}

func TestEvIOCGBitEncoding(t *testing.T) {
	// EVIOCGBIT(EV_KEY, 4) with EV_KEY=1.
	assert.EqualValues(t, iocEncode(iocRead, 'E', 0x20+1, 4), evIOCGBit(1, 4))
}
