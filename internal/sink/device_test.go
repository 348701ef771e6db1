package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUinputUserDevLayout(t *testing.T) {
	buf := buildUinputUserDev()

	// name[80] + input_id[8] + ff_effects_max[4] + 4*absCnt*4 == 1116
	assert.Len(t, buf, 1116)

	name := string(buf[:len(deviceName)])
	assert.Equal(t, deviceName, name)
	for _, b := range buf[len(deviceName):uinputMaxNameSize] {
		assert.Zero(t, b, "name field must be zero-padded past the device name")
	}

	idOff := uinputMaxNameSize
	bustype := uint16(buf[idOff]) | uint16(buf[idOff+1])<<8
	assert.EqualValues(t, busUSB, bustype)
}
