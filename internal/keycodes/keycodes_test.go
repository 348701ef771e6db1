package keycodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfAndNameOfRoundTrip(t *testing.T) {
	code, ok := CodeOf("capslock")
	assert.True(t, ok)
	assert.Equal(t, CapsLock, code)
	assert.Equal(t, "capslock", NameOf(code))
}

func TestCodeOfUnknownName(t *testing.T) {
	_, ok := CodeOf("notakey")
	assert.False(t, ok)
}

func TestNameOfUnknownCode(t *testing.T) {
	assert.Equal(t, "?", NameOf(Code(250)))
}

func TestIgnoredIsZero(t *testing.T) {
	assert.EqualValues(t, 0, Ignored)
}
