package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uplg/keyremap/internal/keycodes"
)

// packet builds the raw bytes for a single EV_KEY press/release followed
// by its EV_SYN marker, matching the (KEY,code,value),(SYN,0,0) pairs
// used throughout spec.md's worked examples.
func packet(code keycodes.Code, value int32) []byte {
	buf := make([]byte, 2*EventSize)
	Encode(Event{Type: uint16(EVKey), Code: code, Value: value}, buf[:EventSize])
	Encode(Event{Type: uint16(EVSyn)}, buf[EventSize:])
	return buf
}

func decodeCode(t *testing.T, buf []byte) keycodes.Code {
	t.Helper()
	ev, err := Decode(buf[:EventSize])
	require.NoError(t, err)
	return ev.Code
}

func TestIdentity(t *testing.T) {
	e, err := New(KeymapConfig{})
	require.NoError(t, err)

	var forwarded [][]byte
	raw := append(append([]byte{}, packet(keycodes.A, 1)...), packet(keycodes.A, 0)...)
	e.OnKeystroke(raw, func(p []byte) {
		forwarded = append(forwarded, append([]byte{}, p...))
	})

	require.Len(t, forwarded, 2)
	assert.Equal(t, keycodes.A, decodeCode(t, forwarded[0]))
	assert.Equal(t, keycodes.A, decodeCode(t, forwarded[1]))
}

func TestBaseRemap(t *testing.T) {
	e, err := New(KeymapConfig{Map: map[keycodes.Code]keycodes.Code{keycodes.A: keycodes.B}})
	require.NoError(t, err)

	var forwarded [][]byte
	raw := append(append([]byte{}, packet(keycodes.A, 1)...), packet(keycodes.A, 0)...)
	e.OnKeystroke(raw, func(p []byte) {
		forwarded = append(forwarded, append([]byte{}, p...))
	})

	require.Len(t, forwarded, 2)
	assert.Equal(t, keycodes.B, decodeCode(t, forwarded[0]))
	assert.Equal(t, keycodes.B, decodeCode(t, forwarded[1]))
}

func TestLayerActivationConsumesPress(t *testing.T) {
	e, err := New(KeymapConfig{
		Layers: map[keycodes.Code]map[keycodes.Code]keycodes.Code{
			keycodes.CapsLock: {keycodes.H: keycodes.Left},
		},
	})
	require.NoError(t, err)

	var forwarded [][]byte
	record := func(c keycodes.Code, v int32) []byte { return packet(c, v) }
	raw := append([]byte{}, record(keycodes.CapsLock, 1)...)
	raw = append(raw, record(keycodes.H, 1)...)
	raw = append(raw, record(keycodes.H, 0)...)
	raw = append(raw, record(keycodes.CapsLock, 0)...)

	e.OnKeystroke(raw, func(p []byte) {
		forwarded = append(forwarded, append([]byte{}, p...))
	})

	require.Len(t, forwarded, 2)
	assert.Equal(t, keycodes.Left, decodeCode(t, forwarded[0]))
	assert.Equal(t, keycodes.Left, decodeCode(t, forwarded[1]))
}

func TestReleaseAfterLayerDeactivated(t *testing.T) {
	e, err := New(KeymapConfig{
		Layers: map[keycodes.Code]map[keycodes.Code]keycodes.Code{
			keycodes.CapsLock: {keycodes.H: keycodes.Left},
		},
	})
	require.NoError(t, err)

	var forwarded [][]byte
	record := func(c keycodes.Code, v int32) []byte { return packet(c, v) }
	raw := append([]byte{}, record(keycodes.CapsLock, 1)...)
	raw = append(raw, record(keycodes.H, 1)...)
	raw = append(raw, record(keycodes.CapsLock, 0)...)
	raw = append(raw, record(keycodes.H, 0)...)

	e.OnKeystroke(raw, func(p []byte) {
		forwarded = append(forwarded, append([]byte{}, p...))
	})

	require.Len(t, forwarded, 2)
	assert.Equal(t, keycodes.Left, decodeCode(t, forwarded[0]))
	assert.Equal(t, keycodes.Left, decodeCode(t, forwarded[1]))
}
