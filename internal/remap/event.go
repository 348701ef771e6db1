package remap

import (
	"encoding/binary"
	"fmt"

	"github.com/uplg/keyremap/internal/keycodes"
)

// EventSize is sizeof(struct input_event) on a 64-bit Linux kernel: two
// 8-byte time fields (tv_sec, tv_usec) followed by type, code (uint16
// each) and value (int32).
const EventSize = 24

// Event types relevant to the remap engine (linux/input-event-codes.h).
const (
	EVSyn Code = 0
	EVKey Code = 1
)

// Code is shared by event type and event code fields; both are uint16 on
// the wire.
type Code = keycodes.Code

// Event mirrors struct input_event.
type Event struct {
	Sec, Usec int64
	Type      uint16
	Code      keycodes.Code
	Value     int32
}

// Decode parses a single raw event from buf, which must be exactly
// EventSize bytes.
func Decode(buf []byte) (Event, error) {
	if len(buf) != EventSize {
		return Event{}, fmt.Errorf("remap: short event read: %d bytes", len(buf))
	}
	var ev Event
	ev.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
	ev.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
	ev.Type = binary.LittleEndian.Uint16(buf[16:18])
	ev.Code = keycodes.Code(binary.LittleEndian.Uint16(buf[18:20]))
	ev.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))
	return ev, nil
}

// Encode writes ev into buf, which must be exactly EventSize bytes.
func Encode(ev Event, buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(ev.Sec))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ev.Usec))
	binary.LittleEndian.PutUint16(buf[16:18], ev.Type)
	binary.LittleEndian.PutUint16(buf[18:20], uint16(ev.Code))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(ev.Value))
}

// PutCode rewrites only the code field (bytes [18:20]) of a raw event
// record in place, leaving timestamp, type and value untouched. The
// engine uses this to rewrite a packet's bytes without a full
// decode/re-encode round trip.
func PutCode(buf []byte, code keycodes.Code) {
	binary.LittleEndian.PutUint16(buf[18:20], uint16(code))
}
