// Package remap implements the layer-based key remap engine (spec.md
// §4.C): given a configured key-name map and a set of layer-modifier
// overrides, it rewrites EV_KEY codes in incoming raw event packets and
// forwards whole, unmodified-shape packets to a sink.
//
// A packet is the run of events up to and including the next EV_SYN
// record; packets are forwarded atomically — either every event in the
// packet is written to the sink, or none are (spec.md §4.C, §5).
package remap

import (
	"fmt"

	"github.com/uplg/keyremap/internal/keycodes"
	"github.com/uplg/keyremap/internal/keyremaperr"
)

// CodeMap is a dense array indexed by source code, identity by default.
type CodeMap [keycodes.MaxKeycode + 1]keycodes.Code

func identityMap() CodeMap {
	var m CodeMap
	for i := range m {
		m[i] = keycodes.Code(i)
	}
	return m
}

// KeymapConfig is the subset of config.Config the engine consumes,
// already resolved to codes. Kept separate from internal/config so this
// package has no import-cycle risk and can be unit-tested with literal
// maps.
type KeymapConfig struct {
	Map    map[keycodes.Code]keycodes.Code
	Layers map[keycodes.Code]map[keycodes.Code]keycodes.Code
}

// Engine holds the remap state; the grab manager shares one Engine, and
// so one current layer, across every grabbed keyboard. It is not safe for concurrent
// use; the reactor dispatches to it from a single goroutine (spec.md
// §5, "single-threaded").
type Engine struct {
	layers       map[keycodes.Code]CodeMap
	pressedLayer CodeMap
	currentLayer keycodes.Code
}

// New builds an Engine from a validated configuration. Every configured
// name must already have been resolved to a Code (internal/config does
// this); New itself only assembles the dense per-layer tables, so it
// cannot fail on well-formed input — malformed configuration is caught
// earlier and reported as keyremaperr.ErrConfig by internal/config.
func New(cfg KeymapConfig) (*Engine, error) {
	base := identityMap()
	for from, to := range cfg.Map {
		if int(from) > keycodes.MaxKeycode || int(to) > keycodes.MaxKeycode {
			return nil, fmt.Errorf("%w: code out of range", keyremaperr.ErrConfig)
		}
		base[from] = to
	}

	e := &Engine{
		layers:       make(map[keycodes.Code]CodeMap, len(cfg.Layers)+1),
		currentLayer: keycodes.Ignored,
	}

	for modifier, inner := range cfg.Layers {
		if int(modifier) > keycodes.MaxKeycode {
			return nil, fmt.Errorf("%w: layer modifier code out of range", keyremaperr.ErrConfig)
		}
		// A layer modifier produces no output of its own; it only
		// switches layers (spec.md §4.C).
		base[modifier] = keycodes.Ignored

		layer := identityMap()
		for from, to := range inner {
			if int(from) > keycodes.MaxKeycode || int(to) > keycodes.MaxKeycode {
				return nil, fmt.Errorf("%w: code out of range", keyremaperr.ErrConfig)
			}
			layer[from] = to
		}
		e.layers[modifier] = layer
	}
	e.layers[keycodes.Ignored] = base

	return e, nil
}

// mapKeystroke applies the layer algorithm to every EV_KEY record in a
// single packet's raw bytes, rewriting codes in place. It reports
// whether the packet should be forwarded at all: a layer
// activation/deactivation keystroke is always escaped (dropped).
//
// This mirrors, event for event, the reference map_keystroke: on
// release of the currently active layer modifier, deactivate and drop;
// on press of a code the active layer maps to Ignored, activate that
// code as the new layer and drop; otherwise record the layer active at
// press time, and on release translate using the layer that was active
// when the key went down (so a layer switch mid-chord doesn't corrupt
// the matching release).
func (e *Engine) mapKeystroke(packet []byte) bool {
	forward := true
	for off := 0; off+EventSize <= len(packet); off += EventSize {
		rec := packet[off : off+EventSize]
		ev, _ := Decode(rec)
		if ev.Type != uint16(EVKey) {
			continue
		}

		key := ev.Code
		if int(key) > keycodes.MaxKeycode {
			continue
		}
		released := ev.Value == 0
		pressed := !released

		if released && e.currentLayer == key {
			e.currentLayer = keycodes.Ignored
			forward = false
			continue
		}

		if pressed && e.layers[e.currentLayer][key] == keycodes.Ignored {
			e.currentLayer = key
			forward = false
			continue
		}

		if pressed {
			e.pressedLayer[key] = e.currentLayer
		}

		var newCode keycodes.Code
		if released && e.pressedLayer[key] != e.currentLayer {
			newCode = e.layers[e.pressedLayer[key]][key]
		} else {
			newCode = e.layers[e.currentLayer][key]
		}
		PutCode(rec, newCode)
	}
	return forward
}

// OnKeystroke splits raw, a byte buffer of back-to-back raw input_event
// records, into EV_SYN-delimited packets and invokes forward with the
// (possibly code-rewritten) bytes of each packet that survives
// mapKeystroke. forward is called once per surviving packet, never with
// a partial packet.
func (e *Engine) OnKeystroke(raw []byte, forward func([]byte)) {
	start := 0
	for off := 0; off+EventSize <= len(raw); off += EventSize {
		rec := raw[off : off+EventSize]
		ev, _ := Decode(rec)
		if ev.Type != uint16(EVSyn) {
			continue
		}
		end := off + EventSize
		packet := raw[start:end]
		if e.mapKeystroke(packet) {
			forward(packet)
		}
		start = end
	}
}
