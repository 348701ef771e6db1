// Package config loads and validates the keymap configuration document
// (spec.md §6): a JSON object naming a base remap, a set of layers, and
// the keyboard device names to grab.
package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/uplg/keyremap/internal/keycodes"
	"github.com/uplg/keyremap/internal/keyremaperr"
)

// raw mirrors the JSON document exactly, including DisallowUnknownFields
// enforcement of "extra top-level keys... rejected" (spec.md §6).
type raw struct {
	Map           map[string]string            `json:"map"`
	Layers        map[string]map[string]string `json:"layers"`
	KeyboardNames []string                     `json:"keyboardNames"`
}

// Config is the validated, code-resolved form of the keymap document.
// Map and Layers are keyed by resolved source Code so the remap engine
// never re-parses names.
type Config struct {
	Map           map[keycodes.Code]keycodes.Code
	Layers        map[keycodes.Code]map[keycodes.Code]keycodes.Code
	KeyboardNames []string
}

// Load reads and validates the configuration document at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", keyremaperr.ErrConfig, path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var r raw
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", keyremaperr.ErrConfig, path, err)
	}

	return resolve(&r)
}

func resolve(r *raw) (*Config, error) {
	if len(r.KeyboardNames) == 0 {
		return nil, fmt.Errorf("%w: keyboardNames must be non-empty", keyremaperr.ErrConfig)
	}

	cfg := &Config{
		Map:           make(map[keycodes.Code]keycodes.Code, len(r.Map)),
		Layers:        make(map[keycodes.Code]map[keycodes.Code]keycodes.Code, len(r.Layers)),
		KeyboardNames: r.KeyboardNames,
	}

	for from, to := range r.Map {
		fromCode, ok := keycodes.CodeOf(from)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key name %q in map", keyremaperr.ErrConfig, from)
		}
		toCode, ok := keycodes.CodeOf(to)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key name %q in map", keyremaperr.ErrConfig, to)
		}
		cfg.Map[fromCode] = toCode
	}

	for modifierName, inner := range r.Layers {
		modifierCode, ok := keycodes.CodeOf(modifierName)
		if !ok {
			return nil, fmt.Errorf("%w: unknown layer modifier name %q", keyremaperr.ErrConfig, modifierName)
		}
		layer := make(map[keycodes.Code]keycodes.Code, len(inner))
		for from, to := range inner {
			fromCode, ok := keycodes.CodeOf(from)
			if !ok {
				return nil, fmt.Errorf("%w: unknown key name %q in layer %q", keyremaperr.ErrConfig, from, modifierName)
			}
			toCode, ok := keycodes.CodeOf(to)
			if !ok {
				return nil, fmt.Errorf("%w: unknown key name %q in layer %q", keyremaperr.ErrConfig, to, modifierName)
			}
			layer[fromCode] = toCode
		}
		cfg.Layers[modifierCode] = layer
	}

	return cfg, nil
}
