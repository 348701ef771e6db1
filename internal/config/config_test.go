package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uplg/keyremap/internal/keycodes"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keymap.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"map": {"A": "B"},
		"layers": {"CAPSLOCK": {"H": "LEFT"}},
		"keyboardNames": ["My Keyboard"]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, keycodes.B, cfg.Map[keycodes.A])
	assert.Equal(t, keycodes.Left, cfg.Layers[keycodes.CapsLock][keycodes.H])
	assert.Equal(t, []string{"My Keyboard"}, cfg.KeyboardNames)
}

func TestLoadRejectsUnknownKeyName(t *testing.T) {
	path := writeConfig(t, `{"map": {"NOTAKEY": "B"}, "layers": {}, "keyboardNames": ["K"]}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEmptyKeyboardNames(t *testing.T) {
	path := writeConfig(t, `{"map": {}, "layers": {}, "keyboardNames": []}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsExtraTopLevelKeys(t *testing.T) {
	path := writeConfig(t, `{"map": {}, "layers": {}, "keyboardNames": ["K"], "extra": true}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDefaultsMapAndLayers(t *testing.T) {
	path := writeConfig(t, `{"keyboardNames": ["K"]}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Map)
	assert.Empty(t, cfg.Layers)
}
