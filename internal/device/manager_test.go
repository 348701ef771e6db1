package device

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uplg/keyremap/internal/keyremaperr"
)

// TestGrabRejectsDuplicatePath exercises grab()'s own already-grabbed
// check directly (spec.md §4.E: "grabbing is idempotent... raises
// DuplicateGrab"), independent of refresh()'s pre-filtering, since
// refresh never calls grab on a path it already tracks.
func TestGrabRejectsDuplicatePath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := NewManager(nil, nil, nil, logger)
	m.grabbed["/dev/input/event0"] = &Keyboard{}

	err := m.grab("/dev/input/event0")
	assert.True(t, errors.Is(err, keyremaperr.ErrDuplicateGrab))
}
