// Package keyremaperr defines the sentinel error taxonomy shared across
// components (spec.md §7).
package keyremaperr

import "errors"

var (
	// ErrConfig marks a malformed configuration: unknown key name, empty
	// keyboard list, or extra top-level keys.
	ErrConfig = errors.New("config error")

	// ErrInit marks a failure constructing a component at startup: the
	// uinput device could not be created, no devices could be enumerated,
	// etc.
	ErrInit = errors.New("initialization failure")

	// ErrGrabContended marks a device already held by another process.
	ErrGrabContended = errors.New("grab contended")

	// ErrDuplicateGrab marks an attempt to grab a device path already
	// tracked by the grab manager.
	ErrDuplicateGrab = errors.New("duplicate grab")

	// ErrPermissionDenied marks an operation rejected by the kernel for
	// lack of privilege (opening /dev/uinput, grabbing a device, etc).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidRead marks a short or malformed read from a device fd.
	ErrInvalidRead = errors.New("invalid read")

	// ErrInternal marks a condition that should be unreachable: a ready
	// fd with no registered subscriber, a corrupted table.
	ErrInternal = errors.New("internal error")
)
