package bdev

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Sentinel errors returned by the package. Callers should use errors.Is
// rather than comparing driver-specific wrapped errors directly.
var (
	// ErrNotFound is returned when no registered driver claims a source.
	ErrNotFound = errors.New("bdev: no driver matches source")

	// ErrInvalidArgument is returned when a driver is invoked on a record
	// of the wrong kind, or required fields are missing.
	ErrInvalidArgument = errors.New("bdev: invalid argument")

	// ErrUnsupported is returned for combinations a driver explicitly
	// refuses: directory snapshots, overlayfs non-snapshot clones,
	// overlayfs-of-lvm, and cross-kind snapshots.
	ErrUnsupported = errors.New("bdev: unsupported operation")
)

// Errno recovers the old C-style numeric return code for callers that still
// expect the -EINVAL/-errno convention described in the storage layer this
// package replaces. It returns 0 for a nil error.
func Errno(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, ErrInvalidArgument) {
		return -int(unix.EINVAL)
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}

	return -1
}
