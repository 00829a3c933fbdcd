package bdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCloneRejectsNameNotSubstring covers spec scenario 6: a source that
// does not contain oldname as a substring must be rejected immediately,
// before any driver is even probed.
func TestCloneRejectsNameNotSubstring(t *testing.T) {
	_, err := Clone(CloneRequest{
		Source:  "/srv/images/base",
		OldName: "c1",
		NewName: "c2",
		OldRoot: "/var/lib/lxc",
		NewRoot: "/var/lib/lxc",
	})

	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestCloneRejectsUnknownOverrideKind(t *testing.T) {
	_, err := Clone(CloneRequest{
		Source:       "dir:/var/lib/lxc/c1/rootfs",
		OldName:      "c1",
		NewName:      "c2",
		OldRoot:      "/var/lib/lxc",
		NewRoot:      "/var/lib/lxc",
		OverrideKind: Kind("not-a-real-kind"),
	})

	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestCloneDirSnapshotRejected covers spec scenario 2: requesting a
// snapshot of a directory origin fails at clone_paths, and Clone propagates
// that failure without leaking either record.
func TestCloneDirSnapshotRejected(t *testing.T) {
	_, err := Clone(CloneRequest{
		Source:   "dir:/var/lib/lxc/c1/rootfs",
		OldName:  "c1",
		NewName:  "c2",
		OldRoot:  "/var/lib/lxc",
		NewRoot:  "/var/lib/lxc",
		Snapshot: true,
	})

	assert.True(t, errors.Is(err, ErrUnsupported))
}
