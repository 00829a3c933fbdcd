package bdev

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitOverlaySource(t *testing.T) {
	lower, upper, err := splitOverlaySource("overlayfs:/var/lib/lxc/c1/rootfs:/var/lib/lxc/c2/delta0")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lxc/c1/rootfs", lower)
	assert.Equal(t, "/var/lib/lxc/c2/delta0", upper)
}

func TestSplitOverlaySourceMalformed(t *testing.T) {
	_, _, err := splitOverlaySource("overlayfs:onlylower")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDeltaPathFor(t *testing.T) {
	assert.Equal(t, "/var/lib/lxc/c2/delta0", deltaPathFor("/var/lib/lxc/c2/rootfs"))
}

func TestOverlayDetectPrefix(t *testing.T) {
	d := &overlayDriver{}
	assert.True(t, d.Detect("overlayfs:/a:/b"))
	assert.False(t, d.Detect("/a/b"))
}

func TestOverlayClonePathsRejectsNonSnapshot(t *testing.T) {
	d := &overlayDriver{}
	orig := &Instance{Kind: KindDir, Source: "/var/lib/lxc/c1/rootfs", Target: "/var/lib/lxc/c1/rootfs"}
	newInst := &Instance{Kind: KindOverlayFS}

	err := d.ClonePaths(orig, newInst, CloneParams{OldName: "c1", NewName: "c2", Snapshot: false})
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestOverlayClonePathsFromDir(t *testing.T) {
	d := &overlayDriver{}
	root := t.TempDir()

	orig := &Instance{Kind: KindDir, Source: filepath.Join(root, "c1", "rootfs"), Target: filepath.Join(root, "c1", "rootfs")}
	newInst := &Instance{Kind: KindOverlayFS}

	err := d.ClonePaths(orig, newInst, CloneParams{OldName: "c1", NewName: "c2", OldRoot: root, NewRoot: root, Snapshot: true})
	require.NoError(t, err)

	wantTarget := filepath.Join(root, "c2", "rootfs")
	wantDelta := filepath.Join(root, "c2", "delta0")
	assert.Equal(t, wantTarget, newInst.Target)
	assert.Equal(t, overlayPrefix+orig.Source+":"+wantDelta, newInst.Source)
	assert.DirExists(t, wantDelta)
}

func TestOverlayClonePathsRejectsLVMOrigin(t *testing.T) {
	d := &overlayDriver{}
	root := t.TempDir()
	orig := &Instance{Kind: KindLVM, Source: "/dev/lxc/c1", Target: "/var/lib/lxc/c1/rootfs"}
	newInst := &Instance{Kind: KindOverlayFS}

	err := d.ClonePaths(orig, newInst, CloneParams{OldName: "c1", NewName: "c2", OldRoot: root, NewRoot: root, Snapshot: true})
	assert.True(t, errors.Is(err, ErrUnsupported))
}
