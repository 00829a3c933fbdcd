package bdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirClonePathsNonSnapshot(t *testing.T) {
	orig := &Instance{Kind: KindDir, Source: "/var/lib/lxc/c1/rootfs", Target: "/var/lib/lxc/c1/rootfs"}
	newInst := &Instance{Kind: KindDir}

	d := &dirDriver{}
	params := CloneParams{OldName: "c1", NewName: "c2", OldRoot: "/var/lib/lxc", NewRoot: "/var/lib/lxc"}

	require.NoError(t, d.ClonePaths(orig, newInst, params))
	assert.Equal(t, "/var/lib/lxc/c2/rootfs", newInst.Source)
	assert.Equal(t, "/var/lib/lxc/c2/rootfs", newInst.Target)
}

func TestDirClonePathsRejectsSnapshot(t *testing.T) {
	orig := &Instance{Kind: KindDir, Source: "/var/lib/lxc/c1/rootfs", Target: "/var/lib/lxc/c1/rootfs"}
	newInst := &Instance{Kind: KindDir}

	d := &dirDriver{}
	params := CloneParams{OldName: "c1", NewName: "c2", OldRoot: "/var/lib/lxc", NewRoot: "/var/lib/lxc", Snapshot: true}

	err := d.ClonePaths(orig, newInst, params)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestDirMountRejectsWrongKind(t *testing.T) {
	d := &dirDriver{}
	inst := &Instance{Kind: KindZFS, Source: "/a", Target: "/b"}

	err := d.Mount(inst)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDirDetectPrefix(t *testing.T) {
	d := &dirDriver{}
	assert.True(t, d.Detect("dir:/does/not/need/to/exist"))
	assert.False(t, d.Detect("/definitely/does/not/exist/xyz123"))
}
