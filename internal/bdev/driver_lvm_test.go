package bdev

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLVPath(t *testing.T) {
	vg, lv, err := parseLVPath("/dev/lxc/c2")
	require.NoError(t, err)
	assert.Equal(t, "lxc", vg)
	assert.Equal(t, "c2", lv)
}

func TestParseLVPathMalformed(t *testing.T) {
	_, _, err := parseLVPath("/dev/onlyvg")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestLVMDetectPrefix(t *testing.T) {
	d := &lvmDriver{}
	assert.True(t, d.Detect("lvm:/dev/lxc/c1"))
	assert.False(t, d.Detect("/definitely/does/not/exist/xyz123"))
}

func TestLVMClonePathsRejectsCrossKindSnapshot(t *testing.T) {
	d := &lvmDriver{}
	orig := &Instance{Kind: KindDir, Source: "/var/lib/lxc/c1/rootfs", Target: "/var/lib/lxc/c1/rootfs"}
	newInst := &Instance{Kind: KindLVM}

	err := d.ClonePaths(orig, newInst, CloneParams{OldName: "c1", NewName: "c2", Snapshot: true})
	assert.True(t, errors.Is(err, ErrUnsupported))
}

// TestLVMMegabyteRounding checks the exact lvcreate -L arithmetic: decimal
// megabytes, size/1_000_000, matching the original's literal division.
func TestLVMMegabyteRounding(t *testing.T) {
	tests := []struct {
		sizeBytes uint64
		wantMB    uint64
	}{
		{1_000_000, 1},
		{1_000_000_000, 1000},
		{1 << 30, 1073}, // 1GiB truncates to 1073 decimal MB, not 1024
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantMB, tt.sizeBytes/1_000_000)
	}
}
