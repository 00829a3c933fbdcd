package bdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBtrfsIoctlRequestNumbers checks the _IOW/_IOWR encoding against the
// known kernel constants for BTRFS_IOC_SUBVOL_CREATE (14),
// BTRFS_IOC_SNAP_CREATE_V2 (23), and BTRFS_IOC_SPACE_INFO (20) documented
// in spec §6.
func TestBtrfsIoctlRequestNumbers(t *testing.T) {
	assert.Equal(t, uintptr(btrfsIoctlMagic), (btrfsIocSubvolCreate>>iocTypeShift)&0xff)
	assert.Equal(t, uintptr(14), (btrfsIocSubvolCreate>>iocNrShift)&0xff)

	assert.Equal(t, uintptr(btrfsIoctlMagic), (btrfsIocSnapCreateV2>>iocTypeShift)&0xff)
	assert.Equal(t, uintptr(23), (btrfsIocSnapCreateV2>>iocNrShift)&0xff)

	assert.Equal(t, uintptr(btrfsIoctlMagic), (btrfsIocSpaceInfo>>iocTypeShift)&0xff)
	assert.Equal(t, uintptr(20), (btrfsIocSpaceInfo>>iocNrShift)&0xff)
}

func TestBtrfsNameFieldSizes(t *testing.T) {
	assert.Equal(t, 4040, len(btrfsIoctlVolArgsV2{}.Name))
	assert.Equal(t, 4088, len(btrfsIoctlVolArgs{}.Name))
}
