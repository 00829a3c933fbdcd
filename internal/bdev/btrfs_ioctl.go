package bdev

import "unsafe"

// Raw btrfs ioctl structure layouts, kept separate from driver_btrfs.go so
// the kernel ABI definitions are easy to audit against
// linux/btrfs.h/linux/btrfs_tree.h.
//
// Deliberately not reproduced: the original C implementation of
// subvolume-create wrote a diagnostic record to /tmp/a on every call. That
// was debugging residue, not behavior, and has no place here.

const (
	btrfsSubvolNameMax = 4039
	btrfsPathNameMax   = 4087

	btrfsIoctlMagic = 0x94
)

// _IOW/_IOWR request-number construction, matching <asm-generic/ioctl.h>.
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNrShift) | (size << iocSizeShift)
}

func iow(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

func iowr(typ, nr, size uintptr) uintptr {
	return ioc(iocRead|iocWrite, typ, nr, size)
}

// btrfsIoctlVolArgs mirrors struct btrfs_ioctl_vol_args, used by
// BTRFS_IOC_SUBVOL_CREATE (and the plain, non-V2 snapshot ioctl this
// package does not use).
type btrfsIoctlVolArgs struct {
	Fd   int64
	Name [btrfsPathNameMax + 1]byte
}

// btrfsIoctlVolArgsV2 mirrors struct btrfs_ioctl_vol_args_v2, used by
// BTRFS_IOC_SNAP_CREATE_V2. The kernel struct has a size/qgroup_inherit
// union between flags and name; that union is unnamed padding of the same
// size here. This package sets only Fd and Name; Transid and Flags stay zero.
type btrfsIoctlVolArgsV2 struct {
	Fd      int64
	Transid uint64
	Flags   uint64
	_       [4]uint64 // union { {size uint64; qgroupInherit *void}; unused[4] }
	Name    [btrfsSubvolNameMax + 1]byte
}

// btrfsIoctlSpaceArgs mirrors struct btrfs_ioctl_space_args, used by
// BTRFS_IOC_SPACE_INFO. This package only probes for success, so
// SpaceSlots stays zero (request a count, not the full space array).
type btrfsIoctlSpaceArgs struct {
	SpaceSlots  uint64
	TotalSpaces uint64
}

var (
	btrfsIocSubvolCreate = iow(btrfsIoctlMagic, 14, unsafe.Sizeof(btrfsIoctlVolArgs{}))
	btrfsIocSnapCreateV2 = iow(btrfsIoctlMagic, 23, unsafe.Sizeof(btrfsIoctlVolArgsV2{}))
	btrfsIocSpaceInfo    = iowr(btrfsIoctlMagic, 20, unsafe.Sizeof(btrfsIoctlSpaceArgs{}))
)
