package bdev

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// btrfsDriver backs a btrfs subvolume, created and snapshotted directly
// through the kernel ioctl interface rather than shelling out to btrfs(8).
type btrfsDriver struct{}

func (d *btrfsDriver) Name() Kind { return KindBtrfs }

// btrfsSubvolRootInode is the fixed inode number every btrfs subvolume root
// carries.
const btrfsSubvolRootInode = 256

// Detect reports true if a BTRFS_IOC_SPACE_INFO ioctl on path succeeds and
// path stats as a directory with inode 256 (the subvolume root).
func (d *btrfsDriver) Detect(source string) bool {
	var st unix.Stat_t
	if err := unix.Stat(source, &st); err != nil {
		return false
	}

	if st.Mode&unix.S_IFMT != unix.S_IFDIR || st.Ino != btrfsSubvolRootInode {
		return false
	}

	f, err := os.Open(source)
	if err != nil {
		return false
	}
	defer f.Close()

	return btrfsSpaceInfo(int(f.Fd())) == nil
}

func (d *btrfsDriver) Mount(inst *Instance) error {
	if inst.Kind != KindBtrfs || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := os.MkdirAll(inst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", inst.Target, err)
	}

	if err := unix.Mount(inst.Source, inst.Target, "none", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount subvolume %s to %s: %w", inst.Source, inst.Target, err)
	}

	return nil
}

func (d *btrfsDriver) Unmount(inst *Instance) error {
	if inst.Kind != KindBtrfs || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := unix.Unmount(inst.Target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", inst.Target, err)
	}

	return nil
}

// ClonePaths creates a fresh subvolume (BTRFS_IOC_SUBVOL_CREATE) if the
// origin is not btrfs, or a snapshot/plain derivative of the origin's
// subvolume (BTRFS_IOC_SNAP_CREATE_V2, or the same create path) if it is.
func (d *btrfsDriver) ClonePaths(orig, newInst *Instance, p CloneParams) error {
	if orig.Kind != KindBtrfs {
		if p.Snapshot {
			return fmt.Errorf("%w: cannot snapshot a non-btrfs origin onto btrfs", ErrUnsupported)
		}

		newInst.Target = filepath.Join(p.NewRoot, p.NewName, "rootfs")
		newInst.Source = newInst.Target

		return btrfsCreateSubvolume(newInst.Target)
	}

	newInst.Source = RewritePath(orig.Source, p.OldName, p.NewName, p.OldRoot, p.NewRoot)
	newInst.Target = RewritePath(orig.Target, p.OldName, p.NewName, p.OldRoot, p.NewRoot)

	if p.Snapshot {
		return btrfsSnapshot(orig.Target, newInst.Target)
	}

	return btrfsCreateSubvolume(newInst.Target)
}

// btrfsCreateSubvolume issues BTRFS_IOC_SUBVOL_CREATE against target's
// parent directory. The ioctl refuses an already-existing directory, so a
// leftover empty target (e.g. from a previous failed attempt) is removed
// first; ENOENT is tolerated.
func btrfsCreateSubvolume(target string) error {
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale %s: %w", target, err)
	}

	parent := filepath.Dir(target)
	name := filepath.Base(target)

	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("create parent %s: %w", parent, err)
	}

	dirFd, err := unix.Open(parent, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", parent, err)
	}
	defer unix.Close(dirFd)

	var args btrfsIoctlVolArgs
	copy(args.Name[:], name)

	if err := btrfsIoctl(dirFd, btrfsIocSubvolCreate, unsafe.Pointer(&args)); err != nil {
		return fmt.Errorf("BTRFS_IOC_SUBVOL_CREATE %s: %w", target, err)
	}

	return nil
}

// btrfsSnapshot issues BTRFS_IOC_SNAP_CREATE_V2 against newTarget's parent
// directory, with fd set to an open handle on origTarget (the subvolume
// being snapshotted) and name set to newTarget's basename.
func btrfsSnapshot(origTarget, newTarget string) error {
	if err := os.Remove(newTarget); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale %s: %w", newTarget, err)
	}

	parent := filepath.Dir(newTarget)
	name := filepath.Base(newTarget)

	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("create parent %s: %w", parent, err)
	}

	dirFd, err := unix.Open(parent, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", parent, err)
	}
	defer unix.Close(dirFd)

	srcFd, err := unix.Open(origTarget, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open origin %s: %w", origTarget, err)
	}
	defer unix.Close(srcFd)

	var args btrfsIoctlVolArgsV2
	args.Fd = int64(srcFd)
	copy(args.Name[:], name)

	if err := btrfsIoctl(dirFd, btrfsIocSnapCreateV2, unsafe.Pointer(&args)); err != nil {
		return fmt.Errorf("BTRFS_IOC_SNAP_CREATE_V2 %s -> %s: %w", origTarget, newTarget, err)
	}

	return nil
}

func btrfsSpaceInfo(fd int) error {
	var args btrfsIoctlSpaceArgs
	return btrfsIoctl(fd, btrfsIocSpaceInfo, unsafe.Pointer(&args))
}

func btrfsIoctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}

	return nil
}
