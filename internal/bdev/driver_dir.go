package bdev

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// dirDriver backs a plain directory tree with a recursive bind mount. It is
// the catch-all kind: construct_by_probe tries it after zfs, lvm and btrfs
// (only the prefix-matched overlayfs driver comes later), since almost anything that exists on disk "is a directory" in
// some trivial sense.
type dirDriver struct{}

func (d *dirDriver) Name() Kind { return KindDir }

// Detect reports true if source is prefixed with "dir:" or is itself an
// existing directory.
func (d *dirDriver) Detect(source string) bool {
	if strings.HasPrefix(source, "dir:") {
		return true
	}

	fi, err := os.Stat(source)
	if err != nil {
		return false
	}

	return fi.IsDir()
}

func (d *dirDriver) Mount(inst *Instance) error {
	if inst.Kind != KindDir || inst.Incomplete() {
		return ErrInvalidArgument
	}

	source := strings.TrimPrefix(inst.Source, "dir:")

	if err := os.MkdirAll(inst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", inst.Target, err)
	}

	if err := unix.Mount(source, inst.Target, "none", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount %s to %s: %w", source, inst.Target, err)
	}

	return nil
}

func (d *dirDriver) Unmount(inst *Instance) error {
	if inst.Kind != KindDir || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := unix.Unmount(inst.Target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", inst.Target, err)
	}

	return nil
}

// ClonePaths rejects snapshot requests (plain directories cannot snapshot)
// and otherwise sets new.Source = new.Target = <newroot>/<newname>/rootfs.
func (d *dirDriver) ClonePaths(orig, newInst *Instance, p CloneParams) error {
	if p.Snapshot {
		return fmt.Errorf("%w: directories cannot be snapshotted", ErrUnsupported)
	}

	newInst.Target = filepath.Join(p.NewRoot, p.NewName, "rootfs")
	newInst.Source = newInst.Target

	return nil
}
