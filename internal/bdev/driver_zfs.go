package bdev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// zfsDriver backs a ZFS dataset. Its mount/unmount are plain recursive binds
// of the already-mounted dataset; provisioning (create/snapshot/clone) goes
// through the zfs(8) CLI, the only supported interface to the kernel module.
type zfsDriver struct{}

func (d *zfsDriver) Name() Kind { return KindZFS }

// Detect reports true if `zfs list` has a line whose text includes source.
func (d *zfsDriver) Detect(source string) bool {
	out, err := runCommand(context.Background(), "zfs", "list")
	if err != nil {
		return false
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, source) {
			return true
		}
	}

	return false
}

func (d *zfsDriver) Mount(inst *Instance) error {
	if inst.Kind != KindZFS || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := os.MkdirAll(inst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", inst.Target, err)
	}

	if err := unix.Mount(inst.Source, inst.Target, "none", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount dataset %s to %s: %w", inst.Source, inst.Target, err)
	}

	return nil
}

func (d *zfsDriver) Unmount(inst *Instance) error {
	if inst.Kind != KindZFS || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := unix.Unmount(inst.Target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", inst.Target, err)
	}

	return nil
}

// ClonePaths computes the destination mountpoint and the zpool the origin
// dataset lives in (by parsing `zfs list` output), then either creates a
// fresh dataset or performs a destroy-stale/snapshot/clone sequence.
func (d *zfsDriver) ClonePaths(orig, newInst *Instance, p CloneParams) error {
	ctx := context.Background()

	newInst.Target = filepath.Join(p.NewRoot, p.NewName, "rootfs")

	zpool, err := zfsPoolRoot(ctx, orig.Source)
	if err != nil {
		return err
	}

	mountOpt := fmt.Sprintf("-omountpoint=%s", newInst.Target)

	if !p.Snapshot {
		dataset := fmt.Sprintf("%s/%s", zpool, p.NewName)

		if _, err := runCommand(ctx, "zfs", "create", mountOpt, dataset); err != nil {
			return fmt.Errorf("zfs create %s: %w", dataset, err)
		}

		newInst.Source = dataset
		return nil
	}

	snap := fmt.Sprintf("%s/%s@%s", zpool, p.OldName, p.NewName)
	dataset := fmt.Sprintf("%s/%s", zpool, p.NewName)

	// Best-effort: a stale snapshot from a previous failed attempt must
	// not block this one. Failure here is tolerated; anything after this
	// point is fatal.
	_, _ = runCommand(ctx, "zfs", "destroy", snap)

	if _, err := runCommand(ctx, "zfs", "snapshot", snap); err != nil {
		return fmt.Errorf("zfs snapshot %s: %w", snap, err)
	}

	if _, err := runCommand(ctx, "zfs", "clone", mountOpt, snap, dataset); err != nil {
		return fmt.Errorf("zfs clone %s to %s: %w", snap, dataset, err)
	}

	newInst.Source = dataset
	return nil
}

// zfsPoolRoot derives the zpool a dataset belongs to by matching origin's
// line in `zfs list`, taking the first whitespace-delimited field (the
// dataset name), and stripping its trailing "/<component>".
func zfsPoolRoot(ctx context.Context, origin string) (string, error) {
	out, err := runCommand(ctx, "zfs", "list")
	if err != nil {
		return "", fmt.Errorf("zfs list: %w", err)
	}

	return parseZfsListRoot(out, origin)
}

// parseZfsListRoot is the pure parsing half of zfsPoolRoot, split out so it
// can be exercised without a zfs(8) binary.
func parseZfsListRoot(out, origin string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, origin) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name := fields[0]
		idx := strings.LastIndex(name, "/")
		if idx < 0 {
			return name, nil
		}

		return name[:idx], nil
	}

	return "", fmt.Errorf("%w: origin %q not found in zfs list", ErrNotFound, origin)
}
