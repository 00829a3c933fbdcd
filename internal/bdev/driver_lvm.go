package bdev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// defaultVG is the volume group new LVM instances are created in when the
// origin is not itself LVM-backed.
const defaultVG = "lxc"

const (
	defaultLVSize = 1 << 30 // 1 GB
	defaultFSType = "ext3"
)

// lvmDriver backs an LVM logical volume. Provisioning shells out to
// lvcreate(8)/mkfs(8); size and fstype discovery use BLKGETSIZE64 and the
// fstype prober respectively when the origin is itself a block device.
type lvmDriver struct{}

func (d *lvmDriver) Name() Kind { return KindLVM }

// Detect reports true if source is prefixed "lvm:" or is a block device
// whose sysfs dm/uuid entry begins with "LVM-".
func (d *lvmDriver) Detect(source string) bool {
	if strings.HasPrefix(source, "lvm:") {
		return true
	}

	return isLVMBlockDevice(source)
}

func isLVMBlockDevice(path string) bool {
	major, minor, ok := blockDeviceNumbers(path)
	if !ok {
		return false
	}

	uuidPath := fmt.Sprintf("/sys/dev/block/%d:%d/dm/uuid", major, minor)

	data, err := os.ReadFile(uuidPath)
	if err != nil {
		return false
	}

	return strings.HasPrefix(string(data), "LVM-")
}

// blockDeviceNumbers stats path and, if it is a block device, returns its
// major/minor device numbers.
func blockDeviceNumbers(path string) (major, minor uint32, ok bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, false
	}

	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return 0, 0, false
	}

	dev := uint64(st.Rdev)
	return uint32(unix.Major(dev)), uint32(unix.Minor(dev)), true
}

func (d *lvmDriver) Mount(inst *Instance) error {
	if inst.Kind != KindLVM || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := os.MkdirAll(inst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", inst.Target, err)
	}

	if err := mountFirstCandidate(inst.Source, inst.Target, 0); err != nil {
		return fmt.Errorf("mount LV %s: %w", inst.Source, err)
	}

	return nil
}

func (d *lvmDriver) Unmount(inst *Instance) error {
	if inst.Kind != KindLVM || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := unix.Unmount(inst.Target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", inst.Target, err)
	}

	return nil
}

// ClonePaths provisions a new logical volume (fresh or snapshot) and, for
// fresh volumes, formats it with the origin's probed fstype (block-backed
// origins) or ext3 (all others). Snapshot volumes are not formatted.
func (d *lvmDriver) ClonePaths(orig, newInst *Instance, p CloneParams) error {
	ctx := context.Background()

	originIsLVM := orig.Kind == KindLVM

	if !originIsLVM && p.Snapshot {
		return fmt.Errorf("%w: cannot snapshot a non-LVM origin onto LVM", ErrUnsupported)
	}

	if originIsLVM {
		newInst.Source = RewritePath(orig.Source, p.OldName, p.NewName, p.OldRoot, p.NewRoot)
	} else {
		newInst.Source = fmt.Sprintf("/dev/%s/%s", defaultVG, p.NewName)
	}

	newInst.Target = filepath.Join(p.NewRoot, p.NewName, "rootfs")
	if err := os.MkdirAll(newInst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", newInst.Target, err)
	}

	_, _, originIsBlock := blockDeviceNumbers(orig.Source)

	size := p.NewSize
	if size == 0 {
		size = defaultLVSize
		if originIsBlock {
			if s, err := blockDeviceSize(orig.Source); err == nil {
				size = s
			}
		}
	}

	fstype := defaultFSType
	if originIsBlock {
		if probed, err := ProbeFSType(orig.Source, newInst.Target); err == nil {
			fstype = probed
		}
	}

	megabytes := strconv.FormatUint(size/1_000_000, 10)

	if p.Snapshot {
		lv := filepath.Base(newInst.Source)

		if _, err := runCommand(ctx, "lvcreate", "-s", "-L"+megabytes, "-n", lv, orig.Source); err != nil {
			return fmt.Errorf("lvcreate snapshot %s: %w", lv, err)
		}

		return nil
	}

	vg, lv, err := parseLVPath(newInst.Source)
	if err != nil {
		return err
	}

	if _, err := runCommand(ctx, "lvcreate", "-L"+megabytes, vg, "-n", lv); err != nil {
		return fmt.Errorf("lvcreate %s/%s: %w", vg, lv, err)
	}

	if _, err := runCommand(ctx, "mkfs", "-t", fstype, newInst.Source); err != nil {
		return fmt.Errorf("mkfs -t %s %s: %w", fstype, newInst.Source, err)
	}

	return nil
}

// blockDeviceSize opens path read-only and issues BLKGETSIZE64. The
// original C source checked `if (!fd)` after open(), which only catches a
// zero file descriptor (stdin) rather than a real open failure; this
// reimplementation checks the error from open(2) directly, as it should.
func blockDeviceSize(path string) (uint64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	size, err := unix.IoctlGetUint64(fd, unix.BLKGETSIZE64)
	if err != nil {
		return 0, fmt.Errorf("BLKGETSIZE64 %s: %w", path, err)
	}

	return size, nil
}

// parseLVPath parses "/dev/<vg>/<lv>" into its volume group and logical
// volume name components.
func parseLVPath(devicePath string) (vg, lv string, err error) {
	trimmed := strings.TrimPrefix(devicePath, "/dev/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: malformed LVM device path %q", ErrInvalidArgument, devicePath)
	}

	return parts[0], parts[1], nil
}
