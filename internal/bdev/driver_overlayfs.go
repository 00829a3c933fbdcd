package bdev

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// overlayPrefix is the compound source encoding: "overlayfs:<lower>:<upper>".
const overlayPrefix = "overlayfs:"

// overlayDriver backs a union mount of an immutable lower directory and a
// writable upper (delta) directory.
type overlayDriver struct{}

func (d *overlayDriver) Name() Kind { return KindOverlayFS }

// Detect reports true if source has the "overlayfs:" prefix.
func (d *overlayDriver) Detect(source string) bool {
	return strings.HasPrefix(source, overlayPrefix)
}

func (d *overlayDriver) Mount(inst *Instance) error {
	if inst.Kind != KindOverlayFS || inst.Incomplete() {
		return ErrInvalidArgument
	}

	lower, upper, err := splitOverlaySource(inst.Source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(inst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", inst.Target, err)
	}

	opts := fmt.Sprintf("upperdir=%s,lowerdir=%s", upper, lower)

	if err := unix.Mount("overlayfs", inst.Target, "overlayfs", unix.MS_MGC_VAL, opts); err != nil {
		return fmt.Errorf("mount overlayfs at %s: %w", inst.Target, err)
	}

	return nil
}

func (d *overlayDriver) Unmount(inst *Instance) error {
	if inst.Kind != KindOverlayFS || inst.Incomplete() {
		return ErrInvalidArgument
	}

	if err := unix.Unmount(inst.Target, 0); err != nil {
		return fmt.Errorf("unmount %s: %w", inst.Target, err)
	}

	return nil
}

// ClonePaths only supports snapshot mode: an overlayfs clone is always a
// fresh, empty (or copied) delta atop the origin's lower directory, shared
// unchanged with the origin, never a bulk copy of the whole union.
func (d *overlayDriver) ClonePaths(orig, newInst *Instance, p CloneParams) error {
	if !p.Snapshot {
		return fmt.Errorf("%w: overlayfs only supports snapshot clones", ErrUnsupported)
	}

	newInst.Target = filepath.Join(p.NewRoot, p.NewName, "rootfs")
	if err := os.MkdirAll(newInst.Target, 0755); err != nil {
		return fmt.Errorf("create mount target %s: %w", newInst.Target, err)
	}

	switch orig.Kind {
	case KindDir:
		delta, err := uniqueDeltaPathFor(newInst.Target)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(delta, 0755); err != nil {
			return fmt.Errorf("create delta %s: %w", delta, err)
		}

		newInst.Source = overlayPrefix + orig.Source + ":" + delta
		return nil

	case KindOverlayFS:
		lower, oldDelta, err := splitOverlaySource(orig.Source)
		if err != nil {
			return err
		}

		newDelta := RewritePath(oldDelta, p.OldName, p.NewName, p.OldRoot, p.NewRoot)

		if err := os.MkdirAll(newDelta, 0755); err != nil {
			return fmt.Errorf("create delta %s: %w", newDelta, err)
		}

		if err := copyTree(oldDelta, newDelta); err != nil {
			return fmt.Errorf("copy delta %s to %s: %w", oldDelta, newDelta, err)
		}

		if err := clearStaleOpaqueMarkers(newDelta); err != nil {
			return fmt.Errorf("clear opaque markers in %s: %w", newDelta, err)
		}

		newInst.Source = overlayPrefix + lower + ":" + newDelta
		return nil

	case KindLVM:
		return fmt.Errorf("%w: overlayfs cannot be derived from an LVM origin", ErrUnsupported)

	default:
		return fmt.Errorf("%w: overlayfs clone from kind %q", ErrUnsupported, orig.Kind)
	}
}

// deltaPathFor derives a sibling "deltaN" directory from a "rootfs" target
// path, e.g. ".../c2/rootfs" -> ".../c2/delta0". The original always used
// delta0 for a freshly created overlay; this package keeps that convention
// as the preferred name.
func deltaPathFor(target string) string {
	const rootfsSuffix = "rootfs"
	if strings.HasSuffix(target, rootfsSuffix) {
		return target[:len(target)-len(rootfsSuffix)] + "delta0"
	}

	return target + ".delta0"
}

// uniqueDeltaPathFor returns deltaPathFor's usual "delta0" sibling, unless
// that path is already taken, in which case it mints a fresh
// uuid-suffixed name instead of colliding with it. A collision means a
// prior clone under the same new name was abandoned without being
// destroyed.
func uniqueDeltaPathFor(target string) (string, error) {
	delta := deltaPathFor(target)

	if _, err := os.Stat(delta); os.IsNotExist(err) {
		return delta, nil
	}

	return delta + "-" + uuid.NewString(), nil
}

// splitOverlaySource parses "overlayfs:<lower>:<upper>" into its two paths.
func splitOverlaySource(source string) (lower, upper string, err error) {
	rest := strings.TrimPrefix(source, overlayPrefix)

	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: malformed overlayfs source %q", ErrInvalidArgument, source)
	}

	return parts[0], parts[1], nil
}
