package bdev

import "fmt"

// CloneParams carries every argument clone_paths needs beyond the origin
// and new record themselves.
type CloneParams struct {
	OldName string
	NewName string
	OldRoot string
	NewRoot string

	// Snapshot requests a copy-on-write derivative rather than a bulk
	// copy. Not every driver combination supports it; see each driver's
	// ClonePaths doc comment.
	Snapshot bool

	// NewSize overrides the default size drivers that provision block
	// storage (LVM) would otherwise pick. Zero means "use the default".
	NewSize uint64
}

// Driver is the capability interface every storage kind implements. It
// replaces the vtable of function pointers the C ancestor of this package
// used: one implementing type per kind, dispatched through this interface
// rather than through a manually-maintained struct of function pointers.
type Driver interface {
	// Name returns the kind this driver implements, used for kind
	// coherence checks on every operation.
	Name() Kind

	// Detect is a pure probe: it reports whether source looks like an
	// instance of this driver's kind. It must not mutate anything and
	// must tolerate nonexistent paths by returning false.
	Detect(source string) bool

	// Mount attaches inst.Source at inst.Target. Returns ErrInvalidArgument
	// if inst.Kind does not match this driver, or Source/Target is empty.
	Mount(inst *Instance) error

	// Unmount detaches inst.Target.
	Unmount(inst *Instance) error

	// ClonePaths fills new.Source and new.Target (new.Aux is copied from
	// the origin by Clone before the call), and performs any side effects needed to make the new endpoint usable (volume
	// creation, snapshot, mkfs, overlay delta directory, ...).
	ClonePaths(orig, newInst *Instance, p CloneParams) error
}

// driverEntry wraps one driver; its position in probeOrder is its probe
// priority. The table is built
// once, at package init, and is never mutated afterwards — the Go
// equivalent of the original's immutable static array of descriptors.
type driverEntry struct {
	driver Driver
}

// probeOrder controls construct_by_probe's disambiguation order: zfs, lvm
// and btrfs are tried before the directory catch-all, and overlayfs, which
// is recognised only by its "overlayfs:" prefix, is tried last. This
// ordering is load-bearing — e.g. a btrfs subvolume must not be mistaken
// for a plain directory.
var probeOrder = []driverEntry{
	{&zfsDriver{}},
	{&lvmDriver{}},
	{&btrfsDriver{}},
	{&dirDriver{}},
	{&overlayDriver{}},
}

// byKind indexes the same driver instances by name for construct_by_kind.
var byKind = func() map[Kind]Driver {
	m := make(map[Kind]Driver, len(probeOrder))
	for _, e := range probeOrder {
		m[e.driver.Name()] = e.driver
	}

	return m
}()

// ConstructByKind returns a blank record of the named kind with its driver
// attached. No I/O is performed.
func ConstructByKind(kind Kind) (*Instance, error) {
	d, ok := byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrNotFound, kind)
	}

	return &Instance{Kind: kind, driver: d}, nil
}

// ConstructByProbe iterates drivers in registration order, calling Detect
// on each, and adopts the first match. target and aux, if non-empty, are
// copied onto the resulting record.
func ConstructByProbe(source, target, aux string) (*Instance, error) {
	for _, e := range probeOrder {
		if e.driver.Detect(source) {
			inst := &Instance{
				Kind:   e.driver.Name(),
				Source: source,
				Target: target,
				Aux:    aux,
				driver: e.driver,
			}

			log.WithFields(logFields{"source": source, "kind": inst.Kind}).Debug("detected storage kind")

			return inst, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, source)
}

// logFields is a tiny alias so callers of this file don't need to import
// logrus just to build a Fields map.
type logFields = map[string]any
