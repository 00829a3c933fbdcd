package bdev

// Kind identifies which driver backs a storage instance.
type Kind string

// The set of storage kinds this package knows how to drive. Order here is
// cosmetic; probing order is defined separately in registry.go.
const (
	KindDir       Kind = "dir"
	KindZFS       Kind = "zfs"
	KindLVM       Kind = "lvm"
	KindBtrfs     Kind = "btrfs"
	KindOverlayFS Kind = "overlayfs"
)

// Instance represents one backing-store endpoint: a directory, a ZFS
// dataset, an LVM logical volume, a btrfs subvolume, or an overlayfs union
// mount. It corresponds to a single container rootfs over its lifetime.
type Instance struct {
	// Kind names the driver that owns this instance.
	Kind Kind

	// Source is the driver-specific locator: a directory path, a dataset
	// name, a block-device path, or the compound
	// "overlayfs:LOWER:UPPER" string.
	Source string

	// Target is the absolute path at which the instance is, or will be,
	// mounted. By convention <lxcpath>/<name>/rootfs.
	Target string

	// Aux carries driver-specific auxiliary data across clones. It is
	// copied by value on derivation and otherwise opaque to the core.
	Aux string

	driver Driver
}

// Incomplete reports whether the instance is missing Source or Target.
// Mount/Unmount on an incomplete instance, and Clone with an incomplete
// origin, fail with ErrInvalidArgument. A driver's ClonePaths does not check
// it: the new record it fills in is incomplete until ClonePaths returns.
func (i *Instance) Incomplete() bool {
	return i == nil || i.Source == "" || i.Target == ""
}

// Destroy releases a record's owned fields. It is always safe to call,
// including on a record whose optional fields were never set, and is
// idempotent: the zero value of Instance destroys cleanly.
func (i *Instance) Destroy() {
	if i == nil {
		return
	}

	i.Source = ""
	i.Target = ""
	i.Aux = ""
	i.driver = nil
}

// Mount attaches the instance's source at its target using its driver.
func (i *Instance) Mount() error {
	if i == nil || i.driver == nil {
		return ErrInvalidArgument
	}

	return i.driver.Mount(i)
}

// Unmount detaches the instance's target using its driver.
func (i *Instance) Unmount() error {
	if i == nil || i.driver == nil {
		return ErrInvalidArgument
	}

	return i.driver.Unmount(i)
}
