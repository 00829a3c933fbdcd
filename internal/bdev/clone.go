package bdev

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CloneRequest carries every input the clone/copy orchestrator needs.
type CloneRequest struct {
	// Source is the origin's locator, as construct_by_probe would accept.
	Source string

	OldName string
	NewName string
	OldRoot string
	NewRoot string

	// OverrideKind, if non-empty, forces the new instance's driver
	// instead of inheriting the origin's kind (e.g. cloning a dir origin
	// into an overlayfs instance).
	OverrideKind Kind

	Snapshot bool

	// Aux seeds the origin record's Aux field (carried across clones by
	// drivers that use it).
	Aux string

	// NewSize overrides default sizing for drivers that provision block
	// storage. Zero uses the driver's default.
	NewSize uint64
}

// Clone runs the full clone/copy pipeline: detect the origin's driver,
// construct a new instance, delegate provisioning to the new driver's
// ClonePaths, and then — unless this was a snapshot clone, which performed
// any copy-on-write derivation as part of provisioning — mount both
// endpoints in a private mount namespace and bulk-copy the origin's
// contents into the new instance.
//
// On any failure, both the origin and (if constructed) the new record are
// released before returning; no record is ever leaked.
func Clone(req CloneRequest) (*Instance, error) {
	if !strings.Contains(req.Source, req.OldName) {
		return nil, fmt.Errorf("%w: old name %q is not a substring of source %q", ErrInvalidArgument, req.OldName, req.Source)
	}

	orig, err := ConstructByProbe(req.Source, "", req.Aux)
	if err != nil {
		return nil, fmt.Errorf("detect origin: %w", err)
	}

	if orig.Target == "" {
		orig.Target = filepath.Join(req.OldRoot, req.OldName, "rootfs")
	}

	if orig.Incomplete() {
		orig.Destroy()
		return nil, fmt.Errorf("%w: origin %q is incomplete", ErrInvalidArgument, req.Source)
	}

	newKind := req.OverrideKind
	if newKind == "" {
		newKind = orig.Kind
	}

	newInst, err := ConstructByKind(newKind)
	if err != nil {
		orig.Destroy()
		return nil, fmt.Errorf("construct new instance: %w", err)
	}

	newInst.Aux = orig.Aux

	params := CloneParams{
		OldName:  req.OldName,
		NewName:  req.NewName,
		OldRoot:  req.OldRoot,
		NewRoot:  req.NewRoot,
		Snapshot: req.Snapshot,
		NewSize:  req.NewSize,
	}

	log.WithFields(logFields{
		"source": req.Source, "old_name": req.OldName, "new_name": req.NewName,
		"kind": newKind, "snapshot": req.Snapshot,
	}).Info("cloning storage instance")

	if err := newInst.driver.ClonePaths(orig, newInst, params); err != nil {
		orig.Destroy()
		newInst.Destroy()

		return nil, fmt.Errorf("clone_paths: %w", err)
	}

	if !req.Snapshot {
		if err := mountAndCopy(orig, newInst); err != nil {
			orig.Destroy()
			newInst.Destroy()

			return nil, fmt.Errorf("mount and copy: %w", err)
		}
	}

	orig.Destroy()

	return newInst, nil
}

// mountAndCopy mounts both endpoints and bulk-copies orig's contents into
// newInst's, entirely inside a private mount namespace so neither working
// mount is ever visible outside this call. It deliberately never unmounts
// on the way out: namespace teardown on return reclaims both mounts.
func mountAndCopy(orig, newInst *Instance) error {
	return withPrivateMountNamespace(func() error {
		if err := orig.Mount(); err != nil {
			return fmt.Errorf("mount origin %s: %w", orig.Target, err)
		}

		if err := newInst.Mount(); err != nil {
			return fmt.Errorf("mount new instance %s: %w", newInst.Target, err)
		}

		if err := copyTree(orig.Target, newInst.Target); err != nil {
			return err
		}

		return nil
	})
}
