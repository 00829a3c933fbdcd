package bdev

import (
	"os"
	"path/filepath"

	"github.com/pkg/xattr"
)

// overlayOpaqueXattr is set by the kernel overlay filesystem on
// "copied-up" directories and opaque whiteout markers inside the upper
// (delta) layer. When an overlay delta is itself bulk-copied to seed a new
// derived overlay (the overlayfs-from-overlayfs clone path), a stale
// opaque marker copied along with it would incorrectly hide the new
// instance's own lower layer contents underneath a directory that was
// only opaque relative to the *old* lower.
const overlayOpaqueXattr = "trusted.overlay.opaque"

// clearStaleOpaqueMarkers walks the copied delta tree clearing any
// trusted.overlay.opaque xattr so copied-up opacity from the origin delta
// doesn't leak into the new instance's view of its own (possibly
// different) lower directory. Best-effort: a filesystem that doesn't
// support trusted.* xattrs (no CAP_SYS_ADMIN, or a non-overlay-aware fs)
// simply has nothing to clear, which is not an error.
func clearStaleOpaqueMarkers(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}

		if !info.IsDir() {
			return nil
		}

		_ = xattr.Remove(path, overlayOpaqueXattr)
		return nil
	})
}
