package bdev

import "strings"

// RewritePath substitutes an old container name/path with a new one inside a
// source path. It is used by drivers that preserve a custom layout across a
// clone (LVM cloned from LVM, btrfs cloned from btrfs, overlayfs deltas).
//
// Given src, oldname, newname, oldroot, newroot:
//  1. If src has prefix oldroot, that prefix is replaced with newroot.
//  2. In the remainder, every non-overlapping, left-to-right occurrence of
//     oldname is replaced with newname.
func RewritePath(src, oldname, newname, oldroot, newroot string) string {
	rest := src
	prefix := ""

	if strings.HasPrefix(src, oldroot) {
		prefix = newroot
		rest = src[len(oldroot):]
	}

	rest = strings.ReplaceAll(rest, oldname, newname)

	return prefix + rest
}
