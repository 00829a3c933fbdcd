package bdev

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// maxPathLen bounds the readlink buffer, mirroring the original's use of
// MAXPATHLEN when resolving the device symlink.
const maxPathLen = 4096

// fsCandidateFiles are consulted in order for trial-mount filesystem type
// candidates.
var fsCandidateFiles = []string{"/etc/filesystems", "/proc/filesystems"}

// ProbeFSType discovers the filesystem type present on a block device by
// brute-force mounting it with every candidate type known to the running
// kernel/userspace until one succeeds, then reading back the type the
// kernel settled on from /proc/self/mounts. It runs entirely inside a
// private mount namespace so the trial mounts never touch the host.
func ProbeFSType(source, target string) (string, error) {
	var fstype string

	err := withPrivateMountNamespace(func() error {
		found, err := bruteForceMount(source, target)
		if err != nil {
			return err
		}

		fstype = found
		return nil
	})
	if err != nil {
		return "", err
	}

	if fstype == "" {
		return "", fmt.Errorf("%w: could not determine filesystem type of %s", ErrNotFound, source)
	}

	return fstype, nil
}

func bruteForceMount(source, target string) (string, error) {
	if err := mountFirstCandidate(source, target, 0); err != nil {
		return "", err
	}

	resolved, err := resolveOneSymlink(source)
	if err != nil {
		return "", err
	}

	return readMountedFSType(resolved)
}

// mountFirstCandidate tries every known filesystem type candidate against
// source/target in order, stopping at the first one mount(2) accepts. The
// mount is left in place on success; callers that only want to discover the
// type (ProbeFSType) run this inside a private mount namespace so the
// winning mount is reclaimed for free on namespace teardown, while callers
// that want the mount to persist (the LVM driver's real Mount) call it
// directly.
func mountFirstCandidate(source, target string, flags uintptr) error {
	candidates, err := fsTypeCandidates()
	if err != nil {
		return err
	}

	for _, fstype := range candidates {
		if err := unix.Mount(source, target, fstype, flags, ""); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: no candidate filesystem type mounted %s", ErrNotFound, source)
}

// fsTypeCandidates reads candidate fstype names in order from
// /etc/filesystems, then /proc/filesystems, skipping "nodev" pseudo
// filesystem lines and trimming whitespace.
func fsTypeCandidates() ([]string, error) {
	var candidates []string

	for _, path := range fsCandidateFiles {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, "nodev") {
				continue
			}

			fstype := strings.TrimSpace(line)
			if fstype == "" {
				continue
			}

			candidates = append(candidates, fstype)
		}

		scanErr := scanner.Err()
		_ = f.Close()

		if scanErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, scanErr)
		}
	}

	return candidates, nil
}

// resolveOneSymlink resolves source through one level of symlink, matching
// the original's single readlink(2) call bounded by MAXPATHLEN.
func resolveOneSymlink(source string) (string, error) {
	buf := make([]byte, maxPathLen)

	n, err := unix.Readlink(source, buf)
	if err != nil {
		// Not a symlink (or some other error reading it): use source
		// as-is, same as the original falling through on readlink
		// failure.
		return source, nil //nolint:nilerr
	}

	return string(buf[:n]), nil
}

// readMountedFSType scans /proc/self/mounts for the line whose device field
// equals device, returning its filesystem type (the third whitespace field).
// A read error is returned as an error. Failing to find the device returns
// an empty string, which ProbeFSType reports as "not found" — zero-length
// results are treated as failure, not success, per the known bug in the
// original this package deliberately does not reproduce.
func readMountedFSType(device string) (string, error) {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return "", fmt.Errorf("open /proc/self/mounts: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		if fields[0] == device {
			return fields[2], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read /proc/self/mounts: %w", err)
	}

	return "", nil
}
