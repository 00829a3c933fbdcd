package bdev

import (
	"context"
	"fmt"
	"strings"
)

// copyTree bulk-copies the contents of src into dst via rsync(8), using
// trailing-slash semantics so only src's contents (not the src directory
// itself) land in dst. dst itself must already exist.
func copyTree(src, dst string) error {
	srcWithSlash := strings.TrimSuffix(src, "/") + "/"

	if _, err := runCommand(context.Background(), "rsync", "-a", srcWithSlash, dst); err != nil {
		return fmt.Errorf("rsync %s -> %s: %w", src, dst, err)
	}

	return nil
}
