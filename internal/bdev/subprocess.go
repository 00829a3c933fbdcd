package bdev

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// runCommand executes name with args to completion, waits, and returns its
// combined stdout+stderr. A nonzero exit or a signal kill is reported as an
// error with that output attached, mirroring how every external tool this
// package shells out to (rsync, mkfs, lvcreate, zfs) is expected to behave:
// fork+exec, wait, and surface exit != 0 as failure.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	var out bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.WithFields(logFields{"cmd": name, "args": args}).Debug("running external command")

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s %v: %w (output: %s)", name, args, err, out.String())
	}

	return out.String(), nil
}
