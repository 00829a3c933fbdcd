package main

import (
	"github.com/spf13/cobra"

	"github.com/lxc/go-bdev/internal/bdev"
)

type cmdMount struct {
	global *cmdGlobal
}

// Command returns a cobra.Command that mounts an existing, already-cloned
// instance at its target.
func (c *cmdMount) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "mount <kind> <source> <target>"
	cmd.Short = "Mount a storage instance at target"
	cmd.Args = cobra.ExactArgs(3)
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdMount) Run(cmd *cobra.Command, args []string) error {
	inst, err := bdev.ConstructByKind(bdev.Kind(args[0]))
	if err != nil {
		return err
	}

	inst.Source = args[1]
	inst.Target = args[2]

	return inst.Mount()
}
