package main

import (
	"github.com/spf13/cobra"

	"github.com/lxc/go-bdev/internal/bdev"
)

type cmdUmount struct {
	global *cmdGlobal
}

// Command returns a cobra.Command that unmounts a previously mounted
// instance.
func (c *cmdUmount) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "umount <kind> <source> <target>"
	cmd.Short = "Unmount a storage instance"
	cmd.Args = cobra.ExactArgs(3)
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdUmount) Run(cmd *cobra.Command, args []string) error {
	inst, err := bdev.ConstructByKind(bdev.Kind(args[0]))
	if err != nil {
		return err
	}

	inst.Source = args[1]
	inst.Target = args[2]

	return inst.Unmount()
}
