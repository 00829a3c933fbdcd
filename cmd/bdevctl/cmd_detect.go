package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lxc/go-bdev/internal/bdev"
)

type cmdDetect struct {
	global *cmdGlobal
}

// Command returns a cobra.Command that probes a source and prints the
// storage kind construct_by_probe adopts for it.
func (c *cmdDetect) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "detect <source>"
	cmd.Short = "Detect the storage kind backing an existing source"
	cmd.Args = cobra.ExactArgs(1)
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdDetect) Run(cmd *cobra.Command, args []string) error {
	inst, err := bdev.ConstructByProbe(args[0], "", "")
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", inst.Kind)

	return nil
}
