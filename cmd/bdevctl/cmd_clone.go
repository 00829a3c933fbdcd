package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lxc/go-bdev/internal/bdev"
)

type cmdClone struct {
	global *cmdGlobal

	flagSnapshot bool
	flagKind     string
	flagOldRoot  string
	flagNewRoot  string
	flagSize     uint64
}

// Command returns a cobra.Command that runs the clone/copy orchestrator
// against an existing source.
func (c *cmdClone) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "clone <source> <old-name> <new-name>"
	cmd.Short = "Clone a storage instance, optionally as a snapshot"
	cmd.Args = cobra.ExactArgs(3)
	cmd.RunE = c.Run

	cmd.Flags().BoolVar(&c.flagSnapshot, "snapshot", false, "Create a copy-on-write snapshot instead of a bulk copy")
	cmd.Flags().StringVar(&c.flagKind, "kind", "", "Override the new instance's storage kind")
	cmd.Flags().StringVar(&c.flagOldRoot, "old-root", "/var/lib/lxc", "Root directory the old name lives under")
	cmd.Flags().StringVar(&c.flagNewRoot, "new-root", "/var/lib/lxc", "Root directory the new name will live under")
	cmd.Flags().Uint64Var(&c.flagSize, "size", 0, "Size in bytes for drivers that provision block storage (0 = driver default)")

	return cmd
}

func (c *cmdClone) Run(cmd *cobra.Command, args []string) error {
	req := bdev.CloneRequest{
		Source:       args[0],
		OldName:      args[1],
		NewName:      args[2],
		OldRoot:      c.flagOldRoot,
		NewRoot:      c.flagNewRoot,
		OverrideKind: bdev.Kind(c.flagKind),
		Snapshot:     c.flagSnapshot,
		NewSize:      c.flagSize,
	}

	inst, err := bdev.Clone(req)
	if err != nil {
		return err
	}

	fmt.Printf("kind=%s source=%s target=%s\n", inst.Kind, inst.Source, inst.Target)

	return nil
}
