package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lxc/go-bdev/internal/bdev"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(colorable.NewColorableStderr(), "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	global := &cmdGlobal{}

	app := &cobra.Command{
		Use:   "bdevctl",
		Short: "Inspect and drive the container rootfs storage abstraction layer",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if global.flagVerbose {
				logger := logrus.New()
				logger.SetLevel(logrus.DebugLevel)
				bdev.SetLogger(logger)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.PersistentFlags().BoolVarP(&global.flagVerbose, "verbose", "v", false, "Enable verbose (debug) logging")

	app.AddCommand((&cmdDetect{global: global}).Command())
	app.AddCommand((&cmdClone{global: global}).Command())
	app.AddCommand((&cmdMount{global: global}).Command())
	app.AddCommand((&cmdUmount{global: global}).Command())

	return app.Execute()
}

// cmdGlobal holds flags shared across every subcommand.
type cmdGlobal struct {
	flagVerbose bool
}
