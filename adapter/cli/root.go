// Package cli implements the daybreak command line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// NewRootCmd creates the root daybreak command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "daybreak",
		Short: "Daybreak personal day-planning service",
		Long: `Daybreak turns a user's task backlog into explainable day plans.

It allocates tasks across a working-day horizon, places them into
30-minute slots against a learned priority model, and adapts to the
feedback users give by moving items around.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newVersionCmd())

	return root
}
