package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the daybreak version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("daybreak", Version)
		},
	}
}
