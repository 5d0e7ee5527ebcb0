package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the freeweek version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("freeweek version %s\n", version)
		},
	}
}
