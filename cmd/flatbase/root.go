package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flatbase",
		Short:         "flatbase is a file-backed relational query engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoadCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newRunCmd())
	return root
}
