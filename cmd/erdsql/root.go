package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "erdsql",
		Short:        "Compile ER diagrams into MySQL schema scripts",
		SilenceUsage: true,
	}
	root.AddCommand(newCompileCmd())
	return root
}
