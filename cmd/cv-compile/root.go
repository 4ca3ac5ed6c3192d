package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv-compile",
		Short: "Compile faculty CVs from the command line",
	}
	cmd.AddCommand(newCompileCmd())
	return cmd
}

func execute() {
	_ = newRootCmd().Execute()
}
