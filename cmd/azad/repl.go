package main

import (
	"github.com/spf13/cobra"

	"github.com/azadvm/azad/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive VM session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl.New().Run()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
