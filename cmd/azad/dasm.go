package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/azadvm/azad/vm"
)

var dasmCmd = &cobra.Command{
	Use:   "dasm <file>",
	Short: "Disassemble an executable container.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return
		}

		code, err := vm.StripHeader(raw)
		if err != nil {
			return
		}

		for offset, text := range vm.Disassemble(code) {
			cmd.Printf("%04d  %s\n", offset, text)
		}

		return
	},
}

func init() {
	rootCmd.AddCommand(dasmCmd)
}
