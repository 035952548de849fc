package main

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/azadvm/azad/asm"
	"github.com/azadvm/azad/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file>",
	Short: "Execute a container file, assembling source files first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return
		}

		// Containers load directly; anything else is source text.
		if !bytes.HasPrefix(raw, vm.Magic[:]) {
			if raw, err = asm.New().Assemble(string(raw)); err != nil {
				return
			}
		}

		machine := vm.New()
		if err = machine.Load(raw); err != nil {
			return
		}

		if err = machine.Run(); err != nil {
			return
		}

		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			n := 0
			for value := range machine.Registers() {
				cmd.Printf("$%d: %d\n", n, value)
				n++
			}
			for key, value := range machine.Dump() {
				cmd.Printf("%10s: %v\n", key, value)
			}
		}

		return
	},
}

func init() {
	runCmd.Flags().Bool("dump", false, "dump machine state after execution")
	rootCmd.AddCommand(runCmd)
}
