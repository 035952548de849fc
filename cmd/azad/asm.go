package main

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/azadvm/azad/asm"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] <file>",
	Short: "Assemble a source file into an executable container.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return
		}

		container, err := asm.New().Assemble(string(source))
		if err != nil {
			return
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bin"
		}

		err = os.WriteFile(output, container, 0o644)
		if err != nil {
			return
		}

		log.Debugf("assembled %s: %d container bytes", args[0], len(container))
		cmd.Printf("%s: %d bytes\n", output, len(container))

		return
	},
}

func init() {
	asmCmd.Flags().StringP("output", "o", "", "output file (default: source name with .bin extension)")
	rootCmd.AddCommand(asmCmd)
}
