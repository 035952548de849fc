package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/azadvm/azad/repl"
)

// rootCmd represents the base command. Without a subcommand it starts an
// interactive session.
var rootCmd = &cobra.Command{
	Use:   "azad",
	Short: "Assembler and virtual machine for the azad instruction set.",
	Long: "azad is a stack-free register virtual machine together with the\n" +
		"two-pass assembler for its instruction set. Run without arguments\n" +
		"for an interactive session.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl.New().Run()
	},
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
