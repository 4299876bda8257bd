package main

//
// The run subcommand
//

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/ooni/probe-goja/internal/jsvm"
	"github.com/spf13/cobra"
)

// runSubcommand returns the run subcommand.
func runSubcommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Runs the given JavaScript measurement script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			return runScript(args[0])
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit debug messages")
	return cmd
}

// runScript evaluates the measurement script at the given path.
func runScript(path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	vm := jsvm.New(&jsvm.Config{Logger: log.Log})
	log.Infof("running %s", path)
	return vm.RunScript(filepath.Base(path), string(script))
}
