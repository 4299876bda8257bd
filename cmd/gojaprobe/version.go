package main

//
// The list and version subcommands
//

import (
	"fmt"

	"github.com/ooni/probe-goja/internal/microengine"
	"github.com/ooni/probe-goja/internal/version"
	"github.com/spf13/cobra"
)

// listSubcommand returns the list subcommand.
func listSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the available network tests",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range microengine.Kinds() {
				fmt.Println(name)
			}
		},
	}
}

// versionSubcommand returns the version subcommand.
func versionSubcommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", version.Name, version.Version)
		},
	}
}
