package main

//
// Main
//

import (
	"github.com/apex/log"
	"github.com/ooni/probe-goja/internal/logx"
	"github.com/ooni/probe-goja/internal/runtimex"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gojaprobe",
		Short: "Runs network measurement scripts written in JavaScript",
	}
	root.AddCommand(listSubcommand())
	root.AddCommand(runSubcommand())
	root.AddCommand(versionSubcommand())
	logHandler := logx.NewHandlerWithDefaultSettings()
	log.Log = &log.Logger{Level: log.InfoLevel, Handler: logHandler}

	err := root.Execute()
	runtimex.PanicOnError(err, "root.Execute")
}
