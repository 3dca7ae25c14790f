// Command wealthctl inspects and maintains a WealthFlow store from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-dashboard/internal/logger"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&summaryCmd{}, "reports")
	commander.Register(&notificationsCmd{}, "notifications")
	commander.Register(&maintainCmd{}, "maintenance")
	commander.Register(&planCmd{}, "subscription")

	flag.Parse()
	logger.Init(*logLevel)
	ctx := logger.ToContext(context.Background(), logger.L)
	os.Exit(int(commander.Execute(ctx)))
}
