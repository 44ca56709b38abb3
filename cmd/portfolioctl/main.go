// Command portfolioctl inspects and edits portfolios in a stockfolio SQLite database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var (
	dbPath   = flag.String("db", "data/stockfolio.db", "path to the stockfolio SQLite database")
	seedPath = flag.String("seed", "", "YAML seed to apply before running (empty: quotes from the built-in demo seed, nothing applied)")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "portfolio")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
