package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"bytec/internal/diag"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&dumpCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	debug := flag.Bool("debug", false, "enable parser tracing")
	flag.Parse()
	diag.SetEnabled(*debug)

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
