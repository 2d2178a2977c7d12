// Command advisorctl runs the advisor engines from the terminal against the
// configured catalog and goal database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&recommendCmd{}, "advice")
	commander.Register(&projectCmd{}, "advice")
	commander.Register(&goalsCmd{}, "goals")
	commander.Register(&registrationsCmd{}, "admin")
	commander.Register(&auditCmd{}, "catalog")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
