// Command nilan is the interpreter's CLI: run a script file, start an
// interactive REPL, or dump a compiled chunk's disassembly. Subcommand
// shape kept from the teacher's cmd_run.go/cmd_repl.go/cmd_emit_bytecode.go
// (github.com/google/subcommands + flag), generalized to actually
// register against subcommands.DefaultCommander, which the teacher's own
// main.go never did.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&dumpCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
