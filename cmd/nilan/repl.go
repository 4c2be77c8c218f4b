package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// replCmd starts an interactive session, one global table shared across
// every line entered so locals declared with "local" in one line don't
// persist but globals do (spec §4.3's _ENV convention applied to a REPL
// rather than a single compiled chunk). Uses readline instead of the
// teacher's bare bufio.Scanner for history and line editing
// (cmd_repl_compiled.go already does this for the teacher's own
// compiled-mode REPL).
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL session.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("Welcome to Nilan!")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     "/tmp/nilan_history.tmp",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	globals := newGlobals()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		if line == "exit" {
			return subcommands.ExitSuccess
		}
		if line == "" {
			continue
		}

		chunk, ok := parseSource(line)
		if !ok {
			continue
		}
		closure, err := closureOver(chunk, globals)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		results, err := vm.Run(closure, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		for _, v := range results {
			if v.Kind() != value.Nil {
				fmt.Println(v.String())
			}
		}
	}
}
