package vm

import (
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// Run starts closure on a fresh Thread and drives it to completion with
// an unbounded instruction budget, returning whatever it returns (spec
// §4.4's top-level call convention, nresults == -1 meaning "all of
// them"). For a host embedding this package as a library (the CLI
// here, or a test) that just wants to execute a program start-to-finish
// without managing cooperative scheduling itself; a script that spawns
// further vm.Thread values for coroutine.* still schedules those by
// hand (spec §5 names no implicit scheduler).
func Run(closure *object.Closure, args []value.Value) ([]value.Value, error) {
	t := NewThread()
	t.pushScriptFrame(closure, args, -1, 0)
	var d Dispatcher
	for {
		res, err := d.Step(t, 0)
		switch res {
		case Finished:
			n := t.top
			out := make([]value.Value, n)
			copy(out, t.stack[:n])
			return out, nil
		case Error:
			return nil, err
		}
	}
}
