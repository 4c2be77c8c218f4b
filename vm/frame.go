package vm

import (
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// ScriptFrame is one activation record for a call into an object.Closure
// (spec §4.4). Base is the absolute stack index of register 0 for this
// call; Top bounds the portion of the stack this frame may address.
type ScriptFrame struct {
	Closure *object.Closure
	Base    int
	Top     int
	PC      int

	// NumResults is how many return values the caller wants (-1 means
	// "all of them", the LUA_MULTRET convention used by a tail call or a
	// return expression list ending in "...").
	NumResults int

	// VarArgs holds the extra arguments supplied beyond the closure's
	// fixed parameter count, for a vararg function's VarArgs opcode
	// (spec §4.4 "variable stack-frame state").
	VarArgs []value.Value
}

// HostFrame is the activation record shape for a call into a host
// (Go-native) function. Thread's frame stack holds only ScriptFrames:
// runHost invokes HostFunc.Func directly and stores its results without
// pushing a HostFrame.
type HostFrame struct {
	Func       *object.HostFunc
	ArgBase    int
	ArgCount   int
	NumResults int
}
