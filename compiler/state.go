package compiler

import (
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// scope is one lexical block's locals: a name-to-register map and the
// register number the block started at, so leaving it can roll the
// allocator back.
type scope struct {
	names map[string]int
	base  int
}

// loopState tracks a loop body's pending break jumps so they can all be
// patched to the same "past the loop" address once the loop is fully
// compiled.
type loopState struct {
	breaks []int
}

// funcState is the compiler's state for one function body being
// compiled: the Prototype under construction, a link to the enclosing
// function (nil for the top-level chunk), the active lexical scopes,
// the next free register, and the loop stack for break resolution.
type funcState struct {
	proto   *object.Prototype
	parent  *funcState
	scopes  []scope
	nextReg int
	loops   []*loopState
}

func newFuncState(parent *funcState) *funcState {
	return &funcState{proto: object.NewPrototype(), parent: parent}
}

// alloc reserves the next free register, growing the prototype's
// high-water mark. Registers are never individually freed; leaveScope
// rolls the allocator back to a block's starting register instead (a
// coarser discipline than a real Lua compiler's slot reuse, traded for
// simplicity: correctness doesn't depend on packing registers tightly,
// only on a function's prototype sizing its frame wide enough).
func (fs *funcState) alloc() int {
	r := fs.nextReg
	fs.nextReg++
	if fs.nextReg > fs.proto.MaxStack {
		fs.proto.MaxStack = fs.nextReg
	}
	return r
}

func (fs *funcState) enterScope() {
	fs.scopes = append(fs.scopes, scope{names: map[string]int{}, base: fs.nextReg})
}

func (fs *funcState) leaveScope() {
	s := fs.scopes[len(fs.scopes)-1]
	fs.scopes = fs.scopes[:len(fs.scopes)-1]
	fs.nextReg = s.base
}

func (fs *funcState) declareLocal(name string, reg int) {
	fs.scopes[len(fs.scopes)-1].names[name] = reg
}

func (fs *funcState) resolveLocal(name string) (int, bool) {
	for i := len(fs.scopes) - 1; i >= 0; i-- {
		if r, ok := fs.scopes[i].names[name]; ok {
			return r, true
		}
	}
	return 0, false
}

// addUpvalue records (or finds, deduplicated) an upvalue descriptor on
// fs's own prototype, returning its index.
func (fs *funcState) addUpvalue(name string, source object.UpValueSource, index int) int {
	for i, d := range fs.proto.UpValues {
		if d.Source == source && d.Index == index && d.Name == name {
			return i
		}
	}
	fs.proto.UpValues = append(fs.proto.UpValues, object.UpValueDescriptor{Source: source, Index: index, Name: name})
	return len(fs.proto.UpValues) - 1
}

// addConstant appends v to the prototype's constant pool, deduplicating
// by value so repeated literals share one slot.
func (fs *funcState) addConstant(v value.Value) int {
	for i, c := range fs.proto.Constants {
		if c.Kind() == v.Kind() && c.Equals(v) {
			return i
		}
	}
	fs.proto.Constants = append(fs.proto.Constants, v)
	return len(fs.proto.Constants) - 1
}

func (fs *funcState) pushLoop() *loopState {
	l := &loopState{}
	fs.loops = append(fs.loops, l)
	return l
}

func (fs *funcState) popLoop() *loopState {
	l := fs.loops[len(fs.loops)-1]
	fs.loops = fs.loops[:len(fs.loops)-1]
	return l
}

func (fs *funcState) currentLoop() (*loopState, bool) {
	if len(fs.loops) == 0 {
		return nil, false
	}
	return fs.loops[len(fs.loops)-1], true
}
