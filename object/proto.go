// Package object implements the compile-time-constant, heap-owned
// function template (Prototype), its runtime closure (Closure), and the
// upvalue cell that links the two to a live call stack (spec §4.3
// "Prototype & Closure Construction"). Grounded on
// original_source/src/vm.rs's FunctionProto/Closure/UpValue types,
// restated as plain Go structs in the teacher's style (informatter-nilan
// has no bytecode layer of its own; the struct-per-concept layout
// follows its object-model packages instead).
package object

import "github.com/nilan-lang/nilan/value"

// UpValueSource tags where a Prototype's upvalue descriptor pulls its
// value from at closure-construction time (spec §4.3).
type UpValueSource uint8

const (
	// FromParentLocal captures the enclosing function's local register
	// at the index given by Index, opening an UpValue onto it.
	FromParentLocal UpValueSource = iota
	// FromParentUpValue reuses the enclosing closure's own upvalue slot
	// at Index, already resolved to whatever cell it currently holds.
	FromParentUpValue
	// FromEnvironment binds to the global/root environment table rather
	// than to any enclosing call frame (spec §4.3's "Environment" case,
	// used for the implicit _ENV upvalue every top-level chunk closes
	// over).
	FromEnvironment
)

// UpValueDescriptor says, for one upvalue slot of a Prototype, how a
// Closure built from that Prototype should populate it.
type UpValueDescriptor struct {
	Source UpValueSource
	Index  int // register or upvalue index; unused when Source == FromEnvironment
	Name   string
}

// Prototype is the immutable, shareable template produced by compiling
// one function body: its instruction stream, constant pool, nested
// function templates, and the metadata the VM dispatcher needs to set
// up a call frame (spec §4.3).
type Prototype struct {
	Code      []byte
	Constants []value.Value
	Protos    []*Prototype
	UpValues  []UpValueDescriptor

	NumParams  int
	IsVararg   bool
	MaxStack   int // largest register index used, plus one

	// Lines is indexed by the byte offset each instruction starts at
	// (so len(Lines) == len(Code); only instruction-start offsets are
	// ever read), for traceback reporting (spec §7). Nil when debug
	// info was stripped.
	Lines []int32
	Name  string
}

// NewPrototype returns an empty Prototype ready to be filled in by a
// compiler (compiler.Compiler builds one incrementally via its own
// emit helpers rather than constructing this struct literal directly).
func NewPrototype() *Prototype { return &Prototype{} }
