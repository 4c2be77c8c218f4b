package object

import (
	"github.com/nilan-lang/nilan/heap"
	"github.com/nilan-lang/nilan/value"
)

// Closure pairs an immutable Prototype with the upvalues its particular
// instantiation closed over (spec §4.3). Two closures built from the
// same Prototype at different call sites are distinct heap objects with
// independent upvalue slots, even though they share Code/Constants.
type Closure struct {
	heap.Header
	value.HeapMarker
	Proto    *Prototype
	UpValues []*UpValue
}

// NewClosure allocates a Closure over proto with upvalues already
// resolved by the caller (the Closure case of vm's exec), per each of
// proto.UpValues' descriptors.
func NewClosure(proto *Prototype, upvalues []*UpValue) *Closure {
	c := &Closure{Proto: proto, UpValues: upvalues}
	heap.Default.Register(&c.Header)
	return c
}

// Arity implements value.Callable.
func (c *Closure) Arity() (fixed int, vararg bool) {
	return c.Proto.NumParams, c.Proto.IsVararg
}

// HostFunc adapts a native Go function to value.Callable, for library
// functions exposed into the script environment (print, type coercion
// builtins, etc.) without requiring a Prototype (spec §4.3 "External
// Interfaces" distinguishes script closures from host functions sharing
// one call convention).
type HostFunc struct {
	value.HeapMarker
	Name     string
	Fixed    int
	Vararg   bool
	Func     func(args []value.Value) ([]value.Value, error)
}

func NewHostFunc(name string, fixed int, vararg bool, fn func([]value.Value) ([]value.Value, error)) *HostFunc {
	return &HostFunc{Name: name, Fixed: fixed, Vararg: vararg, Func: fn}
}

func (h *HostFunc) Arity() (fixed int, vararg bool) { return h.Fixed, h.Vararg }
