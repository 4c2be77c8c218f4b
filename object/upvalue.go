package object

import (
	"github.com/nilan-lang/nilan/heap"
	"github.com/nilan-lang/nilan/value"
)

// StackCell is the narrow interface an UpValue needs onto a Thread's
// value stack while open: read/write one slot by absolute index,
// without object importing the vm package (which embeds object and
// would otherwise cycle back).
type StackCell interface {
	StackGet(index int) value.Value
	StackSet(index int, v value.Value)
}

// UpValue is a two-shape cell (spec §4.4 "Upvalues"): Open, meaning it
// aliases a live register on some Thread's value stack and is shared by
// every closure that captured that register; or Closed, meaning the
// stack frame that owned the register has returned and the value has
// been copied out by value. The transition from Open to Closed happens
// in place so that every Closure holding a pointer to this UpValue
// observes it. It is itself a heap object (spec §3): Set stores a
// reference into a live cell after construction, exactly the write-
// barrier contract's trigger.
type UpValue struct {
	heap.Header
	value.HeapMarker
	closed bool
	stack  StackCell // non-nil only while open
	index  int        // absolute stack index, while open
	value  value.Value
}

// NewClosedUpValue returns an UpValue that never aliases a stack slot,
// holding v directly. Used to seed a root closure's _ENV upvalue onto
// the host's global table, which has no register of its own to alias.
func NewClosedUpValue(v value.Value) *UpValue {
	u := &UpValue{closed: true, value: v}
	heap.Default.Register(&u.Header)
	return u
}

// NewOpenUpValue returns an UpValue aliasing stack[index]. Callers
// (vm.Thread.findOrOpenUpValue) are responsible for keeping the
// ascending-stack-index-ordered open-upvalue list spec §4.4 requires, so
// that two closures capturing the same register share one cell.
func NewOpenUpValue(stack StackCell, index int) *UpValue {
	u := &UpValue{stack: stack, index: index}
	heap.Default.Register(&u.Header)
	return u
}

// Index reports the absolute stack index an open UpValue aliases; valid
// only while IsOpen is true.
func (u *UpValue) Index() int { return u.index }

// IsOpen reports whether u still aliases a live stack slot.
func (u *UpValue) IsOpen() bool { return !u.closed }

// Get returns the current value, reading through the stack while open.
func (u *UpValue) Get() value.Value {
	if !u.closed {
		return u.stack.StackGet(u.index)
	}
	return u.value
}

// Set stores v, writing through the stack while open.
func (u *UpValue) Set(v value.Value) {
	if ref := v.GCRef(); ref != nil {
		heap.Default.Barrier(&u.Header, ref)
	}
	if !u.closed {
		u.stack.StackSet(u.index, v)
		return
	}
	u.value = v
}

// Close copies the current stack value into u and severs the alias,
// idempotently: closing an already-closed UpValue is a no-op (spec §4.4
// "closing an upvalue is idempotent").
func (u *UpValue) Close() {
	if u.closed {
		return
	}
	u.value = u.stack.StackGet(u.index)
	u.closed = true
	u.stack = nil
}
