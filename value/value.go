// Package value implements Nilan's tagged-union runtime value domain and
// the arithmetic/relational/bitwise operator algebra over it (spec §3,
// §4.2). Grounded on original_source/src/vm.rs's Value enum and its
// add/subtract/.../less_than/less_equal free functions, restated as a Go
// struct tagged union in the teacher's documentation style.
package value

import (
	"fmt"

	"github.com/nilan-lang/nilan/heap"
)

// Kind tags which variant a Value currently holds.
type Kind uint8

const (
	Nil Kind = iota
	Boolean
	Integer
	Number
	String
	Table
	Function
	Thread
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Boolean:
		return "boolean"
	case Integer, Number:
		return "number"
	case String:
		return "string"
	case Table:
		return "table"
	case Function:
		return "function"
	case Thread:
		return "thread"
	default:
		return "unknown"
	}
}

// HeapObject is implemented by every heap-owned value variant (Table,
// the string content cell, Closure/HostFunction, Thread). It exists so
// value.Value can hold a single `any` field for all of them while the
// heap package's write barrier can still type-switch on what it got.
type HeapObject interface {
	isHeapObject()
}

// HeapMarker gives external packages (object.Closure, object.UpValue,
// vm.Thread) a way to implement HeapObject: since isHeapObject is
// unexported, a type declared outside this package can only satisfy the
// interface by embedding something that already has the method, rather
// than redeclaring it under the same name in a different package.
type HeapMarker struct{}

func (HeapMarker) isHeapObject() {}

// Callable is implemented by both script closures and host functions, so
// that the VM can hold either behind a single Value without importing
// the object or vm package (which would create an import cycle).
type Callable interface {
	HeapObject
	Arity() (fixed int, vararg bool)
}

// Value is Nilan's tagged-union runtime value. Nil/Boolean/Integer/Number
// are represented inline; String/Table/Function/Thread hold a heap
// reference in obj.
type Value struct {
	kind Kind
	num  float64 // Number payload, or bit-reinterpreted storage unused otherwise
	i    int64   // Integer payload
	b    bool    // Boolean payload
	obj  any     // String: *Str; Table: *T (value/table.go); Function: Callable; Thread: HeapObject
}

// T is implemented by heap table types (value/table.go's *Table) so this
// package's arithmetic/Length helpers can operate on tables without a
// direct type dependency loop with the object/vm packages that embed it.
type T interface {
	HeapObject
	Get(Value) Value
	Set(Value, Value) error
	Len() int64
}

// Str is the heap-owned immutable byte sequence backing a String value.
type Str struct {
	heap.Header
	s string
}

func (*Str) isHeapObject() {}

// NewString allocates a Str wrapping s. Strings are not pooled/interned
// by this package; a heap.Heap that wants content-based interning does
// so by keeping its own map[string]*Str and handing out the same *Str
// for equal content (spec §5 "Strings are interned by content
// (implementation choice)").
func NewString(s string) *Str {
	str := &Str{s: s}
	heap.Default.Register(&str.Header)
	return str
}

func (s *Str) String() string { return s.s }
func (s *Str) Len() int64     { return int64(len(s.s)) }

func Nil_() Value                  { return Value{kind: Nil} }
func Bool(b bool) Value            { return Value{kind: Boolean, b: b} }
func Int(i int64) Value            { return Value{kind: Integer, i: i} }
func Num(f float64) Value          { return Value{kind: Number, num: f} }
func Str_(s string) Value          { return Value{kind: String, obj: NewString(s)} }
func StrObj(s *Str) Value          { return Value{kind: String, obj: s} }
func TableVal(t T) Value           { return Value{kind: Table, obj: t} }
func FuncVal(c Callable) Value     { return Value{kind: Function, obj: c} }
func ThreadVal(t HeapObject) Value { return Value{kind: Thread, obj: t} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNil() bool   { return v.kind == Nil }
func (v Value) AsBool() bool  { return v.b }
func (v Value) AsInt() int64  { return v.i }
func (v Value) AsNum() float64 { return v.num }
func (v Value) AsString() *Str { return v.obj.(*Str) }
func (v Value) AsTable() T     { return v.obj.(T) }
func (v Value) AsFunction() Callable { return v.obj.(Callable) }
func (v Value) AsThread() HeapObject { return v.obj.(HeapObject) }

// HeapRef returns the underlying heap object reference for String/Table/
// Function/Thread values (nil for the inline variants), for write-barrier
// callers that don't care which concrete kind it is.
func (v Value) HeapRef() HeapObject {
	if v.obj == nil {
		return nil
	}
	if h, ok := v.obj.(HeapObject); ok {
		return h
	}
	return nil
}

// GCRef returns the heap.Object view of v's underlying reference -- the
// tracer's interface, distinct from this package's own HeapObject marker
// -- for write-barrier call sites in this package and object/vm. nil for
// an inline-kind Value and for a reference kind whose concrete type
// doesn't participate in tracing (object.HostFunc).
func (v Value) GCRef() heap.Object {
	if v.obj == nil {
		return nil
	}
	if h, ok := v.obj.(heap.Object); ok {
		return h
	}
	return nil
}

// ToBool implements Nilan's truthiness rule (spec §4.2): Nil and false
// are falsy, everything else (including 0 and "") is truthy.
func (v Value) ToBool() bool {
	switch v.kind {
	case Nil:
		return false
	case Boolean:
		return v.b
	default:
		return true
	}
}

// ToNumber widens v to a float64 if it is Integer, Number, or a String
// parsable as a numeral; used by the float-arithmetic and for-loop
// coercion paths (spec §4.2).
func (v Value) ToNumber() (float64, bool) {
	switch v.kind {
	case Integer:
		return float64(v.i), true
	case Number:
		return v.num, true
	case String:
		return parseNumeral(v.obj.(*Str).s)
	default:
		return 0, false
	}
}

// ToInteger narrows v to an int64: directly for Integer, only when
// exactly representable for Number (spec §3 "integer operations on
// Number values are permitted only when the Number is exactly
// representable as Integer"), and via numeral parse + exactness check
// for String.
func (v Value) ToInteger() (int64, bool) {
	switch v.kind {
	case Integer:
		return v.i, true
	case Number:
		return numberToInteger(v.num)
	case String:
		f, ok := parseNumeral(v.obj.(*Str).s)
		if !ok {
			return 0, false
		}
		return numberToInteger(f)
	default:
		return 0, false
	}
}

func numberToInteger(f float64) (int64, bool) {
	i := int64(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

// Equals implements spec §4.2 equality: structural for Nil/Boolean/
// Integer/Number/String (with Integer/Number cross-comparison on equal
// mathematical value), identity for Table/Function/Thread.
func (a Value) Equals(b Value) bool {
	switch a.kind {
	case Nil:
		return b.kind == Nil
	case Boolean:
		return b.kind == Boolean && a.b == b.b
	case Integer:
		switch b.kind {
		case Integer:
			return a.i == b.i
		case Number:
			return float64(a.i) == b.num
		}
		return false
	case Number:
		switch b.kind {
		case Integer:
			return a.num == float64(b.i)
		case Number:
			return a.num == b.num
		}
		return false
	case String:
		return b.kind == String && a.obj.(*Str).s == b.obj.(*Str).s
	case Table, Function, Thread:
		return a.kind == b.kind && a.obj == b.obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case Nil:
		return "nil"
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Integer:
		return fmt.Sprintf("%d", v.i)
	case Number:
		return formatFloat(v.num)
	case String:
		return v.obj.(*Str).s
	case Table:
		return fmt.Sprintf("table: %p", v.obj)
	case Function:
		return fmt.Sprintf("function: %p", v.obj)
	case Thread:
		return fmt.Sprintf("thread: %p", v.obj)
	default:
		return "<?>"
	}
}
