package vm

import (
	"sort"

	"github.com/nilan-lang/nilan/heap"
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// State tags a Thread's cooperative-scheduling status (spec §5).
type State uint8

const (
	Suspended State = iota // never started, or yielded and not yet resumed
	Running
	Normal // resumed another thread and is waiting on it
	Finished
	Errored
)

func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Normal:
		return "normal"
	case Finished:
		return "finished"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

const maxFrameDepth = 200

// Thread is one cooperative, resumable execution context: a value stack
// shared by every frame on it, the frame stack itself, and the ordered
// list of still-open upvalues pointing into the stack (spec §4.4, §5).
// Grounded on the stack-growth idiom the teacher's vm package used for
// its (now-removed) expression-evaluation stack, generalized to a
// register file.
type Thread struct {
	heap.Header
	value.HeapMarker

	stack []value.Value
	top   int

	frames []ScriptFrame

	// openUpValues is sorted ascending by stack index (spec §4.4), so
	// that capturing the same register twice shares one UpValue.
	openUpValues []*object.UpValue

	state State
	err   error
}

// NewThread returns a Thread with an empty stack, ready to have a
// closure pushed onto it and run.
func NewThread() *Thread {
	t := &Thread{stack: make([]value.Value, 64)}
	heap.Default.Register(&t.Header)
	return t
}

func (*Thread) Arity() (fixed int, vararg bool) { return 0, false }

func (t *Thread) State() State { return t.state }
func (t *Thread) Err() error   { return t.err }

// reserve grows the stack so indices up to n-1 are valid, geometrically
// (double the capacity) to keep amortized push cost constant.
func (t *Thread) reserve(n int) {
	if n <= len(t.stack) {
		return
	}
	newCap := len(t.stack) * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]value.Value, newCap)
	copy(grown, t.stack[:t.top])
	t.stack = grown
}

// StackGet/StackSet implement object.StackCell, giving open UpValues a
// way to alias a live register without importing vm back into object.
func (t *Thread) StackGet(index int) value.Value  { return t.stack[index] }
func (t *Thread) StackSet(index int, v value.Value) { t.stack[index] = v }

// findOrOpenUpValue returns the existing open UpValue aliasing absolute
// stack index idx if one is already being shared, or opens a new one
// and inserts it keeping openUpValues sorted ascending (spec §4.4).
func (t *Thread) findOrOpenUpValue(idx int) *object.UpValue {
	i := sort.Search(len(t.openUpValues), func(i int) bool {
		return t.openUpValues[i].Index() >= idx
	})
	if i < len(t.openUpValues) && t.openUpValues[i].Index() == idx {
		return t.openUpValues[i]
	}
	uv := object.NewOpenUpValue(t, idx)
	t.openUpValues = append(t.openUpValues, nil)
	copy(t.openUpValues[i+1:], t.openUpValues[i:])
	t.openUpValues[i] = uv
	return uv
}

// closeUpValuesFrom closes every open UpValue aliasing a stack index >=
// from, idempotently, and drops them from the live list. It runs when a
// frame returns or is replaced by a tail call; leaving a block inside a
// frame closes nothing, so upvalues over a block's locals stay open until
// the frame itself ends.
func (t *Thread) closeUpValuesFrom(from int) {
	i := sort.Search(len(t.openUpValues), func(i int) bool {
		return t.openUpValues[i].Index() >= from
	})
	for _, uv := range t.openUpValues[i:] {
		uv.Close()
	}
	t.openUpValues = t.openUpValues[:i]
}
