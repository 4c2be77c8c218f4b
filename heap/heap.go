// Package heap implements the tracing-GC contract Nilan's value domain
// is built against (spec §3 "Heap & GC Contract"): object headers with
// tri-color mark bits and a write barrier invoked on every heap-reference
// store into a heap object. It does not implement a full incremental
// collector; spec §6 scopes that out. Grounded on the teacher's plain
// struct-and-method package style (informatter-nilan has no GC of its
// own, so this package's shape follows the teacher's vm/stack.go
// slice-growth idiom rather than any single file).
package heap

// Object is implemented by every heap-owned value the tracer actually
// follows (value.Table, value.Str, object.Closure, object.UpValue,
// vm.Thread) via an embedded Header plus a gcHeader accessor. Kept
// minimal and dependency-free so the lower-level value package can embed
// heap.Header without heap importing value back. object.HostFunc
// deliberately does not participate: it is a static, args-in/values-out
// native function with no outgoing heap-reference fields of its own to
// barrier and no cycle risk, so there is nothing for the tracer to do
// with one.
type Object interface {
	gcHeader() *Header
}

// Color is a tri-color mark-sweep mark bit (spec §3).
type Color uint8

const (
	White Color = iota // not yet visited this cycle; candidate for sweep
	Gray                // visited, children not yet scanned
	Black               // visited, children scanned
)

// Header is embedded by every heap object this package manages
// (value.Table, value.Str, object.Closure, vm.Thread). It carries the
// mark-sweep bookkeeping without constraining the embedding type's own
// fields or methods.
type Header struct {
	color Color
	next  *Header // intrusive all-objects linked list, for the sweep phase
}

func (h *Header) Color() Color    { return h.color }
func (h *Header) setColor(c Color) { h.color = c }

// Heap owns the intrusive object list and the write-barrier policy. A
// Heap is not safe for concurrent use; spec §5 confines heap mutation to
// whichever goroutine is currently running a given Thread.
type Heap struct {
	all       *Header
	collector *Collector
}

// New returns an empty Heap with an empty root set. Nothing is collected
// unless a caller runs Mark and Sweep itself.
func New() *Heap { return &Heap{collector: &Collector{}} }

// Default is the process-wide Heap that every heap-owned constructor in
// value/object/vm registers into and every reference-storing mutation
// barriers against. A running Nilan program is single-threaded per spec
// §5 (heap mutation is confined to whichever goroutine currently owns a
// given Thread), so one shared Heap needs no locking of its own.
var Default = New()

// Register links h into the heap's object list; every constructor for a
// heap-owned type (NewTable, NewString, NewClosure, NewThread) must call
// this exactly once.
func (heap *Heap) Register(h *Header) {
	h.color = White
	h.next = heap.all
	heap.all = h
}

// Barrier is the write barrier hook: called whenever a heap object
// (parent) is mutated to store a reference to another heap value
// (callers pass value.Value.GCRef()). Per spec §3's incremental-GC contract, a Black
// parent receiving a White child must re-gray the parent (or shade the
// child) so the collector does not miss the new edge mid-cycle.
func (heap *Heap) Barrier(parent *Header, child Object) {
	if parent == nil || child == nil {
		return
	}
	childHeader := child.gcHeader()
	if parent.color == Black && childHeader.color == White {
		parent.color = Gray
	}
}

// gcHeader makes Header itself satisfy Object: any type that embeds
// Header by value (value.Table, value.Str, object.Closure, vm.Thread)
// promotes this method and so automatically implements heap.Object,
// even though gcHeader is unexported and those types live in other
// packages -- the method is inherited, not re-declared.
func (h *Header) gcHeader() *Header { return h }
