package value

import (
	"fmt"

	"github.com/nilan-lang/nilan/heap"
)

// Table is the hybrid array+hash heap object backing Nilan's one
// aggregate type (spec §3). Keys 1..n with no gaps live in arr (0-based
// storage for key i+1); everything else lives in hash. This mirrors the
// array-part/hash-part split original_source/src/vm.rs describes for its
// Table value, restated in the teacher's plain-struct style.
type Table struct {
	heap.Header
	arr  []Value
	hash map[Value]Value
}

func (*Table) isHeapObject() {}

// NewTable allocates an empty Table.
func NewTable() *Table {
	t := &Table{}
	heap.Default.Register(&t.Header)
	return t
}

// KeyError reports an attempt to use a Nil or NaN key, both of which are
// rejected by Set (spec §3 "Table keys exclude Nil and NaN").
type KeyError struct {
	Reason string
}

func (e *KeyError) Error() string { return fmt.Sprintf("table index is %s", e.Reason) }

func isNaN(v Value) bool { return v.kind == Number && v.num != v.num }

// Get looks up key, returning Nil for an absent key or an out-of-range
// array index (spec §3's Table.Get operation never fails).
func (t *Table) Get(key Value) Value {
	key = normalizeKey(key)
	if key.kind == Integer && key.i >= 1 && int(key.i) <= len(t.arr) {
		return t.arr[key.i-1]
	}
	if t.hash == nil {
		return Nil_()
	}
	if v, ok := t.hash[normalizeKey(key)]; ok {
		return v
	}
	return Nil_()
}

// Set stores val at key, or deletes the key when val is Nil. Storing Nil
// at a live array index trims the array's logical length only at the
// tail; a hole in the middle just becomes a Nil element (the border rule
// in Len then governs what "length" reports there). Nil and NaN keys
// fail (spec §3).
func (t *Table) Set(key Value, val Value) error {
	if key.kind == Nil {
		return &KeyError{Reason: "nil"}
	}
	if isNaN(key) {
		return &KeyError{Reason: "NaN"}
	}
	key = normalizeKey(key)

	// Write barrier (spec §3): a Black table receiving a reference to a
	// still-White object must re-gray so an in-progress mark doesn't miss
	// the new edge. A no-op for inline values and for a Nil val (deletion).
	if ref := val.GCRef(); ref != nil {
		heap.Default.Barrier(&t.Header, ref)
	}

	if key.kind == Integer && key.i >= 1 {
		idx := int(key.i)
		switch {
		case idx <= len(t.arr):
			t.arr[idx-1] = val
			if val.kind == Nil && idx == len(t.arr) {
				t.trimArray()
			}
			return nil
		case idx == len(t.arr)+1 && val.kind != Nil:
			t.arr = append(t.arr, val)
			t.migrateFromHash()
			return nil
		}
	}

	if val.kind == Nil {
		if t.hash != nil {
			delete(t.hash, key)
		}
		return nil
	}
	if t.hash == nil {
		t.hash = make(map[Value]Value)
	}
	t.hash[key] = val
	return nil
}

// normalizeKey folds a float-valued Number key that is exactly
// representable as an Integer onto the Integer key, so that t[1] and
// t[1.0] address the same slot (spec §4.2's integer/float key identity).
func normalizeKey(key Value) Value {
	if key.kind == Number {
		if i, ok := numberToInteger(key.num); ok {
			return Int(i)
		}
	}
	return key
}

func (t *Table) trimArray() {
	for len(t.arr) > 0 && t.arr[len(t.arr)-1].kind == Nil {
		t.arr = t.arr[:len(t.arr)-1]
	}
}

// migrateFromHash pulls any hash-part entries keyed by consecutive
// integers immediately following the array part into the array, so that
// append-style growth (t[#t+1] = v in a loop) doesn't permanently
// fragment into the hash part.
func (t *Table) migrateFromHash() {
	if t.hash == nil {
		return
	}
	for {
		next := Int(int64(len(t.arr) + 1))
		v, ok := t.hash[next]
		if !ok {
			return
		}
		t.arr = append(t.arr, v)
		delete(t.hash, next)
	}
}

// Len implements the `#` border rule (spec §3): any n such that
// t[n] ~= nil and t[n+1] == nil, or 0 if t[1] == nil. With no holes in
// the array part this is simply its length.
func (t *Table) Len() int64 {
	n := len(t.arr)
	for n > 0 && t.arr[n-1].kind == Nil {
		n--
	}
	return int64(n)
}
