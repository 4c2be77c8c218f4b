package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// valueComparer lets go-cmp diff []Value snapshots of table contents by
// Nilan's own equality instead of recursing into obj's heap pointers and
// Header's gray/black bookkeeping, which reflect.DeepEqual would do.
var valueComparer = cmp.Comparer(func(a, b Value) bool { return a.Equals(b) })

func TestTableGetAbsentIsNil(t *testing.T) {
	tb := NewTable()
	assert.True(t, tb.Get(Int(1)).IsNil())
}

func TestTableArrayAppendAndLen(t *testing.T) {
	tb := NewTable()
	for i := int64(1); i <= 3; i++ {
		assert.NoError(t, tb.Set(Int(i), Str_("v")))
	}
	assert.Equal(t, int64(3), tb.Len())
	assert.Equal(t, "v", tb.Get(Int(2)).String())
}

func TestTableFloatIntegerKeyIdentity(t *testing.T) {
	tb := NewTable()
	assert.NoError(t, tb.Set(Int(1), Str_("one")))
	assert.Equal(t, "one", tb.Get(Num(1.0)).String())
}

func TestTableNilKeyRejected(t *testing.T) {
	tb := NewTable()
	err := tb.Set(Nil_(), Int(1))
	assert.Error(t, err)
}

func TestTableNaNKeyRejected(t *testing.T) {
	tb := NewTable()
	err := tb.Set(Num(nan()), Int(1))
	assert.Error(t, err)
}

func TestTableSettingNilDeletesHashEntry(t *testing.T) {
	tb := NewTable()
	assert.NoError(t, tb.Set(Str_("k"), Int(1)))
	assert.NoError(t, tb.Set(Str_("k"), Nil_()))
	assert.True(t, tb.Get(Str_("k")).IsNil())
}

func TestTableTrailingNilTrimsArray(t *testing.T) {
	tb := NewTable()
	assert.NoError(t, tb.Set(Int(1), Int(10)))
	assert.NoError(t, tb.Set(Int(2), Int(20)))
	assert.NoError(t, tb.Set(Int(2), Nil_()))
	assert.Equal(t, int64(1), tb.Len())
}

func TestTableHashMigratesIntoArrayOnContiguousAppend(t *testing.T) {
	tb := NewTable()
	assert.NoError(t, tb.Set(Int(2), Str_("b")))
	assert.NoError(t, tb.Set(Int(1), Str_("a")))
	assert.Equal(t, int64(2), tb.Len())
	assert.Equal(t, "b", tb.Get(Int(2)).String())
}

// TestTableArraySnapshotMatchesInsertionOrder rebuilds the array part as a
// plain []Value and diffs it against the expected contents with go-cmp,
// using a Comparer built on Value.Equals so the diff compares Nilan values
// rather than Value's unexported fields and heap pointers.
func TestTableArraySnapshotMatchesInsertionOrder(t *testing.T) {
	tb := NewTable()
	assert.NoError(t, tb.Set(Int(1), Int(10)))
	assert.NoError(t, tb.Set(Int(2), Int(20)))
	assert.NoError(t, tb.Set(Int(3), Int(30)))

	got := make([]Value, tb.Len())
	for i := range got {
		got[i] = tb.Get(Int(int64(i) + 1))
	}
	want := []Value{Int(10), Int(20), Int(30)}

	if diff := cmp.Diff(want, got, valueComparer); diff != "" {
		t.Errorf("table array snapshot mismatch (-want +got):\n%s", diff)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
