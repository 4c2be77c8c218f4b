package object

import (
	"testing"

	"github.com/nilan-lang/nilan/value"
)

type fakeStack struct {
	slots []value.Value
}

func (s *fakeStack) StackGet(i int) value.Value    { return s.slots[i] }
func (s *fakeStack) StackSet(i int, v value.Value) { s.slots[i] = v }

func TestOpenUpValueReadsThroughStack(t *testing.T) {
	stack := &fakeStack{slots: []value.Value{value.Int(1), value.Int(42)}}
	uv := NewOpenUpValue(stack, 1)

	if !uv.IsOpen() {
		t.Fatal("expected open upvalue")
	}
	if got := uv.Get().AsInt(); got != 42 {
		t.Errorf("Get() = %d, want 42", got)
	}

	uv.Set(value.Int(7))
	if stack.slots[1].AsInt() != 7 {
		t.Errorf("Set did not write through to stack, got %v", stack.slots[1])
	}
}

func TestCloseCopiesValueAndSeversAlias(t *testing.T) {
	stack := &fakeStack{slots: []value.Value{value.Int(99)}}
	uv := NewOpenUpValue(stack, 0)

	uv.Close()
	if uv.IsOpen() {
		t.Fatal("expected closed after Close")
	}
	if got := uv.Get().AsInt(); got != 99 {
		t.Errorf("Get() after close = %d, want 99", got)
	}

	stack.slots[0] = value.Int(1000)
	if got := uv.Get().AsInt(); got != 99 {
		t.Errorf("closed upvalue observed a stack write, got %d", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	stack := &fakeStack{slots: []value.Value{value.Int(5)}}
	uv := NewOpenUpValue(stack, 0)
	uv.Close()
	uv.Set(value.Int(6))
	uv.Close() // no-op: must not try to read the now-stale stack index again
	if got := uv.Get().AsInt(); got != 6 {
		t.Errorf("Get() = %d, want 6", got)
	}
}

func TestNewClosedUpValueHasNoStackAlias(t *testing.T) {
	uv := NewClosedUpValue(value.Str_("globals"))
	if uv.IsOpen() {
		t.Fatal("expected closed")
	}
	if got := uv.Get().String(); got != "globals" {
		t.Errorf("Get() = %q, want %q", got, "globals")
	}
}
