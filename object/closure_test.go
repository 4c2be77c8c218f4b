package object

import (
	"testing"

	"github.com/nilan-lang/nilan/value"
)

func TestClosureArityReflectsPrototype(t *testing.T) {
	proto := NewPrototype()
	proto.NumParams = 2
	proto.IsVararg = true
	cl := NewClosure(proto, nil)

	fixed, vararg := cl.Arity()
	if fixed != 2 || !vararg {
		t.Errorf("Arity() = (%d, %v), want (2, true)", fixed, vararg)
	}
}

func TestSharedPrototypeDistinctClosuresIndependentUpValues(t *testing.T) {
	proto := NewPrototype()
	a := NewClosure(proto, []*UpValue{NewClosedUpValue(value.Int(1))})
	b := NewClosure(proto, []*UpValue{NewClosedUpValue(value.Int(2))})

	a.UpValues[0].Set(value.Int(99))
	if b.UpValues[0].Get().AsInt() != 2 {
		t.Errorf("closures over one prototype shared an upvalue slot")
	}
	if a.Proto != b.Proto {
		t.Errorf("expected shared Prototype pointer")
	}
}

func TestHostFuncArity(t *testing.T) {
	h := NewHostFunc("print", 1, true, func(args []value.Value) ([]value.Value, error) {
		return nil, nil
	})
	fixed, vararg := h.Arity()
	if fixed != 1 || !vararg {
		t.Errorf("Arity() = (%d, %v), want (1, true)", fixed, vararg)
	}
}
