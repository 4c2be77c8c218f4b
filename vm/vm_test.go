package vm

import (
	"encoding/binary"
	"testing"

	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// emitter accumulates instructions while recording the byte offset each one
// started at, so jump operands can be patched against real positions instead
// of hand-computed magic numbers.
type emitter struct{ code []byte }

func (e *emitter) emit(instr []byte) int {
	pos := len(e.code)
	e.code = append(e.code, instr...)
	return pos
}

// patchJump overwrites the final (2-byte) operand of the instruction at
// instrPos with the signed displacement from that instruction's natural
// successor to target, matching how Step advances frame.PC before exec.
func patchJump(code []byte, instrPos, target int) {
	def, err := Get(OpCode(code[instrPos]))
	if err != nil {
		panic(err)
	}
	width := 1
	for _, w := range def.OperandWidths {
		width += w
	}
	operandOffset := instrPos + width - 2
	offset := target - (instrPos + width)
	binary.BigEndian.PutUint16(code[operandOffset:], uint16(int16(offset)))
}

func TestRunSimpleArithmetic(t *testing.T) {
	var e emitter
	e.emit(MakeInstruction(LoadConstant, 0, 0))
	e.emit(MakeInstruction(LoadConstant, 1, 1))
	e.emit(MakeInstruction(Add, 2, 0, 1))
	e.emit(MakeInstruction(Return, 2, 1))

	proto := object.NewPrototype()
	proto.Code = e.code
	proto.Constants = []value.Value{value.Int(2), value.Int(3)}
	proto.MaxStack = 3

	results, err := Run(object.NewClosure(proto, nil), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].AsInt() != 5 {
		t.Fatalf("results = %v, want [5]", results)
	}
}

// TestRunClosureSharesUpValueAcrossCall builds an outer chunk that closes a
// local counter over a nested prototype (Closure+GetUpValue+SetUpValue),
// calls it once, and returns the outer frame's own local, which must show
// the callee's write through the shared open upvalue.
func TestRunClosureSharesUpValueAcrossCall(t *testing.T) {
	var inner emitter
	inner.emit(MakeInstruction(GetUpValue, 0, 0))
	inner.emit(MakeInstruction(LoadConstant, 1, 0))
	inner.emit(MakeInstruction(Add, 0, 0, 1))
	inner.emit(MakeInstruction(SetUpValue, 0, 0))
	inner.emit(MakeInstruction(Return, 0, 1))

	innerProto := object.NewPrototype()
	innerProto.Code = inner.code
	innerProto.Constants = []value.Value{value.Int(1)}
	innerProto.MaxStack = 2
	innerProto.UpValues = []object.UpValueDescriptor{{Source: object.FromParentLocal, Index: 0}}

	var outer emitter
	outer.emit(MakeInstruction(LoadConstant, 0, 0))
	outer.emit(MakeInstruction(Closure, 1, 0))
	outer.emit(MakeInstruction(Call, 1, 0, 1))
	outer.emit(MakeInstruction(Return, 0, 1))

	outerProto := object.NewPrototype()
	outerProto.Code = outer.code
	outerProto.Constants = []value.Value{value.Int(0)}
	outerProto.Protos = []*object.Prototype{innerProto}
	outerProto.MaxStack = 2

	results, err := Run(object.NewClosure(outerProto, nil), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].AsInt() != 1 {
		t.Fatalf("results = %v, want [1]", results)
	}
}

// TestRunNumericForSum exercises NumericForPrep/NumericForLoop's jump
// patching directly: sum i from 1 to 3.
func TestRunNumericForSum(t *testing.T) {
	var e emitter
	e.emit(MakeInstruction(LoadConstant, 0, 0)) // r0 = sum = 0
	e.emit(MakeInstruction(LoadConstant, 1, 1)) // r1 = init = 1
	e.emit(MakeInstruction(LoadConstant, 2, 2)) // r2 = limit = 3
	e.emit(MakeInstruction(LoadConstant, 3, 1)) // r3 = step = 1

	prepPos := e.emit(MakeInstruction(NumericForPrep, 1, 0))
	bodyStart := len(e.code)
	e.emit(MakeInstruction(Add, 0, 0, 4)) // sum += loopvar(r4)
	loopPos := e.emit(MakeInstruction(NumericForLoop, 1, 0))
	e.emit(MakeInstruction(Return, 0, 1))

	patchJump(e.code, prepPos, loopPos)
	patchJump(e.code, loopPos, bodyStart)

	proto := object.NewPrototype()
	proto.Code = e.code
	proto.Constants = []value.Value{value.Int(0), value.Int(1), value.Int(3)}
	proto.MaxStack = 5

	results, err := Run(object.NewClosure(proto, nil), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].AsInt() != 6 {
		t.Fatalf("results = %v, want [6]", results)
	}
}

// TestRunGenericForSum is a regression test for the GenericForLoop register
// layout (base+3 is the freshly produced control value, base+2 is where it
// gets copied for the next GenericForCall): sums a host-iterator's values.
func TestRunGenericForSum(t *testing.T) {
	tbl := value.NewTable()
	tbl.Set(value.Int(1), value.Int(10))
	tbl.Set(value.Int(2), value.Int(20))
	tbl.Set(value.Int(3), value.Int(30))

	iter := object.NewHostFunc("iter", 2, false, func(args []value.Value) ([]value.Value, error) {
		idx := args[1].AsInt() + 1
		v := tbl.Get(value.Int(idx))
		if v.IsNil() {
			return []value.Value{value.Nil_()}, nil
		}
		return []value.Value{value.Int(idx), v}, nil
	})

	var e emitter
	e.emit(MakeInstruction(LoadConstant, 0, 0)) // r0 = sum = 0
	e.emit(MakeInstruction(LoadConstant, 1, 1)) // r1 = iterator function
	e.emit(MakeInstruction(LoadConstant, 2, 2)) // r2 = state (table)
	e.emit(MakeInstruction(LoadConstant, 3, 3)) // r3 = control = 0

	entryJump := e.emit(MakeInstruction(Jump, 0))
	bodyStart := len(e.code)
	e.emit(MakeInstruction(Add, 0, 0, 5)) // sum += value (r5)
	callPos := len(e.code)
	e.emit(MakeInstruction(GenericForCall, 1, 2))
	loopPos := e.emit(MakeInstruction(GenericForLoop, 1, 0))
	e.emit(MakeInstruction(Return, 0, 1))

	patchJump(e.code, entryJump, callPos)
	patchJump(e.code, loopPos, bodyStart)

	proto := object.NewPrototype()
	proto.Code = e.code
	proto.Constants = []value.Value{value.Int(0), value.FuncVal(iter), value.TableVal(tbl), value.Int(0)}
	proto.MaxStack = 6

	results, err := Run(object.NewClosure(proto, nil), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].AsInt() != 60 {
		t.Fatalf("results = %v, want [60]", results)
	}
}

// TestTailCallDoesNotGrowFrameStack recurses a thousand tail calls deep
// (self passed as an explicit argument, avoiding any need for a Closure
// self-reference), well past maxFrameDepth, and checks it still completes:
// a non-tail recursion of the same depth would hit StackOverflowError.
func TestTailCallDoesNotGrowFrameStack(t *testing.T) {
	var e emitter
	// params: r0=self, r1=n, r2=acc
	e.emit(MakeInstruction(LoadConstant, 3, 0)) // r3 = 0
	e.emit(MakeInstruction(Eq, 4, 1, 3))        // r4 = (n == 0)
	e.emit(MakeInstruction(Test, 4, 0))
	jmpPos := e.emit(MakeInstruction(Jump, 0))
	e.emit(MakeInstruction(Return, 2, 1)) // base case: return acc

	elseStart := len(e.code)
	e.emit(MakeInstruction(Add, 2, 2, 1))    // acc += n
	e.emit(MakeInstruction(LoadConstant, 5, 1)) // r5 = 1
	e.emit(MakeInstruction(Sub, 1, 1, 5))    // n -= 1
	e.emit(MakeInstruction(Move, 6, 0))      // callee = self
	e.emit(MakeInstruction(Move, 7, 0))      // arg0 = self
	e.emit(MakeInstruction(Move, 8, 1))      // arg1 = n
	e.emit(MakeInstruction(Move, 9, 2))      // arg2 = acc
	e.emit(MakeInstruction(TailCall, 6, 3))

	patchJump(e.code, jmpPos, elseStart)

	proto := object.NewPrototype()
	proto.Code = e.code
	proto.Constants = []value.Value{value.Int(0), value.Int(1)}
	proto.NumParams = 3
	proto.MaxStack = 10

	closure := object.NewClosure(proto, nil)
	results, err := Run(closure, []value.Value{value.FuncVal(closure), value.Int(1000), value.Int(0)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].AsInt() != 500500 {
		t.Fatalf("results = %v, want [500500]", results)
	}
}

func TestCallErrorOnNonFunctionValue(t *testing.T) {
	var e emitter
	e.emit(MakeInstruction(LoadConstant, 0, 0))
	e.emit(MakeInstruction(Call, 0, 0, 1))

	proto := object.NewPrototype()
	proto.Code = e.code
	proto.Constants = []value.Value{value.Int(1)}
	proto.MaxStack = 1

	_, err := Run(object.NewClosure(proto, nil), nil)
	if err == nil {
		t.Fatal("expected an error calling a non-function value")
	}
}
