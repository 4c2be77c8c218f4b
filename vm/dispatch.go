package vm

import (
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// StepResult reports why Step returned control to its caller (spec §4.5
// "VM Dispatcher"). Grounded on original_source/src/vm.rs's run_vm,
// which returns the instruction budget remaining; restated here as an
// explicit result enum so a host scheduler can tell "ran out of budget"
// apart from "the thread itself changed state" without inspecting a
// counter.
type StepResult uint8

const (
	StillRunning StepResult = iota // budget exhausted, same frame still on top
	FrameChanged                   // a call or return pushed/popped a frame
	Yielded
	Finished
	Error
)

// Dispatcher runs a Thread's bytecode. It holds no state of its own; a
// single Dispatcher value can drive any number of Threads.
type Dispatcher struct{}

// Step runs thread for up to budget instructions, stopping early when
// the current frame changes, the thread yields, finishes, or errors
// (spec §4.5). budget <= 0 means "run to the next frame change or
// terminal state regardless of instruction count".
func (Dispatcher) Step(thread *Thread, budget int) (StepResult, error) {
	if thread.state == Finished {
		return Finished, nil
	}
	if thread.state == Errored {
		return Error, thread.err
	}
	thread.state = Running

	unlimited := budget <= 0
	remaining := budget
	for unlimited || remaining > 0 {
		if len(thread.frames) == 0 {
			thread.state = Finished
			return Finished, nil
		}
		frame := &thread.frames[len(thread.frames)-1]
		proto := frame.Closure.Proto

		if frame.PC >= len(proto.Code) {
			thread.raise(BytecodeIntegrityError{PC: frame.PC, Message: "fell off the end of the instruction stream"})
			return Error, thread.err
		}

		instrStart := frame.PC
		op := OpCode(proto.Code[frame.PC])
		def, err := Get(op)
		if err != nil {
			thread.raise(BytecodeIntegrityError{PC: frame.PC, Message: err.Error()})
			return Error, thread.err
		}
		operands, n := ReadOperands(def, proto.Code, frame.PC+1)
		frame.PC += 1 + n

		line := int32(0)
		if instrStart < len(proto.Lines) {
			line = proto.Lines[instrStart]
		}

		changed, result, err := thread.exec(op, operands, frame, line)
		if err != nil {
			thread.raise(err)
			return Error, thread.err
		}
		if changed {
			return result, nil
		}
		if !unlimited {
			remaining--
		}
	}
	return StillRunning, nil
}

func (t *Thread) raise(err error) {
	t.state = Errored
	t.err = err
}

func (t *Thread) reg(frame *ScriptFrame, i int) value.Value     { return t.stack[frame.Base+i] }
func (t *Thread) setReg(frame *ScriptFrame, i int, v value.Value) { t.stack[frame.Base+i] = v }

func (t *Thread) konst(frame *ScriptFrame, i int) value.Value {
	return frame.Closure.Proto.Constants[i]
}

// exec runs exactly one instruction. It returns changed == true when the
// caller's Step loop must return immediately (a call, return, tail call,
// or yield touched the frame stack).
func (t *Thread) exec(op OpCode, args []int, frame *ScriptFrame, line int32) (bool, StepResult, error) {
	switch op {
	case Move:
		t.setReg(frame, args[0], t.reg(frame, args[1]))

	case LoadConstant:
		t.setReg(frame, args[0], t.konst(frame, args[1]))

	case LoadBool:
		t.setReg(frame, args[0], value.Bool(args[1] != 0))

	case LoadNil:
		for i := 0; i <= args[1]; i++ {
			t.setReg(frame, args[0]+i, value.Nil_())
		}

	case NewTable:
		t.setReg(frame, args[0], value.TableVal(value.NewTable()))

	case GetTable:
		tbl, ok := tableOperand(t.reg(frame, args[1]))
		if !ok {
			return true, Error, TypeError{Line: line, Cause: &value.OpError{Op: "index", Left: t.reg(frame, args[1]).Kind()}}
		}
		t.setReg(frame, args[0], tbl.Get(t.reg(frame, args[2])))

	case SetTable:
		tbl, ok := tableOperand(t.reg(frame, args[0]))
		if !ok {
			return true, Error, TypeError{Line: line, Cause: &value.OpError{Op: "newindex", Left: t.reg(frame, args[0]).Kind()}}
		}
		if err := tbl.Set(t.reg(frame, args[1]), t.reg(frame, args[2])); err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}

	case GetUpTable:
		uv := frame.Closure.UpValues[args[1]]
		tbl, ok := tableOperand(uv.Get())
		if !ok {
			return true, Error, TypeError{Line: line, Cause: &value.OpError{Op: "index", Left: uv.Get().Kind()}}
		}
		t.setReg(frame, args[0], tbl.Get(t.reg(frame, args[2])))

	case SetUpTable:
		uv := frame.Closure.UpValues[args[0]]
		tbl, ok := tableOperand(uv.Get())
		if !ok {
			return true, Error, TypeError{Line: line, Cause: &value.OpError{Op: "newindex", Left: uv.Get().Kind()}}
		}
		if err := tbl.Set(t.reg(frame, args[1]), t.reg(frame, args[2])); err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}

	case GetUpValue:
		t.setReg(frame, args[0], frame.Closure.UpValues[args[1]].Get())

	case SetUpValue:
		frame.Closure.UpValues[args[1]].Set(t.reg(frame, args[0]))

	case Jump:
		frame.PC += int(signed16(args[0]))

	case Test:
		if t.reg(frame, args[0]).ToBool() != (args[1] != 0) {
			frame.PC += 1 + 2 // skip the Jump that follows a failed Test
		}

	case TestSet:
		v := t.reg(frame, args[1])
		if v.ToBool() == (args[2] != 0) {
			t.setReg(frame, args[0], v)
		} else {
			frame.PC += 1 + 2
		}

	case Closure:
		proto := frame.Closure.Proto.Protos[args[1]]
		ups := make([]*object.UpValue, len(proto.UpValues))
		for i, desc := range proto.UpValues {
			switch desc.Source {
			case object.FromParentLocal:
				ups[i] = t.findOrOpenUpValue(frame.Base + desc.Index)
			case object.FromParentUpValue:
				ups[i] = frame.Closure.UpValues[desc.Index]
			case object.FromEnvironment:
				ups[i] = frame.Closure.UpValues[0]
			}
		}
		t.setReg(frame, args[0], value.FuncVal(object.NewClosure(proto, ups)))

	case Not:
		t.setReg(frame, args[0], t.reg(frame, args[1]).Not())
	case Minus:
		v, err := t.reg(frame, args[1]).Neg()
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], v)
	case BitNot:
		v, err := t.reg(frame, args[1]).BitNot()
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], v)
	case Length:
		v, err := t.reg(frame, args[1]).Length()
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], v)

	case Add, Sub, Mul, Div, IDiv, Mod, Pow, BitAnd, BitOr, BitXor, Shl, Shr:
		l, r := t.reg(frame, args[1]), t.reg(frame, args[2])
		v, err := binaryArith(op, l, r)
		if err != nil {
			if _, ok := err.(*value.ArithError); ok {
				return true, Error, ArithmeticError{Line: line, Cause: err}
			}
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], v)

	case Eq:
		t.setReg(frame, args[0], value.Bool(t.reg(frame, args[1]).Equals(t.reg(frame, args[2]))))
	case Less:
		ok, err := t.reg(frame, args[1]).Less(t.reg(frame, args[2]))
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], value.Bool(ok))
	case LessEq:
		ok, err := t.reg(frame, args[1]).LessEqual(t.reg(frame, args[2]))
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], value.Bool(ok))

	case Concat:
		start, count := args[1], args[2]
		vs := make([]value.Value, count)
		for i := 0; i < count; i++ {
			vs[i] = t.reg(frame, start+i)
		}
		v, err := value.Concat(vs)
		if err != nil {
			return true, Error, TypeError{Line: line, Cause: err}
		}
		t.setReg(frame, args[0], v)

	case Self:
		tbl, ok := tableOperand(t.reg(frame, args[1]))
		if !ok {
			return true, Error, TypeError{Line: line, Cause: &value.OpError{Op: "index", Left: t.reg(frame, args[1]).Kind()}}
		}
		key := t.reg(frame, args[2])
		t.setReg(frame, args[0]+1, t.reg(frame, args[1]))
		t.setReg(frame, args[0], tbl.Get(key))

	case NumericForPrep:
		if err := t.forPrep(frame, args[0]); err != nil {
			return true, Error, ArithmeticError{Line: line, Cause: err}
		}
		frame.PC += int(signed16(args[1]))
	case NumericForLoop:
		cont, err := t.forLoop(frame, args[0])
		if err != nil {
			return true, Error, ArithmeticError{Line: line, Cause: err}
		}
		if cont {
			frame.PC += int(signed16(args[1]))
		}

	case GenericForCall:
		if err := t.genericForCall(frame, args[0], args[1]); err != nil {
			return true, Error, err
		}
	case GenericForLoop:
		// base+3 holds the first value GenericForCall just stored (the
		// new control value); base+2 is the control slot the next
		// GenericForCall reads its argument from.
		if !t.reg(frame, args[0]+3).IsNil() {
			t.setReg(frame, args[0]+2, t.reg(frame, args[0]+3))
			frame.PC += int(signed16(args[1]))
		}

	case VarArgs:
		want := decodeCount(args[1])
		if want < 0 {
			want = len(frame.VarArgs)
		}
		t.reserve(frame.Base + args[0] + want)
		for i := 0; i < want; i++ {
			v := value.Nil_()
			if i < len(frame.VarArgs) {
				v = frame.VarArgs[i]
			}
			t.setReg(frame, args[0]+i, v)
		}
		if decodeCount(args[1]) < 0 {
			frame.Top = frame.Base + args[0] + want
		}

	case Call:
		return true, t.call(frame, args[0], decodeCount(args[1]), decodeCount(args[2]), line), t.err
	case TailCall:
		return true, t.tailCall(frame, args[0], decodeCount(args[1]), line), t.err
	case Return:
		return true, t.ret(frame, args[0], decodeCount(args[1])), t.err

	default:
		return true, Error, BytecodeIntegrityError{PC: frame.PC, Message: "unhandled opcode"}
	}
	return false, StillRunning, nil
}

func tableOperand(v value.Value) (value.T, bool) {
	if v.Kind() != value.Table {
		return nil, false
	}
	return v.AsTable(), true
}

func binaryArith(op OpCode, l, r value.Value) (value.Value, error) {
	switch op {
	case Add:
		return l.Add(r)
	case Sub:
		return l.Sub(r)
	case Mul:
		return l.Mul(r)
	case Div:
		return l.Div(r)
	case IDiv:
		return l.IDiv(r)
	case Mod:
		return l.Mod(r)
	case Pow:
		return l.Pow(r)
	case BitAnd:
		return l.BitAnd(r)
	case BitOr:
		return l.BitOr(r)
	case BitXor:
		return l.BitXor(r)
	case Shl:
		return l.Shl(r)
	case Shr:
		return l.Shr(r)
	}
	panic("unreachable")
}
