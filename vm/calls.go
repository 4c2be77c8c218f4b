package vm

import (
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
)

// argCount resolves a Call/TailCall/Return "count" operand: a
// non-negative value is taken literally, -1 means "everything up to the
// frame's dynamic Top", the convention a preceding VarArgs or multi-
// result Call with its own count of -1 leaves behind (spec §4.4
// "variable stack-frame state").
func (t *Thread) argCount(frame *ScriptFrame, startReg, count int) int {
	if count >= 0 {
		return count
	}
	return frame.Top - (frame.Base + startReg)
}

// call implements the Call opcode: funcReg holds the callee, the nargs
// values starting at funcReg+1 are the arguments, and nresults is how
// many return values the caller wants (-1 for all of them).
func (t *Thread) call(frame *ScriptFrame, funcReg, nargs, nresults int, line int32) StepResult {
	n := t.argCount(frame, funcReg+1, nargs)
	args := make([]value.Value, n)
	for i := 0; i < n; i++ {
		args[i] = t.reg(frame, funcReg+1+i)
	}
	return t.invoke(frame, funcReg, args, nresults, line)
}

// tailCall implements TailCall: the callee and its arguments are read out
// of the current frame's registers *before* that frame is discarded, then
// dispatched to land at the frame's own base -- reusing its stack slot so
// a chain of tail calls never grows the frame stack (spec §4.4's tail
// call contract), whether or not another frame remains beneath it.
func (t *Thread) tailCall(frame *ScriptFrame, funcReg, nargs int, line int32) StepResult {
	calleeVal := t.reg(frame, funcReg)
	n := t.argCount(frame, funcReg+1, nargs)
	args := make([]value.Value, n)
	for i := 0; i < n; i++ {
		args[i] = t.reg(frame, funcReg+1+i)
	}
	wantResults := frame.NumResults
	destAbs := frame.Base
	t.closeUpValuesFrom(frame.Base)
	t.frames = t.frames[:len(t.frames)-1]
	return t.dispatch(calleeVal, args, wantResults, destAbs, line)
}

// invoke dispatches an ordinary (non-tail) Call: funcReg is resolved
// against frame's still-live registers and results land back in the
// callee's own register, starting the call chain one frame deeper
// (spec §4.4).
func (t *Thread) invoke(frame *ScriptFrame, funcReg int, args []value.Value, nresults int, line int32) StepResult {
	calleeVal := t.reg(frame, funcReg)
	destAbs := frame.Base + funcReg
	return t.dispatch(calleeVal, args, nresults, destAbs, line)
}

func (t *Thread) dispatch(calleeVal value.Value, args []value.Value, nresults int, destAbs int, line int32) StepResult {
	if calleeVal.Kind() != value.Function {
		t.raise(CallError{Line: line, Message: "attempt to call a " + calleeVal.Kind().String() + " value"})
		return Error
	}
	switch callee := calleeVal.AsFunction().(type) {
	case *object.Closure:
		return t.pushScriptFrame(callee, args, nresults, destAbs)
	case *object.HostFunc:
		return t.runHost(callee, args, nresults, destAbs, line)
	default:
		t.raise(BytecodeIntegrityError{Message: "unknown Callable implementation"})
		return Error
	}
}

func (t *Thread) pushScriptFrame(closure *object.Closure, args []value.Value, nresults, destAbs int) StepResult {
	if len(t.frames) >= maxFrameDepth {
		t.raise(StackOverflowError{Depth: len(t.frames)})
		return Error
	}
	proto := closure.Proto
	base := destAbs
	t.reserve(base + proto.MaxStack + 1)

	fixed := proto.NumParams
	for i := 0; i < fixed; i++ {
		v := value.Nil_()
		if i < len(args) {
			v = args[i]
		}
		t.stack[base+i] = v
	}
	var extra []value.Value
	if proto.IsVararg && len(args) > fixed {
		extra = append([]value.Value(nil), args[fixed:]...)
	}
	for i := fixed; i < proto.MaxStack; i++ {
		t.stack[base+i] = value.Nil_()
	}

	t.frames = append(t.frames, ScriptFrame{
		Closure:    closure,
		Base:       base,
		Top:        base + proto.MaxStack,
		PC:         0,
		NumResults: nresults,
		VarArgs:    extra,
	})
	t.top = base + proto.MaxStack
	return FrameChanged
}

func (t *Thread) runHost(fn *object.HostFunc, args []value.Value, nresults, destAbs int, line int32) StepResult {
	results, err := fn.Func(args)
	if err != nil {
		t.raise(CallError{Line: line, Message: err.Error()})
		return Error
	}
	t.storeResults(results, nresults, destAbs)
	if len(t.frames) == 0 {
		if nresults < 0 {
			t.top = destAbs + len(results)
		} else {
			t.top = destAbs + nresults
		}
		t.state = Finished
		return Finished
	}
	return FrameChanged
}

func (t *Thread) storeResults(results []value.Value, nresults, destAbs int) {
	n := nresults
	if n < 0 {
		n = len(results)
	}
	t.reserve(destAbs + n)
	for i := 0; i < n; i++ {
		v := value.Nil_()
		if i < len(results) {
			v = results[i]
		}
		t.stack[destAbs+i] = v
	}
	if nresults < 0 && len(t.frames) > 0 {
		t.frames[len(t.frames)-1].Top = destAbs + n
	}
}

// ret implements Return: the count values starting at start (relative to
// the current frame) become the frame's results, written back into the
// caller's registers at the slot the call occupied, then the frame is
// popped (spec §4.4).
func (t *Thread) ret(frame *ScriptFrame, start, count int) StepResult {
	n := t.argCount(frame, start, count)
	results := make([]value.Value, n)
	for i := 0; i < n; i++ {
		results[i] = t.reg(frame, start+i)
	}

	destAbs := frame.Base
	nresults := frame.NumResults
	t.closeUpValuesFrom(frame.Base)
	t.frames = t.frames[:len(t.frames)-1]

	if len(t.frames) == 0 {
		t.storeResults(results, nresults, 0)
		if nresults < 0 {
			t.top = len(results)
		} else {
			t.top = nresults
		}
		t.state = Finished
		return Finished
	}
	t.storeResults(results, nresults, destAbs)
	return FrameChanged
}

// forPrep normalizes a numeric-for loop's (initial, limit, step) triple
// at registers base..base+2, folds the first decrement in (so the
// matching forLoop's "add step, test, assign" sequence produces the
// first iteration's value), and rejects a zero step (spec §4.5
// "NumericForPrep").
func (t *Thread) forPrep(frame *ScriptFrame, base int) error {
	step := t.reg(frame, base+2)
	stepN, ok := step.ToNumber()
	if !ok {
		return &value.OpError{Op: "for", Left: step.Kind()}
	}
	if stepN == 0 {
		return &value.ArithError{Op: "for", Cause: "'for' step is zero"}
	}
	init := t.reg(frame, base)
	counter, err := init.Sub(step)
	if err != nil {
		return err
	}
	t.setReg(frame, base, counter)
	return nil
}

// forLoop implements NumericForLoop: advances the counter by step,
// tests it against the limit in the direction step indicates, and on
// continuation writes the visible loop variable at base+3 (spec §4.5).
func (t *Thread) forLoop(frame *ScriptFrame, base int) (bool, error) {
	step := t.reg(frame, base+2)
	counter, err := t.reg(frame, base).Add(step)
	if err != nil {
		return false, err
	}
	limit := t.reg(frame, base+1)

	negative, err := step.Less(value.Int(0))
	if err != nil {
		return false, err
	}
	var cont bool
	if negative {
		cont, err = limit.LessEqual(counter)
	} else {
		cont, err = counter.LessEqual(limit)
	}
	if err != nil {
		return false, err
	}
	if cont {
		t.setReg(frame, base, counter)
		t.setReg(frame, base+3, counter)
	}
	return cont, nil
}

// genericForCall implements GenericForCall: invokes the iterator
// function at base with (state, control) = (base+1, base+2), storing up
// to nvars results starting at base+3 for the following GenericForLoop
// to test (spec §4.5). A host-function iterator runs synchronously; a
// script-closure iterator runs a nested dispatch loop, with no
// instruction limit, to completion, since a generic-for iterator is not itself expected to
// yield (a documented simplification versus a fully reentrant call).
func (t *Thread) genericForCall(frame *ScriptFrame, base, nvars int) error {
	iterVal := t.reg(frame, base)
	state := t.reg(frame, base+1)
	control := t.reg(frame, base+2)
	if iterVal.Kind() != value.Function {
		return CallError{Message: "attempt to call a " + iterVal.Kind().String() + " value"}
	}
	results, err := t.callToCompletion(iterVal.AsFunction(), []value.Value{state, control})
	if err != nil {
		return err
	}
	destAbs := frame.Base + base + 3
	t.reserve(destAbs + nvars)
	for i := 0; i < nvars; i++ {
		v := value.Nil_()
		if i < len(results) {
			v = results[i]
		}
		t.stack[destAbs+i] = v
	}
	return nil
}

// callToCompletion runs callee(args) to exhaustion on a scratch nested
// Thread and returns its results, for call sites (generic-for's
// iterator) that need a synchronous value rather than a frame push.
func (t *Thread) callToCompletion(callee value.Callable, args []value.Value) ([]value.Value, error) {
	if host, ok := callee.(*object.HostFunc); ok {
		return host.Func(args)
	}
	closure := callee.(*object.Closure)
	nested := NewThread()
	nested.pushScriptFrame(closure, args, -1, 0)
	var d Dispatcher
	for {
		res, err := d.Step(nested, 0)
		switch res {
		case Finished:
			n := nested.top
			out := make([]value.Value, n)
			copy(out, nested.stack[:n])
			return out, nil
		case Error:
			return nil, err
		}
	}
}
