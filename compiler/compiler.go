// Package compiler walks the parser's AST and emits the register-machine
// bytecode the vm package's Dispatcher runs (spec §4.3-4.5). Kept/adapted
// from the teacher's compiler package: the ASTCompiler visitor shape and
// its emit/addConstant idiom survive, generalized from a flat
// global-variable, single-pass expression compiler into one that
// resolves locals, upvalues, and scopes the way original_source/src's
// compiler does for the bytecode original_source/src/vm.rs executes.
package compiler

import (
	"encoding/binary"

	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// Compiler holds the single piece of state that spans nested function
// bodies: which funcState is currently being filled in. Everything else
// (scopes, registers, upvalues) lives on that funcState.
type Compiler struct {
	cur *funcState
}

// Compile compiles a parsed chunk (spec's top-level program) into the
// root Prototype a vm.Thread can be started on. The chunk is itself a
// vararg function of no parameters closing over a single _ENV upvalue,
// matching how every nested function resolves global names.
func Compile(chunk *ast.BlockStmt) (proto *object.Prototype, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case DeveloperError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	c := &Compiler{}
	fs := newFuncState(nil)
	fs.proto.IsVararg = true
	fs.proto.Name = "main chunk"
	c.cur = fs

	fs.enterScope()
	c.compileBlock(chunk)
	fs.leaveScope()

	c.emit(vm.Return, 0, 0, 0)
	return fs.proto, nil
}

// emit assembles op+operands and appends it (and a matching run of line
// entries, one per emitted byte) to the current function's code stream,
// returning the byte offset the instruction starts at.
func (c *Compiler) emit(op vm.OpCode, line int32, operands ...int) int {
	fs := c.cur
	instr := vm.MakeInstruction(op, operands...)
	start := len(fs.proto.Code)
	fs.proto.Code = append(fs.proto.Code, instr...)
	for range instr {
		fs.proto.Lines = append(fs.proto.Lines, line)
	}
	return start
}

// patchJump overwrites the 2-byte jump operand of the instruction at
// instrStart (Jump, NumericForPrep/Loop, GenericForLoop all carry one as
// their last operand) so that, once decoded, it lands PC on target.
func (c *Compiler) patchJump(instrStart int, target int) {
	fs := c.cur
	def, err := vm.Get(vm.OpCode(fs.proto.Code[instrStart]))
	if err != nil {
		panic(DeveloperError{Message: err.Error()})
	}
	total := 1
	offsetOfLast := 1
	for i, w := range def.OperandWidths {
		if i == len(def.OperandWidths)-1 {
			offsetOfLast = total
		}
		total += w
	}
	disp := target - (instrStart + total)
	binary.BigEndian.PutUint16(fs.proto.Code[instrStart+offsetOfLast:], uint16(int16(disp)))
}

func (c *Compiler) here() int { return len(c.cur.proto.Code) }

// compileExpr visits e and returns the register holding its (single)
// value: a Variable resolved to a local returns that local's own
// register with no copy; everything else allocates a fresh one.
func (c *Compiler) compileExpr(e ast.Expression) int {
	return e.Accept(c).(int)
}

// compileExprInto compiles e and ensures its value ends up in dest,
// emitting a Move only when compileExpr didn't already land it there.
func (c *Compiler) compileExprInto(e ast.Expression, dest int) {
	r := c.compileExpr(e)
	if r != dest {
		c.emit(vm.Move, e.Line(), dest, r)
	}
}

// resolveUpvalue finds name in an enclosing function's locals or
// upvalues and, if found, threads an UpValueDescriptor through every
// funcState from fs up to (not including) the one name was found in,
// returning the upvalue index on fs's own prototype.
func (c *Compiler) resolveUpvalue(fs *funcState, name string) (int, bool) {
	if fs.parent == nil {
		return 0, false
	}
	if reg, ok := fs.parent.resolveLocal(name); ok {
		return fs.addUpvalue(name, object.FromParentLocal, reg), true
	}
	if idx, ok := c.resolveUpvalue(fs.parent, name); ok {
		return fs.addUpvalue(name, object.FromParentUpValue, idx), true
	}
	return 0, false
}

// ensureEnvUpvalue returns the index of fs's _ENV upvalue, adding it
// (and, transitively, every enclosing function's own _ENV upvalue) if
// this is the first global access fs has compiled.
func (c *Compiler) ensureEnvUpvalue(fs *funcState) int {
	for i, d := range fs.proto.UpValues {
		if d.Name == "_ENV" {
			return i
		}
	}
	if fs.parent == nil {
		return fs.addUpvalue("_ENV", object.FromEnvironment, 0)
	}
	parentIdx := c.ensureEnvUpvalue(fs.parent)
	return fs.addUpvalue("_ENV", object.FromParentUpValue, parentIdx)
}

// compileGlobalGet emits the GetUpTable sequence for reading name out of
// the environment table, returning the register holding the result.
func (c *Compiler) compileGlobalGet(name string, line int32) int {
	fs := c.cur
	envIdx := c.ensureEnvUpvalue(fs)
	keyIdx := fs.addConstant(value.Str_(name))
	keyReg := fs.alloc()
	c.emit(vm.LoadConstant, line, keyReg, keyIdx)
	dest := fs.alloc()
	c.emit(vm.GetUpTable, line, dest, envIdx, keyReg)
	return dest
}

// compileGlobalSet emits the SetUpTable sequence assigning srcReg's
// value into the environment table under name.
func (c *Compiler) compileGlobalSet(name string, srcReg int, line int32) {
	fs := c.cur
	envIdx := c.ensureEnvUpvalue(fs)
	keyIdx := fs.addConstant(value.Str_(name))
	keyReg := fs.alloc()
	c.emit(vm.LoadConstant, line, keyReg, keyIdx)
	c.emit(vm.SetUpTable, line, envIdx, keyReg, srcReg)
	fs.nextReg = keyReg
}
