package compiler

import (
	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// compileBlock compiles stmts in order within the function's current
// scope. The caller is responsible for entering/leaving the lexical
// scope this block's locals belong to (a loop/if/function body owns its
// own scope; compileBlock itself only ever appends instructions).
func (c *Compiler) compileBlock(block *ast.BlockStmt) {
	for _, stmt := range block.Stmts {
		stmt.Accept(c)
	}
}

func (c *Compiler) VisitExpressionStmt(s *ast.ExpressionStmt) any {
	mark := c.cur.nextReg
	if call, ok := s.Expr.(*ast.Call); ok {
		c.compileCallGeneric(call, 0)
	} else {
		c.compileExpr(s.Expr)
	}
	c.cur.nextReg = mark
	return nil
}

func (c *Compiler) VisitLocalStmt(s *ast.LocalStmt) any {
	fs := c.cur
	base := fs.nextReg
	c.compileExprListFixed(s.Values, base, len(s.Names))
	for i, name := range s.Names {
		fs.declareLocal(name, base+i)
	}
	return nil
}

func (c *Compiler) VisitAssignStmt(s *ast.AssignStmt) any {
	fs := c.cur
	mark := fs.nextReg
	base := fs.nextReg
	c.compileExprListFixed(s.Values, base, len(s.Targets))
	for i, target := range s.Targets {
		c.compileAssignTo(target, base+i)
	}
	fs.nextReg = mark
	return nil
}

// compileAssignTo stores the value in srcReg into target, which the
// parser guarantees is either a *ast.Variable or an *ast.Index.
func (c *Compiler) compileAssignTo(target ast.Expression, srcReg int) {
	fs := c.cur
	switch t := target.(type) {
	case *ast.Variable:
		if reg, ok := fs.resolveLocal(t.Name); ok {
			if reg != srcReg {
				c.emit(vm.Move, t.Ln, reg, srcReg)
			}
			return
		}
		if idx, ok := c.resolveUpvalue(fs, t.Name); ok {
			c.emit(vm.SetUpValue, t.Ln, srcReg, idx)
			return
		}
		c.compileGlobalSet(t.Name, srcReg, t.Ln)
	case *ast.Index:
		tbl := c.compileExpr(t.Table)
		var key int
		if t.Field != "" {
			idx := fs.addConstant(value.Str_(t.Field))
			key = fs.alloc()
			c.emit(vm.LoadConstant, t.Ln, key, idx)
		} else {
			key = c.compileExpr(t.Key)
		}
		c.emit(vm.SetTable, t.Ln, tbl, key, srcReg)
	default:
		panic(DeveloperError{Message: "invalid assignment target"})
	}
}

func (c *Compiler) VisitBlockStmt(s *ast.BlockStmt) any {
	c.cur.enterScope()
	c.compileBlock(s)
	c.cur.leaveScope()
	return nil
}

// VisitIfStmt compiles "if cond then Then [else Else] end". Test's flag
// is 0 ("want falsy"): when Cond is truthy the Test skips the following
// Jump and falls into Then; when falsy the Jump fires and branches past
// it to Else (or straight to end, with no Else).
func (c *Compiler) VisitIfStmt(s *ast.IfStmt) any {
	fs := c.cur
	mark := fs.nextReg
	cond := fs.alloc()
	c.compileExprInto(s.Cond, cond)
	fs.nextReg = mark

	c.emit(vm.Test, s.Cond.Line(), cond, 0)
	elseJump := c.emit(vm.Jump, s.Cond.Line(), 0)

	fs.enterScope()
	c.compileBlock(s.Then)
	fs.leaveScope()

	if s.Else == nil {
		c.patchJump(elseJump, c.here())
		return nil
	}

	endJump := c.emit(vm.Jump, s.Cond.Line(), 0)
	c.patchJump(elseJump, c.here())
	fs.enterScope()
	c.compileBlock(s.Else)
	fs.leaveScope()
	c.patchJump(endJump, c.here())
	return nil
}

func (c *Compiler) VisitWhileStmt(s *ast.WhileStmt) any {
	fs := c.cur
	loopStart := c.here()
	mark := fs.nextReg
	cond := fs.alloc()
	c.compileExprInto(s.Cond, cond)
	c.emit(vm.Test, s.Cond.Line(), cond, 0)
	exitJump := c.emit(vm.Jump, s.Cond.Line(), 0)
	fs.nextReg = mark

	loop := fs.pushLoop()
	fs.enterScope()
	c.compileBlock(s.Body)
	fs.leaveScope()
	backJump := c.emit(vm.Jump, s.Cond.Line(), 0)
	c.patchJump(backJump, loopStart)
	fs.popLoop()

	end := c.here()
	c.patchJump(exitJump, end)
	for _, b := range loop.breaks {
		c.patchJump(b, end)
	}
	return nil
}

func (c *Compiler) VisitNumericForStmt(s *ast.NumericForStmt) any {
	fs := c.cur
	base := fs.nextReg
	fs.alloc() // init
	fs.alloc() // limit
	fs.alloc() // step

	c.compileExprInto(s.Init, base)
	c.compileExprInto(s.Limit, base+1)
	if s.Step != nil {
		c.compileExprInto(s.Step, base+2)
	} else {
		idx := fs.addConstant(value.Int(1))
		c.emit(vm.LoadConstant, s.Ln, base+2, idx)
	}

	prepPos := c.emit(vm.NumericForPrep, s.Ln, base, 0)

	loop := fs.pushLoop()
	fs.nextReg = base + 3 // drop init/limit/step temporaries
	fs.enterScope()
	loopVar := fs.alloc() // base+3, the visible loop variable
	fs.declareLocal(s.Name, loopVar)
	c.compileBlock(s.Body)
	fs.leaveScope()

	loopPos := c.emit(vm.NumericForLoop, s.Ln, base, 0)
	c.patchJump(prepPos, loopPos)
	bodyStart := prepPos + instrLen(vm.NumericForPrep)
	c.patchJump(loopPos, bodyStart)
	fs.popLoop()

	end := c.here()
	for _, b := range loop.breaks {
		c.patchJump(b, end)
	}
	fs.nextReg = base
	return nil
}

func (c *Compiler) VisitGenericForStmt(s *ast.GenericForStmt) any {
	fs := c.cur
	base := fs.nextReg
	c.compileExprListFixed(s.Exprs, base, 3)

	nvars := len(s.Names)
	entryJump := c.emit(vm.Jump, s.Ln, 0)

	loop := fs.pushLoop()
	fs.enterScope()
	for _, name := range s.Names {
		reg := fs.alloc()
		fs.declareLocal(name, reg)
	}
	bodyStart := c.here()
	c.compileBlock(s.Body)
	fs.leaveScope()

	forCallPos := c.here()
	c.patchJump(entryJump, forCallPos)
	c.emit(vm.GenericForCall, s.Ln, base, nvars)
	loopPos := c.emit(vm.GenericForLoop, s.Ln, base, 0)
	c.patchJump(loopPos, bodyStart)
	fs.popLoop()

	end := c.here()
	for _, b := range loop.breaks {
		c.patchJump(b, end)
	}
	fs.nextReg = base
	return nil
}

func (c *Compiler) VisitFunctionDeclStmt(s *ast.FunctionDeclStmt) any {
	fs := c.cur
	if s.Local {
		reg := fs.alloc()
		fs.declareLocal(s.Name, reg) // visible inside its own body, for recursion
		c.compileExprInto(s.Fn, reg)
		return nil
	}
	dest := c.compileExpr(s.Fn)
	c.compileAssignTo(&ast.Variable{Name: s.Name, Ln: s.Fn.Line()}, dest)
	return nil
}

func (c *Compiler) VisitReturnStmt(s *ast.ReturnStmt) any {
	fs := c.cur
	base := fs.nextReg
	n, dynamic := c.compileExprListMulti(s.Exprs, base)
	count := n
	if dynamic {
		count = vm.CountAll
	}
	c.emit(vm.Return, s.Ln, base, count)
	return nil
}

func (c *Compiler) VisitBreakStmt(s *ast.BreakStmt) any {
	loop, ok := c.cur.currentLoop()
	if !ok {
		panic(SemanticError{Line: s.Ln, Message: "break outside a loop"})
	}
	jmp := c.emit(vm.Jump, s.Ln, 0)
	loop.breaks = append(loop.breaks, jmp)
	return nil
}

// compileFunctionBody compiles a function literal's parameters and body
// into a fresh nested Prototype (spec §4.3's per-closure template).
func (c *Compiler) compileFunctionBody(fn *ast.Function) *object.Prototype {
	parent := c.cur
	fs := newFuncState(parent)
	fs.proto.NumParams = len(fn.Params)
	fs.proto.IsVararg = fn.IsVararg
	c.cur = fs

	fs.enterScope()
	for _, p := range fn.Params {
		reg := fs.alloc()
		fs.declareLocal(p, reg)
	}
	c.compileBlock(fn.Body)
	fs.leaveScope()
	c.emit(vm.Return, fn.Ln, 0, 0)

	c.cur = parent
	return fs.proto
}

func instrLen(op vm.OpCode) int {
	def, err := vm.Get(op)
	if err != nil {
		panic(DeveloperError{Message: err.Error()})
	}
	n := 1
	for _, w := range def.OperandWidths {
		n += w
	}
	return n
}
