package compiler

import (
	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/token"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// The Visit* methods below implement ast.ExpressionVisitor. Each returns
// (boxed as any) the register holding the expression's single value;
// compileExpr unwraps it. Multi-value contexts (call arguments, return
// lists, local/assignment right-hand sides) special-case *ast.Call and
// *ast.Vararg themselves rather than going through this visitor, since a
// single register can't stand for "however many values come back".

func (c *Compiler) VisitLiteral(e *ast.Literal) any {
	fs := c.cur
	dest := fs.alloc()
	switch e.Kind {
	case ast.LitNil:
		c.emit(vm.LoadNil, e.Ln, dest, 0)
	case ast.LitTrue:
		c.emit(vm.LoadBool, e.Ln, dest, 1)
	case ast.LitFalse:
		c.emit(vm.LoadBool, e.Ln, dest, 0)
	case ast.LitInt:
		idx := fs.addConstant(value.Int(e.I))
		c.emit(vm.LoadConstant, e.Ln, dest, idx)
	case ast.LitNumber:
		idx := fs.addConstant(value.Num(e.N))
		c.emit(vm.LoadConstant, e.Ln, dest, idx)
	case ast.LitString:
		idx := fs.addConstant(value.Str_(e.S))
		c.emit(vm.LoadConstant, e.Ln, dest, idx)
	}
	return dest
}

func (c *Compiler) VisitGrouping(e *ast.Grouping) any {
	return c.compileExpr(e.Inner)
}

func (c *Compiler) VisitVariable(e *ast.Variable) any {
	fs := c.cur
	if reg, ok := fs.resolveLocal(e.Name); ok {
		return reg
	}
	if idx, ok := c.resolveUpvalue(fs, e.Name); ok {
		dest := fs.alloc()
		c.emit(vm.GetUpValue, e.Ln, dest, idx)
		return dest
	}
	return c.compileGlobalGet(e.Name, e.Ln)
}

func (c *Compiler) VisitUnary(e *ast.Unary) any {
	operand := c.compileExpr(e.Operand)
	dest := c.cur.alloc()
	switch e.Op {
	case token.MINUS:
		c.emit(vm.Minus, e.Ln, dest, operand)
	case token.NOT:
		c.emit(vm.Not, e.Ln, dest, operand)
	case token.HASH:
		c.emit(vm.Length, e.Ln, dest, operand)
	case token.TILDE:
		c.emit(vm.BitNot, e.Ln, dest, operand)
	default:
		panic(DeveloperError{Message: "unhandled unary operator " + e.Op.String()})
	}
	return dest
}

func (c *Compiler) VisitBinary(e *ast.Binary) any {
	if e.Op == token.CONCAT {
		return c.compileConcat(e)
	}

	l := c.compileExpr(e.Left)
	r := c.compileExpr(e.Right)
	fs := c.cur
	dest := fs.alloc()
	switch e.Op {
	case token.PLUS:
		c.emit(vm.Add, e.Ln, dest, l, r)
	case token.MINUS:
		c.emit(vm.Sub, e.Ln, dest, l, r)
	case token.STAR:
		c.emit(vm.Mul, e.Ln, dest, l, r)
	case token.SLASH:
		c.emit(vm.Div, e.Ln, dest, l, r)
	case token.SLASH2:
		c.emit(vm.IDiv, e.Ln, dest, l, r)
	case token.PERCENT:
		c.emit(vm.Mod, e.Ln, dest, l, r)
	case token.CARET:
		c.emit(vm.Pow, e.Ln, dest, l, r)
	case token.AMP:
		c.emit(vm.BitAnd, e.Ln, dest, l, r)
	case token.PIPE:
		c.emit(vm.BitOr, e.Ln, dest, l, r)
	case token.TILDE:
		c.emit(vm.BitXor, e.Ln, dest, l, r)
	case token.SHL:
		c.emit(vm.Shl, e.Ln, dest, l, r)
	case token.SHR:
		c.emit(vm.Shr, e.Ln, dest, l, r)
	case token.EQ:
		c.emit(vm.Eq, e.Ln, dest, l, r)
	case token.NE:
		c.emit(vm.Eq, e.Ln, dest, l, r)
		c.emit(vm.Not, e.Ln, dest, dest)
	case token.LT:
		c.emit(vm.Less, e.Ln, dest, l, r)
	case token.LE:
		c.emit(vm.LessEq, e.Ln, dest, l, r)
	case token.GT:
		c.emit(vm.Less, e.Ln, dest, r, l)
	case token.GE:
		c.emit(vm.LessEq, e.Ln, dest, r, l)
	default:
		panic(DeveloperError{Message: "unhandled binary operator " + e.Op.String()})
	}
	return dest
}

// compileConcat forces both operands into freshly allocated, adjacent
// registers: the Concat opcode addresses its operands as a (start,
// count) run rather than two independent registers (spec §4.5
// "Concat"), so a Left already sitting in some unrelated local's
// register can't be used directly.
func (c *Compiler) compileConcat(e *ast.Binary) any {
	fs := c.cur
	lReg := fs.alloc()
	rReg := fs.alloc()
	c.compileExprInto(e.Left, lReg)
	c.compileExprInto(e.Right, rReg)
	dest := fs.alloc()
	c.emit(vm.Concat, e.Ln, dest, lReg, 2)
	return dest
}

// VisitLogical compiles "and"/"or" with a Test/Jump pair rather than a
// dedicated opcode: the left operand's value is left in dest, and the
// right is only evaluated (overwriting dest) when short-circuiting
// doesn't already settle the result (spec §4.2's boolean semantics).
func (c *Compiler) VisitLogical(e *ast.Logical) any {
	fs := c.cur
	dest := fs.alloc()
	c.compileExprInto(e.Left, dest)

	wantTrue := 0
	if e.Op == token.OR {
		wantTrue = 1
	}
	c.emit(vm.Test, e.Ln, dest, wantTrue)
	jmp := c.emit(vm.Jump, e.Ln, 0)

	c.compileExprInto(e.Right, dest)
	c.patchJump(jmp, c.here())
	return dest
}

func (c *Compiler) VisitIndex(e *ast.Index) any {
	fs := c.cur
	tbl := c.compileExpr(e.Table)
	var key int
	if e.Field != "" {
		idx := fs.addConstant(value.Str_(e.Field))
		key = fs.alloc()
		c.emit(vm.LoadConstant, e.Ln, key, idx)
	} else {
		key = c.compileExpr(e.Key)
	}
	dest := fs.alloc()
	c.emit(vm.GetTable, e.Ln, dest, tbl, key)
	return dest
}

func (c *Compiler) VisitCall(e *ast.Call) any {
	return c.compileCallGeneric(e, 1)
}

func (c *Compiler) VisitTableConstructor(e *ast.TableConstructor) any {
	fs := c.cur
	dest := fs.alloc()
	c.emit(vm.NewTable, e.Ln, dest)

	for i, val := range e.Array {
		mark := fs.nextReg
		vReg := fs.alloc()
		c.compileExprInto(val, vReg)
		idx := fs.addConstant(value.Int(int64(i + 1)))
		kReg := fs.alloc()
		c.emit(vm.LoadConstant, val.Line(), kReg, idx)
		c.emit(vm.SetTable, val.Line(), dest, kReg, vReg)
		fs.nextReg = mark
	}
	for i, key := range e.Keys {
		mark := fs.nextReg
		kReg := fs.alloc()
		c.compileExprInto(key, kReg)
		vReg := fs.alloc()
		c.compileExprInto(e.Vals[i], vReg)
		c.emit(vm.SetTable, key.Line(), dest, kReg, vReg)
		fs.nextReg = mark
	}
	return dest
}

func (c *Compiler) VisitFunction(e *ast.Function) any {
	proto := c.compileFunctionBody(e)
	fs := c.cur
	idx := len(fs.proto.Protos)
	fs.proto.Protos = append(fs.proto.Protos, proto)
	dest := fs.alloc()
	c.emit(vm.Closure, e.Ln, dest, idx)
	return dest
}

func (c *Compiler) VisitVararg(e *ast.Vararg) any {
	dest := c.cur.alloc()
	c.emit(vm.VarArgs, e.Ln, dest, 1)
	return dest
}
