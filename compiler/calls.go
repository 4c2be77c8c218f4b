package compiler

import (
	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// compileCallGeneric compiles a call or method call, placing the
// callee's first nresultsOperand results starting at the register the
// callee itself occupied (the Call opcode's own convention; spec §4.4).
// nresultsOperand is either a literal count or vm.CountAll for "every
// result the callee produces".
func (c *Compiler) compileCallGeneric(call *ast.Call, nresultsOperand int) int {
	fs := c.cur
	funcReg := fs.alloc()
	var argBase int
	if call.Method != "" {
		fs.alloc() // funcReg+1: the self argument, filled by the Self opcode
		c.compileExprInto(call.Callee, funcReg+1)
		keyIdx := fs.addConstant(value.Str_(call.Method))
		keyReg := fs.alloc()
		c.emit(vm.LoadConstant, call.Ln, keyReg, keyIdx)
		c.emit(vm.Self, call.Ln, funcReg, funcReg+1, keyReg)
		argBase = funcReg + 2
	} else {
		c.compileExprInto(call.Callee, funcReg)
		argBase = funcReg + 1
	}
	fs.nextReg = argBase

	nargs, dynamic := c.compileExprListMulti(call.Args, argBase)
	nargsOperand := nargs
	if dynamic {
		nargsOperand = vm.CountAll
	}
	c.emit(vm.Call, call.Ln, funcReg, nargsOperand, nresultsOperand)
	fs.nextReg = funcReg + 1
	return funcReg
}

// compileExprListMulti compiles exprs into consecutive registers
// starting at destBase. All but the last are truncated to one value
// each; the last, if a *ast.Call or *ast.Vararg, expands to every value
// it produces (signalled by dynamic == true) rather than just one
// (spec §4.4's "last-expression expansion" convention, matching
// original_source's treatment of trailing call/vararg expressions in an
// expression list).
func (c *Compiler) compileExprListMulti(exprs []ast.Expression, destBase int) (fixed int, dynamic bool) {
	fs := c.cur
	n := len(exprs)
	if n == 0 {
		fs.nextReg = destBase
		return 0, false
	}
	for i := 0; i < n-1; i++ {
		reg := destBase + i
		fs.nextReg = reg
		c.compileExprInto(exprs[i], reg)
		fs.nextReg = reg + 1
	}
	last := exprs[n-1]
	lastReg := destBase + n - 1
	fs.nextReg = lastReg
	switch le := last.(type) {
	case *ast.Call:
		c.compileCallGeneric(le, vm.CountAll)
		return n - 1, true
	case *ast.Vararg:
		c.emit(vm.VarArgs, le.Ln, lastReg, vm.CountAll)
		fs.nextReg = lastReg + 1
		return n - 1, true
	default:
		c.compileExprInto(last, lastReg)
		fs.nextReg = lastReg + 1
		return n, false
	}
}

// compileExprListFixed compiles exprs into exactly want consecutive
// registers starting at destBase: short falls are nil-padded, and a
// trailing call/vararg is asked for exactly the remaining slots rather
// than "all of them" (spec §4.4's local/assignment adjustment rule).
// Used where the destination arity is fixed at compile time: local and
// assignment right-hand sides, and a generic-for clause's iterator/
// state/control triple.
func (c *Compiler) compileExprListFixed(exprs []ast.Expression, destBase, want int) {
	fs := c.cur
	n := len(exprs)
	if want <= 0 {
		want = 0
	}
	if n == 0 {
		for i := 0; i < want; i++ {
			fs.nextReg = destBase + i
			c.emit(vm.LoadNil, 0, destBase+i, 0)
		}
		fs.nextReg = destBase + want
		return
	}

	fixedCount := n - 1
	if fixedCount > want {
		fixedCount = want
	}
	for i := 0; i < fixedCount; i++ {
		reg := destBase + i
		fs.nextReg = reg
		c.compileExprInto(exprs[i], reg)
		fs.nextReg = reg + 1
	}
	// Evaluate any earlier expressions beyond what the fixed slots hold
	// (more RHS expressions than targets) for their side effects.
	for i := fixedCount; i < n-1; i++ {
		scratch := fs.alloc()
		c.compileExprInto(exprs[i], scratch)
	}

	last := exprs[n-1]
	lastReg := destBase + fixedCount
	remaining := want - fixedCount
	if remaining <= 0 {
		scratch := fs.alloc()
		c.compileExprInto(last, scratch)
		fs.nextReg = destBase + want
		return
	}
	fs.nextReg = lastReg
	switch le := last.(type) {
	case *ast.Call:
		c.compileCallGeneric(le, remaining)
		fs.nextReg = destBase + want
	case *ast.Vararg:
		c.emit(vm.VarArgs, le.Ln, lastReg, remaining)
		fs.nextReg = destBase + want
	default:
		c.compileExprInto(last, lastReg)
		for i := 1; i < remaining; i++ {
			c.emit(vm.LoadNil, le.Line(), lastReg+i, 0)
		}
		fs.nextReg = destBase + want
	}
}
