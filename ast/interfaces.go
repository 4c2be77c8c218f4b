// Package ast defines the syntax tree nodes the parser produces and the
// compiler consumes, following the visitor design pattern (kept/adapted
// from the teacher's ast package, generalized from its toy expression
// grammar to the full statement/expression grammar SPEC_FULL.md needs).
package ast

// ExpressionVisitor is implemented by anything that walks Expression
// nodes (here, only compiler.Compiler; an ast-printer or type-checker
// could implement it too without touching these node types).
type ExpressionVisitor interface {
	VisitBinary(e *Binary) any
	VisitUnary(e *Unary) any
	VisitLiteral(e *Literal) any
	VisitGrouping(e *Grouping) any
	VisitVariable(e *Variable) any
	VisitLogical(e *Logical) any
	VisitCall(e *Call) any
	VisitIndex(e *Index) any
	VisitTableConstructor(e *TableConstructor) any
	VisitFunction(e *Function) any
	VisitVararg(e *Vararg) any
}

// StmtVisitor is implemented by anything that walks Stmt nodes.
type StmtVisitor interface {
	VisitExpressionStmt(s *ExpressionStmt) any
	VisitLocalStmt(s *LocalStmt) any
	VisitAssignStmt(s *AssignStmt) any
	VisitBlockStmt(s *BlockStmt) any
	VisitIfStmt(s *IfStmt) any
	VisitWhileStmt(s *WhileStmt) any
	VisitNumericForStmt(s *NumericForStmt) any
	VisitGenericForStmt(s *GenericForStmt) any
	VisitFunctionDeclStmt(s *FunctionDeclStmt) any
	VisitReturnStmt(s *ReturnStmt) any
	VisitBreakStmt(s *BreakStmt) any
}

// Expression is the base interface every expression node implements.
type Expression interface {
	Accept(v ExpressionVisitor) any
	Line() int32
}

// Stmt is the base interface every statement node implements.
type Stmt interface {
	Accept(v StmtVisitor) any
}
