package ast

// ExpressionStmt is a bare call used for its side effect: "f(x)".
type ExpressionStmt struct {
	Expr Expression
}

func (s *ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(s) }

// LocalStmt is "local a, b = expr, expr": declares fresh locals in the
// enclosing block, binding as many of Values as there are, Nil-filling
// any remainder.
type LocalStmt struct {
	Names  []string
	Values []Expression
	Ln     int32
}

func (s *LocalStmt) Accept(v StmtVisitor) any { return v.VisitLocalStmt(s) }

// AssignStmt is "a, b = expr, expr", where each Target is a Variable or
// an Index (field/subscript assignment).
type AssignStmt struct {
	Targets []Expression
	Values  []Expression
	Ln      int32
}

func (s *AssignStmt) Accept(v StmtVisitor) any { return v.VisitAssignStmt(s) }

// BlockStmt is a sequence of statements sharing one local scope.
type BlockStmt struct {
	Stmts []Stmt
}

func (s *BlockStmt) Accept(v StmtVisitor) any { return v.VisitBlockStmt(s) }

// IfStmt is "if cond then ... [elseif cond then ...]* [else ...] end",
// desugared by the parser into a chain of Else blocks each holding
// either further statements or a single nested IfStmt.
type IfStmt struct {
	Cond Expression
	Then *BlockStmt
	Else *BlockStmt // may itself contain a single IfStmt, for elseif
}

func (s *IfStmt) Accept(v StmtVisitor) any { return v.VisitIfStmt(s) }

// WhileStmt is "while cond do ... end".
type WhileStmt struct {
	Cond Expression
	Body *BlockStmt
}

func (s *WhileStmt) Accept(v StmtVisitor) any { return v.VisitWhileStmt(s) }

// NumericForStmt is "for name = init, limit[, step] do ... end".
type NumericForStmt struct {
	Name  string
	Init  Expression
	Limit Expression
	Step  Expression // nil means literal 1
	Body  *BlockStmt
	Ln    int32
}

func (s *NumericForStmt) Accept(v StmtVisitor) any { return v.VisitNumericForStmt(s) }

// GenericForStmt is "for a, b, ... in iter, state, control do ... end".
type GenericForStmt struct {
	Names []string
	Exprs []Expression // iterator, state, control (control optional)
	Body  *BlockStmt
	Ln    int32
}

func (s *GenericForStmt) Accept(v StmtVisitor) any { return v.VisitGenericForStmt(s) }

// FunctionDeclStmt is sugar for "name = function(...) ... end" (or
// "local name = function ..." when Local is true), kept as its own node
// so the compiler can special-case recursive self-reference (the
// function's own name is already a visible local/global while its body
// compiles).
type FunctionDeclStmt struct {
	Name  string
	Local bool
	Fn    *Function
}

func (s *FunctionDeclStmt) Accept(v StmtVisitor) any { return v.VisitFunctionDeclStmt(s) }

// ReturnStmt is "return expr, expr, ...", Exprs empty for a bare return.
type ReturnStmt struct {
	Exprs []Expression
	Ln    int32
}

func (s *ReturnStmt) Accept(v StmtVisitor) any { return v.VisitReturnStmt(s) }

// BreakStmt is "break", valid only inside a loop body.
type BreakStmt struct {
	Ln int32
}

func (s *BreakStmt) Accept(v StmtVisitor) any { return v.VisitBreakStmt(s) }
