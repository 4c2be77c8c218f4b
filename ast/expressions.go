package ast

import "github.com/nilan-lang/nilan/token"

// Binary is a left op right, e.g. "a + b", "a < b", "a .. b".
type Binary struct {
	Left  Expression
	Op    token.Kind
	Right Expression
	Ln    int32
}

func (e *Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(e) }
func (e *Binary) Line() int32                    { return e.Ln }

// Logical is "a and b" / "a or b": unlike Binary, its right operand may
// not be evaluated (short-circuit), which the compiler handles with a
// Test/Jump pair rather than a single opcode.
type Logical struct {
	Left  Expression
	Op    token.Kind // AND or OR
	Right Expression
	Ln    int32
}

func (e *Logical) Accept(v ExpressionVisitor) any { return v.VisitLogical(e) }
func (e *Logical) Line() int32                    { return e.Ln }

// Unary is op operand, e.g. "-a", "not a", "#a", "~a".
type Unary struct {
	Op      token.Kind
	Operand Expression
	Ln      int32
}

func (e *Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(e) }
func (e *Unary) Line() int32                    { return e.Ln }

// Literal is a compile-time constant: nil, true, false, an Integer, a
// Number, or a String (the spec's Value kinds that have syntax).
type Literal struct {
	Kind LiteralKind
	I    int64
	N    float64
	S    string
	Ln   int32
}

type LiteralKind uint8

const (
	LitNil LiteralKind = iota
	LitTrue
	LitFalse
	LitInt
	LitNumber
	LitString
)

func (e *Literal) Accept(v ExpressionVisitor) any { return v.VisitLiteral(e) }
func (e *Literal) Line() int32                    { return e.Ln }

// Grouping is a parenthesized expression, "(a)"; kept as its own node
// (rather than collapsed away during parsing) because Lua-family syntax
// truncates a parenthesized multi-value expression to exactly one value.
type Grouping struct {
	Inner Expression
	Ln    int32
}

func (e *Grouping) Accept(v ExpressionVisitor) any { return v.VisitGrouping(e) }
func (e *Grouping) Line() int32                    { return e.Ln }

// Variable references a name: a local, an upvalue, or (if neither) a
// field of the implicit environment table, resolved by the compiler's
// scope-chain walk rather than by the parser.
type Variable struct {
	Name string
	Ln   int32
}

func (e *Variable) Accept(v ExpressionVisitor) any { return v.VisitVariable(e) }
func (e *Variable) Line() int32                    { return e.Ln }

// Call is callee(args...), or callee:Method(args...) sugar when Method
// is non-empty (the Self opcode's method-call convention).
type Call struct {
	Callee Expression
	Method string // non-empty for callee:Method(args)
	Args   []Expression
	Ln     int32
}

func (e *Call) Accept(v ExpressionVisitor) any { return v.VisitCall(e) }
func (e *Call) Line() int32                    { return e.Ln }

// Index is table[key] or table.field (Field non-empty means dotted
// sugar for a String-literal key).
type Index struct {
	Table Expression
	Key   Expression // nil when Field is used instead
	Field string
	Ln    int32
}

func (e *Index) Accept(v ExpressionVisitor) any { return v.VisitIndex(e) }
func (e *Index) Line() int32                    { return e.Ln }

// TableConstructor is "{ ... }": a mix of positional array entries and
// explicit key = value entries.
type TableConstructor struct {
	Array []Expression
	Keys  []Expression
	Vals  []Expression
	Ln    int32
}

func (e *TableConstructor) Accept(v ExpressionVisitor) any { return v.VisitTableConstructor(e) }
func (e *TableConstructor) Line() int32                    { return e.Ln }

// Function is a function literal: "function(params, ...) body end".
type Function struct {
	Params   []string
	IsVararg bool
	Body     *BlockStmt
	Ln       int32
}

func (e *Function) Accept(v ExpressionVisitor) any { return v.VisitFunction(e) }
func (e *Function) Line() int32                    { return e.Ln }

// Vararg is the "..." expression, valid only inside a vararg function.
type Vararg struct {
	Ln int32
}

func (e *Vararg) Accept(v ExpressionVisitor) any { return v.VisitVararg(e) }
func (e *Vararg) Line() int32                    { return e.Ln }
