package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/lexer"
	"github.com/nilan-lang/nilan/token"
)

// parse lexes source in full and runs it through the parser, failing the
// test immediately on either a lex error or a parse error list.
func parse(t *testing.T, source string) *ast.BlockStmt {
	t.Helper()

	lex := lexer.New(lexer.NewByteStream(strings.NewReader(source)))
	var toks []token.Token
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	p := Make(toks)
	chunk, errs := p.Parse()
	require.Empty(t, errs)
	return chunk
}

// TestElseifDesugarsToNestedIfInElse confirms "elseif" is not its own AST
// node: it's an IfStmt nested one level into the parent's Else block, so
// the compiler only ever needs to handle plain if/else.
func TestElseifDesugarsToNestedIfInElse(t *testing.T) {
	chunk := parse(t, `
		if a then
			return 1
		elseif b then
			return 2
		else
			return 3
		end
	`)
	require.Len(t, chunk.Stmts, 1)
	outer, ok := chunk.Stmts[0].(*ast.IfStmt)
	require.True(t, ok, "expected *ast.IfStmt, got %T", chunk.Stmts[0])
	require.NotNil(t, outer.Else)
	require.Len(t, outer.Else.Stmts, 1)

	inner, ok := outer.Else.Stmts[0].(*ast.IfStmt)
	require.True(t, ok, "expected elseif desugared to a nested *ast.IfStmt, got %T", outer.Else.Stmts[0])
	require.NotNil(t, inner.Else)
	assert.Len(t, inner.Else.Stmts, 1)
}

// TestPowerIsRightAssociative checks "2 ^ 3 ^ 2" parses as 2 ^ (3 ^ 2),
// i.e. the outer Binary's Right is itself a Binary, not its Left.
func TestPowerIsRightAssociative(t *testing.T) {
	chunk := parse(t, "return 2 ^ 3 ^ 2")
	ret, ok := chunk.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	require.Len(t, ret.Exprs, 1)

	outer, ok := ret.Exprs[0].(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.CARET, outer.Op)
	if _, leftIsBinary := outer.Left.(*ast.Binary); leftIsBinary {
		t.Fatal("^ associated left-to-right, want right-to-left")
	}
	right, ok := outer.Right.(*ast.Binary)
	require.True(t, ok, "expected right operand to itself be a Binary")
	assert.Equal(t, token.CARET, right.Op)
}

// TestConcatIsRightAssociative mirrors the power case for "..".
func TestConcatIsRightAssociative(t *testing.T) {
	chunk := parse(t, `return "a" .. "b" .. "c"`)
	ret := chunk.Stmts[0].(*ast.ReturnStmt)
	outer := ret.Exprs[0].(*ast.Binary)
	assert.Equal(t, token.CONCAT, outer.Op)
	_, ok := outer.Right.(*ast.Binary)
	assert.True(t, ok, "expected .. to associate right-to-left")
}

// TestNumericForDisambiguatedFromGenericFor confirms the "=" vs "in"
// lookahead after the first for-loop name picks the right AST node.
func TestNumericForDisambiguatedFromGenericFor(t *testing.T) {
	numeric := parse(t, "for i = 1, 10 do end")
	_, ok := numeric.Stmts[0].(*ast.NumericForStmt)
	assert.True(t, ok, "expected *ast.NumericForStmt, got %T", numeric.Stmts[0])

	generic := parse(t, "for k, v in pairs(t) do end")
	_, ok = generic.Stmts[0].(*ast.GenericForStmt)
	assert.True(t, ok, "expected *ast.GenericForStmt, got %T", generic.Stmts[0])
}

// TestLocalFunctionProducesLocalFlaggedDecl checks "local function f() end"
// is an *ast.FunctionDeclStmt with Local set, distinct from a plain
// "function f() end" at global scope.
func TestLocalFunctionProducesLocalFlaggedDecl(t *testing.T) {
	chunk := parse(t, "local function f() end")
	decl, ok := chunk.Stmts[0].(*ast.FunctionDeclStmt)
	require.True(t, ok)
	assert.True(t, decl.Local)
	assert.Equal(t, "f", decl.Name)
}

// TestDottedFunctionNameJoinsWithDot checks "function t.f() end" folds the
// dotted path into a single Name rather than nesting an Index target.
func TestDottedFunctionNameJoinsWithDot(t *testing.T) {
	chunk := parse(t, "function t.f() end")
	decl, ok := chunk.Stmts[0].(*ast.FunctionDeclStmt)
	require.True(t, ok)
	assert.False(t, decl.Local)
	assert.Equal(t, "t.f", decl.Name)
}

// TestAssignmentTargetMustBeVariableOrIndex checks the parser rejects an
// arbitrary expression (like a call) as an assignment target.
func TestAssignmentTargetMustBeVariableOrIndex(t *testing.T) {
	lex := lexer.New(lexer.NewByteStream(strings.NewReader("f() = 1")))
	var toks []token.Token
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	p := Make(toks)
	_, errs := p.Parse()
	assert.NotEmpty(t, errs, "expected a parse error for an invalid assignment target")
}

// TestIndexFieldVsKeyDistinguishesDotFromBracket checks ".field" records
// Field while "[expr]" records Key, since the compiler treats them
// differently (a constant string load vs compiling an arbitrary key
// expression).
func TestIndexFieldVsKeyDistinguishesDotFromBracket(t *testing.T) {
	chunk := parse(t, "return t.x, t[x]")
	ret := chunk.Stmts[0].(*ast.ReturnStmt)
	require.Len(t, ret.Exprs, 2)

	dotted := ret.Exprs[0].(*ast.Index)
	assert.Equal(t, "x", dotted.Field)
	assert.Nil(t, dotted.Key)

	bracketed := ret.Exprs[1].(*ast.Index)
	assert.Empty(t, bracketed.Field)
	assert.NotNil(t, bracketed.Key)
}
