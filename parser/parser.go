// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A Recursive descent parser is a top-down parser because it starts
// from the top grammar rule and works its way down into the nested
// sub-expressions before reaching the leaves of the syntax tree
// (terminal rules). Kept/adapted from the teacher's parser package:
// generalized from its toy print/var/if/while grammar to the full
// Lua-family statement and expression grammar (functions, for loops,
// table constructors, method calls, multiple assignment).
package parser

import (
	"fmt"

	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/token"
)

var comparisonTokenTypes = []token.Kind{token.LT, token.LE, token.GT, token.GE}
var equalityTokenTypes = []token.Kind{token.EQ, token.NE}
var concatTokenTypes = []token.Kind{token.CONCAT}
var termTokenTypes = []token.Kind{token.PLUS, token.MINUS}
var factorTokenTypes = []token.Kind{token.STAR, token.SLASH, token.SLASH2, token.PERCENT}
var unaryTokenTypes = []token.Kind{token.NOT, token.MINUS, token.HASH, token.TILDE}
var bitorTokenTypes = []token.Kind{token.PIPE}
var bitxorTokenTypes = []token.Kind{token.TILDE}
var bitandTokenTypes = []token.Kind{token.AMP}
var shiftTokenTypes = []token.Kind{token.SHL, token.SHR}

// Parser is always one token ahead of the token it last consumed.
type Parser struct {
	tokens   []token.Token
	position int
}

func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

func (p *Parser) peek() token.Token     { return p.tokens[p.position] }
func (p *Parser) previous() token.Token { return p.tokens[p.position-1] }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) isFinished() bool { return p.peek().Kind == token.EOF }

func (p *Parser) checkType(k token.Kind) bool {
	if p.isFinished() {
		return false
	}
	return p.peek().Kind == k
}

func (p *Parser) isMatch(kinds []token.Kind) bool {
	for _, k := range kinds {
		if p.checkType(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, errMsg string) (token.Token, error) {
	if p.checkType(k) {
		return p.advance(), nil
	}
	return token.Token{}, CreateSyntaxError(p.peek().Line, errMsg)
}

// Parse parses the whole token stream as a chunk (a single top-level
// block implicitly wrapped in a vararg function by the compiler).
func (p *Parser) Parse() (*ast.BlockStmt, []error) {
	var errs []error
	block := &ast.BlockStmt{}
	for !p.isFinished() {
		stmt, err := p.statement()
		if err != nil {
			errs = append(errs, err)
			if !p.isFinished() {
				p.advance()
			}
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, errs
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.isMatch([]token.Kind{token.SEMI}):
		return p.statement()
	case p.isMatch([]token.Kind{token.LOCAL}):
		return p.localStatement()
	case p.isMatch([]token.Kind{token.DO}):
		return p.blockUntilEnd()
	case p.isMatch([]token.Kind{token.IF}):
		return p.ifStatement()
	case p.isMatch([]token.Kind{token.WHILE}):
		return p.whileStatement()
	case p.isMatch([]token.Kind{token.FOR}):
		return p.forStatement()
	case p.isMatch([]token.Kind{token.FUNCTION}):
		return p.functionDeclStatement()
	case p.isMatch([]token.Kind{token.RETURN}):
		return p.returnStatement()
	case p.isMatch([]token.Kind{token.BREAK}):
		return &ast.BreakStmt{Ln: p.previous().Line}, nil
	default:
		return p.exprOrAssignStatement()
	}
}

// blockUntilEnd parses statements until "end", consuming it.
func (p *Parser) blockUntilEnd() (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{}
	for !p.checkType(token.END) && !p.isFinished() {
		if p.checkType(token.ELSE) || p.checkType(token.ELSEIF) || p.checkType(token.UNTIL) {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.consume(token.END, "expected 'end'"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) localStatement() (ast.Stmt, error) {
	ln := p.previous().Line
	if p.isMatch([]token.Kind{token.FUNCTION}) {
		nameTok, err := p.consume(token.IDENT, "expected function name")
		if err != nil {
			return nil, err
		}
		fn, err := p.functionBody()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDeclStmt{Name: nameTok.Lexeme, Local: true, Fn: fn}, nil
	}

	names, err := p.nameList()
	if err != nil {
		return nil, err
	}
	var values []ast.Expression
	if p.isMatch([]token.Kind{token.ASSIGN}) {
		values, err = p.exprList()
		if err != nil {
			return nil, err
		}
	}
	return &ast.LocalStmt{Names: names, Values: values, Ln: ln}, nil
}

func (p *Parser) nameList() ([]string, error) {
	tok, err := p.consume(token.IDENT, "expected a name")
	if err != nil {
		return nil, err
	}
	names := []string{tok.Lexeme}
	for p.isMatch([]token.Kind{token.COMMA}) {
		tok, err := p.consume(token.IDENT, "expected a name")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Lexeme)
	}
	return names, nil
}

func (p *Parser) exprList() ([]ast.Expression, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	exprs := []ast.Expression{e}
	for p.isMatch([]token.Kind{token.COMMA}) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.THEN, "expected 'then'"); err != nil {
		return nil, err
	}
	then, err := p.ifBody()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}

	switch {
	case p.isMatch([]token.Kind{token.ELSEIF}):
		elseif, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = &ast.BlockStmt{Stmts: []ast.Stmt{elseif}}
	case p.isMatch([]token.Kind{token.ELSE}):
		elseBlock, err := p.blockUntilEnd()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	default:
		if _, err := p.consume(token.END, "expected 'end'"); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// ifBody parses the "then" branch's statements, stopping at
// elseif/else/end without consuming any of them (ifStatement decides).
func (p *Parser) ifBody() (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{}
	for !p.checkType(token.END) && !p.checkType(token.ELSE) && !p.checkType(token.ELSEIF) && !p.isFinished() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.DO, "expected 'do'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) forStatement() (ast.Stmt, error) {
	ln := p.previous().Line
	firstTok, err := p.consume(token.IDENT, "expected a name")
	if err != nil {
		return nil, err
	}
	if p.isMatch([]token.Kind{token.ASSIGN}) {
		return p.numericForStatement(firstTok.Lexeme, ln)
	}
	names := []string{firstTok.Lexeme}
	for p.isMatch([]token.Kind{token.COMMA}) {
		tok, err := p.consume(token.IDENT, "expected a name")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Lexeme)
	}
	if _, err := p.consume(token.IN, "expected '=' or 'in'"); err != nil {
		return nil, err
	}
	exprs, err := p.exprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.DO, "expected 'do'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ast.GenericForStmt{Names: names, Exprs: exprs, Body: body, Ln: ln}, nil
}

func (p *Parser) numericForStatement(name string, ln int32) (ast.Stmt, error) {
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.COMMA, "expected ','"); err != nil {
		return nil, err
	}
	limit, err := p.expression()
	if err != nil {
		return nil, err
	}
	var step ast.Expression
	if p.isMatch([]token.Kind{token.COMMA}) {
		step, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.DO, "expected 'do'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ast.NumericForStmt{Name: name, Init: init, Limit: limit, Step: step, Body: body, Ln: ln}, nil
}

func (p *Parser) functionDeclStatement() (ast.Stmt, error) {
	nameTok, err := p.consume(token.IDENT, "expected function name")
	if err != nil {
		return nil, err
	}
	name := nameTok.Lexeme
	for p.isMatch([]token.Kind{token.DOT}) {
		part, err := p.consume(token.IDENT, "expected a name")
		if err != nil {
			return nil, err
		}
		name += "." + part.Lexeme
	}
	fn, err := p.functionBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclStmt{Name: name, Fn: fn}, nil
}

func (p *Parser) functionBody() (*ast.Function, error) {
	ln := p.previous().Line
	if _, err := p.consume(token.LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	var params []string
	vararg := false
	if !p.checkType(token.RPAREN) {
		for {
			if p.isMatch([]token.Kind{token.ELLIPSIS}) {
				vararg = true
				break
			}
			tok, err := p.consume(token.IDENT, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, tok.Lexeme)
			if !p.isMatch([]token.Kind{token.COMMA}) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	body, err := p.blockUntilEnd()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Params: params, IsVararg: vararg, Body: body, Ln: ln}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	ln := p.previous().Line
	var exprs []ast.Expression
	if !p.checkType(token.END) && !p.checkType(token.ELSE) && !p.checkType(token.ELSEIF) &&
		!p.checkType(token.UNTIL) && !p.isFinished() && !p.checkType(token.SEMI) {
		var err error
		exprs, err = p.exprList()
		if err != nil {
			return nil, err
		}
	}
	p.isMatch([]token.Kind{token.SEMI})
	return &ast.ReturnStmt{Exprs: exprs, Ln: ln}, nil
}

// exprOrAssignStatement parses either "expr, expr = expr, expr" or a
// bare call used as a statement.
func (p *Parser) exprOrAssignStatement() (ast.Stmt, error) {
	ln := p.peek().Line
	first, err := p.suffixedExpression()
	if err != nil {
		return nil, err
	}
	if p.checkType(token.ASSIGN) || p.checkType(token.COMMA) {
		targets := []ast.Expression{first}
		for p.isMatch([]token.Kind{token.COMMA}) {
			t, err := p.suffixedExpression()
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		if _, err := p.consume(token.ASSIGN, "expected '='"); err != nil {
			return nil, err
		}
		values, err := p.exprList()
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			switch t.(type) {
			case *ast.Variable, *ast.Index:
			default:
				return nil, CreateSyntaxError(ln, "invalid assignment target")
			}
		}
		return &ast.AssignStmt{Targets: targets, Values: values, Ln: ln}, nil
	}
	if _, ok := first.(*ast.Call); !ok {
		return nil, CreateSyntaxError(ln, "syntax error: expected statement")
	}
	return &ast.ExpressionStmt{Expr: first}, nil
}

// expression parses the full binary/unary/logical grammar, in
// ascending precedence: or, and, comparison, bitor, bitxor, bitand,
// shift, concat (right-assoc), term, factor, unary, pow (right-assoc).
func (p *Parser) expression() (ast.Expression, error) { return p.or() }

func (p *Parser) or() (ast.Expression, error) {
	return p.leftAssocLogical([]token.Kind{token.OR}, (*Parser).and)
}
func (p *Parser) and() (ast.Expression, error) {
	return p.leftAssocLogical([]token.Kind{token.AND}, (*Parser).comparison)
}

func (p *Parser) leftAssocLogical(kinds []token.Kind, next func(*Parser) (ast.Expression, error)) (ast.Expression, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for p.isMatch(kinds) {
		op := p.previous()
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: op.Kind, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *Parser) comparison() (ast.Expression, error) {
	return p.leftAssocBinary(append(append([]token.Kind{}, comparisonTokenTypes...), equalityTokenTypes...), (*Parser).bitor)
}
func (p *Parser) bitor() (ast.Expression, error) {
	return p.leftAssocBinary(bitorTokenTypes, (*Parser).bitxorLevel)
}

// bitxorLevel disambiguates '~' as binary XOR here (unary '~' is
// handled in unary()); Lua itself overloads the same token this way.
func (p *Parser) bitxorLevel() (ast.Expression, error) {
	return p.leftAssocBinary(bitxorTokenTypes, (*Parser).bitand)
}
func (p *Parser) bitand() (ast.Expression, error) {
	return p.leftAssocBinary(bitandTokenTypes, (*Parser).shift)
}
func (p *Parser) shift() (ast.Expression, error) {
	return p.leftAssocBinary(shiftTokenTypes, (*Parser).concat)
}

// concat is right-associative: "a .. b .. c" == "a .. (b .. c)".
func (p *Parser) concat() (ast.Expression, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.isMatch(concatTokenTypes) {
		op := p.previous()
		right, err := p.concat()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: left, Op: op.Kind, Right: right, Ln: op.Line}, nil
	}
	return left, nil
}

func (p *Parser) term() (ast.Expression, error) {
	return p.leftAssocBinary(termTokenTypes, (*Parser).factor)
}
func (p *Parser) factor() (ast.Expression, error) {
	return p.leftAssocBinary(factorTokenTypes, (*Parser).unary)
}

func (p *Parser) leftAssocBinary(kinds []token.Kind, next func(*Parser) (ast.Expression, error)) (ast.Expression, error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for p.isMatch(kinds) {
		op := p.previous()
		right, err := next(p)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op.Kind, Right: right, Ln: op.Line}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.isMatch(unaryTokenTypes) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op.Kind, Operand: operand, Ln: op.Line}, nil
	}
	return p.pow()
}

// pow is right-associative and binds tighter than unary's operand
// parse but looser than a suffixed primary: "-2^2" is "-(2^2)".
func (p *Parser) pow() (ast.Expression, error) {
	left, err := p.suffixedExpression()
	if err != nil {
		return nil, err
	}
	if p.isMatch([]token.Kind{token.CARET}) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: left, Op: op.Kind, Right: right, Ln: op.Line}, nil
	}
	return left, nil
}

// suffixedExpression parses a primary expression followed by any chain
// of '.field', '[key]', ':method(args)', or '(args)' suffixes.
func (p *Parser) suffixedExpression() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		ln := p.peek().Line
		switch {
		case p.isMatch([]token.Kind{token.DOT}):
			tok, err := p.consume(token.IDENT, "expected a field name")
			if err != nil {
				return nil, err
			}
			expr = &ast.Index{Table: expr, Field: tok.Lexeme, Ln: ln}
		case p.isMatch([]token.Kind{token.LBRACKET}):
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']'"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Table: expr, Key: key, Ln: ln}
		case p.isMatch([]token.Kind{token.COLON}):
			tok, err := p.consume(token.IDENT, "expected a method name")
			if err != nil {
				return nil, err
			}
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Method: tok.Lexeme, Args: args, Ln: ln}
		case p.checkType(token.LPAREN):
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: expr, Args: args, Ln: ln}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) callArgs() ([]ast.Expression, error) {
	if _, err := p.consume(token.LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	var args []ast.Expression
	if !p.checkType(token.RPAREN) {
		var err error
		args, err = p.exprList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	tok := p.peek()
	switch {
	case p.isMatch([]token.Kind{token.NIL}):
		return &ast.Literal{Kind: ast.LitNil, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.TRUE}):
		return &ast.Literal{Kind: ast.LitTrue, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.FALSE}):
		return &ast.Literal{Kind: ast.LitFalse, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.INT}):
		return &ast.Literal{Kind: ast.LitInt, I: tok.Int, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.NUMBER}):
		return &ast.Literal{Kind: ast.LitNumber, N: tok.Number, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.STRING}):
		return &ast.Literal{Kind: ast.LitString, S: tok.Lexeme, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.ELLIPSIS}):
		return &ast.Vararg{Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.IDENT}):
		return &ast.Variable{Name: tok.Lexeme, Ln: tok.Line}, nil
	case p.isMatch([]token.Kind{token.FUNCTION}):
		return p.functionBody()
	case p.isMatch([]token.Kind{token.LBRACE}):
		return p.tableConstructor(tok.Line)
	case p.isMatch([]token.Kind{token.LPAREN}):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')'"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: inner, Ln: tok.Line}, nil
	default:
		return nil, CreateSyntaxError(tok.Line, fmt.Sprintf("unexpected token %s", tok))
	}
}

func (p *Parser) tableConstructor(ln int32) (ast.Expression, error) {
	tc := &ast.TableConstructor{Ln: ln}
	for !p.checkType(token.RBRACE) {
		switch {
		case p.checkType(token.LBRACKET):
			p.advance()
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']'"); err != nil {
				return nil, err
			}
			if _, err := p.consume(token.ASSIGN, "expected '='"); err != nil {
				return nil, err
			}
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			tc.Keys = append(tc.Keys, key)
			tc.Vals = append(tc.Vals, val)
		case p.checkType(token.IDENT) && p.tokens[p.position+1].Kind == token.ASSIGN:
			nameTok := p.advance()
			p.advance() // '='
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			tc.Keys = append(tc.Keys, &ast.Literal{Kind: ast.LitString, S: nameTok.Lexeme, Ln: nameTok.Line})
			tc.Vals = append(tc.Vals, val)
		default:
			val, err := p.expression()
			if err != nil {
				return nil, err
			}
			tc.Array = append(tc.Array, val)
		}
		if !p.isMatch([]token.Kind{token.COMMA}) && !p.isMatch([]token.Kind{token.SEMI}) {
			break
		}
	}
	if _, err := p.consume(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return tc, nil
}
