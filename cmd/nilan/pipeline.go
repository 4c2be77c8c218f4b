package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nilan-lang/nilan/ast"
	"github.com/nilan-lang/nilan/compiler"
	"github.com/nilan-lang/nilan/lexer"
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/parser"
	"github.com/nilan-lang/nilan/token"
	"github.com/nilan-lang/nilan/value"
)

// scanAll drains lex to a token slice, the shape parser.Make expects,
// stopping once EOF is produced (lexer.Lexer's whole external interface
// per spec §4.1 is Next() one token at a time).
func scanAll(lex *lexer.Lexer) ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// parseSource runs the full lex+parse pipeline over source, reporting
// every lex/parse error to stderr (teacher's cmd_run.go convention of
// printing all of them rather than stopping at the first).
func parseSource(source string) (*ast.BlockStmt, bool) {
	lex := lexer.New(lexer.NewByteStream(strings.NewReader(source)))
	toks, err := scanAll(lex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lexing error: %v\n", err)
		return nil, false
	}
	p := parser.Make(toks)
	chunk, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, false
	}
	return chunk, true
}

// newGlobals returns a fresh empty global environment table, the value
// every root chunk's _ENV upvalue is bound to.
func newGlobals() *value.Table {
	return value.NewTable()
}

// closureOver compiles chunk and wraps the resulting Prototype in a
// Closure whose single _ENV upvalue is bound to globals directly
// (closed, since the host has no stack frame for it to alias), per spec
// §4.3's root-chunk convention.
func closureOver(chunk *ast.BlockStmt, globals *value.Table) (*object.Closure, error) {
	proto, err := compiler.Compile(chunk)
	if err != nil {
		return nil, err
	}
	upvalues := make([]*object.UpValue, len(proto.UpValues))
	for i, d := range proto.UpValues {
		switch d.Source {
		case object.FromEnvironment:
			upvalues[i] = object.NewClosedUpValue(value.TableVal(globals))
		default:
			return nil, fmt.Errorf("root chunk has unexpected upvalue kind for %q", d.Name)
		}
	}
	return object.NewClosure(proto, upvalues), nil
}
