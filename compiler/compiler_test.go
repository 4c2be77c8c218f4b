package compiler

import (
	"strings"
	"testing"

	"github.com/nilan-lang/nilan/lexer"
	"github.com/nilan-lang/nilan/object"
	"github.com/nilan-lang/nilan/parser"
	"github.com/nilan-lang/nilan/token"
	"github.com/nilan-lang/nilan/value"
	"github.com/nilan-lang/nilan/vm"
)

// run lexes, parses, compiles, and executes source against a fresh global
// table, returning whatever the chunk's top-level return statement yields.
func run(t *testing.T, source string) []value.Value {
	t.Helper()

	lex := lexer.New(lexer.NewByteStream(strings.NewReader(source)))
	var toks []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("lexing %q: %v", source, err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	p := parser.Make(toks)
	chunk, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("parsing %q: %v", source, errs)
	}

	proto, err := Compile(chunk)
	if err != nil {
		t.Fatalf("compiling %q: %v", source, err)
	}

	globals := value.NewTable()
	upvalues := make([]*object.UpValue, len(proto.UpValues))
	for i := range proto.UpValues {
		upvalues[i] = object.NewClosedUpValue(value.TableVal(globals))
	}
	closure := object.NewClosure(proto, upvalues)

	results, err := vm.Run(closure, nil)
	if err != nil {
		t.Fatalf("running %q: %v", source, err)
	}
	return results
}

func TestArithmeticPrecedence(t *testing.T) {
	results := run(t, "return 2 + 3 * 4")
	if len(results) != 1 || results[0].AsInt() != 14 {
		t.Fatalf("got %v, want [14]", results)
	}
}

func TestRightAssociativePower(t *testing.T) {
	results := run(t, "return 2 ^ 3 ^ 2") // 2^(3^2) = 2^9 = 512, not (2^3)^2 = 64
	if len(results) != 1 || results[0].AsNum() != 512 {
		t.Fatalf("got %v, want [512]", results)
	}
}

func TestLocalAndAssignment(t *testing.T) {
	results := run(t, `
		local x = 10
		x = x + 5
		return x
	`)
	if len(results) != 1 || results[0].AsInt() != 15 {
		t.Fatalf("got %v, want [15]", results)
	}
}

func TestIfElseBranches(t *testing.T) {
	results := run(t, `
		local x = 5
		if x > 10 then
			return "big"
		elseif x > 3 then
			return "medium"
		else
			return "small"
		end
	`)
	if len(results) != 1 || results[0].String() != "medium" {
		t.Fatalf("got %v, want [medium]", results)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	results := run(t, `
		local i = 0
		local sum = 0
		while i < 5 do
			sum = sum + i
			i = i + 1
		end
		return sum
	`)
	if len(results) != 1 || results[0].AsInt() != 10 {
		t.Fatalf("got %v, want [10]", results)
	}
}

func TestNumericForLoop(t *testing.T) {
	results := run(t, `
		local sum = 0
		for i = 1, 5 do
			sum = sum + i
		end
		return sum
	`)
	if len(results) != 1 || results[0].AsInt() != 15 {
		t.Fatalf("got %v, want [15]", results)
	}
}

func TestNumericForWithNegativeStep(t *testing.T) {
	results := run(t, `
		local count = 0
		for i = 10, 1, -1 do
			count = count + 1
		end
		return count
	`)
	if len(results) != 1 || results[0].AsInt() != 10 {
		t.Fatalf("got %v, want [10]", results)
	}
}

func TestBreakExitsLoop(t *testing.T) {
	results := run(t, `
		local i = 0
		while true do
			i = i + 1
			if i == 3 then
				break
			end
		end
		return i
	`)
	if len(results) != 1 || results[0].AsInt() != 3 {
		t.Fatalf("got %v, want [3]", results)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	results := run(t, `
		function add(a, b)
			return a + b
		end
		return add(3, 4)
	`)
	if len(results) != 1 || results[0].AsInt() != 7 {
		t.Fatalf("got %v, want [7]", results)
	}
}

func TestRecursiveLocalFunction(t *testing.T) {
	results := run(t, `
		local function fact(n)
			if n <= 1 then
				return 1
			end
			return n * fact(n - 1)
		end
		return fact(5)
	`)
	if len(results) != 1 || results[0].AsInt() != 120 {
		t.Fatalf("got %v, want [120]", results)
	}
}

func TestClosureCapturesUpvalueAcrossCalls(t *testing.T) {
	results := run(t, `
		local function makeCounter()
			local n = 0
			local function next()
				n = n + 1
				return n
			end
			return next
		end
		local counter = makeCounter()
		counter()
		counter()
		return counter()
	`)
	if len(results) != 1 || results[0].AsInt() != 3 {
		t.Fatalf("got %v, want [3]", results)
	}
}

func TestTableConstructorAndIndex(t *testing.T) {
	results := run(t, `
		local t = {1, 2, 3}
		t.x = "hi"
		return t[2], t.x
	`)
	if len(results) != 2 || results[0].AsInt() != 2 || results[1].String() != "hi" {
		t.Fatalf("got %v, want [2 hi]", results)
	}
}

func TestGlobalAssignmentAndRead(t *testing.T) {
	results := run(t, `
		globalCount = 41
		globalCount = globalCount + 1
		return globalCount
	`)
	if len(results) != 1 || results[0].AsInt() != 42 {
		t.Fatalf("got %v, want [42]", results)
	}
}

func TestStringConcatCoercion(t *testing.T) {
	results := run(t, `return "n=" .. 5`)
	if len(results) != 1 || results[0].String() != "n=5" {
		t.Fatalf("got %v, want [n=5]", results)
	}
}

func TestBreakOutsideLoopIsSemanticError(t *testing.T) {
	lex := lexer.New(lexer.NewByteStream(strings.NewReader("break")))
	var toks []token.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("lexing: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	p := parser.Make(toks)
	chunk, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("parsing: %v", errs)
	}
	if _, err := Compile(chunk); err == nil {
		t.Fatal("expected a SemanticError for break outside a loop")
	}
}
