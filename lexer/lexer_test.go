package lexer

import (
	"strings"
	"testing"

	"github.com/nilan-lang/nilan/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(NewByteStream(strings.NewReader(src)))
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// end-to-end scenario 1: long strings with equals.
func TestLongStringWithEquals(t *testing.T) {
	toks := scanAll(t, "[==[abc]=]def]==]")
	if len(toks) != 2 || toks[0].Kind != token.STRING {
		t.Fatalf("got %v", toks)
	}
	if toks[0].Lexeme != "abc]=]def" {
		t.Errorf("payload = %q, want %q", toks[0].Lexeme, "abc]=]def")
	}
}

// end-to-end scenario 2: \z escape skips whitespace including newlines.
func TestZEscapeSkipsWhitespace(t *testing.T) {
	l := New(NewByteStream(strings.NewReader("\"a\\z  \n  b\"")))
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if tok.Lexeme != "ab" {
		t.Errorf("payload = %q, want %q", tok.Lexeme, "ab")
	}
	next, err := l.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", next)
	}
	if l.line != 2 {
		t.Errorf("line = %d, want 2", l.line)
	}
}

// end-to-end scenario 3: numeric boundary between Integer and Number.
func TestNumericBoundary(t *testing.T) {
	toks := scanAll(t, "9223372036854775807")
	if toks[0].Kind != token.INT || toks[0].Int != 9223372036854775807 {
		t.Fatalf("got %v", toks[0])
	}

	toks = scanAll(t, "9223372036854775808")
	if toks[0].Kind != token.NUMBER {
		t.Fatalf("expected NUMBER, got %v", toks[0])
	}
	want := 9.223372036854775808e18
	if toks[0].Number != want {
		t.Errorf("got %v want %v", toks[0].Number, want)
	}
}

func TestShortStringEscapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"\a\b\f\n\r\t\v"`, "\a\b\f\n\r\t\v"},
		{`"\x41\x42"`, "AB"},
		{`"\u{48}\u{65}\u{6C}\u{6C}\u{6F}"`, "Hello"},
		{`"\65\66\67"`, "ABC"},
		{"\"line1\\\nline2\"", "line1\nline2"},
	}
	for _, tt := range tests {
		toks := scanAll(t, tt.src)
		if toks[0].Kind != token.STRING || toks[0].Lexeme != tt.want {
			t.Errorf("%s: got %+v, want %q", tt.src, toks[0], tt.want)
		}
	}
}

func TestUnterminatedShortStringErrors(t *testing.T) {
	l := New(NewByteStream(strings.NewReader("\"abc\ndef\"")))
	if _, err := l.Next(); err == nil {
		t.Fatal("expected error for newline inside short string")
	}
}

func TestLineCounting(t *testing.T) {
	toks := scanAll(t, "a\nb\r\nc\n\rd")
	var names []string
	var lines []int32
	for _, tk := range toks {
		if tk.Kind == token.IDENT {
			names = append(names, tk.Lexeme)
			lines = append(lines, tk.Line)
		}
	}
	if strings.Join(names, ",") != "a,b,c,d" {
		t.Fatalf("names = %v", names)
	}
	want := []int32{1, 2, 3, 4}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line[%d] = %d, want %d", i, lines[i], want[i])
		}
	}
}

func TestCommentsShortAndLong(t *testing.T) {
	toks := scanAll(t, "-- a comment\nlocal --[[ long\ncomment ]] x")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	want := []token.Kind{token.LOCAL, token.IDENT, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v", toks)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestPunctuationLookahead(t *testing.T) {
	toks := scanAll(t, "== ~= <= >= << >> // :: ... ..")
	want := []token.Kind{
		token.EQ, token.NE, token.LE, token.GE, token.SHL, token.SHR,
		token.SLASH2, token.DBCOLON, token.ELLIPSIS, token.CONCAT, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i := range want {
		if toks[i].Kind != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, toks[i].Kind, want[i])
		}
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	toks := scanAll(t, "function forest")
	if toks[0].Kind != token.FUNCTION {
		t.Errorf("got %v, want FUNCTION", toks[0])
	}
	if toks[1].Kind != token.IDENT || toks[1].Lexeme != "forest" {
		t.Errorf("got %v, want IDENT(forest)", toks[1])
	}
}
