package token

import "testing"

func TestKeywordsRoundTrip(t *testing.T) {
	for word, kind := range Keywords {
		if kind.String() != word {
			t.Errorf("Keywords[%q] = %v, String() = %q, want %q", word, kind, kind.String(), word)
		}
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want string
	}{
		{"ident", Token{Kind: IDENT, Lexeme: "x"}, `<name>("x")`},
		{"int", Token{Kind: INT, Int: 42}, "INT(42)"},
		{"number", Token{Kind: NUMBER, Number: 1.5}, "NUMBER(1.5)"},
		{"keyword", Token{Kind: FUNCTION}, "function"},
		{"punct", Token{Kind: ELLIPSIS}, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.String(); got != tt.want {
				t.Errorf("Token.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
