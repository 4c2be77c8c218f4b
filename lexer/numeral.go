package lexer

import (
	"strconv"

	"github.com/nilan-lang/nilan/token"
)

// numeral scans a numeric literal starting at the stream's current
// position (the lexer has already confirmed the first byte is a digit,
// or a '.' followed by a digit) and returns the decoded token.
//
// This routine has no counterpart in original_source/src/lexer.rs --
// its numeral() is `unimplemented!()` there, and spec §4.1/§9 says to
// treat it as new code. The grammar implemented is: optional "0x"/"0X"
// prefix switches to hexadecimal digits with an optional ".hex" fraction
// and an optional "p"/"P" binary exponent; otherwise decimal digits with
// an optional ".dec" fraction and an optional "e"/"E" decimal exponent.
// A literal with neither a fraction nor an exponent is an Integer if it
// fits in signed 64 bits, else a Number (spec §4.1, end-to-end scenario 3).
func (l *Lexer) numeral() (tok token.Token, err error) {
	startLine := l.line
	var raw []byte
	isFloat := false

	hex := false
	if b, ok := l.peek(0); ok && b == '0' {
		if b2, ok2 := l.peek(1); ok2 && (b2 == 'x' || b2 == 'X') {
			hex = true
			raw = append(raw, l.advanceByte(), l.advanceByte())
		}
	}

	digit := isDecDigit
	expChars := "eE"
	if hex {
		digit = isHexDigit
		expChars = "pP"
	}

	for {
		b, ok := l.peek(0)
		if !ok || !digit(b) {
			break
		}
		raw = append(raw, l.advanceByte())
	}

	if b, ok := l.peek(0); ok && b == '.' {
		isFloat = true
		raw = append(raw, l.advanceByte())
		for {
			b, ok := l.peek(0)
			if !ok || !digit(b) {
				break
			}
			raw = append(raw, l.advanceByte())
		}
	}

	if b, ok := l.peek(0); ok && containsByte(expChars, b) {
		isFloat = true
		raw = append(raw, l.advanceByte())
		if b, ok := l.peek(0); ok && (b == '+' || b == '-') {
			raw = append(raw, l.advanceByte())
		}
		hadDigit := false
		for {
			b, ok := l.peek(0)
			if !ok || !isDecDigit(b) {
				break
			}
			raw = append(raw, l.advanceByte())
			hadDigit = true
		}
		if !hadDigit {
			return token.Token{}, l.errorf(startLine, "malformed number near '%s'", string(raw))
		}
	}
	// A hex literal with no fraction and no binary exponent is always
	// integral in this grammar, even though 'p' exponents are floats.
	if hex && !isFloat {
		v, ok := parseHexInt(raw)
		if !ok {
			return token.Token{}, l.errorf(startLine, "malformed number near '%s'", string(raw))
		}
		return token.Token{Kind: token.INT, Line: startLine, Int: v}, nil
	}
	if hex && isFloat {
		f, err := parseHexFloat(raw)
		if err != nil {
			return token.Token{}, l.errorf(startLine, "malformed number near '%s'", string(raw))
		}
		return token.Token{Kind: token.NUMBER, Line: startLine, Number: f}, nil
	}

	if !isFloat {
		if v, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			return token.Token{Kind: token.INT, Line: startLine, Int: v}, nil
		}
		// Doesn't fit in signed 64-bit: falls back to Number, per spec §4.1
		// end-to-end scenario 3 (9223372036854775808 -> Number).
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return token.Token{}, l.errorf(startLine, "malformed number near '%s'", string(raw))
		}
		return token.Token{Kind: token.NUMBER, Line: startLine, Number: f}, nil
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return token.Token{}, l.errorf(startLine, "malformed number near '%s'", string(raw))
	}
	return token.Token{Kind: token.NUMBER, Line: startLine, Number: f}, nil
}

func isDecDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDecDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// parseHexInt decodes a "0x"-prefixed run of hex digits with wrap-around
// (two's complement) semantics, matching the integer path's overflow
// behavior elsewhere in the language (spec §4.2).
func parseHexInt(raw []byte) (int64, bool) {
	if len(raw) <= 2 {
		return 0, false
	}
	var v uint64
	for _, b := range raw[2:] {
		d, ok := hexDigitValue(b)
		if !ok {
			return 0, false
		}
		v = v*16 + uint64(d)
	}
	return int64(v), true
}

// parseHexFloat decodes a "0x1.8p3"-style hexadecimal float literal.
func parseHexFloat(raw []byte) (float64, error) {
	s := string(raw)
	// Go's strconv accepts this exact grammar (P exponent required);
	// supply a default exponent of p0 when the literal omitted one.
	hasExp := containsByte(s, 'p') || containsByte(s, 'P')
	if !hasExp {
		s += "p0"
	}
	return strconv.ParseFloat(s, 64)
}

func hexDigitValue(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true
	}
	return 0, false
}
