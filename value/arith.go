package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OpError reports a fallible operator application: the operator's name
// and the Kind(s) it could not be applied to (spec §4.2's "fallible
// results for ill-typed combinations"; spec §7 classifies these as
// TypeError/ArithmeticError at the VM layer, which wraps OpError).
type OpError struct {
	Op   string
	Left Kind
	// Right is Nil when the operator is unary; the receiver checks Op
	// to decide whether to print it.
	Right Kind
}

func (e *OpError) Error() string {
	if e.Op == "unm" || e.Op == "bnot" || e.Op == "len" || e.Op == "for" {
		return fmt.Sprintf("cannot apply %q to a %s value", e.Op, e.Left)
	}
	return fmt.Sprintf("cannot apply %q to %s and %s values", e.Op, e.Left, e.Right)
}

func opErr(op string, a, b Value) error { return &OpError{Op: op, Left: a.kind, Right: b.kind} }
func opErr1(op string, a Value) error   { return &OpError{Op: op, Left: a.kind} }

// bothInt reports whether a and b are both Integer, the precondition for
// every arithmetic operator's integer fast path (spec §4.2).
func bothInt(a, b Value) (int64, int64, bool) {
	if a.kind == Integer && b.kind == Integer {
		return a.i, b.i, true
	}
	return 0, 0, false
}

// Add implements `+`: wraps on integer overflow, IEEE-754 on the float
// path, string-numeral coercion otherwise (spec §4.2).
func (a Value) Add(b Value) (Value, error) {
	if x, y, ok := bothInt(a, b); ok {
		return Int(int64(uint64(x) + uint64(y))), nil
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(x + y), nil
		}
	}
	return Value{}, opErr("add", a, b)
}

func (a Value) Sub(b Value) (Value, error) {
	if x, y, ok := bothInt(a, b); ok {
		return Int(int64(uint64(x) - uint64(y))), nil
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(x - y), nil
		}
	}
	return Value{}, opErr("sub", a, b)
}

func (a Value) Mul(b Value) (Value, error) {
	if x, y, ok := bothInt(a, b); ok {
		return Int(int64(uint64(x) * uint64(y))), nil
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(x * y), nil
		}
	}
	return Value{}, opErr("mul", a, b)
}

// Div implements `/`, which always produces a Number even for two
// Integer operands (spec §4.2).
func (a Value) Div(b Value) (Value, error) {
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(x / y), nil
		}
	}
	return Value{}, opErr("div", a, b)
}

// IDiv implements `//`: integer floor-divide truncating toward -inf,
// failing on division by zero; float path returns floor(a/b) (spec §4.2).
func (a Value) IDiv(b Value) (Value, error) {
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			return Value{}, &ArithError{Op: "//", Cause: "division by zero"}
		}
		return Int(floorDivInt(x, y)), nil
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(math.Floor(x / y)), nil
		}
	}
	return Value{}, opErr("idiv", a, b)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod implements `%` as `a - floor(a/b)*b` (spec §4.2).
func (a Value) Mod(b Value) (Value, error) {
	if x, y, ok := bothInt(a, b); ok {
		if y == 0 {
			return Value{}, &ArithError{Op: "%", Cause: "division by zero"}
		}
		return Int(x - floorDivInt(x, y)*y), nil
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(x - math.Floor(x/y)*y), nil
		}
	}
	return Value{}, opErr("mod", a, b)
}

// Pow implements `^`, always a Number (spec §4.2).
func (a Value) Pow(b Value) (Value, error) {
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			return Num(math.Pow(x, y)), nil
		}
	}
	return Value{}, opErr("pow", a, b)
}

// ArithError is the distinguished division-by-zero / non-representable
// class of arithmetic failure (spec §7's ArithmeticError taxonomy entry,
// as distinct from an OpError type mismatch).
type ArithError struct {
	Op    string
	Cause string
}

func (e *ArithError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Cause) }

// shiftLeft shifts x left by n per spec §9's resolved design
// note (Lua 5.3 semantics): a negative shift-left behaves as a
// shift-right of the same magnitude and vice versa; shifts of 64 or more
// produce 0.
func shiftLeft(x int64, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(x) << uint(n))
	}
	return int64(uint64(x) >> uint(-n))
}

func (a Value) BitAnd(b Value) (Value, error) { return bitwise(a, b, "band", func(x, y int64) int64 { return x & y }) }
func (a Value) BitOr(b Value) (Value, error)  { return bitwise(a, b, "bor", func(x, y int64) int64 { return x | y }) }
func (a Value) BitXor(b Value) (Value, error) { return bitwise(a, b, "bxor", func(x, y int64) int64 { return x ^ y }) }
func (a Value) Shl(b Value) (Value, error) {
	return bitwise(a, b, "shl", func(x, y int64) int64 { return shiftLeft(x, y) })
}
func (a Value) Shr(b Value) (Value, error) {
	return bitwise(a, b, "shr", func(x, y int64) int64 { return shiftLeft(x, -y) })
}

func bitwise(a, b Value, op string, f func(int64, int64) int64) (Value, error) {
	x, ok := a.ToInteger()
	if !ok {
		return Value{}, opErr(op, a, b)
	}
	y, ok := b.ToInteger()
	if !ok {
		return Value{}, opErr(op, a, b)
	}
	return Int(f(x, y)), nil
}

// Neg implements unary `-`: wraps on integer overflow, IEEE-754 float
// negation otherwise (spec §4.2).
func (a Value) Neg() (Value, error) {
	if a.kind == Integer {
		return Int(int64(-uint64(a.i))), nil
	}
	if x, ok := a.ToNumber(); ok {
		return Num(-x), nil
	}
	return Value{}, opErr1("unm", a)
}

// BitNot implements unary `~` (bitwise complement).
func (a Value) BitNot() (Value, error) {
	x, ok := a.ToInteger()
	if !ok {
		return Value{}, opErr1("bnot", a)
	}
	return Int(^x), nil
}

// Not implements `not`: logical negation of truthiness.
func (a Value) Not() Value { return Bool(!a.ToBool()) }

// Less implements `<`: numeric ordering respecting NaN (always false),
// lexicographic byte ordering for strings, else fails (spec §4.2).
func (a Value) Less(b Value) (bool, error) {
	if a.kind == String && b.kind == String {
		return a.obj.(*Str).s < b.obj.(*Str).s, nil
	}
	if x, ok := numericOperand(a); ok {
		if y, ok := numericOperand(b); ok {
			return x < y, nil
		}
	}
	return false, opErr("lt", a, b)
}

// LessEqual implements `<=` symmetrically to Less.
func (a Value) LessEqual(b Value) (bool, error) {
	if a.kind == String && b.kind == String {
		return a.obj.(*Str).s <= b.obj.(*Str).s, nil
	}
	if x, ok := numericOperand(a); ok {
		if y, ok := numericOperand(b); ok {
			return x <= y, nil
		}
	}
	return false, opErr("le", a, b)
}

// numericOperand restricts comparison coercion to Integer/Number only
// (unlike arithmetic, comparisons do not coerce numeral Strings).
func numericOperand(v Value) (float64, bool) {
	switch v.kind {
	case Integer:
		return float64(v.i), true
	case Number:
		return v.num, true
	default:
		return 0, false
	}
}

// Concat coerces String and Integer/Number operands to String and joins
// them; any other Kind fails (spec §4.5 "Concat").
func Concat(vs []Value) (Value, error) {
	var sb strings.Builder
	for _, v := range vs {
		switch v.kind {
		case String:
			sb.WriteString(v.obj.(*Str).s)
		case Integer:
			sb.WriteString(strconv.FormatInt(v.i, 10))
		case Number:
			sb.WriteString(formatFloat(v.num))
		default:
			return Value{}, &OpError{Op: "concat", Left: v.kind}
		}
	}
	return Str_(sb.String()), nil
}

// Length implements `#`: Table length per the border rule (spec §3),
// String length in bytes, else fails (spec §4.5 "Length").
func (a Value) Length() (Value, error) {
	switch a.kind {
	case String:
		return Int(a.obj.(*Str).Len()), nil
	case Table:
		return Int(a.obj.(T).Len()), nil
	default:
		return Value{}, opErr1("len", a)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', 14, 64)
}

// parseNumeral parses a numeral the way the lexer's numeric literal
// grammar would (spec §4.2's "Strings parsable as numerals"); it is
// intentionally looser than the lexer (accepts leading/trailing space
// and a sign) to match the coercion rule's intent rather than the
// token grammar exactly.
func parseNumeral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	return 0, false
}
