package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddIntegerFastPath(t *testing.T) {
	v, err := Int(2).Add(Int(3))
	assert.NoError(t, err)
	assert.Equal(t, Integer, v.Kind())
	assert.Equal(t, int64(5), v.AsInt())
}

func TestAddWrapsOnOverflow(t *testing.T) {
	v, err := Int(math.MaxInt64).Add(Int(1))
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v.AsInt())
}

func TestAddPromotesToNumber(t *testing.T) {
	v, err := Int(1).Add(Num(0.5))
	assert.NoError(t, err)
	assert.Equal(t, Number, v.Kind())
	assert.Equal(t, 1.5, v.AsNum())
}

func TestAddStringNumeralCoercion(t *testing.T) {
	v, err := Str_("10").Add(Int(5))
	assert.NoError(t, err)
	assert.Equal(t, 15.0, v.AsNum())
}

func TestAddTypeMismatchErrors(t *testing.T) {
	_, err := Str_("abc").Add(Int(1))
	assert.Error(t, err)
	var opErr *OpError
	assert.ErrorAs(t, err, &opErr)
}

func TestDivAlwaysFloat(t *testing.T) {
	v, err := Int(4).Div(Int(2))
	assert.NoError(t, err)
	assert.Equal(t, Number, v.Kind())
	assert.Equal(t, 2.0, v.AsNum())
}

func TestIDivFloorsTowardNegativeInfinity(t *testing.T) {
	v, err := Int(-7).IDiv(Int(2))
	assert.NoError(t, err)
	assert.Equal(t, int64(-4), v.AsInt())
}

func TestIDivByZeroErrors(t *testing.T) {
	_, err := Int(1).IDiv(Int(0))
	var arithErr *ArithError
	assert.ErrorAs(t, err, &arithErr)
}

func TestModMatchesFloorDivIdentity(t *testing.T) {
	v, err := Int(-7).Mod(Int(3))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), v.AsInt())
}

func TestShiftNegativeFlipsDirection(t *testing.T) {
	left, err := Int(1).Shl(Int(-1))
	assert.NoError(t, err)
	right, err := Int(1).Shr(Int(1))
	assert.NoError(t, err)
	assert.Equal(t, right.AsInt(), left.AsInt())
}

func TestShiftSaturatesAtWidth(t *testing.T) {
	v, err := Int(1).Shl(Int(64))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), v.AsInt())
}

func TestLessOrdersStringsLexicographically(t *testing.T) {
	lt, err := Str_("abc").Less(Str_("abd"))
	assert.NoError(t, err)
	assert.True(t, lt)
}

func TestLessRejectsCrossTypeComparison(t *testing.T) {
	_, err := Str_("1").Less(Int(2))
	assert.Error(t, err)
}

func TestConcatCoercesNumbers(t *testing.T) {
	v, err := Concat([]Value{Str_("n="), Int(5), Str_(" "), Num(1.5)})
	assert.NoError(t, err)
	assert.Equal(t, "n=5 1.5", v.String())
}

func TestConcatRejectsTable(t *testing.T) {
	_, err := Concat([]Value{TableVal(NewTable())})
	assert.Error(t, err)
}

func TestLengthString(t *testing.T) {
	v, err := Str_("hello").Length()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), v.AsInt())
}

func TestNegWrapsMinInt(t *testing.T) {
	v, err := Int(math.MinInt64).Neg()
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v.AsInt())
}
