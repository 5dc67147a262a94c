package expr

import (
	"strconv"
	"strings"
)

// Value is a sealed interface representing literal values.
// Only String, Int, Float, and Bool implement it.
type Value interface {
	exprValue()
	// Literal renders the value the way it appears in query text.
	Literal() string
}

// String is a string literal. Rendered double-quoted with escapes.
type String string

func (String) exprValue() {}

// Literal quotes the string. Invalid UTF-8 becomes U+FFFD and control bytes
// use \u escapes: a C# \x escape reads up to four hex digits, so "\x01a"
// would parse as U+001A.
func (s String) Literal() string {
	q := strconv.Quote(strings.ToValidUTF8(string(s), "\uFFFD"))
	if !strings.Contains(q, `\x`) {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	for i := 0; i < len(q); i++ {
		if q[i] != '\\' {
			b.WriteByte(q[i])
			continue
		}
		if q[i+1] == 'x' {
			b.WriteString(`\u00`)
			b.WriteString(q[i+2 : i+4])
			i += 3
			continue
		}
		b.WriteString(q[i : i+2])
		i++
	}
	return b.String()
}

// Int is an integer literal.
type Int int64

func (Int) exprValue() {}

// Literal renders the integer as bare digits.
func (i Int) Literal() string {
	return strconv.FormatInt(int64(i), 10)
}

// Float is a floating point literal. Rendered with the shortest
// representation that round-trips.
type Float float64

func (Float) exprValue() {}

// Literal renders the float without exponent.
func (f Float) Literal() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// Bool is a boolean literal.
type Bool bool

func (Bool) exprValue() {}

// Literal renders true or false.
func (b Bool) Literal() string {
	return strconv.FormatBool(bool(b))
}

// Str creates a string constant node.
func Str(s string) Constant {
	return Constant{Value: String(s)}
}

// Num creates an integer constant node.
func Num(n int64) Constant {
	return Constant{Value: Int(n)}
}

// Dec creates a float constant node.
func Dec(f float64) Constant {
	return Constant{Value: Float(f)}
}

// Truth creates a boolean constant node.
func Truth(b bool) Constant {
	return Constant{Value: Bool(b)}
}
