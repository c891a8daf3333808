// Package runtime implements the interpreter and runtime value system for Lox.
package runtime

import (
	"math"
	"strconv"
)

// Value is the interface for all runtime values.
type Value interface {
	String() string
}

// ---- Primitive values ----

// NilVal represents nil.
type NilVal struct{}

func (v NilVal) String() string { return "nil" }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) String() string { return strconv.FormatBool(bool(v)) }

// NumberVal represents a number. Lox has a single double-precision number type.
type NumberVal float64

// String formats integral numbers without a fractional part ("6", not "6.0")
// and everything else with the shortest decimal that round-trips.
func (v NumberVal) String() string {
	n := float64(v)
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// StringVal represents a string value.
type StringVal string

func (v StringVal) String() string { return string(v) }

// ---- Conversions ----

// FromLiteral converts a literal carried by the AST into a runtime value.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case bool:
		return BoolVal(v)
	case float64:
		return NumberVal(v)
	case string:
		return StringVal(v)
	default:
		return NilVal{}
	}
}

// ---- Truthiness and equality ----

// IsTruthy reports the truthiness of a value: nil and false are falsy,
// everything else (including 0 and "") is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// IsEqual compares two values structurally. Values of different kinds are
// never equal; functions are equal only to themselves.
func IsEqual(a, b Value) bool {
	switch x := a.(type) {
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case BoolVal:
		y, ok := b.(BoolVal)
		return ok && x == y
	case NumberVal:
		y, ok := b.(NumberVal)
		return ok && x == y
	case StringVal:
		y, ok := b.(StringVal)
		return ok && x == y
	default:
		return a == b
	}
}
