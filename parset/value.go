package parset

import (
	"strconv"
	"strings"
)

// Kind enumerates the closed set of parameter value categories.
//
//   - Scalars: Bool, Int, Float, String
//   - Sequences: Ints, Floats, Strings
//   - Structure: Set (a nested *ParSet), List (a homogeneous []*ParSet)
//   - Func: a callable reference
//
// An unset parameter slot holds no Value at all (a nil Value), which is
// distinct from every Kind above.
type Kind int

const (
	// KindInvalid is the zero Kind; no Value reports it.
	KindInvalid Kind = iota

	// KindBool is a boolean scalar.
	KindBool

	// KindInt is an integer scalar.
	KindInt

	// KindFloat is a floating-point scalar.
	KindFloat

	// KindString is a text scalar.
	KindString

	// KindInts is a sequence of integers.
	KindInts

	// KindFloats is a sequence of floating-point values.
	KindFloats

	// KindStrings is a sequence of text values.
	KindStrings

	// KindSet is a nested parameter set.
	KindSet

	// KindList is a homogeneous list of nested parameter sets.
	KindList

	// KindFunc is a callable reference.
	KindFunc
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindInts:
		return "ints"
	case KindFloats:
		return "floats"
	case KindStrings:
		return "strings"
	case KindSet:
		return "parset"
	case KindList:
		return "list-of-parset"
	case KindFunc:
		return "callable"
	default:
		return "invalid"
	}
}

// Value is the interface implemented by every parameter value category.
// The set of implementations is closed: Bool, Int, Float, String, Ints,
// Floats, Strings, *ParSet, List, and Func.
type Value interface {
	// Kind reports the category of the value.
	Kind() Kind

	// configValue renders the value as the right-hand side of a
	// "key = value" configuration line.
	configValue() string

	// equal reports whether the value equals another Value of any kind.
	equal(Value) bool
}

// Bool is a boolean parameter value.
type Bool bool

// Int is an integer parameter value.
type Int int64

// Float is a floating-point parameter value.
type Float float64

// String is a text parameter value.
type String string

// Ints is an integer-sequence parameter value.
type Ints []int64

// Floats is a float-sequence parameter value.
type Floats []float64

// Strings is a text-sequence parameter value.
type Strings []string

// List is a homogeneous list of nested parameter sets. Mixing nested
// sets with plain values in one slot is impossible by construction.
type List []*ParSet

// Func is a callable parameter value. Callable slots carry behavior,
// not data; they are rendered as an opaque placeholder in config output
// and never round-trip through a configuration file.
type Func func(args ...interface{}) (interface{}, error)

// Kind implementations.

// Kind reports KindBool.
func (Bool) Kind() Kind { return KindBool }

// Kind reports KindInt.
func (Int) Kind() Kind { return KindInt }

// Kind reports KindFloat.
func (Float) Kind() Kind { return KindFloat }

// Kind reports KindString.
func (String) Kind() Kind { return KindString }

// Kind reports KindInts.
func (Ints) Kind() Kind { return KindInts }

// Kind reports KindFloats.
func (Floats) Kind() Kind { return KindFloats }

// Kind reports KindStrings.
func (Strings) Kind() Kind { return KindStrings }

// Kind reports KindList.
func (List) Kind() Kind { return KindList }

// Kind reports KindFunc.
func (Func) Kind() Kind { return KindFunc }

// Kind reports KindSet.
func (p *ParSet) Kind() Kind { return KindSet }

// configValue implementations. Sequences are rendered comma-separated,
// matching the bracketed-section configuration format.

func (v Bool) configValue() string { return strconv.FormatBool(bool(v)) }

func (v Int) configValue() string { return strconv.FormatInt(int64(v), 10) }

func (v Float) configValue() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

func (v String) configValue() string { return string(v) }

func (v Ints) configValue() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatInt(x, 10)
	}

	return strings.Join(parts, ", ")
}

func (v Floats) configValue() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}

	return strings.Join(parts, ", ")
}

func (v Strings) configValue() string { return strings.Join(v, ", ") }

func (v List) configValue() string { return "<list of parameter sets>" }

func (v Func) configValue() string { return "<callable>" }

func (p *ParSet) configValue() string { return "<parameter set>" }

// equal implementations. Scalar kinds compare by value, sequence kinds
// element-wise. Nested sets compare by identity, lists element-wise by
// identity, and callables never compare equal.

func (v Bool) equal(o Value) bool { w, ok := o.(Bool); return ok && v == w }

func (v Int) equal(o Value) bool { w, ok := o.(Int); return ok && v == w }

func (v Float) equal(o Value) bool { w, ok := o.(Float); return ok && v == w }

func (v String) equal(o Value) bool { w, ok := o.(String); return ok && v == w }

func (v Ints) equal(o Value) bool {
	w, ok := o.(Ints)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}

	return true
}

func (v Floats) equal(o Value) bool {
	w, ok := o.(Floats)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}

	return true
}

func (v Strings) equal(o Value) bool {
	w, ok := o.(Strings)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}

	return true
}

func (v List) equal(o Value) bool {
	w, ok := o.(List)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}

	return true
}

func (v Func) equal(Value) bool { return false }

func (p *ParSet) equal(o Value) bool { w, ok := o.(*ParSet); return ok && p == w }

// valuesEqual compares two possibly-nil values.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.equal(b)
}

// kindAllowed reports whether k is a member of kinds.
func kindAllowed(k Kind, kinds []Kind) bool {
	for _, allowed := range kinds {
		if k == allowed {
			return true
		}
	}

	return false
}

// kindNames joins the names of the given kinds for error messages.
func kindNames(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}

	return strings.Join(parts, ", ")
}
