package grantling

import (
	"strings"
	"unicode/utf8"

	"github.com/grantling/grantling/value"
)

// FilterFunc transforms a resolved value before output. v is the value the
// filter applies to; arg is the filter argument, or the invalid value when
// the filter was written without one.
type FilterFunc func(v value.Value, arg value.Value) value.Value

func registerDefaultFilters(e *Engine) {
	e.AddFilter("default", filterDefault)
	e.AddFilter("length", filterLength)
	e.AddFilter("add", filterAdd)
	e.AddFilter("upper", filterUpper)
	e.AddFilter("lower", filterLower)
}

// filterDefault implements `default`: substitute the argument when the
// value is invalid or an empty string.
func filterDefault(v value.Value, arg value.Value) value.Value {
	if !v.IsValid() || (v.Kind() == value.KindString && v.String() == "") {
		if !arg.IsValid() {
			return value.FromString("")
		}
		return arg
	}
	return v
}

// filterLength implements `length`: the element count of a list or the
// character count of a string; anything else counts as 0.
func filterLength(v value.Value, _ value.Value) value.Value {
	if l := v.AsList(); l != nil {
		return value.FromInt(l.Count())
	}
	if v.Kind() == value.KindString {
		return value.FromInt(utf8.RuneCountInString(v.String()))
	}
	return value.FromInt(0)
}

// filterAdd implements `add`: numeric addition with both sides coerced
// through the integer conversion.
func filterAdd(v value.Value, arg value.Value) value.Value {
	return value.FromInt(v.Int() + arg.Int())
}

// filterUpper implements `upper`.
func filterUpper(v value.Value, _ value.Value) value.Value {
	if v.Kind() == value.KindString {
		return value.FromString(strings.ToUpper(v.String()))
	}
	return v
}

// filterLower implements `lower`.
func filterLower(v value.Value, _ value.Value) value.Value {
	if v.Kind() == value.KindString {
		return value.FromString(strings.ToLower(v.String()))
	}
	return v
}
