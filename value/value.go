// Package value provides the variant type the template engine operates on.
//
// A Value holds exactly one of: nothing (the invalid default), a bool, an
// integer, a string, a reference to a caller-owned List, a reference to a
// caller-owned Struct, or a callable function. List and Struct references
// are borrowed: the engine never copies or frees the underlying object, and
// the caller must keep it alive and logically immutable for the duration of
// any render that can reach it.
//
// Every Value additionally carries a raw flag. When set, the renderer emits
// the value's string form without passing it through the context's escaper.
package value

import (
	"reflect"
	"strconv"
)

// Func is the signature of a callable variant. Captured state travels in
// the closure; arguments arrive in template order.
type Func func(args []Value) string

// List is the read-only contract for a caller-owned list of Values.
type List interface {
	// Count returns the number of elements in the list.
	Count() int
	// At returns the element at index i, or the invalid Value when i is
	// out of range.
	At(i int) Value
	// Iterator creates a fresh iterator positioned on the first element.
	// Each traversal gets its own iterator so concurrent walks over one
	// list do not interfere.
	Iterator() ListIterator
}

// ListIterator walks a List in either direction.
type ListIterator interface {
	// First positions the iterator on the first element.
	First()
	// Last positions the iterator on the last element.
	Last()
	// Next advances to the following element.
	Next()
	// Prev moves back to the preceding element.
	Prev()
	// Current returns the element under the iterator and true, or the
	// invalid Value and false when the iterator is exhausted.
	Current() (Value, bool)
}

// Struct is the read-only contract for a caller-owned struct. Get returns
// the invalid Value for unknown fields, never an error.
type Struct interface {
	Get(name string) Value
}

// Kind describes which case of the union a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindString
	KindStruct
	KindList
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindFunc:
		return "function"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the template engine's data types. The zero
// Value is the invalid None case. Copying a Value copies the tag and the
// borrowed reference or scalar, never the referenced data.
type Value struct {
	data any
	raw  bool
}

// FromBool creates a boolean Value.
func FromBool(b bool) Value {
	return Value{data: b}
}

// FromInt creates an integer Value.
func FromInt(i int) Value {
	return Value{data: i}
}

// FromString creates a string Value.
func FromString(s string) Value {
	return Value{data: s}
}

// FromStruct creates a Value borrowing the given struct. A nil argument
// yields the invalid Value.
func FromStruct(s Struct) Value {
	if s == nil {
		return Value{}
	}
	return Value{data: s}
}

// FromList creates a Value borrowing the given list. A nil argument yields
// the invalid Value.
func FromList(l List) Value {
	if l == nil {
		return Value{}
	}
	return Value{data: l}
}

// FromFunc creates a callable Value.
func FromFunc(f Func) Value {
	if f == nil {
		return Value{}
	}
	return Value{data: f}
}

// Kind returns the active case of the union.
func (v Value) Kind() Kind {
	switch v.data.(type) {
	case nil:
		return KindNone
	case bool:
		return KindBool
	case int:
		return KindInt
	case string:
		return KindString
	case Struct:
		return KindStruct
	case List:
		return KindList
	case Func:
		return KindFunc
	default:
		return KindNone
	}
}

// IsValid reports whether the Value holds anything at all. Only the
// default-constructed None case is invalid.
func (v Value) IsValid() bool {
	return v.data != nil
}

// String returns the value coerced to a string. Cases with no natural
// string form yield "".
func (v Value) String() string {
	switch d := v.data.(type) {
	case bool:
		if d {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(d)
	case string:
		return d
	default:
		return ""
	}
}

// Bool returns the value coerced to a boolean. None is false, integers are
// true when nonzero, strings when nonempty, and list/struct references are
// true whenever the reference exists.
func (v Value) Bool() bool {
	switch d := v.data.(type) {
	case bool:
		return d
	case int:
		return d != 0
	case string:
		return d != ""
	case Struct, List, Func:
		return true
	default:
		return false
	}
}

// Int returns the value coerced to an integer. Strings parse on a
// best-effort basis; everything else that is not an integer yields 0.
func (v Value) Int() int {
	switch d := v.data.(type) {
	case bool:
		if d {
			return 1
		}
		return 0
	case int:
		return d
	case string:
		i, err := strconv.Atoi(d)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// AsList returns the borrowed list, or nil when the value is not a list.
func (v Value) AsList() List {
	if l, ok := v.data.(List); ok {
		return l
	}
	return nil
}

// AsStruct returns the borrowed struct, or nil when the value is not a
// struct.
func (v Value) AsStruct() Struct {
	if s, ok := v.data.(Struct); ok {
		return s
	}
	return nil
}

// Call invokes a function value with args and returns its result. For any
// other case it returns "".
func (v Value) Call(args []Value) string {
	if f, ok := v.data.(Func); ok {
		return f(args)
	}
	return ""
}

// Equal compares two values. Values of different kinds are never equal;
// list and struct cases compare by reference identity, so implementations
// of a non-comparable type (a value type holding a map or slice) never
// compare equal, not even to themselves.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch d := v.data.(type) {
	case nil:
		return true
	case bool:
		return d == other.data.(bool)
	case int:
		return d == other.data.(int)
	case string:
		return d == other.data.(string)
	case Struct, List:
		return sameRef(v.data, other.data)
	default:
		// Function values have no useful identity.
		return false
	}
}

// sameRef compares two borrowed references by identity without panicking
// when the implementation type does not support ==.
func sameRef(a, b any) bool {
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

// SetRaw marks whether the value should bypass escaping when written to
// output.
func (v *Value) SetRaw(raw bool) {
	v.raw = raw
}

// Raw reports whether escaping is suppressed for this value.
func (v Value) Raw() bool {
	return v.raw
}
