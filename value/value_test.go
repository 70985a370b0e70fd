package value

import "testing"

func TestZeroValueIsInvalid(t *testing.T) {
	var v Value
	if v.IsValid() {
		t.Error("zero Value should be invalid")
	}
	if v.Kind() != KindNone {
		t.Errorf("expected KindNone, got %s", v.Kind())
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"bool", FromBool(true), KindBool},
		{"int", FromInt(7), KindInt},
		{"string", FromString("x"), KindString},
		{"struct", FromStruct(NewStruct()), KindStruct},
		{"list", FromList(NewList()), KindList},
		{"func", FromFunc(func([]Value) string { return "" }), KindFunc},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.v.Kind() != test.kind {
				t.Errorf("expected %s, got %s", test.kind, test.v.Kind())
			}
			if !test.v.IsValid() {
				t.Error("value should be valid")
			}
		})
	}
}

func TestStringCoercion(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected string
	}{
		{"true", FromBool(true), "true"},
		{"false", FromBool(false), "false"},
		{"int", FromInt(-42), "-42"},
		{"string", FromString("hello"), "hello"},
		{"none", Value{}, ""},
		{"list", FromList(NewList(FromInt(1))), ""},
		{"struct", FromStruct(NewStruct()), ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.v.String(); got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestBoolCoercion(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected bool
	}{
		{"none", Value{}, false},
		{"false", FromBool(false), false},
		{"true", FromBool(true), true},
		{"zero", FromInt(0), false},
		{"nonzero", FromInt(-1), true},
		{"empty string", FromString(""), false},
		{"string", FromString("a"), true},
		{"empty list", FromList(NewList()), true},
		{"struct", FromStruct(NewStruct()), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.v.Bool(); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestIntCoercion(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected int
	}{
		{"int", FromInt(7), 7},
		{"numeric string", FromString("40"), 40},
		{"junk string", FromString("a40"), 0},
		{"bool", FromBool(true), 1},
		{"none", Value{}, 0},
		{"list", FromList(NewList()), 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.v.Int(); got != test.expected {
				t.Errorf("expected %d, got %d", test.expected, got)
			}
		})
	}
}

func TestCall(t *testing.T) {
	fn := FromFunc(func(args []Value) string {
		if len(args) != 2 {
			return "bad"
		}
		return args[0].String() + args[1].String()
	})
	got := fn.Call([]Value{FromString("a"), FromString("b")})
	if got != "ab" {
		t.Errorf("expected %q, got %q", "ab", got)
	}

	if got := FromString("x").Call(nil); got != "" {
		t.Errorf("calling a non-function should return empty string, got %q", got)
	}
}

func TestEqual(t *testing.T) {
	list := NewList()
	st := NewStruct()
	tests := []struct {
		name     string
		a, b     Value
		expected bool
	}{
		{"same int", FromInt(1), FromInt(1), true},
		{"different int", FromInt(1), FromInt(2), false},
		{"same string", FromString("a"), FromString("a"), true},
		{"cross kind", FromInt(1), FromString("1"), false},
		{"cross kind bool", FromBool(true), FromInt(1), false},
		{"both invalid", Value{}, Value{}, true},
		{"same list ref", FromList(list), FromList(list), true},
		{"different list ref", FromList(list), FromList(NewList()), false},
		{"same struct ref", FromStruct(st), FromStruct(st), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.a.Equal(test.b); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

// uncomparableList is a List whose implementation type does not support
// ==: a value type holding a slice.
type uncomparableList struct {
	items []Value
}

func (l uncomparableList) Count() int { return len(l.items) }

func (l uncomparableList) At(i int) Value {
	if i < 0 || i >= len(l.items) {
		return Value{}
	}
	return l.items[i]
}

func (l uncomparableList) Iterator() ListIterator {
	return NewList(l.items...).Iterator()
}

func TestEqualUncomparableReference(t *testing.T) {
	l := uncomparableList{items: []Value{FromInt(1)}}
	a := FromList(l)
	b := FromList(l)

	// Identity cannot be established for a value-type implementation, so
	// the compare is false. It must not panic.
	if a.Equal(b) {
		t.Error("value-type list implementations should never compare equal")
	}
	if a.Equal(FromList(NewList())) {
		t.Error("expected false against a different list")
	}
}

func TestRawFlag(t *testing.T) {
	v := FromString("<b>")
	if v.Raw() {
		t.Error("raw should default to false")
	}
	v.SetRaw(true)
	if !v.Raw() {
		t.Error("SetRaw(true) should stick")
	}

	// Copies carry the flag.
	w := v
	if !w.Raw() {
		t.Error("copy should carry the raw flag")
	}
}

func TestSliceList(t *testing.T) {
	l := NewList(FromInt(1), FromInt(2))
	l.Append(FromInt(3))

	if l.Count() != 3 {
		t.Fatalf("expected count 3, got %d", l.Count())
	}
	if got := l.At(1).Int(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if l.At(-1).IsValid() || l.At(3).IsValid() {
		t.Error("out-of-range At should return the invalid value")
	}
}

func TestSliceListIterator(t *testing.T) {
	l := NewList(FromInt(1), FromInt(2), FromInt(3))

	it := l.Iterator()
	var forward []int
	for it.First(); ; it.Next() {
		v, ok := it.Current()
		if !ok {
			break
		}
		forward = append(forward, v.Int())
	}
	if len(forward) != 3 || forward[0] != 1 || forward[2] != 3 {
		t.Errorf("forward iteration got %v", forward)
	}

	var backward []int
	for it.Last(); ; it.Prev() {
		v, ok := it.Current()
		if !ok {
			break
		}
		backward = append(backward, v.Int())
	}
	if len(backward) != 3 || backward[0] != 3 || backward[2] != 1 {
		t.Errorf("backward iteration got %v", backward)
	}
}

func TestIteratorsAreIndependent(t *testing.T) {
	l := NewList(FromInt(1), FromInt(2))

	a := l.Iterator()
	b := l.Iterator()
	a.First()
	b.First()
	a.Next()

	if v, ok := b.Current(); !ok || v.Int() != 1 {
		t.Error("advancing one iterator must not move another")
	}
}

func TestMapStruct(t *testing.T) {
	s := NewStruct()
	s.Set("name", FromString("doc"))

	if got := s.Get("name").String(); got != "doc" {
		t.Errorf("expected %q, got %q", "doc", got)
	}
	if s.Get("missing").IsValid() {
		t.Error("missing field should return the invalid value")
	}
}

func TestFromAny(t *testing.T) {
	v := FromAny(map[string]any{
		"name":  "Alice",
		"age":   30,
		"tags":  []any{"a", "b"},
		"admin": true,
	})

	st := v.AsStruct()
	if st == nil {
		t.Fatal("expected a struct value")
	}
	if got := st.Get("name").String(); got != "Alice" {
		t.Errorf("name: expected %q, got %q", "Alice", got)
	}
	if got := st.Get("age").Int(); got != 30 {
		t.Errorf("age: expected 30, got %d", got)
	}
	if !st.Get("admin").Bool() {
		t.Error("admin should be true")
	}

	tags := st.Get("tags").AsList()
	if tags == nil || tags.Count() != 2 {
		t.Fatal("tags should be a 2-element list")
	}
	if got := tags.At(1).String(); got != "b" {
		t.Errorf("tags[1]: expected %q, got %q", "b", got)
	}
}

func TestFromAnyGoStruct(t *testing.T) {
	type user struct {
		Name  string `json:"name"`
		Email string
		skip  int
	}
	_ = user{skip: 1}

	v := FromAny(user{Name: "Bob", Email: "b@example.com"})
	st := v.AsStruct()
	if st == nil {
		t.Fatal("expected a struct value")
	}
	if got := st.Get("name").String(); got != "Bob" {
		t.Errorf("expected json tag name to win, got %q", got)
	}
	if got := st.Get("Email").String(); got != "b@example.com" {
		t.Errorf("expected %q, got %q", "b@example.com", got)
	}
	if st.Get("skip").IsValid() {
		t.Error("unexported fields should not convert")
	}
}

func TestFromAnyNil(t *testing.T) {
	if FromAny(nil).IsValid() {
		t.Error("nil should convert to the invalid value")
	}
}
