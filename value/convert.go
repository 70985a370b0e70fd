package value

import (
	"fmt"
	"reflect"
	"strings"
)

// FromAny converts an arbitrary Go value into a Value using reflection.
// Maps and structs become MapStructs, slices and arrays become SliceLists,
// scalars map onto the matching variant case, and nil becomes the invalid
// Value. The conversion is deep: the resulting Values own their converted
// data, so this trades the borrowed-reference model for convenience. It is
// meant for tests, CLIs and other places where the host data is already a
// plain Go structure.
func FromAny(v any) Value {
	if v == nil {
		return Value{}
	}
	if val, ok := v.(Value); ok {
		return val
	}
	if s, ok := v.(Struct); ok {
		return FromStruct(s)
	}
	if l, ok := v.(List); ok {
		return FromList(l)
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Value{}
	}
	switch rv.Kind() {
	case reflect.Bool:
		return FromBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromInt(int(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FromInt(int(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return FromInt(int(rv.Float()))
	case reflect.String:
		return FromString(rv.String())
	case reflect.Slice, reflect.Array:
		list := NewList()
		for i := 0; i < rv.Len(); i++ {
			list.Append(fromReflect(rv.Index(i)))
		}
		return FromList(list)
	case reflect.Map:
		st := NewStruct()
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			var key string
			if k.Kind() == reflect.String {
				key = k.String()
			} else {
				key = fmt.Sprintf("%v", k.Interface())
			}
			st.Set(key, fromReflect(iter.Value()))
		}
		return FromStruct(st)
	case reflect.Struct:
		return fromGoStruct(rv)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Value{}
		}
		return fromReflect(rv.Elem())
	default:
		return Value{}
	}
}

func fromGoStruct(rv reflect.Value) Value {
	t := rv.Type()
	st := NewStruct()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		st.Set(name, fromReflect(rv.Field(i)))
	}
	return FromStruct(st)
}
