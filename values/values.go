// Package values classifies Go runtime values into the shapes the checker
// understands: lists, tuples, dicts, sets and duck-typed sequences.
package values

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Tuple is a fixed sequence of heterogeneous values.
type Tuple []any

// None is the dynamic type reported for nil values.
type None struct{}

var (
	TupleType = reflect.TypeFor[Tuple]()
	NoneType  = reflect.TypeFor[None]()
)

// TypeOf returns the dynamic type of v, or NoneType for nil.
func TypeOf(v any) reflect.Type {
	if v == nil {
		return NoneType
	}
	return reflect.TypeOf(v)
}

// IsAnyType reports whether t is the empty interface.
func IsAnyType(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// IsInstance reports whether v is an instance of t.
func IsInstance(v any, t reflect.Type) bool {
	return Implements(TypeOf(v), t)
}

// Implements reports whether values of dynamic type r are instances of t.
// Interfaces are satisfied structurally; any other type only by itself.
func Implements(r, t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return r != NoneType && r.Implements(t)
	}
	return r == t
}

// TypeName returns the display name of t used in messages and renderings.
func TypeName(t reflect.Type) string {
	switch {
	case t == nil || t == NoneType:
		return "nil"
	case t == TupleType:
		return "tuple"
	case t.Name() != "":
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.String()
	}
	switch t.Kind() {
	case reflect.Slice:
		return "list"
	case reflect.Array:
		return "tuple"
	case reflect.Map:
		if isSetType(t) {
			return "set"
		}
		return "dict"
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "Any"
		}
	}
	return t.String()
}

// Repr renders v the way keys appear inside error paths.
func Repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case Tuple:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = Repr(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprint(x)
	}
}

func isSetType(t reflect.Type) bool {
	if t.Kind() != reflect.Map {
		return false
	}
	elem := t.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0
}
