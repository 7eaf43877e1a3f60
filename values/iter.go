package values

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Len returns the length of a list, tuple, map or Sequence value.
func Len(v any) int {
	if s, ok := v.(Sequence); ok {
		return s.Len()
	}
	return reflect.ValueOf(v).Len()
}

// Index returns the i-th element of a list, tuple or Sequence value.
func Index(v any, i int) any {
	if s, ok := v.(Sequence); ok {
		return s.At(i)
	}
	return reflect.ValueOf(v).Index(i).Interface()
}

// Items iterates the elements of a list, tuple or Sequence value in order.
func Items(v any) iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if s, ok := v.(Sequence); ok {
			for i := 0; i < s.Len(); i++ {
				if !yield(i, s.At(i)) {
					return
				}
			}
			return
		}
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if !yield(i, rv.Index(i).Interface()) {
				return
			}
		}
	}
}

type entry struct {
	key, value reflect.Value
}

// Entries iterates a map's entries in SortedKeys order. Entries whose keys
// compare equal, such as several NaN keys, are ordered by value.
func Entries(v any) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		rv := reflect.ValueOf(v)
		entries := make([]entry, 0, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			entries = append(entries, entry{key: it.Key(), value: it.Value()})
		}
		slices.SortFunc(entries, func(a, b entry) int {
			if c := compareKeys(a.key, b.key); c != 0 {
				return c
			}
			return compareKeys(a.value, b.value)
		})
		for _, e := range entries {
			if !yield(e.key.Interface(), e.value.Interface()) {
				return
			}
		}
	}
}

// Members iterates the members of a set in SortedKeys order.
func Members(v any) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, k := range SortedKeys(reflect.ValueOf(v)) {
			if !yield(k.Interface()) {
				return
			}
		}
	}
}

// SortedKeys returns the keys of map m in a deterministic order: nil, then
// booleans, numbers, strings and finally everything else ordered by type
// name and printed form.
func SortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortStableFunc(keys, compareKeys)
	return keys
}

func keyRank(v reflect.Value) int {
	if !v.IsValid() {
		return 0
	}
	switch v.Kind() {
	case reflect.Bool:
		return 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return 2
	case reflect.String:
		return 3
	default:
		return 4
	}
}

func compareKeys(a, b reflect.Value) int {
	for a.IsValid() && a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	for b.IsValid() && b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		return 0
	case 1:
		return cmp.Compare(boolInt(a.Bool()), boolInt(b.Bool()))
	case 2:
		if c := compareNumbers(a, b); c != 0 {
			return c
		}
		return cmp.Compare(TypeName(a.Type()), TypeName(b.Type()))
	case 3:
		return cmp.Compare(a.String(), b.String())
	}
	if c := cmp.Compare(TypeName(a.Type()), TypeName(b.Type())); c != 0 {
		return c
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareNumbers compares integers exactly and falls back to float64 only
// when a float is involved.
func compareNumbers(a, b reflect.Value) int {
	switch {
	case a.CanInt() && b.CanInt():
		return cmp.Compare(a.Int(), b.Int())
	case a.CanUint() && b.CanUint():
		return cmp.Compare(a.Uint(), b.Uint())
	case a.CanInt() && b.CanUint():
		if a.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.Int()), b.Uint())
	case a.CanUint() && b.CanInt():
		return -compareNumbers(b, a)
	}
	return cmp.Compare(number(a), number(b))
}

func number(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
