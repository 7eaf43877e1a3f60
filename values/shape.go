package values

import "reflect"

// Shape is a nominal collection category.
type Shape int

const (
	ShapeList Shape = iota
	ShapeTuple
	ShapeDict
	ShapeSet
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeTuple:
		return "tuple"
	case ShapeDict:
		return "dict"
	case ShapeSet:
		return "set"
	default:
		return "invalid"
	}
}

// Has reports whether values of type t have shape s.
func (s Shape) Has(t reflect.Type) bool {
	switch s {
	case ShapeList:
		return t.Kind() == reflect.Slice && t != TupleType
	case ShapeTuple:
		return t == TupleType || t.Kind() == reflect.Array
	case ShapeDict:
		return t.Kind() == reflect.Map && !isSetType(t)
	case ShapeSet:
		return isSetType(t)
	}
	return false
}

// Sequence is implemented by user types that behave like read-only
// sequences: they have a length, can be indexed and support membership tests.
type Sequence interface {
	Len() int
	At(i int) any
	Contains(v any) bool
}

// MutableSequence adds index assignment and deletion to Sequence.
type MutableSequence interface {
	Sequence
	SetAt(i int, v any)
	DeleteAt(i int)
}

// Capability is a structural requirement on a value's operation set,
// independent of its nominal type.
type Capability struct {
	Name   string
	iface  reflect.Type
	native func(t reflect.Type) bool
}

var (
	SequenceCapability = &Capability{
		Name:  "sequence",
		iface: reflect.TypeFor[Sequence](),
		native: func(t reflect.Type) bool {
			return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
		},
	}
	MutableSequenceCapability = &Capability{
		Name:  "mutable sequence",
		iface: reflect.TypeFor[MutableSequence](),
		native: func(t reflect.Type) bool {
			return t.Kind() == reflect.Slice && t != TupleType
		},
	}
)

// Probe inspects t for the capability's operations. Results are stable for
// a given type, which is what makes them safe to memoize.
func (c *Capability) Probe(t reflect.Type) bool {
	if t == NoneType {
		return false
	}
	return c.native(t) || t.Implements(c.iface)
}

func (c *Capability) String() string {
	return c.Name
}
