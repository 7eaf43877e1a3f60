// Package types defines type descriptors: immutable, tree-shaped
// descriptions of the shape a runtime value is expected to have.
package types

import (
	"reflect"

	"github.com/typolang/typo/values"
)

// Kind identifies a descriptor variant.
type Kind int

const (
	KindAny Kind = iota
	KindConcrete
	KindList
	KindSet
	KindTuple
	KindVarTuple
	KindMapping
	KindSequence
	KindMutableSequence
	KindUnion
	KindParam
	KindForwardRef
)

var kindNames = [...]string{
	KindAny:             "Any",
	KindConcrete:        "Concrete",
	KindList:            "List",
	KindSet:             "Set",
	KindTuple:           "Tuple",
	KindVarTuple:        "VarTuple",
	KindMapping:         "Mapping",
	KindSequence:        "Sequence",
	KindMutableSequence: "MutableSequence",
	KindUnion:           "Union",
	KindParam:           "Param",
	KindForwardRef:      "ForwardRef",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Invalid"
	}
	return kindNames[k]
}

// Descriptor describes an expected value shape.
type Descriptor interface {
	Kind() Kind
}

// AnyType accepts every value.
type AnyType struct{}

func (AnyType) Kind() Kind { return KindAny }

// Any is the descriptor accepting every value.
var Any Descriptor = AnyType{}

// Concrete is a single nominal type. An interface type accepts every value
// implementing it.
type Concrete struct {
	Type reflect.Type
}

func (*Concrete) Kind() Kind { return KindConcrete }

// List is a homogeneous list. A nil Elem means Any.
type List struct {
	Elem Descriptor
}

func (*List) Kind() Kind { return KindList }

// Set is a homogeneous set. A nil Elem means Any.
type Set struct {
	Elem Descriptor
}

func (*Set) Kind() Kind { return KindSet }

// Tuple is a fixed-arity tuple checked positionally.
type Tuple struct {
	Items []Descriptor
}

func (*Tuple) Kind() Kind { return KindTuple }

// VarTuple is a homogeneous tuple of any arity. A nil Elem means Any.
type VarTuple struct {
	Elem Descriptor
}

func (*VarTuple) Kind() Kind { return KindVarTuple }

// Mapping maps keys to values. Nil Key or Value means Any.
type Mapping struct {
	Key   Descriptor
	Value Descriptor
}

func (*Mapping) Kind() Kind { return KindMapping }

// Sequence is a structural requirement: any value that can be iterated,
// indexed, measured and searched. Mutable additionally requires index
// assignment and deletion.
type Sequence struct {
	Elem    Descriptor
	Mutable bool
}

func (s *Sequence) Kind() Kind {
	if s.Mutable {
		return KindMutableSequence
	}
	return KindSequence
}

// Union accepts a value matching any of its variants.
type Union struct {
	Variants []Descriptor
}

func (*Union) Kind() Kind { return KindUnion }

// Param is a named generic parameter. Within one validation call every
// occurrence must resolve to the same concrete runtime type. Bound and
// Constraints are mutually exclusive.
type Param struct {
	Name        string
	Bound       Descriptor
	Constraints []Descriptor
}

func (*Param) Kind() Kind { return KindParam }

// ForwardRef names a type that has not been resolved. Building a
// descriptor that contains one always fails.
type ForwardRef struct {
	Name string
}

func (*ForwardRef) Kind() Kind { return KindForwardRef }

// Of returns the concrete descriptor for T.
func Of[T any]() Descriptor {
	return &Concrete{Type: reflect.TypeFor[T]()}
}

// TypeOf returns the concrete descriptor for t.
func TypeOf(t reflect.Type) Descriptor {
	return &Concrete{Type: t}
}

var (
	Int     = Of[int]()
	Float64 = Of[float64]()
	String  = Of[string]()
	Bool    = Of[bool]()
	Nil     = TypeOf(values.NoneType)
)

func ListOf(elem Descriptor) *List { return &List{Elem: elem} }

func SetOf(elem Descriptor) *Set { return &Set{Elem: elem} }

func TupleOf(items ...Descriptor) *Tuple { return &Tuple{Items: items} }

func VarTupleOf(elem Descriptor) *VarTuple { return &VarTuple{Elem: elem} }

func MappingOf(key, value Descriptor) *Mapping { return &Mapping{Key: key, Value: value} }

func SequenceOf(elem Descriptor) *Sequence { return &Sequence{Elem: elem} }

func MutableSequenceOf(elem Descriptor) *Sequence { return &Sequence{Elem: elem, Mutable: true} }

func UnionOf(variants ...Descriptor) *Union { return &Union{Variants: variants} }

// NewParam returns an unconstrained parameter, or one restricted to the
// given constraints.
func NewParam(name string, constraints ...Descriptor) *Param {
	return &Param{Name: name, Constraints: constraints}
}

// BoundedParam returns a parameter whose resolved type must satisfy bound.
func BoundedParam(name string, bound Descriptor) *Param {
	return &Param{Name: name, Bound: bound}
}
