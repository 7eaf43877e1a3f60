// Package handler turns type descriptors into handlers that emit validation
// logic into a codegen.Program and render the descriptor they were built
// from.
package handler

import (
	"cmp"
	"fmt"
	"reflect"

	set "github.com/hashicorp/go-set/v3"
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/types"
	"github.com/typolang/typo/values"
)

// Handler is the build-time representation of a descriptor.
type Handler interface {
	// Emit appends the checks for the value held in v. A nil path marks a
	// speculative branch whose failures are not reported in detail.
	Emit(p *codegen.Program, v codegen.Var, path *codegen.Path)
	String() string
	IsAny() bool
	// TypeParameters returns the generic parameters reachable from the
	// handler, ordered by name.
	TypeParameters() *set.TreeSet[*types.Param]
	ValidAsBound() bool
}

func compareParams(a, b *types.Param) int {
	return cmp.Compare(a.Name, b.Name)
}

func noParams() *set.TreeSet[*types.Param] {
	return set.NewTreeSet[*types.Param](compareParams)
}

func collectParams(hs ...Handler) *set.TreeSet[*types.Param] {
	s := noParams()
	for _, h := range hs {
		s.InsertSet(h.TypeParameters())
	}
	return s
}

type buildFunc func(b *builder, d types.Descriptor) (Handler, error)

var builders map[types.Kind]buildFunc

func init() {
	builders = map[types.Kind]buildFunc{
		types.KindAny:             buildAny,
		types.KindConcrete:        buildConcrete,
		types.KindList:            buildList,
		types.KindSet:             buildSet,
		types.KindTuple:           buildTuple,
		types.KindVarTuple:        buildVarTuple,
		types.KindMapping:         buildMapping,
		types.KindSequence:        buildSequence,
		types.KindMutableSequence: buildSequence,
		types.KindUnion:           buildUnion,
		types.KindParam:           buildParam,
		types.KindForwardRef:      buildForwardRef,
	}
}

// builder carries the state of one Dispatch call. Parameters are built once
// per descriptor so every occurrence shares a handler.
type builder struct {
	byName   map[string]*types.Param
	params   map[*types.Param]*ParamHandler
	visiting map[*types.Param]bool
}

// Dispatch builds the handler tree for d.
func Dispatch(d types.Descriptor) (Handler, error) {
	b := &builder{
		byName:   make(map[string]*types.Param),
		params:   make(map[*types.Param]*ParamHandler),
		visiting: make(map[*types.Param]bool),
	}
	return b.build(d)
}

// DispatchAll builds several descriptors in one scope, so parameters shared
// between them resolve to the same handler.
func DispatchAll(ds ...types.Descriptor) ([]Handler, error) {
	b := &builder{
		byName:   make(map[string]*types.Param),
		params:   make(map[*types.Param]*ParamHandler),
		visiting: make(map[*types.Param]bool),
	}
	hs := make([]Handler, len(ds))
	for i, d := range ds {
		h, err := b.build(d)
		if err != nil {
			return nil, err
		}
		hs[i] = h
	}
	return hs, nil
}

func (b *builder) build(d types.Descriptor) (Handler, error) {
	if d == nil {
		return anyHandler, nil
	}
	if v := reflect.ValueOf(d); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, invalidAnnotation(d)
	}
	fn, ok := builders[d.Kind()]
	if !ok {
		return nil, invalidAnnotation(d)
	}
	return fn(b, d)
}

func invalidAnnotation(d types.Descriptor) error {
	return newError(fmt.Sprintf("%T", d), "invalid type annotation")
}

// as narrows d to the descriptor type its Kind promises. Caller-defined
// descriptors that claim a builtin kind fail here.
func as[T types.Descriptor](d types.Descriptor) (T, error) {
	t, ok := d.(T)
	if !ok {
		return t, invalidAnnotation(d)
	}
	return t, nil
}

// elem builds an optional slot of a composite. Nil slots mean Any.
func (b *builder) elem(d types.Descriptor) (Handler, error) {
	if d == nil {
		return anyHandler, nil
	}
	return b.build(d)
}

func buildForwardRef(_ *builder, d types.Descriptor) (Handler, error) {
	ref, err := as[*types.ForwardRef](d)
	if err != nil {
		return nil, err
	}
	return nil, newError(values.Repr(ref.Name), "forward references are not currently supported")
}
