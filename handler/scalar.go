package handler

import (
	"reflect"

	set "github.com/hashicorp/go-set/v3"
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/types"
	"github.com/typolang/typo/values"
)

// AnyHandler accepts every value and emits nothing.
type AnyHandler struct{}

var anyHandler = &AnyHandler{}

func (*AnyHandler) Emit(*codegen.Program, codegen.Var, *codegen.Path) {}

func (*AnyHandler) String() string { return "Any" }

func (*AnyHandler) IsAny() bool { return true }

func (*AnyHandler) TypeParameters() *set.TreeSet[*types.Param] { return noParams() }

func (*AnyHandler) ValidAsBound() bool { return true }

func buildAny(*builder, types.Descriptor) (Handler, error) {
	return anyHandler, nil
}

// ConcreteHandler checks that a value is an instance of a single type.
type ConcreteHandler struct {
	Type reflect.Type
}

func buildConcrete(_ *builder, d types.Descriptor) (Handler, error) {
	c, err := as[*types.Concrete](d)
	if err != nil {
		return nil, err
	}
	if c.Type == nil {
		return nil, newError("nil", "invalid type annotation")
	}
	if values.IsAnyType(c.Type) {
		return anyHandler, nil
	}
	return &ConcreteHandler{Type: c.Type}, nil
}

func (h *ConcreteHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckInstance(v, path, h.String(), h.Type)
}

func (h *ConcreteHandler) String() string {
	return values.TypeName(h.Type)
}

func (*ConcreteHandler) IsAny() bool { return false }

func (*ConcreteHandler) TypeParameters() *set.TreeSet[*types.Param] { return noParams() }

func (*ConcreteHandler) ValidAsBound() bool { return true }
