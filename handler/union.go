package handler

import (
	"fmt"
	"reflect"

	set "github.com/hashicorp/go-set/v3"
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/types"
)

// UnionHandler accepts a value matching any variant. Concrete variants are
// merged into a single instance check tried before the remaining variants.
type UnionHandler struct {
	Variants []Handler

	concrete []reflect.Type
	rest     []Handler
	hasAny   bool
}

func buildUnion(b *builder, d types.Descriptor) (Handler, error) {
	u, err := as[*types.Union](d)
	if err != nil {
		return nil, err
	}
	if len(u.Variants) == 0 {
		return nil, newError("Union[]", "union must have at least one variant")
	}
	h := &UnionHandler{}
	for _, variant := range u.Variants {
		vh, err := b.elem(variant)
		if err != nil {
			return nil, err
		}
		h.Variants = append(h.Variants, vh)
		switch vh := vh.(type) {
		case *AnyHandler:
			h.hasAny = true
		case *ConcreteHandler:
			h.concrete = append(h.concrete, vh.Type)
		default:
			h.rest = append(h.rest, vh)
		}
	}
	return h, nil
}

func (h *UnionHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	switch {
	case h.hasAny:
		return
	case len(h.concrete) == 0 && len(h.rest) == 1:
		h.rest[0].Emit(p, v, path)
		return
	case len(h.rest) == 0:
		p.CheckInstance(v, path, h.String(), h.concrete...)
		return
	}
	branches := make([]func(), len(h.rest))
	for i, variant := range h.rest {
		branches[i] = func() { variant.Emit(p, v, nil) }
	}
	p.FirstOf(v, path, h.String(), h.concrete, branches...)
}

func (h *UnionHandler) String() string {
	return fmt.Sprintf("Union[%s]", joinHandlers(h.Variants))
}

func (h *UnionHandler) IsAny() bool { return h.hasAny }

func (h *UnionHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return collectParams(h.Variants...)
}

func (*UnionHandler) ValidAsBound() bool { return false }
