package handler

import (
	"reflect"

	set "github.com/hashicorp/go-set/v3"
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/solver"
	"github.com/typolang/typo/types"
)

// ParamHandler pins a generic parameter to the runtime type of every value
// it is checked against. All occurrences of one parameter within a build
// share a single handler.
type ParamHandler struct {
	Param *types.Param

	bound       reflect.Type
	constraints []paramConstraint
}

type paramConstraint struct {
	typ   reflect.Type
	param *ParamHandler
}

func buildParam(b *builder, d types.Descriptor) (Handler, error) {
	tp, err := as[*types.Param](d)
	if err != nil {
		return nil, err
	}
	if h, ok := b.params[tp]; ok {
		return h, nil
	}
	if b.visiting[tp] {
		return nil, newError("", "invalid type parameter constraint: %s is recursive", tp.Name)
	}
	if other, ok := b.byName[tp.Name]; ok && other != tp {
		return nil, newError(tp.Name, "duplicate type parameter")
	}
	if tp.Name == "" {
		return nil, newError("", "type parameter must have a name")
	}
	if tp.Bound != nil && len(tp.Constraints) > 0 {
		return nil, newError(tp.Name, "type parameter cannot have both a bound and constraints")
	}
	b.byName[tp.Name] = tp
	b.visiting[tp] = true
	defer delete(b.visiting, tp)

	h := &ParamHandler{Param: tp}
	if tp.Bound != nil {
		bound, err := b.build(tp.Bound)
		if err != nil {
			return nil, err
		}
		if !bound.ValidAsBound() {
			return nil, newError(bound.String(), "invalid type parameter bound")
		}
		if c, ok := bound.(*ConcreteHandler); ok {
			h.bound = c.Type
		}
	}
	for _, c := range tp.Constraints {
		ch, err := b.build(c)
		if err != nil {
			return nil, err
		}
		switch ch := ch.(type) {
		case *ConcreteHandler:
			h.constraints = append(h.constraints, paramConstraint{typ: ch.Type})
		case *ParamHandler:
			h.constraints = append(h.constraints, paramConstraint{param: ch})
		default:
			return nil, newError(ch.String(), "invalid type parameter constraint")
		}
	}
	b.params[tp] = h
	return h, nil
}

// Declare registers the parameter with p and returns its solver view.
// Linked constraints are declared as well.
func (h *ParamHandler) Declare(p *codegen.Program) *solver.Param {
	sp := p.Param(h.Param.Name)
	sp.Bound = h.bound
	if len(h.constraints) > 0 && sp.Constraints == nil {
		constraints := make([]solver.Constraint, len(h.constraints))
		for i, c := range h.constraints {
			if c.param != nil {
				constraints[i] = solver.Constraint{Param: c.param.Declare(p)}
			} else {
				constraints[i] = solver.Constraint{Type: c.typ}
			}
		}
		sp.Constraints = constraints
	}
	return sp
}

func (h *ParamHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.Pin(v, path, h.Declare(p))
}

func (h *ParamHandler) String() string {
	return h.Param.Name
}

func (*ParamHandler) IsAny() bool { return false }

func (h *ParamHandler) TypeParameters() *set.TreeSet[*types.Param] {
	s := noParams()
	s.Insert(h.Param)
	for _, c := range h.constraints {
		if c.param != nil {
			s.InsertSet(c.param.TypeParameters())
		}
	}
	return s
}

func (*ParamHandler) ValidAsBound() bool { return false }
