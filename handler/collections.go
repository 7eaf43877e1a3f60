package handler

import (
	"fmt"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/types"
	"github.com/typolang/typo/values"
)

// ListHandler checks list-shaped values and, unless the element is Any,
// each of their items.
type ListHandler struct {
	Elem Handler
}

// unparameterized reports whether a slot was left as plain Any, so the
// composite renders under its bare name. Unions containing Any keep their
// declared text.
func unparameterized(h Handler) bool {
	_, ok := h.(*AnyHandler)
	return ok
}

func buildList(b *builder, d types.Descriptor) (Handler, error) {
	l, err := as[*types.List](d)
	if err != nil {
		return nil, err
	}
	elem, err := b.elem(l.Elem)
	if err != nil {
		return nil, err
	}
	return &ListHandler{Elem: elem}, nil
}

func (h *ListHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckShape(v, path, values.ShapeList)
	if h.Elem.IsAny() {
		return
	}
	p.ForEachIndexed(v, func(index, item codegen.Var) {
		h.Elem.Emit(p, item, path.Item(index))
	})
}

func (h *ListHandler) String() string {
	if unparameterized(h.Elem) {
		return "list"
	}
	return fmt.Sprintf("List[%s]", h.Elem)
}

func (*ListHandler) IsAny() bool { return false }

func (h *ListHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return h.Elem.TypeParameters()
}

func (*ListHandler) ValidAsBound() bool { return false }

// SetHandler checks set-shaped values. Members carry no index, so their
// paths are "item of ...".
type SetHandler struct {
	Elem Handler
}

func buildSet(b *builder, d types.Descriptor) (Handler, error) {
	s, err := as[*types.Set](d)
	if err != nil {
		return nil, err
	}
	elem, err := b.elem(s.Elem)
	if err != nil {
		return nil, err
	}
	return &SetHandler{Elem: elem}, nil
}

func (h *SetHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckShape(v, path, values.ShapeSet)
	if h.Elem.IsAny() {
		return
	}
	p.ForEachItem(v, func(item codegen.Var) {
		h.Elem.Emit(p, item, path.SetItem())
	})
}

func (h *SetHandler) String() string {
	if unparameterized(h.Elem) {
		return "set"
	}
	return fmt.Sprintf("Set[%s]", h.Elem)
}

func (*SetHandler) IsAny() bool { return false }

func (h *SetHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return h.Elem.TypeParameters()
}

func (*SetHandler) ValidAsBound() bool { return false }

// TupleHandler checks fixed-arity tuples positionally.
type TupleHandler struct {
	Items []Handler
}

func buildTuple(b *builder, d types.Descriptor) (Handler, error) {
	t, err := as[*types.Tuple](d)
	if err != nil {
		return nil, err
	}
	items := make([]Handler, len(t.Items))
	for i, item := range t.Items {
		h, err := b.elem(item)
		if err != nil {
			return nil, err
		}
		items[i] = h
	}
	return &TupleHandler{Items: items}, nil
}

func (h *TupleHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckShape(v, path, values.ShapeTuple)
	p.CheckLength(v, path, len(h.Items))
	for i, item := range h.Items {
		if item.IsAny() {
			continue
		}
		x := p.Index(v, i)
		item.Emit(p, x, path.ItemAt(i))
	}
}

func (h *TupleHandler) String() string {
	return fmt.Sprintf("Tuple[%s]", joinHandlers(h.Items))
}

func (*TupleHandler) IsAny() bool { return false }

func (h *TupleHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return collectParams(h.Items...)
}

func (*TupleHandler) ValidAsBound() bool { return false }

// VarTupleHandler checks homogeneous tuples of any arity.
type VarTupleHandler struct {
	Elem Handler
}

func buildVarTuple(b *builder, d types.Descriptor) (Handler, error) {
	t, err := as[*types.VarTuple](d)
	if err != nil {
		return nil, err
	}
	elem, err := b.elem(t.Elem)
	if err != nil {
		return nil, err
	}
	return &VarTupleHandler{Elem: elem}, nil
}

func (h *VarTupleHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckShape(v, path, values.ShapeTuple)
	if h.Elem.IsAny() {
		return
	}
	p.ForEachIndexed(v, func(index, item codegen.Var) {
		h.Elem.Emit(p, item, path.Item(index))
	})
}

func (h *VarTupleHandler) String() string {
	if unparameterized(h.Elem) {
		return "tuple"
	}
	return fmt.Sprintf("Tuple[%s, ...]", h.Elem)
}

func (*VarTupleHandler) IsAny() bool { return false }

func (h *VarTupleHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return h.Elem.TypeParameters()
}

func (*VarTupleHandler) ValidAsBound() bool { return false }

// MappingHandler checks dict-shaped values. For every entry the key is
// checked before its value.
type MappingHandler struct {
	Key   Handler
	Value Handler
}

func buildMapping(b *builder, d types.Descriptor) (Handler, error) {
	m, err := as[*types.Mapping](d)
	if err != nil {
		return nil, err
	}
	key, err := b.elem(m.Key)
	if err != nil {
		return nil, err
	}
	value, err := b.elem(m.Value)
	if err != nil {
		return nil, err
	}
	return &MappingHandler{Key: key, Value: value}, nil
}

func (h *MappingHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckShape(v, path, values.ShapeDict)
	if h.Key.IsAny() && h.Value.IsAny() {
		return
	}
	p.ForEachEntry(v, func(key, value codegen.Var) {
		if !h.Key.IsAny() {
			h.Key.Emit(p, key, path.Key())
		}
		if !h.Value.IsAny() {
			h.Value.Emit(p, value, path.ValueAt(key))
		}
	})
}

func (h *MappingHandler) String() string {
	if unparameterized(h.Key) && unparameterized(h.Value) {
		return "dict"
	}
	return fmt.Sprintf("Dict[%s, %s]", h.Key, h.Value)
}

func (*MappingHandler) IsAny() bool { return false }

func (h *MappingHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return collectParams(h.Key, h.Value)
}

func (*MappingHandler) ValidAsBound() bool { return false }

// SequenceHandler checks a structural capability rather than a nominal
// shape, so user types implementing values.Sequence are accepted.
type SequenceHandler struct {
	Elem       Handler
	Capability *values.Capability
}

func buildSequence(b *builder, d types.Descriptor) (Handler, error) {
	s, err := as[*types.Sequence](d)
	if err != nil {
		return nil, err
	}
	elem, err := b.elem(s.Elem)
	if err != nil {
		return nil, err
	}
	h := &SequenceHandler{Elem: elem, Capability: values.SequenceCapability}
	if s.Mutable {
		h.Capability = values.MutableSequenceCapability
	}
	return h, nil
}

func (h *SequenceHandler) Emit(p *codegen.Program, v codegen.Var, path *codegen.Path) {
	p.CheckCapability(v, path, h.Capability)
	if h.Elem.IsAny() {
		return
	}
	p.ForEachIndexed(v, func(index, item codegen.Var) {
		h.Elem.Emit(p, item, path.Item(index))
	})
}

func (h *SequenceHandler) String() string {
	name := "Sequence"
	if h.Capability == values.MutableSequenceCapability {
		name = "MutableSequence"
	}
	if unparameterized(h.Elem) {
		return name
	}
	return fmt.Sprintf("%s[%s]", name, h.Elem)
}

func (*SequenceHandler) IsAny() bool { return false }

func (h *SequenceHandler) TypeParameters() *set.TreeSet[*types.Param] {
	return h.Elem.TypeParameters()
}

func (*SequenceHandler) ValidAsBound() bool { return false }

func joinHandlers(hs []Handler) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = h.String()
	}
	return strings.Join(parts, ", ")
}
