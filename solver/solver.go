// Package solver resolves generic parameters during a single validation
// call. It tracks a list of candidate worlds, each a consistent assignment
// of pinned types, and narrows the list as occurrences are observed.
//
// Occurrences are consumed strictly in the order the checker visits them.
// Pins are monotonic and a world is never reconsidered once dropped, so a
// parameter first pinned to a concrete type rejects every later occurrence
// of a different type, even one that would also satisfy its bound.
package solver

import (
	"reflect"
	"slices"

	"github.com/typolang/typo/values"
)

// World maps parameter slots to pinned types; nil means unbound.
// Worlds are never modified after construction.
type World []reflect.Type

func (w World) pin(slot int, t reflect.Type) World {
	next := slices.Clone(w)
	next[slot] = t
	return next
}

// Pinned returns the type pinned for p, or nil.
func (w World) Pinned(p *Param) reflect.Type {
	return w[p.Slot]
}

// Param is the solver's view of a generic parameter.
type Param struct {
	Name        string
	Slot        int
	Bound       reflect.Type
	Constraints []Constraint
}

// Constraint restricts a parameter either to exactly one concrete type or
// to whatever another parameter may resolve to.
type Constraint struct {
	Type  reflect.Type
	Param *Param
}

// Initial returns the starting state: a single world with every slot unbound.
func Initial(slots int) []World {
	return []World{make(World, slots)}
}

// Assign records an occurrence of p with runtime type r in every world and
// returns the surviving worlds. An empty result means r cannot be assigned.
func Assign(worlds []World, p *Param, r reflect.Type) []World {
	var out []World
	for _, w := range worlds {
		out = append(out, assign(w, p, r)...)
	}
	return out
}

func assign(w World, p *Param, r reflect.Type) []World {
	if pinned := w[p.Slot]; pinned != nil {
		if pinned == r {
			return []World{w}
		}
		return nil
	}
	switch {
	case p.Bound != nil:
		if values.Implements(r, p.Bound) {
			return []World{w.pin(p.Slot, r)}
		}
		return nil
	case len(p.Constraints) > 0:
		var out []World
		for _, c := range p.Constraints {
			if c.Param != nil {
				for _, forked := range assign(w, c.Param, r) {
					out = append(out, forked.pin(p.Slot, r))
				}
			} else if c.Type == r {
				out = append(out, w.pin(p.Slot, r))
			}
		}
		return out
	default:
		return []World{w.pin(p.Slot, r)}
	}
}
