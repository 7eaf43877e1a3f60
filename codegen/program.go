// Package codegen provides the intermediate program that handlers emit
// validation logic into, and the compiler that turns it into a checker.
//
// A Program is a tree of statements grouped into named entry points.
// Compile translates the tree into closures exactly once; running the
// resulting Checker never revisits the statement tree or the descriptors
// it was generated from.
package codegen

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/typolang/typo/solver"
	"github.com/typolang/typo/values"
)

// Var is a local variable slot in the checker's frame.
type Var int

func (v Var) String() string {
	return "v" + strconv.Itoa(int(v))
}

// Const refers to a value bound into the compiled checker that has no
// literal form, such as a list of types or a capability cache.
type Const int

func (c Const) String() string {
	return "c" + strconv.Itoa(int(c))
}

// GotFunc describes the offending value when its type name is not the most
// useful thing to report.
type GotFunc func(v any) string

type block struct {
	stmts []stmt
}

type entry struct {
	name  string
	input Var
	body  *block
}

// Program is a validation program under construction.
type Program struct {
	nextVar    int
	consts     []any
	constIndex map[any]Const
	entries    []*entry
	stack      []*block
	params     map[string]*solver.Param
	paramOrder []*solver.Param
	cache      *CapabilityCache
}

// NewProgram returns an empty program using DefaultCache.
func NewProgram() *Program {
	return &Program{
		constIndex: make(map[any]Const),
		params:     make(map[string]*solver.Param),
		cache:      DefaultCache,
	}
}

// SetCache replaces the capability cache used by capability checks.
func (p *Program) SetCache(c *CapabilityCache) {
	p.cache = c
}

// NewVar allocates a fresh variable.
func (p *Program) NewVar() Var {
	v := Var(p.nextVar)
	p.nextVar++
	return v
}

// Const binds v into the program and returns its reference. Comparable
// values are bound only once.
func (p *Program) Const(v any) Const {
	comparable := v != nil && reflect.TypeOf(v).Comparable()
	if comparable {
		if c, ok := p.constIndex[v]; ok {
			return c
		}
	}
	c := Const(len(p.consts))
	p.consts = append(p.consts, v)
	if comparable {
		p.constIndex[v] = c
	}
	return c
}

// Param returns the solver parameter named name, allocating the next slot
// the first time the name is seen.
func (p *Program) Param(name string) *solver.Param {
	if sp, ok := p.params[name]; ok {
		return sp
	}
	sp := &solver.Param{Name: name, Slot: len(p.paramOrder)}
	p.params[name] = sp
	p.paramOrder = append(p.paramOrder, sp)
	return sp
}

// Entry starts a new entry point and returns the variable holding its
// input. Subsequent statements are emitted into this entry.
func (p *Program) Entry(name string) Var {
	if len(p.stack) > 1 {
		panic("codegen: entry started inside an open block")
	}
	e := &entry{name: name, input: p.NewVar(), body: &block{}}
	p.entries = append(p.entries, e)
	p.stack = []*block{e.body}
	return e.input
}

func (p *Program) emit(s stmt) {
	if len(p.stack) == 0 {
		panic("codegen: statement emitted outside of an entry")
	}
	top := p.stack[len(p.stack)-1]
	top.stmts = append(top.stmts, s)
}

// nest collects the statements emitted by body into a new block. The
// block is closed even if body panics.
func (p *Program) nest(body func()) *block {
	b := &block{}
	p.stack = append(p.stack, b)
	defer func() {
		p.stack = p.stack[:len(p.stack)-1]
	}()
	body()
	return b
}

func (p *Program) guard(v Var, c cond, fail func()) {
	p.emit(&guardStmt{v: v, cond: c, body: p.nest(fail)})
}

// CheckInstance fails unless v is an instance of one of types.
func (p *Program) CheckInstance(v Var, path *Path, expected string, types ...reflect.Type) {
	p.guard(v, instanceCond{types: p.Const(slices.Clone(types))}, func() {
		p.Fail(path, expected, v, nil)
	})
}

// CheckShape fails unless v has the given nominal collection shape.
func (p *Program) CheckShape(v Var, path *Path, shape values.Shape) {
	p.guard(v, shapeCond{shape: shape}, func() {
		p.Fail(path, shape.String(), v, nil)
	})
}

// CheckCapability fails unless v's type provides c. The probe result is
// memoized per runtime type in the program's capability cache.
func (p *Program) CheckCapability(v Var, path *Path, c *values.Capability) {
	cc := capabilityCond{capability: p.Const(c), cache: p.Const(p.cache)}
	p.guard(v, cc, func() {
		p.Fail(path, c.Name, v, nil)
	})
}

// CheckLength fails unless the tuple held in v has exactly n items.
func (p *Program) CheckLength(v Var, path *Path, n int) {
	p.guard(v, lengthCond{n: n}, func() {
		p.Fail(path, fmt.Sprintf("tuple of length %d", n), v, func(v any) string {
			return fmt.Sprintf("tuple of length %d", values.Len(v))
		})
	})
}

// Fail reports v as invalid at path. A nil got reports v's type name.
func (p *Program) Fail(path *Path, expected string, v Var, got GotFunc) {
	p.emit(&failStmt{path: path, expected: expected, v: v, got: got})
}

// ForEachIndexed loops over a list, tuple or sequence held in v.
func (p *Program) ForEachIndexed(v Var, body func(index, item Var)) {
	index, item := p.NewVar(), p.NewVar()
	s := &loopStmt{mode: loopIndexed, src: v, key: index, value: item}
	s.body = p.nest(func() { body(index, item) })
	p.emit(s)
}

// ForEachItem loops over the members of a set held in v.
func (p *Program) ForEachItem(v Var, body func(item Var)) {
	item := p.NewVar()
	s := &loopStmt{mode: loopMembers, src: v, value: item}
	s.body = p.nest(func() { body(item) })
	p.emit(s)
}

// ForEachEntry loops over the entries of a mapping held in v.
func (p *Program) ForEachEntry(v Var, body func(key, value Var)) {
	key, value := p.NewVar(), p.NewVar()
	s := &loopStmt{mode: loopEntries, src: v, key: key, value: value}
	s.body = p.nest(func() { body(key, value) })
	p.emit(s)
}

// Index loads the i-th item of the tuple held in v into a new variable.
func (p *Program) Index(v Var, i int) Var {
	dst := p.NewVar()
	p.emit(&loadStmt{dst: dst, src: v, index: i})
	return dst
}

// FirstOf accepts v if it is an instance of one of types, or if any branch
// succeeds, tried in order. Branches should emit with a nil path. Candidate
// worlds pinned by a failed branch are discarded.
func (p *Program) FirstOf(v Var, path *Path, expected string, types []reflect.Type, branches ...func()) {
	s := &firstOfStmt{v: v, path: path, expected: expected, types: -1}
	if len(types) > 0 {
		s.types = p.Const(slices.Clone(types))
	}
	for _, b := range branches {
		s.branches = append(s.branches, p.nest(b))
	}
	p.emit(s)
}

// Pin records an occurrence of the parameter sp for the value in v.
func (p *Program) Pin(v Var, path *Path, sp *solver.Param) {
	p.emit(&pinStmt{v: v, path: path, param: p.Const(sp)})
}

// String renders the program as indented pseudo-source.
func (p *Program) String() string {
	w := &writer{consts: p.consts}
	for i, e := range p.entries {
		if i > 0 {
			w.line("")
		}
		w.line("entry %s(%s) {", e.name, e.input)
		w.nested(e.body)
		w.line("}")
	}
	return w.b.String()
}

// Compile turns the program into a Checker.
func (p *Program) Compile() *Checker {
	c := &compiler{consts: slices.Clone(p.consts)}
	ck := &Checker{
		entries: make(map[string]*compiledEntry, len(p.entries)),
		nvars:   p.nextVar,
		slots:   len(p.paramOrder),
	}
	for _, e := range p.entries {
		ck.names = append(ck.names, e.name)
		ck.entries[e.name] = &compiledEntry{input: e.input, run: c.block(e.body)}
	}
	return ck
}
