package codegen

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/typolang/typo/solver"
	"github.com/typolang/typo/values"
)

type frame struct {
	vars   []any
	worlds []solver.World
}

type op func(f *frame) error

type compiler struct {
	consts []any
}

func (c *compiler) block(b *block) op {
	ops := make([]op, len(b.stmts))
	for i, s := range b.stmts {
		ops[i] = s.compile(c)
	}
	switch len(ops) {
	case 0:
		return func(*frame) error { return nil }
	case 1:
		return ops[0]
	}
	return func(f *frame) error {
		for _, o := range ops {
			if err := o(f); err != nil {
				return err
			}
		}
		return nil
	}
}

type writer struct {
	b      strings.Builder
	depth  int
	consts []any
}

func (w *writer) line(format string, args ...any) {
	if format != "" {
		w.b.WriteString(strings.Repeat("    ", w.depth))
		fmt.Fprintf(&w.b, format, args...)
	}
	w.b.WriteByte('\n')
}

func (w *writer) nested(b *block) {
	w.depth++
	for _, s := range b.stmts {
		s.write(w)
	}
	w.depth--
}

type stmt interface {
	compile(c *compiler) op
	write(w *writer)
}

type cond interface {
	compile(c *compiler) func(v any) bool
	describe(w *writer, v Var) string
}

type instanceCond struct {
	types Const
}

func (ic instanceCond) compile(c *compiler) func(any) bool {
	types := c.consts[ic.types].([]reflect.Type)
	if len(types) == 1 {
		t := types[0]
		return func(v any) bool { return values.IsInstance(v, t) }
	}
	return func(v any) bool {
		r := values.TypeOf(v)
		for _, t := range types {
			if values.Implements(r, t) {
				return true
			}
		}
		return false
	}
}

func (ic instanceCond) describe(w *writer, v Var) string {
	types := w.consts[ic.types].([]reflect.Type)
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = values.TypeName(t)
	}
	return fmt.Sprintf("isInstance(%s, %s)", v, strings.Join(names, ", "))
}

type shapeCond struct {
	shape values.Shape
}

func (sc shapeCond) compile(*compiler) func(any) bool {
	shape := sc.shape
	return func(v any) bool { return shape.Has(values.TypeOf(v)) }
}

func (sc shapeCond) describe(_ *writer, v Var) string {
	return fmt.Sprintf("is(%s, %s)", v, sc.shape)
}

type capabilityCond struct {
	capability Const
	cache      Const
}

func (cc capabilityCond) compile(c *compiler) func(any) bool {
	capability := c.consts[cc.capability].(*values.Capability)
	cache := c.consts[cc.cache].(*CapabilityCache)
	return func(v any) bool { return cache.Has(capability, values.TypeOf(v)) }
}

func (cc capabilityCond) describe(w *writer, v Var) string {
	return fmt.Sprintf("%s.has(%s, typeof(%s))", cc.cache, cc.capability, v)
}

type lengthCond struct {
	n int
}

func (lc lengthCond) compile(*compiler) func(any) bool {
	n := lc.n
	return func(v any) bool { return values.Len(v) == n }
}

func (lc lengthCond) describe(_ *writer, v Var) string {
	return fmt.Sprintf("len(%s) == %d", v, lc.n)
}

// guardStmt runs body when cond does not hold for v.
type guardStmt struct {
	v    Var
	cond cond
	body *block
}

func (s *guardStmt) compile(c *compiler) op {
	test := s.cond.compile(c)
	body := c.block(s.body)
	v := s.v
	return func(f *frame) error {
		if test(f.vars[v]) {
			return nil
		}
		return body(f)
	}
}

func (s *guardStmt) write(w *writer) {
	w.line("if !%s {", s.cond.describe(w, s.v))
	w.nested(s.body)
	w.line("}")
}

type failStmt struct {
	path     *Path
	expected string
	v        Var
	got      GotFunc
}

func (s *failStmt) compile(*compiler) op {
	path, expected, v, got := s.path, s.expected, s.v, s.got
	return func(f *frame) error {
		if path == nil {
			return errSpeculative
		}
		val := f.vars[v]
		e := &ValidationError{Path: path.format(f.vars), Expected: expected, Value: val}
		if got != nil {
			e.Got = got(val)
		} else {
			e.Got = values.TypeName(values.TypeOf(val))
		}
		return e
	}
}

func (s *failStmt) write(w *writer) {
	if s.path == nil {
		w.line("fail()")
		return
	}
	w.line("fail(%q, %q, %s)", s.path, s.expected, s.v)
}

type loopMode int

const (
	loopIndexed loopMode = iota
	loopMembers
	loopEntries
)

type loopStmt struct {
	mode  loopMode
	src   Var
	key   Var
	value Var
	body  *block
}

func (s *loopStmt) compile(c *compiler) op {
	body := c.block(s.body)
	src, key, value := s.src, s.key, s.value
	switch s.mode {
	case loopIndexed:
		return func(f *frame) error {
			for i, item := range values.Items(f.vars[src]) {
				f.vars[key], f.vars[value] = i, item
				if err := body(f); err != nil {
					return err
				}
			}
			return nil
		}
	case loopMembers:
		return func(f *frame) error {
			for item := range values.Members(f.vars[src]) {
				f.vars[value] = item
				if err := body(f); err != nil {
					return err
				}
			}
			return nil
		}
	default:
		return func(f *frame) error {
			for k, v := range values.Entries(f.vars[src]) {
				f.vars[key], f.vars[value] = k, v
				if err := body(f); err != nil {
					return err
				}
			}
			return nil
		}
	}
}

func (s *loopStmt) write(w *writer) {
	switch s.mode {
	case loopIndexed:
		w.line("for %s, %s := range items(%s) {", s.key, s.value, s.src)
	case loopMembers:
		w.line("for %s := range members(%s) {", s.value, s.src)
	default:
		w.line("for %s, %s := range entries(%s) {", s.key, s.value, s.src)
	}
	w.nested(s.body)
	w.line("}")
}

type loadStmt struct {
	dst   Var
	src   Var
	index int
}

func (s *loadStmt) compile(*compiler) op {
	dst, src, index := s.dst, s.src, s.index
	return func(f *frame) error {
		f.vars[dst] = values.Index(f.vars[src], index)
		return nil
	}
}

func (s *loadStmt) write(w *writer) {
	w.line("%s := %s[%d]", s.dst, s.src, s.index)
}

type firstOfStmt struct {
	v        Var
	path     *Path
	expected string
	types    Const
	branches []*block
}

func (s *firstOfStmt) compile(c *compiler) op {
	var match func(any) bool
	if s.types >= 0 {
		match = instanceCond{types: s.types}.compile(c)
	}
	branches := make([]op, len(s.branches))
	for i, b := range s.branches {
		branches[i] = c.block(b)
	}
	v, path, expected := s.v, s.path, s.expected
	return func(f *frame) error {
		val := f.vars[v]
		if match != nil && match(val) {
			return nil
		}
		for _, branch := range branches {
			saved := f.worlds
			if err := branch(f); err == nil {
				return nil
			}
			f.worlds = saved
		}
		if path == nil {
			return errSpeculative
		}
		return &ValidationError{
			Path:     path.format(f.vars),
			Expected: expected,
			Got:      values.TypeName(values.TypeOf(val)),
			Value:    val,
		}
	}
}

func (s *firstOfStmt) write(w *writer) {
	w.line("firstOf(%s) {", s.v)
	w.depth++
	if s.types >= 0 {
		w.line("case %s:", instanceCond{types: s.types}.describe(w, s.v))
	}
	for _, b := range s.branches {
		w.line("case try:")
		w.nested(b)
	}
	w.line("default:")
	w.depth++
	if s.path == nil {
		w.line("fail()")
	} else {
		w.line("fail(%q, %q, %s)", s.path, s.expected, s.v)
	}
	w.depth -= 2
	w.line("}")
}

type pinStmt struct {
	v     Var
	path  *Path
	param Const
}

func (s *pinStmt) compile(c *compiler) op {
	sp := c.consts[s.param].(*solver.Param)
	v, path := s.v, s.path
	return func(f *frame) error {
		val := f.vars[v]
		r := values.TypeOf(val)
		worlds := solver.Assign(f.worlds, sp, r)
		if len(worlds) == 0 {
			if path == nil {
				return errSpeculative
			}
			return &ValidationError{
				Path:  path.format(f.vars),
				Msg:   fmt.Sprintf("cannot assign %s to %s", values.TypeName(r), sp.Name),
				Value: val,
			}
		}
		f.worlds = worlds
		return nil
	}
}

func (s *pinStmt) write(w *writer) {
	sp := w.consts[s.param].(*solver.Param)
	w.line("pin(%s, %s)", sp.Name, s.v)
}
