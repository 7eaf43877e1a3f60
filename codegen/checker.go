package codegen

import (
	"errors"
	"fmt"
	"slices"

	"github.com/typolang/typo/solver"
)

type compiledEntry struct {
	input Var
	run   op
}

// Checker is a compiled validation program. It is safe for concurrent use;
// per-call state lives in a State.
type Checker struct {
	entries map[string]*compiledEntry
	names   []string
	nvars   int
	slots   int
}

// State carries the generic parameter assignments shared by the entry
// points run during one validation call.
type State struct {
	worlds []solver.World
}

// NewState returns a fresh state with every parameter unbound.
func (c *Checker) NewState() *State {
	return &State{worlds: solver.Initial(c.slots)}
}

// Worlds returns the candidate worlds that are still consistent.
func (s *State) Worlds() []solver.World {
	return s.worlds
}

// Entries returns the entry point names in the order they were declared.
func (c *Checker) Entries() []string {
	return slices.Clone(c.names)
}

// Run checks v against the named entry point. On success the parameter
// assignments it made are committed to state; on failure state is left
// untouched.
func (c *Checker) Run(state *State, name string, v any) error {
	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("no entry point named %q", name)
	}
	f := &frame{vars: make([]any, c.nvars), worlds: state.worlds}
	f.vars[e.input] = v
	if err := e.run(f); err != nil {
		if errors.Is(err, errSpeculative) {
			// Only reachable when a nil path escapes a union branch.
			return &ValidationError{Path: name, Msg: "value does not match", Value: v}
		}
		return err
	}
	state.worlds = f.worlds
	return nil
}

// Check runs the named entry point with a fresh state.
func (c *Checker) Check(name string, v any) error {
	return c.Run(c.NewState(), name, v)
}
