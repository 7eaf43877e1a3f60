// Package typo validates Go values against structural type descriptors.
//
// A descriptor is built once into a Validator; checking a value runs the
// compiled checker and never walks the descriptor again.
package typo

import (
	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/handler"
	"github.com/typolang/typo/types"
)

type (
	BuildError      = handler.BuildError
	ValidationError = codegen.ValidationError
)

const inputName = "input"

// Validator is a compiled check for a single descriptor. It is safe for
// concurrent use.
type Validator struct {
	handler handler.Handler
	program *codegen.Program
	checker *codegen.Checker
}

// Build dispatches d and compiles its checker.
func Build(d types.Descriptor) (*Validator, error) {
	h, err := handler.Dispatch(d)
	if err != nil {
		return nil, err
	}
	p := codegen.NewProgram()
	declareParams(p, h)
	v := p.Entry(inputName)
	h.Emit(p, v, codegen.Root(inputName))
	return &Validator{handler: h, program: p, checker: p.Compile()}, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(d types.Descriptor) *Validator {
	v, err := Build(d)
	if err != nil {
		panic(err)
	}
	return v
}

// Render returns the canonical display form of d.
func Render(d types.Descriptor) (string, error) {
	h, err := handler.Dispatch(d)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Check returns nil if v matches, or a *ValidationError describing the
// first mismatch.
func (v *Validator) Check(value any) error {
	return v.checker.Check(inputName, value)
}

func (v *Validator) String() string {
	return v.handler.String()
}

// Program returns the pseudo-source listing of the compiled checker.
func (v *Validator) Program() string {
	return v.program.String()
}

// TypeParameters returns the generic parameters of the descriptor ordered
// by name.
func (v *Validator) TypeParameters() []*types.Param {
	return v.handler.TypeParameters().Slice()
}

// declareParams allocates solver slots in name order so that listings are
// stable regardless of where parameters first occur.
func declareParams(p *codegen.Program, hs ...handler.Handler) {
	for _, h := range hs {
		for tp := range h.TypeParameters().Items() {
			p.Param(tp.Name)
		}
	}
}
