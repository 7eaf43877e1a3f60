package typo

import (
	"fmt"
	"strings"

	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/handler"
	"github.com/typolang/typo/types"
	"github.com/typolang/typo/values"
)

const returnName = "return value"

// Param describes one parameter of a signature. A nil Type means Any. A
// variadic parameter receives the remaining arguments and must come last.
type Param struct {
	Name     string
	Type     types.Descriptor
	Variadic bool
}

// Signature checks the arguments and the return value of one call against
// a shared set of generic parameter assignments.
type Signature struct {
	name     string
	params   []Param
	handlers []handler.Handler
	returns  handler.Handler
	program  *codegen.Program
	checker  *codegen.Checker
}

// Call holds the parameter assignments made while checking the arguments
// of one call.
type Call struct {
	sig   *Signature
	state *codegen.State
}

// BuildSignature compiles a checker for a callable named name.
func BuildSignature(name string, params []Param, returns types.Descriptor) (*Signature, error) {
	seen := make(map[string]bool)
	ds := make([]types.Descriptor, 0, len(params)+1)
	for i, param := range params {
		switch {
		case param.Name == "" || param.Name == returnName:
			return nil, &BuildError{Descriptor: name, Msg: fmt.Sprintf("invalid parameter name %q", param.Name)}
		case seen[param.Name]:
			return nil, &BuildError{Descriptor: name, Msg: fmt.Sprintf("duplicate parameter %s", param.Name)}
		case param.Variadic && i != len(params)-1:
			return nil, &BuildError{Descriptor: name, Msg: fmt.Sprintf("variadic parameter %s must be last", param.Name)}
		}
		seen[param.Name] = true
		ds = append(ds, param.Type)
	}
	ds = append(ds, returns)

	hs, err := handler.DispatchAll(ds...)
	if err != nil {
		return nil, err
	}
	s := &Signature{
		name:     name,
		params:   params,
		handlers: hs[:len(params)],
		returns:  hs[len(params)],
		program:  codegen.NewProgram(),
	}
	p := s.program
	declareParams(p, hs...)
	for i, param := range params {
		h := s.handlers[i]
		v := p.Entry(param.Name)
		path := codegen.Root("`" + param.Name + "`")
		if !param.Variadic {
			h.Emit(p, v, path)
			continue
		}
		if !h.IsAny() {
			p.ForEachIndexed(v, func(index, item codegen.Var) {
				h.Emit(p, item, path.Item(index))
			})
		}
	}
	v := p.Entry(returnName)
	s.returns.Emit(p, v, codegen.Root(returnName))
	s.checker = p.Compile()
	return s, nil
}

func (s *Signature) variadic() bool {
	return len(s.params) > 0 && s.params[len(s.params)-1].Variadic
}

// Call checks args. Parameters are checked in declaration order and the
// first mismatch is returned.
func (s *Signature) Call(args ...any) (*Call, error) {
	fixed := len(s.params)
	if s.variadic() {
		fixed--
	}
	if len(args) < fixed || (!s.variadic() && len(args) > fixed) {
		expected := fmt.Sprintf("%d", fixed)
		if s.variadic() {
			expected = "at least " + expected
		}
		return nil, &ValidationError{
			Path:  "arguments",
			Msg:   fmt.Sprintf("expected %s arguments, got %d", expected, len(args)),
			Value: values.Tuple(args),
		}
	}
	state := s.checker.NewState()
	for i, param := range s.params {
		var arg any
		if param.Variadic {
			arg = values.Tuple(args[i:])
		} else {
			arg = args[i]
		}
		if err := s.checker.Run(state, param.Name, arg); err != nil {
			return nil, err
		}
	}
	return &Call{sig: s, state: state}, nil
}

// Return checks the value returned by the call.
func (c *Call) Return(v any) error {
	return c.sig.checker.Run(c.state, returnName, v)
}

func (s *Signature) Name() string {
	return s.name
}

func (s *Signature) String() string {
	parts := make([]string, len(s.params))
	for i, param := range s.params {
		prefix := ""
		if param.Variadic {
			prefix = "*"
		}
		parts[i] = fmt.Sprintf("%s%s: %s", prefix, param.Name, s.handlers[i])
	}
	return fmt.Sprintf("%s(%s) -> %s", s.name, strings.Join(parts, ", "), s.returns)
}

// Program returns the pseudo-source listing of the compiled checker.
func (s *Signature) Program() string {
	return s.program.String()
}
