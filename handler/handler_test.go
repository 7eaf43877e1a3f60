package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/typolang/typo/codegen"
	"github.com/typolang/typo/types"
)

type unknownDescriptor struct{}

func (unknownDescriptor) Kind() types.Kind { return types.Kind(-1) }

// listLookalike claims the list kind without being a *types.List.
type listLookalike struct{}

func (listLookalike) Kind() types.Kind { return types.KindList }

func TestDispatchString(t *testing.T) {
	T := types.NewParam("T")
	tests := []struct {
		d    types.Descriptor
		want string
	}{
		{d: nil, want: "Any"},
		{d: types.Any, want: "Any"},
		{d: types.Of[any](), want: "Any"},
		{d: types.Int, want: "int"},
		{d: types.Nil, want: "nil"},
		{d: &types.List{}, want: "list"},
		{d: types.ListOf(types.Any), want: "list"},
		{d: types.ListOf(T), want: "List[T]"},
		{d: &types.Set{}, want: "set"},
		{d: types.SetOf(types.String), want: "Set[string]"},
		{d: types.TupleOf(), want: "Tuple[]"},
		{d: types.TupleOf(types.Int, nil), want: "Tuple[int, Any]"},
		{d: &types.VarTuple{}, want: "tuple"},
		{d: types.VarTupleOf(types.Int), want: "Tuple[int, ...]"},
		{d: &types.Mapping{}, want: "dict"},
		{d: types.MappingOf(types.String, nil), want: "Dict[string, Any]"},
		{d: &types.Sequence{}, want: "Sequence"},
		{d: types.MutableSequenceOf(types.Int), want: "MutableSequence[int]"},
		{d: types.UnionOf(types.Int, types.ListOf(T)), want: "Union[int, List[T]]"},
		{d: types.ListOf(types.UnionOf(types.Any, types.Int)), want: "List[Union[Any, int]]"},
		{d: types.MappingOf(types.UnionOf(types.Int, types.Any), nil), want: "Dict[Union[int, Any], Any]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h, err := Dispatch(tt.d)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if got := h.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAny(t *testing.T) {
	tests := []struct {
		d    types.Descriptor
		want bool
	}{
		{d: types.Any, want: true},
		{d: types.UnionOf(types.Int, types.Any), want: true},
		{d: types.UnionOf(types.Int), want: false},
		{d: &types.List{}, want: false},
		{d: types.NewParam("T"), want: false},
	}
	for _, tt := range tests {
		h, err := Dispatch(tt.d)
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if got := h.IsAny(); got != tt.want {
			t.Errorf("%s.IsAny() = %v, want %v", h, got, tt.want)
		}
	}
}

func TestValidAsBound(t *testing.T) {
	tests := []struct {
		d    types.Descriptor
		want bool
	}{
		{d: types.Any, want: true},
		{d: types.Int, want: true},
		{d: types.ListOf(types.Int), want: false},
		{d: types.UnionOf(types.Int, types.String), want: false},
		{d: types.NewParam("T"), want: false},
	}
	for _, tt := range tests {
		h, err := Dispatch(tt.d)
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		if got := h.ValidAsBound(); got != tt.want {
			t.Errorf("%s.ValidAsBound() = %v, want %v", h, got, tt.want)
		}
	}
}

func TestParamsShareHandler(t *testing.T) {
	T := types.NewParam("T")
	h, err := Dispatch(types.MappingOf(T, types.ListOf(T)))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	m := h.(*MappingHandler)
	value := m.Value.(*ListHandler)
	if m.Key != value.Elem {
		t.Error("occurrences of T were built into different handlers")
	}

	hs, err := DispatchAll(T, types.ListOf(T))
	if err != nil {
		t.Fatalf("DispatchAll() error = %v", err)
	}
	if hs[0] != hs[1].(*ListHandler).Elem {
		t.Error("DispatchAll() built T twice")
	}
}

func TestTypeParametersOrderedByName(t *testing.T) {
	b, a := types.NewParam("B"), types.NewParam("A")
	k := types.NewParam("K", a, types.Int)
	h, err := Dispatch(types.TupleOf(b, k))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	var names []string
	for _, p := range h.TypeParameters().Slice() {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "A,B,K" {
		t.Errorf("TypeParameters() = %s, want A,B,K", got)
	}
}

func TestDispatchErrors(t *testing.T) {
	T := types.NewParam("T")
	tests := []struct {
		name string
		d    types.Descriptor
		want string
	}{
		{name: "unknown kind", d: unknownDescriptor{}, want: "invalid type annotation: handler.unknownDescriptor"},
		{name: "builtin kind on foreign type", d: listLookalike{}, want: "invalid type annotation: handler.listLookalike"},
		{name: "typed nil element", d: types.ListOf((*types.List)(nil)), want: "invalid type annotation: *types.List"},
		{name: "typed nil union", d: (*types.Union)(nil), want: "invalid type annotation: *types.Union"},
		{name: "typed nil bound", d: types.BoundedParam("T", (*types.Concrete)(nil)), want: "invalid type annotation: *types.Concrete"},
		{name: "nil concrete", d: &types.Concrete{}, want: "invalid type annotation: nil"},
		{name: "empty union", d: &types.Union{}, want: "union must have at least one variant: Union[]"},
		{name: "forward reference", d: types.ListOf(&types.ForwardRef{Name: "Node"}), want: `forward references are not currently supported: "Node"`},
		{name: "unnamed param", d: types.NewParam(""), want: "type parameter must have a name"},
		{name: "duplicate param", d: types.TupleOf(T, types.NewParam("T")), want: "duplicate type parameter: T"},
		{name: "bound and constraints", d: &types.Param{Name: "T", Bound: types.Int, Constraints: []types.Descriptor{types.Int}}, want: "type parameter cannot have both a bound and constraints: T"},
		{name: "invalid bound", d: types.BoundedParam("T", types.SetOf(types.Int)), want: "invalid type parameter bound: Set[int]"},
		{name: "invalid constraint", d: types.NewParam("T", types.ListOf(types.Int)), want: "invalid type parameter constraint: List[int]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dispatch(tt.d)
			if err == nil {
				t.Fatalf("Expected error %q but got nil", tt.want)
			}
			var be *BuildError
			if !errors.As(err, &be) {
				t.Errorf("error has type %T, want *BuildError", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Dispatch() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestRecursiveConstraint(t *testing.T) {
	a := &types.Param{Name: "A"}
	b := &types.Param{Name: "B", Constraints: []types.Descriptor{a}}
	a.Constraints = []types.Descriptor{b}
	_, err := Dispatch(a)
	if err == nil || err.Error() != "invalid type parameter constraint: A is recursive" {
		t.Errorf("Dispatch() error = %v", err)
	}
}

func TestUnionEmission(t *testing.T) {
	tests := []struct {
		name    string
		d       types.Descriptor
		firstOf bool
	}{
		{name: "concrete only", d: types.UnionOf(types.Int, types.String), firstOf: false},
		{name: "single composite", d: types.UnionOf(types.ListOf(types.Int)), firstOf: false},
		{name: "mixed", d: types.UnionOf(types.Int, types.ListOf(types.Int)), firstOf: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Dispatch(tt.d)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			p := codegen.NewProgram()
			h.Emit(p, p.Entry("input"), codegen.Root("input"))
			if got := strings.Contains(p.String(), "firstOf("); got != tt.firstOf {
				t.Errorf("program uses firstOf = %v, want %v\n%s", got, tt.firstOf, p)
			}
		})
	}
}

func TestAnyElementsEmitNoLoop(t *testing.T) {
	for _, d := range []types.Descriptor{
		types.MappingOf(types.Any, nil),
		types.ListOf(types.UnionOf(types.Any, types.Int)),
	} {
		h, err := Dispatch(d)
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
		p := codegen.NewProgram()
		h.Emit(p, p.Entry("input"), codegen.Root("input"))
		if strings.Contains(p.String(), "range") {
			t.Errorf("program for %s loops over unchecked elements:\n%s", h, p)
		}
	}
}
