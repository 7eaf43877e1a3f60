package typo

import (
	"fmt"
	"reflect"

	"github.com/typolang/typo/parser"
	"github.com/typolang/typo/types"
	"github.com/typolang/typo/values"
)

// ResolveError reports a name in a type expression that could not be
// resolved, or a generic applied to the wrong arguments.
type ResolveError struct {
	Pos     parser.Position
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func resolveErrorf(e *parser.Expr, format string, args ...any) *ResolveError {
	return &ResolveError{Pos: e.Start, Message: fmt.Sprintf(format, args...)}
}

var builtinTypes = map[string]reflect.Type{
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"byte":    reflect.TypeFor[byte](),
	"rune":    reflect.TypeFor[rune](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"error":   reflect.TypeFor[error](),
	"nil":     values.NoneType,
}

var anyNames = map[string]bool{
	"Any":    true,
	"any":    true,
	"object": true,
}

// generic describes a builtin that can be subscripted. bare is used when it
// appears without arguments; it is nil for generics that require them.
type generic struct {
	bare  func() types.Descriptor
	apply func(r *resolver, e *parser.Expr) (types.Descriptor, error)
}

var generics map[string]generic

func init() {
	list := generic{
		bare: func() types.Descriptor { return &types.List{} },
		apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
			args, err := r.args(e, 1)
			if err != nil {
				return nil, err
			}
			return types.ListOf(args[0]), nil
		},
	}
	tuple := generic{
		bare:  func() types.Descriptor { return &types.VarTuple{} },
		apply: resolveTuple,
	}
	dict := generic{
		bare: func() types.Descriptor { return &types.Mapping{} },
		apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
			args, err := r.args(e, 2)
			if err != nil {
				return nil, err
			}
			return types.MappingOf(args[0], args[1]), nil
		},
	}
	set := generic{
		bare: func() types.Descriptor { return &types.Set{} },
		apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
			args, err := r.args(e, 1)
			if err != nil {
				return nil, err
			}
			return types.SetOf(args[0]), nil
		},
	}
	generics = map[string]generic{
		"List":    list,
		"list":    list,
		"Tuple":   tuple,
		"tuple":   tuple,
		"Dict":    dict,
		"dict":    dict,
		"Mapping": dict,
		"Set":     set,
		"set":     set,
		"Sequence": {
			bare: func() types.Descriptor { return &types.Sequence{} },
			apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
				args, err := r.args(e, 1)
				if err != nil {
					return nil, err
				}
				return types.SequenceOf(args[0]), nil
			},
		},
		"MutableSequence": {
			bare: func() types.Descriptor { return &types.Sequence{Mutable: true} },
			apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
				args, err := r.args(e, 1)
				if err != nil {
					return nil, err
				}
				return types.MutableSequenceOf(args[0]), nil
			},
		},
		"Union": {
			apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
				if len(e.Args) == 0 {
					return nil, resolveErrorf(e, "Union expects at least 1 argument")
				}
				args, err := r.args(e, len(e.Args))
				if err != nil {
					return nil, err
				}
				return types.UnionOf(args...), nil
			},
		},
		"Optional": {
			apply: func(r *resolver, e *parser.Expr) (types.Descriptor, error) {
				args, err := r.args(e, 1)
				if err != nil {
					return nil, err
				}
				return types.UnionOf(args[0], types.Nil), nil
			},
		},
	}
}

func resolveTuple(r *resolver, e *parser.Expr) (types.Descriptor, error) {
	if len(e.Args) == 2 && e.Args[1].Ellipsis {
		elem, err := r.resolve(e.Args[0])
		if err != nil {
			return nil, err
		}
		return types.VarTupleOf(elem), nil
	}
	args, err := r.args(e, len(e.Args))
	if err != nil {
		return nil, err
	}
	return types.TupleOf(args...), nil
}

// resolver turns parsed expressions into descriptors within one module.
type resolver struct {
	registered map[string]reflect.Type
	params     map[string]*types.Param
	aliases    map[string]types.Descriptor
	imported   map[string]types.Descriptor
	modules    map[string]*Module
	imports    map[string][]string
}

func (r *resolver) args(e *parser.Expr, n int) ([]types.Descriptor, error) {
	if len(e.Args) != n {
		return nil, resolveErrorf(e, "%s expects %d arguments, got %d", e.Name, n, len(e.Args))
	}
	ds := make([]types.Descriptor, n)
	for i, arg := range e.Args {
		d, err := r.resolve(arg)
		if err != nil {
			return nil, err
		}
		ds[i] = d
	}
	return ds, nil
}

func (r *resolver) resolve(e *parser.Expr) (types.Descriptor, error) {
	switch {
	case e.Ellipsis:
		return nil, resolveErrorf(e, "'...' is only allowed as the last argument of Tuple")
	case e.Quoted:
		return &types.ForwardRef{Name: e.Name}, nil
	}
	if g, ok := generics[e.Name]; ok && r.lookupLocal(e.Name) == nil {
		if e.HasArgs {
			return g.apply(r, e)
		}
		if g.bare == nil {
			return nil, resolveErrorf(e, "%s requires arguments", e.Name)
		}
		return g.bare(), nil
	}
	d, err := r.lookup(e)
	if err != nil {
		return nil, err
	}
	if e.HasArgs {
		return nil, resolveErrorf(e, "type %s is not generic", e.Name)
	}
	return d, nil
}

func (r *resolver) lookupLocal(name string) types.Descriptor {
	if p, ok := r.params[name]; ok {
		return p
	}
	if d, ok := r.aliases[name]; ok {
		return d
	}
	if d, ok := r.imported[name]; ok {
		return d
	}
	return nil
}

func (r *resolver) lookup(e *parser.Expr) (types.Descriptor, error) {
	if d := r.lookupLocal(e.Name); d != nil {
		return d, nil
	}
	if anyNames[e.Name] {
		return types.Any, nil
	}
	if t, ok := r.registered[e.Name]; ok {
		return types.TypeOf(t), nil
	}
	if t, ok := builtinTypes[e.Name]; ok {
		return types.TypeOf(t), nil
	}
	qn, err := parser.ParseQualifiedName(e.Name)
	if err != nil {
		return nil, resolveErrorf(e, "%v", err)
	}
	if qn.Module == "" {
		return nil, resolveErrorf(e, "undefined name %s", e.Name)
	}
	if _, ok := r.imports[qn.Module]; !ok {
		return nil, resolveErrorf(e, "module %s is not imported", qn.Module)
	}
	m := r.modules[qn.Module]
	d, ok := m.export(qn.Name)
	if !ok {
		return nil, resolveErrorf(e, "undefined name %s in module %s", qn.Name, qn.Module)
	}
	return d, nil
}

// references collects the names used in e.
func references(e *parser.Expr, names map[string]bool) {
	if !e.Quoted && !e.Ellipsis {
		names[e.Name] = true
	}
	for _, arg := range e.Args {
		references(arg, names)
	}
}
