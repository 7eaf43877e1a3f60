package typo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/typolang/typo/internal/toposort"
	"github.com/typolang/typo/parser"
	"github.com/typolang/typo/types"
	"gopkg.in/yaml.v3"
)

// moduleDoc is the YAML layout of a .typo module.
type moduleDoc struct {
	Imports    map[string][]string     `yaml:"imports"`
	Params     map[string]paramDoc     `yaml:"params"`
	Types      map[string]string       `yaml:"types"`
	Signatures map[string]signatureDoc `yaml:"signatures"`
}

type paramDoc struct {
	Bound       string   `yaml:"bound"`
	Constraints []string `yaml:"constraints"`
}

type signatureDoc struct {
	Params  []argumentDoc `yaml:"params"`
	Returns string        `yaml:"returns"`
}

type argumentDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Variadic bool   `yaml:"variadic"`
}

// DeclarationKind tells the declarations of a module apart.
type DeclarationKind int

const (
	ParamDeclaration DeclarationKind = iota
	TypeDeclaration
	SignatureDeclaration
)

func (k DeclarationKind) String() string {
	switch k {
	case ParamDeclaration:
		return "param"
	case TypeDeclaration:
		return "type"
	case SignatureDeclaration:
		return "signature"
	default:
		return "unknown"
	}
}

// Declaration is a named entry of a compiled module together with its
// canonical rendering.
type Declaration struct {
	Kind DeclarationKind
	Name string
	Text string
}

// Module is a compiled .typo module.
type Module struct {
	Name       string
	imports    map[string][]string
	params     map[string]*types.Param
	aliases    map[string]types.Descriptor
	validators map[string]*Validator
	signatures map[string]*Signature
	decls      []Declaration
}

// export returns a descriptor other modules may import.
func (m *Module) export(name string) (types.Descriptor, bool) {
	if p, ok := m.params[name]; ok {
		return p, true
	}
	d, ok := m.aliases[name]
	return d, ok
}

type Program struct {
	modules map[string]*Module
	order   []string
}

type Compiler struct {
	modules map[string]string
	types   map[string]reflect.Type
	logger  *log.Logger
}

func NewCompiler() *Compiler {
	return &Compiler{
		modules: map[string]string{},
		types:   map[string]reflect.Type{},
		logger:  log.New(io.Discard, "", 0),
	}
}

// SetLogger directs compilation progress to l.
func (c *Compiler) SetLogger(l *log.Logger) {
	c.logger = l
}

// RegisterType makes t available to type expressions under name.
func (c *Compiler) RegisterType(name string, t reflect.Type) {
	c.types[name] = t
}

func (c *Compiler) AddFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".typo") {
			return nil
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		moduleName := strings.TrimSuffix(path, ".typo")
		c.AddModule(moduleName, string(content))
		return nil
	})
}

func (c *Compiler) AddModule(moduleName string, source string) {
	c.modules[moduleName] = source
}

func (c *Compiler) Compile() (*Program, error) {
	p := &Program{
		modules: map[string]*Module{},
	}

	// Step 1: Parse all modules and collect dependencies
	docs := make(map[string]*moduleDoc)
	moduleImports := make(map[string]map[string]bool)
	for moduleName, src := range c.modules {
		doc, err := parseModule(src)
		if err != nil {
			return nil, fmt.Errorf("parsing module %s: %w", moduleName, err)
		}
		docs[moduleName] = doc
		moduleImports[moduleName] = make(map[string]bool)
		for imported := range doc.Imports {
			moduleImports[moduleName][imported] = true
		}
	}

	// Step 2: Process modules in dependency order
	sortedModules, err := toposort.TopologicalSort(moduleImports, "module")
	if err != nil {
		return nil, fmt.Errorf("sorting modules: %w", err)
	}
	for _, moduleName := range sortedModules {
		c.logger.Printf("compiling module %s", moduleName)
		m, err := c.compileModule(moduleName, docs[moduleName], p.modules)
		if err != nil {
			return nil, fmt.Errorf("compiling module %s: %w", moduleName, err)
		}
		p.modules[moduleName] = m
		p.order = append(p.order, moduleName)
	}
	return p, nil
}

func parseModule(src string) (*moduleDoc, error) {
	doc := &moduleDoc{}
	dec := yaml.NewDecoder(strings.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return doc, nil
}

// parseAll parses every expression of a declaration group up front so
// dependencies can be read off the syntax tree.
func parseAll(kind string, sources map[string]string) (map[string]*parser.Expr, error) {
	exprs := make(map[string]*parser.Expr, len(sources))
	for name, src := range sources {
		e, err := parser.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, name, err)
		}
		exprs[name] = e
	}
	return exprs, nil
}

func (c *Compiler) compileModule(name string, doc *moduleDoc, compiled map[string]*Module) (*Module, error) {
	m := &Module{
		Name:       name,
		imports:    doc.Imports,
		params:     make(map[string]*types.Param),
		aliases:    make(map[string]types.Descriptor),
		validators: make(map[string]*Validator),
		signatures: make(map[string]*Signature),
	}
	r := &resolver{
		registered: c.types,
		params:     m.params,
		aliases:    m.aliases,
		imported:   make(map[string]types.Descriptor),
		modules:    compiled,
		imports:    doc.Imports,
	}

	// Imported names
	for importName, names := range doc.Imports {
		imported := compiled[importName]
		for _, n := range names {
			d, ok := imported.export(n)
			if !ok {
				return nil, fmt.Errorf("type %s not found in module %s", n, importName)
			}
			r.imported[n] = d
		}
	}

	// Parameters exist before anything is resolved, so types and other
	// parameters can refer to them in any order.
	for paramName, pd := range doc.Params {
		if _, ok := doc.Types[paramName]; ok {
			return nil, fmt.Errorf("%s is declared as both a param and a type", paramName)
		}
		if pd.Bound != "" && len(pd.Constraints) > 0 {
			return nil, &BuildError{Descriptor: paramName, Msg: "type parameter cannot have both a bound and constraints"}
		}
		m.params[paramName] = &types.Param{Name: paramName}
	}

	paramSources := make(map[string][]string)
	for paramName, pd := range doc.Params {
		if pd.Bound != "" {
			paramSources[paramName] = []string{pd.Bound}
		} else {
			paramSources[paramName] = pd.Constraints
		}
	}
	paramExprs := make(map[string][]*parser.Expr)
	for _, paramName := range slices.Sorted(maps.Keys(paramSources)) {
		for _, src := range paramSources[paramName] {
			e, err := parser.Parse(src)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", paramName, err)
			}
			paramExprs[paramName] = append(paramExprs[paramName], e)
		}
	}
	typeExprs, err := parseAll("type", doc.Types)
	if err != nil {
		return nil, err
	}

	// Order declarations so every alias is resolved before its users.
	// Parameters never need ordering among themselves; a cycle through
	// their constraints is reported when they are built.
	graph := make(map[string]map[string]bool)
	addDeps := func(node string, e *parser.Expr) {
		refs := make(map[string]bool)
		references(e, refs)
		for ref := range refs {
			if _, ok := doc.Types[ref]; ok {
				graph[node][ref] = true
			}
		}
	}
	for typeName, e := range typeExprs {
		graph[typeName] = make(map[string]bool)
		addDeps(typeName, e)
	}
	for paramName, exprs := range paramExprs {
		graph[paramName] = make(map[string]bool)
		for _, e := range exprs {
			addDeps(paramName, e)
		}
	}
	for paramName := range doc.Params {
		if _, ok := graph[paramName]; !ok {
			graph[paramName] = make(map[string]bool)
		}
	}
	order, err := toposort.TopologicalSort(graph, "type")
	if err != nil {
		var cycle *toposort.CycleError
		if errors.As(err, &cycle) {
			return nil, &BuildError{Descriptor: strings.Join(cycle.Nodes, ", "), Msg: "recursive type alias"}
		}
		return nil, err
	}

	for _, declName := range order {
		if tp, ok := m.params[declName]; ok {
			exprs := paramExprs[declName]
			if doc.Params[declName].Bound != "" {
				bound, err := r.resolve(exprs[0])
				if err != nil {
					return nil, fmt.Errorf("param %s: %w", declName, err)
				}
				tp.Bound = bound
				continue
			}
			for _, e := range exprs {
				constraint, err := r.resolve(e)
				if err != nil {
					return nil, fmt.Errorf("param %s: %w", declName, err)
				}
				tp.Constraints = append(tp.Constraints, constraint)
			}
			continue
		}
		d, err := r.resolve(typeExprs[declName])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", declName, err)
		}
		m.aliases[declName] = d
	}

	// Build every declaration so invalid descriptors fail at compile time.
	for _, paramName := range slices.Sorted(maps.Keys(m.params)) {
		v, err := Build(m.params[paramName])
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", paramName, err)
		}
		m.validators[paramName] = v
		m.decls = append(m.decls, Declaration{Kind: ParamDeclaration, Name: paramName, Text: describeParam(m.params[paramName])})
	}
	for _, typeName := range slices.Sorted(maps.Keys(m.aliases)) {
		v, err := Build(m.aliases[typeName])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", typeName, err)
		}
		m.validators[typeName] = v
		m.decls = append(m.decls, Declaration{Kind: TypeDeclaration, Name: typeName, Text: v.String()})
	}
	for _, sigName := range slices.Sorted(maps.Keys(doc.Signatures)) {
		sig, err := c.compileSignature(r, sigName, doc.Signatures[sigName])
		if err != nil {
			return nil, fmt.Errorf("signature %s: %w", sigName, err)
		}
		m.signatures[sigName] = sig
		m.decls = append(m.decls, Declaration{Kind: SignatureDeclaration, Name: sigName, Text: sig.String()})
	}
	return m, nil
}

func (c *Compiler) compileSignature(r *resolver, name string, doc signatureDoc) (*Signature, error) {
	params := make([]Param, len(doc.Params))
	for i, arg := range doc.Params {
		params[i] = Param{Name: arg.Name, Variadic: arg.Variadic}
		if arg.Type == "" {
			continue
		}
		e, err := parser.Parse(arg.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", arg.Name, err)
		}
		d, err := r.resolve(e)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", arg.Name, err)
		}
		params[i].Type = d
	}
	var returns types.Descriptor
	if doc.Returns != "" {
		e, err := parser.Parse(doc.Returns)
		if err != nil {
			return nil, fmt.Errorf("return value: %w", err)
		}
		returns, err = r.resolve(e)
		if err != nil {
			return nil, fmt.Errorf("return value: %w", err)
		}
	}
	return BuildSignature(name, params, returns)
}

func describeParam(tp *types.Param) string {
	switch {
	case tp.Bound != nil:
		bound, _ := Render(tp.Bound)
		return fmt.Sprintf("%s bound by %s", tp.Name, bound)
	case len(tp.Constraints) > 0:
		parts := make([]string, len(tp.Constraints))
		for i, c := range tp.Constraints {
			parts[i], _ = Render(c)
		}
		return fmt.Sprintf("%s constrained to %s", tp.Name, strings.Join(parts, ", "))
	default:
		return tp.Name
	}
}

// Modules returns the module names in compilation order.
func (p *Program) Modules() []string {
	return slices.Clone(p.order)
}

// Declarations returns the declarations of a module: params, then types,
// then signatures, each sorted by name.
func (p *Program) Declarations(moduleName string) ([]Declaration, error) {
	m, ok := p.modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("no module with name %s", moduleName)
	}
	return slices.Clone(m.decls), nil
}

// Validator returns the compiled check for a param or type declaration.
func (p *Program) Validator(moduleName string, name string) (*Validator, error) {
	m, ok := p.modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("no module with name %s", moduleName)
	}
	v, ok := m.validators[name]
	if !ok {
		return nil, fmt.Errorf("no type with name %s in module %s", name, moduleName)
	}
	return v, nil
}

// Signature returns the compiled checker for a signature declaration.
func (p *Program) Signature(moduleName string, name string) (*Signature, error) {
	m, ok := p.modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("no module with name %s", moduleName)
	}
	s, ok := m.signatures[name]
	if !ok {
		return nil, fmt.Errorf("no signature with name %s in module %s", name, moduleName)
	}
	return s, nil
}

// Check validates v against a declared type.
func (p *Program) Check(moduleName string, name string, v any) error {
	validator, err := p.Validator(moduleName, name)
	if err != nil {
		return err
	}
	return validator.Check(v)
}
