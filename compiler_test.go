package typo_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/typolang/typo"
	"github.com/typolang/typo/yamlvalue"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

type checkCase struct {
	Module string    `yaml:"module"`
	Type   string    `yaml:"type"`
	Value  yaml.Node `yaml:"value"`
	Error  string    `yaml:"error"`
}

func TestChecks(t *testing.T) {
	entries, err := os.ReadDir("test_data/checks")
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txtar") {
			t.Run(entry.Name(), func(t *testing.T) {
				testChecks(t, filepath.Join("test_data/checks", entry.Name()))
			})
		}
	}
}

func TestBuildErrorFixtures(t *testing.T) {
	entries, err := os.ReadDir("test_data/build_errors")
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txtar") {
			t.Run(entry.Name(), func(t *testing.T) {
				testBuildError(t, filepath.Join("test_data/build_errors", entry.Name()))
			})
		}
	}
}

func findFile(archive *txtar.Archive, name string) string {
	for _, file := range archive.Files {
		if file.Name == name {
			return string(file.Data)
		}
	}
	return ""
}

// compileArchive adds every .typo file of the archive as a module named
// after the file.
func compileArchive(archive *txtar.Archive) (*typo.Program, error) {
	c := typo.NewCompiler()
	for _, file := range archive.Files {
		if strings.HasSuffix(file.Name, ".typo") {
			c.AddModule(strings.TrimSuffix(file.Name, ".typo"), string(file.Data))
		}
	}
	return c.Compile()
}

func testChecks(t *testing.T, filename string) {
	archive, err := txtar.ParseFile(filename)
	if err != nil {
		t.Fatalf("Failed to parse txtar file: %v", err)
	}
	p, err := compileArchive(archive)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	var cases []checkCase
	if err := yaml.Unmarshal([]byte(findFile(archive, "cases.yaml")), &cases); err != nil {
		t.Fatalf("Failed to parse cases.yaml: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("cases.yaml has no cases")
	}
	for i, c := range cases {
		moduleName := c.Module
		if moduleName == "" {
			moduleName = "main"
		}
		value, err := yamlvalue.FromNode(&c.Value)
		if err != nil {
			t.Fatalf("case %d: decoding value: %v", i, err)
		}
		err = p.Check(moduleName, c.Type, value)
		if c.Error == "" {
			if err != nil {
				t.Errorf("case %d: Check(%s.%s, %#v) error = %v", i, moduleName, c.Type, value, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("case %d: Check(%s.%s, %#v) = nil, want %q", i, moduleName, c.Type, value, c.Error)
			continue
		}
		if err.Error() != c.Error {
			t.Errorf("case %d: Check(%s.%s) error mismatch\nExpected: %s\nGot:      %s", i, moduleName, c.Type, c.Error, err.Error())
		}
	}
}

func testBuildError(t *testing.T, filename string) {
	archive, err := txtar.ParseFile(filename)
	if err != nil {
		t.Fatalf("Failed to parse txtar file: %v", err)
	}
	expected := strings.TrimSpace(findFile(archive, "error.txt"))

	_, err = compileArchive(archive)
	if err == nil {
		t.Fatalf("Expected error %q but got nil", expected)
	}
	if err.Error() != expected {
		t.Errorf("Compile() error mismatch\nExpected: %s\nGot:      %s", expected, err.Error())
	}
}

func TestAddFS(t *testing.T) {
	fsys := fstest.MapFS{
		"geometry.typo": {Data: []byte("types:\n  Point: Tuple[float64, float64]\n")},
		"main.typo":     {Data: []byte("imports:\n  geometry: [Point]\ntypes:\n  Path: List[Point]\n")},
		"README.md":     {Data: []byte("not a module")},
	}
	c := typo.NewCompiler()
	var buf bytes.Buffer
	c.SetLogger(log.New(&buf, "", 0))
	if err := c.AddFS(fsys); err != nil {
		t.Fatalf("AddFS() error = %v", err)
	}
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got, want := p.Modules(), []string{"geometry", "main"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Modules() = %v, want %v", got, want)
	}
	if got, want := buf.String(), "compiling module geometry\ncompiling module main\n"; got != want {
		t.Errorf("log output = %q, want %q", got, want)
	}
}

func TestRegisterType(t *testing.T) {
	c := typo.NewCompiler()
	c.RegisterType("Shape", reflect.TypeFor[Shape]())
	c.AddModule("main", `
params:
  S:
    bound: Shape
types:
  Shapes: List[S]
`)
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	checks := []struct {
		value any
		err   string
	}{
		{value: []any{Square{1}, Square{2}}},
		{value: []any{Circle{1}}},
		{value: []any{Square{1}, Circle{1}}, err: "invalid item #1 of input: cannot assign typo_test.Circle to S"},
		{value: []any{1}, err: "invalid item #0 of input: cannot assign int to S"},
	}
	for _, tc := range checks {
		err := p.Check("main", "Shapes", tc.value)
		if tc.err == "" {
			if err != nil {
				t.Errorf("Check(%#v) error = %v", tc.value, err)
			}
			continue
		}
		if err == nil || err.Error() != tc.err {
			t.Errorf("Check(%#v) error = %v, want %q", tc.value, err, tc.err)
		}
	}
}

func TestDeclarations(t *testing.T) {
	c := typo.NewCompiler()
	c.AddModule("main", `
params:
  T: {}
  N:
    bound: int
  W:
    constraints: [int, float64]
types:
  Pair: Tuple[T, T]
  Table: Dict[string, Optional[W]]
signatures:
  scale:
    params:
      - name: x
        type: T
      - name: rest
        type: T
        variadic: true
    returns: List[T]
`)
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	decls, err := p.Declarations("main")
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}
	want := []typo.Declaration{
		{Kind: typo.ParamDeclaration, Name: "N", Text: "N bound by int"},
		{Kind: typo.ParamDeclaration, Name: "T", Text: "T"},
		{Kind: typo.ParamDeclaration, Name: "W", Text: "W constrained to int, float64"},
		{Kind: typo.TypeDeclaration, Name: "Pair", Text: "Tuple[T, T]"},
		{Kind: typo.TypeDeclaration, Name: "Table", Text: "Dict[string, Union[W, nil]]"},
		{Kind: typo.SignatureDeclaration, Name: "scale", Text: "scale(x: T, *rest: T) -> List[T]"},
	}
	if !reflect.DeepEqual(decls, want) {
		t.Errorf("Declarations() = %+v, want %+v", decls, want)
	}

	sig, err := p.Signature("main", "scale")
	if err != nil {
		t.Fatalf("Signature() error = %v", err)
	}
	call, err := sig.Call(1, 2, 3)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if err := call.Return([]any{"a"}); err == nil || err.Error() != "invalid item #0 of return value: cannot assign string to T" {
		t.Errorf("Return() error = %v", err)
	}
}

func TestProgramLookupErrors(t *testing.T) {
	c := typo.NewCompiler()
	c.AddModule("main", "types:\n  X: int\n")
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	_, sigErr := p.Signature("main", "X")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "module", err: p.Check("other", "X", 1), want: "no module with name other"},
		{name: "type", err: p.Check("main", "Y", 1), want: "no type with name Y in module main"},
		{name: "signature", err: sigErr, want: "no signature with name X in module main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil || tt.err.Error() != tt.want {
				t.Errorf("error = %v, want %q", tt.err, tt.want)
			}
		})
	}
}

func TestUnknownModuleField(t *testing.T) {
	c := typo.NewCompiler()
	c.AddModule("main", "typez:\n  X: int\n")
	_, err := c.Compile()
	if err == nil {
		t.Fatal("Compile() accepted an unknown field")
	}
	if !strings.HasPrefix(err.Error(), "parsing module main: ") || !strings.Contains(err.Error(), "field typez not found") {
		t.Errorf("Compile() error = %v", err)
	}
}

func TestEmptyModule(t *testing.T) {
	c := typo.NewCompiler()
	c.AddModule("empty", "")
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	decls, err := p.Declarations("empty")
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}
	if len(decls) != 0 {
		t.Errorf("Declarations() = %v, want none", decls)
	}
}
