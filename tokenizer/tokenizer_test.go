package tokenizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

func pos(p Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// describe renders a token as one golden line: Kind(value) start-end.
func describe(tok Token) string {
	span := pos(tok.Start) + "-" + pos(tok.End)
	if tok.Type == Ident || tok.Type == String || tok.Type == Error {
		return fmt.Sprintf("%s(%s) %s", tok.Type, tok.Value, span)
	}
	return fmt.Sprintf("%s %s", tok.Type, span)
}

func describeAll(toks []Token) []string {
	lines := make([]string, 0, len(toks))
	for _, tok := range toks {
		lines = append(lines, describe(tok))
	}
	return lines
}

func section(a *txtar.Archive, name string) (string, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return strings.TrimSpace(string(f.Data)), true
		}
	}
	return "", false
}

// TestGolden tokenizes input.txt of each archive and compares against tokens.txt.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("test_data", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no golden archives")
	}
	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			a, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("reading %s: %v", path, err)
			}
			input, ok := section(a, "input.txt")
			if !ok {
				t.Fatalf("%s has no input.txt", path)
			}
			want, _ := section(a, "tokens.txt")

			got := strings.Join(describeAll(NewTokenizer(input).Tokenize()), "\n")
			if got != want {
				t.Errorf("tokens of %q:\n got:\n%s\nwant:\n%s", input, got, want)
			}
		})
	}
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{input: "", want: nil},
		{input: "   \n\t", want: nil},
		{input: "int", want: []TokenType{Ident}},
		{input: `"Node"`, want: []TokenType{String}},
		{input: "Tuple[int, ...]", want: []TokenType{Ident, LeftBracket, Ident, Comma, Ellipsis, RightBracket}},
		{input: "Dict[K,V]", want: []TokenType{Ident, LeftBracket, Ident, Comma, Ident, RightBracket}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := NewTokenizer(tt.input).Tokenize()
			if len(toks) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v", tt.input, describeAll(toks))
			}
			for i, tok := range toks {
				if tok.Type != tt.want[i] {
					t.Errorf("token %d of %q is %s, want %s", i, tt.input, tok.Type, tt.want[i])
				}
			}
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	if got := TokenType(99).String(); got != "Unknown" {
		t.Errorf("TokenType(99).String() = %q, want Unknown", got)
	}
	if got := Ellipsis.String(); got != "Ellipsis" {
		t.Errorf("Ellipsis.String() = %q", got)
	}
}
