package typedoc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/typolang/typo"
	"golang.org/x/net/html"
)

func compile(t *testing.T, modules map[string]string) *typo.Program {
	t.Helper()
	c := typo.NewCompiler()
	for name, src := range modules {
		c.AddModule(name, src)
	}
	p, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return p
}

// collect returns the text of every element named tag, in document order.
func collect(n *html.Node, tag string) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				} else if c.FirstChild != nil && c.FirstChild.Type == html.TextNode {
					b.WriteString(c.FirstChild.Data)
				}
			}
			out = append(out, b.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRender(t *testing.T) {
	p := compile(t, map[string]string{
		"geometry": "types:\n  Point: Tuple[float64, float64]\n",
		"main": `
imports:
  geometry: [Point]
params:
  T: {}
types:
  Path: List[Point]
signatures:
  first:
    params:
      - name: items
        type: List[T]
    returns: T
`,
		"empty": "",
	})

	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("output does not start with a doctype: %.40q", out)
	}

	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}

	if got, want := collect(doc, "h2"), p.Modules(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("module headings = %v, want %v", got, want)
	}
	wantTerms := []string{"Point", "T", "Path", "first"}
	if got := collect(doc, "dt"); strings.Join(got, ",") != strings.Join(wantTerms, ",") {
		t.Errorf("terms = %v, want %v", got, wantTerms)
	}
	wantCode := []string{
		"Tuple[float64, float64]",
		"T",
		"List[Tuple[float64, float64]]",
		"first(items: List[T]) -> T",
	}
	if got := collect(doc, "code"); strings.Join(got, "|") != strings.Join(wantCode, "|") {
		t.Errorf("renderings = %v, want %v", got, wantCode)
	}
	if got := collect(doc, "p"); len(got) != 1 || got[0] != "No declarations." {
		t.Errorf("paragraphs = %v", got)
	}
}

func TestDocumentClasses(t *testing.T) {
	p := compile(t, map[string]string{
		"main": "params:\n  N:\n    bound: int\ntypes:\n  Row: Dict[string, N]\n",
	})
	doc, err := Document(p)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	var classes []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "dt" {
			classes = append(classes, attr(n, "class"))
		}
		if n.Type == html.ElementNode && n.Data == "section" && attr(n, "id") != "main" {
			t.Errorf("section id = %q, want main", attr(n, "id"))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if got := strings.Join(classes, ","); got != "param,type" {
		t.Errorf("dt classes = %s, want param,type", got)
	}
	if got := collect(doc, "code"); len(got) != 2 || got[0] != "N bound by int" || got[1] != "Dict[string, N]" {
		t.Errorf("renderings = %v", got)
	}
}

func TestRenderEscapes(t *testing.T) {
	p := compile(t, map[string]string{
		"main": "types:\n  Pair: Tuple[int, string]\n",
	})
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "<code>Tuple[int, string]</code>") {
		t.Errorf("Render() output lacks the rendering:\n%s", buf.String())
	}
}
