// Package typedoc renders the declarations of a compiled program as an
// HTML reference page.
package typedoc

import (
	"io"

	"github.com/typolang/typo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{
		Type: html.TextNode,
		Data: s,
	}
}

func class(name string) html.Attribute {
	return html.Attribute{Key: "class", Val: name}
}

// appendText appends an element holding a single text node.
func appendText(parent *html.Node, a atom.Atom, s string, attrs ...html.Attribute) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(text(s))
	parent.AppendChild(n)
	return n
}

// Render writes a complete HTML document listing every module of p in
// compilation order.
func Render(w io.Writer, p *typo.Program) error {
	doc, err := Document(p)
	if err != nil {
		return err
	}
	return html.Render(w, doc)
}

// Document builds the node tree Render writes.
func Document(p *typo.Program) (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)
	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	appendText(head, atom.Title, "Type reference")

	body := element(atom.Body)
	root.AppendChild(body)
	appendText(body, atom.H1, "Type reference")

	for _, moduleName := range p.Modules() {
		decls, err := p.Declarations(moduleName)
		if err != nil {
			return nil, err
		}
		section := element(atom.Section, html.Attribute{Key: "id", Val: moduleName})
		body.AppendChild(section)
		appendText(section, atom.H2, moduleName)
		if len(decls) == 0 {
			appendText(section, atom.P, "No declarations.", class("empty"))
			continue
		}
		dl := element(atom.Dl)
		section.AppendChild(dl)
		for _, d := range decls {
			appendText(dl, atom.Dt, d.Name, class(d.Kind.String()))
			dd := element(atom.Dd)
			dl.AppendChild(dd)
			appendText(dd, atom.Code, d.Text)
		}
	}
	return doc, nil
}
