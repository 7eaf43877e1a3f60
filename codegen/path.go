package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/typolang/typo/values"
)

type pathKind int

const (
	pathRoot pathKind = iota
	pathItem
	pathItemAt
	pathKey
	pathValueAt
	pathSetItem
)

// Path describes where a value sits relative to the checked input. A nil
// *Path marks a speculative branch: failures are reported without detail
// and every path derived from nil is nil as well.
type Path struct {
	kind   pathKind
	name   string
	index  int
	v      Var
	parent *Path
}

// Root returns the path of a top-level value.
func Root(name string) *Path {
	return &Path{kind: pathRoot, name: name}
}

// Item is the element whose index is held in i.
func (p *Path) Item(i Var) *Path {
	if p == nil {
		return nil
	}
	return &Path{kind: pathItem, v: i, parent: p}
}

// ItemAt is the element at a fixed index.
func (p *Path) ItemAt(i int) *Path {
	if p == nil {
		return nil
	}
	return &Path{kind: pathItemAt, index: i, parent: p}
}

// Key is a mapping key.
func (p *Path) Key() *Path {
	if p == nil {
		return nil
	}
	return &Path{kind: pathKey, parent: p}
}

// ValueAt is the mapping value stored under the key held in k.
func (p *Path) ValueAt(k Var) *Path {
	if p == nil {
		return nil
	}
	return &Path{kind: pathValueAt, v: k, parent: p}
}

// SetItem is a set member.
func (p *Path) SetItem() *Path {
	if p == nil {
		return nil
	}
	return &Path{kind: pathSetItem, parent: p}
}

// format renders the path using the current contents of the frame.
func (p *Path) format(vars []any) string {
	var b strings.Builder
	for ; p != nil; p = p.parent {
		switch p.kind {
		case pathRoot:
			b.WriteString(p.name)
		case pathItem:
			fmt.Fprintf(&b, "item #%v of ", vars[p.v])
		case pathItemAt:
			b.WriteString("item #" + strconv.Itoa(p.index) + " of ")
		case pathKey:
			b.WriteString("key of ")
		case pathValueAt:
			b.WriteString("value at " + values.Repr(vars[p.v]) + " of ")
		case pathSetItem:
			b.WriteString("item of ")
		}
	}
	return b.String()
}

// String returns the path template with variable placeholders.
func (p *Path) String() string {
	if p == nil {
		return "<speculative>"
	}
	var b strings.Builder
	for ; p != nil; p = p.parent {
		switch p.kind {
		case pathRoot:
			b.WriteString(p.name)
		case pathItem:
			fmt.Fprintf(&b, "item #{%s} of ", p.v)
		case pathItemAt:
			b.WriteString("item #" + strconv.Itoa(p.index) + " of ")
		case pathKey:
			b.WriteString("key of ")
		case pathValueAt:
			fmt.Fprintf(&b, "value at {%s} of ", p.v)
		case pathSetItem:
			b.WriteString("item of ")
		}
	}
	return b.String()
}
