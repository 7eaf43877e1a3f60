// Package yamlvalue decodes YAML documents into the value shapes the
// checker classifies. Sequences tagged !tuple become tuples and sequences
// tagged !set become sets; everything else decodes to plain Go values.
// Merge keys (<<) copy the entries of the merged mappings into the
// enclosing mapping without overriding its own keys.
package yamlvalue

import (
	"fmt"

	"github.com/typolang/typo/values"
	"gopkg.in/yaml.v3"
)

const (
	TupleTag = "!tuple"
	SetTag   = "!set"
)

// DecodeError reports a node that has no checkable value.
type DecodeError struct {
	Line    int
	Column  int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func newError(n *yaml.Node, format string, args ...any) *DecodeError {
	return &DecodeError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// Decode parses a single YAML document. An empty document decodes to nil.
func Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return FromNode(&doc)
}

// FromNode converts a parsed node.
func FromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		switch n.Tag {
		case TupleTag:
			return values.Tuple(items), nil
		case SetTag:
			return toSet(n, items)
		}
		return items, nil
	case yaml.MappingNode:
		if n.Tag == SetTag {
			return nil, newError(n, "!set must be applied to a sequence")
		}
		m := make(map[any]any, len(n.Content)/2)
		var merges []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].ShortTag() == "!!merge" {
				merges = append(merges, n.Content[i+1])
				continue
			}
			k, err := FromNode(n.Content[i])
			if err != nil {
				return nil, err
			}
			if !hashable(k) {
				return nil, newError(n.Content[i], "unhashable mapping key")
			}
			v, err := FromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		for _, src := range merges {
			if err := merge(m, src); err != nil {
				return nil, err
			}
		}
		return m, nil
	}
	return nil, newError(n, "unsupported node kind %d", n.Kind)
}

// merge copies the entries of src, a mapping or a sequence of mappings, into
// m. Keys already present win, so earlier sources take precedence.
func merge(m map[any]any, src *yaml.Node) error {
	v, err := FromNode(src)
	if err != nil {
		return err
	}
	var sources []any
	switch x := v.(type) {
	case map[any]any:
		sources = []any{x}
	case []any:
		sources = x
	default:
		return newError(src, "merge value must be a mapping or a sequence of mappings")
	}
	for _, s := range sources {
		entries, ok := s.(map[any]any)
		if !ok {
			return newError(src, "merge value must be a mapping or a sequence of mappings")
		}
		for k, v := range entries {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	}
	return nil
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!int":
		var i int
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!str":
		return n.Value, nil
	case TupleTag, SetTag:
		return nil, newError(n, "%s must be applied to a sequence", n.Tag)
	}
	return nil, newError(n, "unsupported tag %s", n.Tag)
}

func toSet(n *yaml.Node, items []any) (map[any]struct{}, error) {
	s := make(map[any]struct{}, len(items))
	for i, item := range items {
		if !hashable(item) {
			return nil, newError(n.Content[i], "unhashable set member")
		}
		s[item] = struct{}{}
	}
	return s, nil
}

// hashable reports whether v can be used as a map key. Tuples are slices
// and so cannot.
func hashable(v any) bool {
	switch v.(type) {
	case []any, values.Tuple, map[any]any, map[any]struct{}:
		return false
	}
	return true
}
