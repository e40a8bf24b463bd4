package pipeline

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindScalar
	kindSequence
	kindMapping
)

// maxAliasDepth bounds alias resolution so self-referencing anchors terminate.
const maxAliasDepth = 64

// value is a YAML node decoded into its native shape. Mapping keys keep their
// document order, which a Go map would lose.
type value struct {
	kind   valueKind
	scalar string
	items  []value
	keys   []string
}

// decodeValue realizes n and everything below it. A nil node decodes to null.
func decodeValue(n *yaml.Node) value {
	return decodeDepth(n, 0)
}

func decodeDepth(n *yaml.Node, depth int) value {
	if n == nil || depth > maxAliasDepth {
		return value{kind: kindNull}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value{kind: kindNull}
		}
		return decodeDepth(n.Content[0], depth+1)
	case yaml.AliasNode:
		return decodeDepth(n.Alias, depth+1)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return value{kind: kindNull}
		}
		return value{kind: kindScalar, scalar: n.Value}
	case yaml.SequenceNode:
		v := value{kind: kindSequence, items: make([]value, 0, len(n.Content))}
		for _, child := range n.Content {
			v.items = append(v.items, decodeDepth(child, depth+1))
		}
		return v
	case yaml.MappingNode:
		v := value{kind: kindMapping}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := resolveAlias(n.Content[i])
			if key == nil || key.Kind != yaml.ScalarNode {
				continue
			}
			v.keys = append(v.keys, key.Value)
			v.items = append(v.items, decodeDepth(n.Content[i+1], depth+1))
		}
		return v
	}
	return value{kind: kindNull}
}

// structured reports whether v has no scalar string form of its own.
func (v value) structured() bool {
	return v.kind != kindScalar
}

// itemString is the string form used for a sequence element at index idx.
// Structured and null elements are addressed by their position.
func (v value) itemString(idx int) string {
	if v.structured() {
		return strconv.Itoa(idx)
	}
	return v.scalar
}

// foreachItems applies the foreach shape rules: a sequence yields one item per
// element, a mapping yields its keys, anything else yields no items.
func foreachItems(v value) []string {
	switch v.kind {
	case kindSequence:
		out := make([]string, 0, len(v.items))
		for i, item := range v.items {
			out = append(out, item.itemString(i))
		}
		return out
	case kindMapping:
		return append([]string{}, v.keys...)
	}
	return []string{}
}

// matrixAxes keeps only the sequence-valued entries of a matrix mapping.
// Structured and null values are named after their axis and position, so
// the second mapping under axis "cfg" becomes "cfg1".
func matrixAxes(v value) Axes {
	if v.kind != kindMapping {
		return nil
	}
	var axes Axes
	for i, name := range v.keys {
		seq := v.items[i]
		if seq.kind != kindSequence {
			continue
		}
		values := make([]string, 0, len(seq.items))
		for j, item := range seq.items {
			if item.structured() {
				values = append(values, name+strconv.Itoa(j))
				continue
			}
			values = append(values, item.scalar)
		}
		axes = append(axes, Axis{Name: name, Values: values})
	}
	return axes
}

// commandText returns the literal command. A list of commands is joined one
// per line.
func commandText(v value) string {
	switch v.kind {
	case kindScalar:
		return v.scalar
	case kindSequence:
		parts := make([]string, 0, len(v.items))
		for _, item := range v.items {
			if item.kind == kindScalar && item.scalar != "" {
				parts = append(parts, item.scalar)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for depth := 0; n != nil && n.Kind == yaml.AliasNode; depth++ {
		if depth > maxAliasDepth {
			return nil
		}
		n = n.Alias
	}
	return n
}

// lookup returns the value node stored under key in mapping node m.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
