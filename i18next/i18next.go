package i18next

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// indent is the per-level indentation of written files.
const indent = "  "

// Parse parses a nested i18next JSON object, preserving key order.
// Empty input yields an empty tree.
func Parse(data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewTree(), nil
	}
	t, err := parseObject(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return t, nil
}

// parseObject decodes one JSON object level. Values are decoded as raw
// messages first so that nested objects can recurse with their own decoder
// and non-string scalars can be kept verbatim.
func parseObject(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected {, got %v", t)
	}

	tree := NewTree()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}

		n, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		tree.put(key, n)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return tree, nil
}

func parseValue(raw json.RawMessage) (*node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '{':
		sub, err := parseObject(trimmed)
		if err != nil {
			return nil, err
		}
		return &node{kind: KindTree, tree: sub}, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &node{kind: KindLeaf, value: s}, nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, err
	}
	return &node{kind: KindRaw, raw: json.RawMessage(compact.Bytes())}, nil
}

// Marshal renders the tree as indented JSON with two spaces per level, keys
// in tree order, non-ASCII text unescaped and exactly one trailing newline.
// Marshal is deterministic: equal trees with equal key order produce equal
// bytes.
func (t *Tree) Marshal() ([]byte, error) {
	var b bytes.Buffer
	if err := t.marshalTo(&b, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (t *Tree) marshalTo(b *bytes.Buffer, depth int) error {
	if len(t.keys) == 0 {
		b.WriteString("{}")
		return nil
	}
	pad := strings.Repeat(indent, depth+1)

	b.WriteString("{\n")
	for i, seg := range t.keys {
		n := t.nodes[seg]
		b.WriteString(pad)
		b.WriteString(jsonString(seg))
		b.WriteString(": ")

		switch n.kind {
		case KindTree:
			if err := n.tree.marshalTo(b, depth+1); err != nil {
				return err
			}
		case KindLeaf:
			b.WriteString(jsonString(n.value))
		case KindRaw:
			if err := json.Indent(b, n.raw, pad, indent); err != nil {
				return fmt.Errorf("key %q: %w", seg, err)
			}
		}

		if i < len(t.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(indent, depth))
	b.WriteByte('}')
	return nil
}

// jsonString returns s as a JSON string literal without HTML escaping.
func jsonString(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
