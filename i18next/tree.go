// Package i18next implements the nested JSON resource trees used by the
// i18next runtime, one file per language and namespace:
//
//	{
//	  "calc": {
//	    "title": "Paint Calculator",
//	    "errors": {
//	      "invalid_input": "Please enter a valid value"
//	    }
//	  }
//	}
//
// Keys are dotted paths ("calc.errors.invalid_input"). A node is either a
// leaf string or a subtree, never both. Key order is preserved exactly as
// read; new keys are appended to their parent.
package i18next

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// KeySeparator separates key segments.
const KeySeparator = "."

// ErrStructuralConflict is wrapped by every Conflict. A conflict means a leaf
// was found where a subtree was needed or the other way around.
var ErrStructuralConflict = errors.New("structural conflict")

// Kind is the structural kind of a node.
type Kind int

const (
	// KindTree is a nested subtree.
	KindTree Kind = iota
	// KindLeaf is a string value.
	KindLeaf
	// KindRaw is a non-string JSON value (number, bool, null, array) kept
	// verbatim so that files round-trip unchanged.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindTree:
		return "subtree"
	case KindLeaf:
		return "leaf"
	case KindRaw:
		return "raw leaf"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// isLeaf reports whether nodes of this kind terminate a key.
func (k Kind) isLeaf() bool {
	return k == KindLeaf || k == KindRaw
}

// Conflict records a node whose structural kind was overwritten by Set or
// Merge. The old content at Key is lost.
type Conflict struct {
	Key string
	Was Kind
	Now Kind
}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s at %q: %s replaced by %s", ErrStructuralConflict, c.Key, c.Was, c.Now)
}

func (c Conflict) Unwrap() error {
	return ErrStructuralConflict
}

type node struct {
	kind  Kind
	value string          // KindLeaf
	raw   json.RawMessage // KindRaw
	tree  *Tree           // KindTree
}

func (n *node) clone() *node {
	c := &node{kind: n.kind, value: n.value}
	if n.raw != nil {
		c.raw = append(json.RawMessage(nil), n.raw...)
	}
	if n.tree != nil {
		c.tree = n.tree.Clone()
	}
	return c
}

// Tree is an ordered nested string store. The zero value is not usable;
// create trees with NewTree or Parse.
type Tree struct {
	keys  []string
	nodes map[string]*node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// SplitKey splits a dotted key into its segments.
func SplitKey(key string) []string {
	return strings.Split(key, KeySeparator)
}

func joinKey(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + KeySeparator + seg
}

func (t *Tree) put(seg string, n *node) {
	if _, ok := t.nodes[seg]; !ok {
		t.keys = append(t.keys, seg)
	}
	t.nodes[seg] = n
}

// Len returns the number of direct children.
func (t *Tree) Len() int {
	return len(t.keys)
}

// Get returns the leaf value at key. It reports false when any segment is
// missing, when a leaf sits where a subtree is expected, or when key names a
// subtree. Raw leaves are returned as their JSON text.
func (t *Tree) Get(key string) (string, bool) {
	n := t.leaf(key)
	switch {
	case n == nil:
		return "", false
	case n.kind == KindRaw:
		return string(n.raw), true
	}
	return n.value, true
}

// GetString is like Get but reports false for raw leaves, so callers
// never mistake JSON text for a string value.
func (t *Tree) GetString(key string) (string, bool) {
	n := t.leaf(key)
	if n == nil || n.kind != KindLeaf {
		return "", false
	}
	return n.value, true
}

// leaf returns the leaf node at key, or nil.
func (t *Tree) leaf(key string) *node {
	segs := SplitKey(key)
	cur := t
	for i, seg := range segs {
		n, ok := cur.nodes[seg]
		if !ok {
			return nil
		}
		last := i == len(segs)-1
		switch {
		case last && n.kind.isLeaf():
			return n
		case last || n.kind != KindTree:
			return nil
		}
		cur = n.tree
	}
	return nil
}

// Has reports whether key resolves to a leaf.
func (t *Tree) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Set stores value at key, creating intermediate subtrees as needed.
//
// Set is lossy by contract: a leaf in the way of an intermediate segment is
// replaced by a fresh empty subtree, and a subtree at the final segment is
// replaced by the leaf. Every such replacement is returned so that callers
// can report it. Callers that must not lose data check Get first.
func (t *Tree) Set(key, value string) []Conflict {
	var conflicts []Conflict
	segs := SplitKey(key)
	cur := t
	path := ""
	for _, seg := range segs[:len(segs)-1] {
		path = joinKey(path, seg)
		n, ok := cur.nodes[seg]
		if !ok || n.kind != KindTree {
			if ok {
				conflicts = append(conflicts, Conflict{Key: path, Was: n.kind, Now: KindTree})
			}
			n = &node{kind: KindTree, tree: NewTree()}
			cur.put(seg, n)
		}
		cur = n.tree
	}

	last := segs[len(segs)-1]
	if n, ok := cur.nodes[last]; ok && n.kind == KindTree {
		conflicts = append(conflicts, Conflict{Key: key, Was: KindTree, Now: KindLeaf})
	}
	cur.put(last, &node{kind: KindLeaf, value: value})
	return conflicts
}

// Collides reports the conflict Set(key, ...) would cause, without
// modifying t. Replacing an empty subtree is not a collision.
func (t *Tree) Collides(key string) (Conflict, bool) {
	segs := SplitKey(key)
	cur := t
	path := ""
	for _, seg := range segs[:len(segs)-1] {
		path = joinKey(path, seg)
		n, ok := cur.nodes[seg]
		if !ok {
			return Conflict{}, false
		}
		if n.kind != KindTree {
			return Conflict{Key: path, Was: n.kind, Now: KindTree}, true
		}
		cur = n.tree
	}
	if n, ok := cur.nodes[segs[len(segs)-1]]; ok && n.kind == KindTree && n.tree.Len() > 0 {
		return Conflict{Key: key, Was: KindTree, Now: KindLeaf}, true
	}
	return Conflict{}, false
}

// Merge deep-merges other into t. Where both sides hold a subtree the merge
// recurses; everywhere else other's node (leaf or subtree) replaces t's.
// Merge is not commutative: other wins. Kind changes are returned as
// conflicts. other is not modified and shares no nodes with t afterwards.
func (t *Tree) Merge(other *Tree) []Conflict {
	return t.merge(other, "")
}

func (t *Tree) merge(other *Tree, prefix string) []Conflict {
	if other == nil {
		return nil
	}
	var conflicts []Conflict
	for _, seg := range other.keys {
		on := other.nodes[seg]
		path := joinKey(prefix, seg)
		cur, ok := t.nodes[seg]
		if ok && cur.kind == KindTree && on.kind == KindTree {
			conflicts = append(conflicts, cur.tree.merge(on.tree, path)...)
			continue
		}
		if ok && cur.kind.isLeaf() != on.kind.isLeaf() {
			conflicts = append(conflicts, Conflict{Key: path, Was: cur.kind, Now: on.kind})
		}
		t.put(seg, on.clone())
	}
	return conflicts
}

// Flatten returns every leaf-terminated dotted key in tree order. Empty
// subtrees contribute nothing.
func (t *Tree) Flatten() []string {
	var out []string
	t.walk("", func(key string, n *node) {
		out = append(out, key)
	})
	return out
}

// Entry is a string leaf and its dotted key.
type Entry struct {
	Key   string
	Value string
}

// Entries returns all string leaves in tree order. Raw leaves are skipped.
func (t *Tree) Entries() []Entry {
	var out []Entry
	t.walk("", func(key string, n *node) {
		if n.kind == KindLeaf {
			out = append(out, Entry{Key: key, Value: n.value})
		}
	})
	return out
}

func (t *Tree) walk(prefix string, fn func(key string, n *node)) {
	for _, seg := range t.keys {
		n := t.nodes[seg]
		key := joinKey(prefix, seg)
		if n.kind == KindTree {
			n.tree.walk(key, fn)
			continue
		}
		fn(key, n)
	}
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		keys:  append([]string(nil), t.keys...),
		nodes: make(map[string]*node, len(t.nodes)),
	}
	for seg, n := range t.nodes {
		c.nodes[seg] = n.clone()
	}
	return c
}

// Equal reports whether t and other hold the same structure and values.
// Key order is not compared.
func (t *Tree) Equal(other *Tree) bool {
	if len(t.nodes) != len(other.nodes) {
		return false
	}
	for seg, n := range t.nodes {
		o, ok := other.nodes[seg]
		if !ok || n.kind != o.kind {
			return false
		}
		switch n.kind {
		case KindLeaf:
			if n.value != o.value {
				return false
			}
		case KindRaw:
			if string(n.raw) != string(o.raw) {
				return false
			}
		case KindTree:
			if !n.tree.Equal(o.tree) {
				return false
			}
		}
	}
	return true
}
