// Package namespace decides which locale namespace a source unit's keys
// belong to.
//
// A unit that declares its namespace (useTranslation("calc/health")) gets
// exactly that. Otherwise a static prefix table is consulted, first with the
// unit's path and then with its keys. When nothing matches the unit is
// unresolved: its keys are skipped, never routed to a shared default.
package namespace

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Namespace names one resource file per language, e.g. "calc/construction".
type Namespace = string

var (
	// ErrUnresolvedNamespace is wrapped by every UnresolvedError.
	ErrUnresolvedNamespace = errors.New("unresolved namespace")
	// ErrAmbiguousPrefix is returned by NewTable for overlapping prefixes
	// that map to different namespaces.
	ErrAmbiguousPrefix = errors.New("ambiguous namespace prefix")
	// ErrInvalidNamespace is returned for names that cannot be a file path.
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// UnresolvedError reports a unit for which no namespace could be determined.
type UnresolvedError struct {
	Unit   string
	Reason string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Unit, ErrUnresolvedNamespace, e.Reason)
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolvedNamespace
}

// Unit is the identity of one source unit.
type Unit struct {
	// Path is the unit's location, e.g. "src/calculators/finance/Zakat.tsx".
	Path string
	// Hint is the namespace the unit declares, or "".
	Hint string
	// Keys are the unqualified keys the unit uses.
	Keys []string
}

// Validate checks that ns is usable as a relative, slash-separated file
// path below the locale directory.
func Validate(ns Namespace) error {
	bad := func(reason string) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidNamespace, ns, reason)
	}
	switch {
	case ns == "":
		return bad("empty")
	case strings.HasPrefix(ns, "/") || strings.HasSuffix(ns, "/"):
		return bad("leading or trailing slash")
	case strings.ContainsAny(ns, "\\:*?\"<>|"):
		return bad("contains a reserved character")
	case strings.TrimSpace(ns) != ns:
		return bad("surrounding whitespace")
	}
	for _, seg := range strings.Split(ns, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return bad("empty or relative segment")
		}
	}
	return nil
}

type entry struct {
	prefix string
	ns     Namespace
}

// Table maps name prefixes to namespaces.
type Table struct {
	entries []entry // longest prefix first
}

// NewTable builds a prefix table. It fails when a prefix is empty, a
// namespace is invalid, or one prefix is a prefix of another and the two
// map to different namespaces, since lookups would then depend on which
// one happens to be tried.
func NewTable(prefixes map[string]Namespace) (*Table, error) {
	t := &Table{entries: make([]entry, 0, len(prefixes))}
	for p, ns := range prefixes {
		if p == "" {
			return nil, fmt.Errorf("empty prefix for namespace %q", ns)
		}
		if err := Validate(ns); err != nil {
			return nil, fmt.Errorf("prefix %q: %w", p, err)
		}
		t.entries = append(t.entries, entry{prefix: p, ns: ns})
	}
	sort.Slice(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if len(a.prefix) != len(b.prefix) {
			return len(a.prefix) > len(b.prefix)
		}
		return a.prefix < b.prefix
	})

	// Shorter prefixes sort after longer ones, so checking each entry
	// against the ones after it covers every pair.
	for i, long := range t.entries {
		for _, short := range t.entries[i+1:] {
			if strings.HasPrefix(long.prefix, short.prefix) && long.ns != short.ns {
				return nil, fmt.Errorf("%w: %q (%s) and %q (%s)",
					ErrAmbiguousPrefix, short.prefix, short.ns, long.prefix, long.ns)
			}
		}
	}
	return t, nil
}

// Len returns the number of prefixes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Lookup returns the namespace of the longest prefix of name.
func (t *Table) Lookup(name string) (Namespace, bool) {
	if t == nil {
		return "", false
	}
	for _, e := range t.entries {
		if strings.HasPrefix(name, e.prefix) {
			return e.ns, true
		}
	}
	return "", false
}

// Resolve returns the namespace for u.
//
// Order: the unit's hint; the longest prefix of its path; the longest prefix
// of its keys, which must all agree. Anything else is an *UnresolvedError.
func (t *Table) Resolve(u Unit) (Namespace, error) {
	id := u.Path
	if id == "" {
		id = "<unit>"
	}

	if u.Hint != "" {
		if err := Validate(u.Hint); err != nil {
			return "", &UnresolvedError{Unit: id, Reason: err.Error()}
		}
		return u.Hint, nil
	}

	if u.Path != "" {
		p := path.Clean(strings.ReplaceAll(u.Path, "\\", "/"))
		if ns, ok := t.Lookup(p); ok {
			return ns, nil
		}
	}

	var found Namespace
	for _, key := range u.Keys {
		ns, ok := t.Lookup(key)
		if !ok {
			continue
		}
		if found != "" && ns != found {
			return "", &UnresolvedError{
				Unit:   id,
				Reason: fmt.Sprintf("keys map to both %q and %q", found, ns),
			}
		}
		found = ns
	}
	if found != "" {
		return found, nil
	}

	reason := "no namespace declared and no prefix matches"
	if t.Len() == 0 {
		reason = "no namespace declared and no prefix table configured"
	}
	return "", &UnresolvedError{Unit: id, Reason: reason}
}
