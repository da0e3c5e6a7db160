// Package coverage compares the keys a code base uses with the keys a
// locale tree defines.
package coverage

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/minios-linux/keycov/i18next"
)

// Missing returns the used keys that tree does not define, sorted and
// without duplicates. Keys are compared exactly: no case folding and no
// trimming.
func Missing(used []string, tree *i18next.Tree) []string {
	seen := make(map[string]bool, len(used))
	missing := []string{}
	for _, k := range used {
		if seen[k] || (tree != nil && tree.Has(k)) {
			continue
		}
		seen[k] = true
		missing = append(missing, k)
	}
	sort.Strings(missing)
	return missing
}

// Report is the coverage of one (language, namespace) pair.
type Report struct {
	Namespace string   `json:"namespace"`
	Lang      string   `json:"lang"`
	Used      int      `json:"used"`
	Defined   int      `json:"defined"`
	Missing   []string `json:"missing"`
}

// Analyze computes the report for the keys used in ns against the tree of
// one language. Languages are analyzed independently.
func Analyze(ns, lang string, used []string, tree *i18next.Tree) Report {
	distinct := make(map[string]bool, len(used))
	for _, k := range used {
		distinct[k] = true
	}
	r := Report{
		Namespace: ns,
		Lang:      lang,
		Used:      len(distinct),
		Missing:   Missing(used, tree),
	}
	if tree != nil {
		r.Defined = len(tree.Flatten())
	}
	return r
}

// Covered returns the number of used keys that are defined.
func (r Report) Covered() int {
	return r.Used - len(r.Missing)
}

// Percent returns the share of used keys that are defined. A namespace
// that uses no keys is fully covered.
func (r Report) Percent() float64 {
	if r.Used == 0 {
		return 100
	}
	return float64(r.Covered()) * 100 / float64(r.Used)
}

// Complete reports whether no used key is missing.
func (r Report) Complete() bool {
	return len(r.Missing) == 0
}

// Totals sums reports per language.
func Totals(reports []Report) map[string]Report {
	out := make(map[string]Report)
	for _, r := range reports {
		t := out[r.Lang]
		t.Lang = r.Lang
		t.Used += r.Used
		t.Defined += r.Defined
		t.Missing = append(t.Missing, r.Missing...)
		out[r.Lang] = t
	}
	return out
}

// scriptNames maps ISO 15924 codes to unicode script table names.
var scriptNames = map[string][]string{
	"Arab": {"Arabic"},
	"Hebr": {"Hebrew"},
	"Cyrl": {"Cyrillic"},
	"Grek": {"Greek"},
	"Armn": {"Armenian"},
	"Geor": {"Georgian"},
	"Thai": {"Thai"},
	"Deva": {"Devanagari"},
	"Beng": {"Bengali"},
	"Ethi": {"Ethiopic"},
	"Hans": {"Han"},
	"Hant": {"Han"},
	"Jpan": {"Han", "Hiragana", "Katakana"},
	"Kore": {"Hangul", "Han"},
}

// Scripts returns the unicode tables of the writing system lang is
// normally written in, or nil when it uses Latin script or is unknown.
func Scripts(lang string) []*unicode.RangeTable {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil
	}
	script, _ := tag.Script()
	var tables []*unicode.RangeTable
	for _, name := range scriptNames[script.String()] {
		tables = append(tables, unicode.Scripts[name])
	}
	return tables
}

// placeholders are i18next interpolations and nesting, e.g. {{count}} or
// $t(common.ok), which stay in the source language on purpose.
var placeholders = regexp.MustCompile(`\{\{[^}]*\}\}|\$t\([^)]*\)|<[^>]*>`)

// Untranslated returns the leaves of tree that still look like they are in
// Latin script: they contain a Latin letter outside placeholders and no
// letter of lang's own script. It returns nil for Latin-script languages.
func Untranslated(tree *i18next.Tree, lang string) []i18next.Entry {
	tables := Scripts(lang)
	if tree == nil || len(tables) == 0 {
		return nil
	}
	var out []i18next.Entry
	for _, e := range tree.Entries() {
		text := placeholders.ReplaceAllString(e.Value, " ")
		if strings.IndexFunc(text, isLatinLetter) < 0 {
			continue
		}
		if strings.IndexFunc(text, func(r rune) bool { return unicode.IsOneOf(tables, r) }) >= 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}
