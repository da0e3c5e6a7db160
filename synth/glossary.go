package synth

import (
	"strings"
	"unicode"
)

// Glossary rewrites text phrase by phrase. Matching is case-insensitive,
// on whole words only, and prefers the longest phrase at each position.
// Replacements never overlap and are not re-scanned.
type Glossary struct {
	phrases  map[string]string
	maxWords int
}

// NewGlossary builds a glossary from phrase -> replacement pairs. Phrases
// are normalized to lower case with single spaces; empty ones are dropped.
func NewGlossary(entries map[string]string) *Glossary {
	g := &Glossary{phrases: make(map[string]string, len(entries))}
	g.Add(entries)
	return g
}

// Add inserts or replaces entries.
func (g *Glossary) Add(entries map[string]string) {
	for phrase, repl := range entries {
		words := strings.Fields(strings.ToLower(phrase))
		if len(words) == 0 || repl == "" {
			continue
		}
		g.phrases[strings.Join(words, " ")] = repl
		if len(words) > g.maxWords {
			g.maxWords = len(words)
		}
	}
}

// Len returns the number of phrases.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.phrases)
}

// Lookup returns the replacement for phrase.
func (g *Glossary) Lookup(phrase string) (string, bool) {
	if g == nil {
		return "", false
	}
	repl, ok := g.phrases[strings.Join(strings.Fields(strings.ToLower(phrase)), " ")]
	return repl, ok
}

type token struct {
	text string
	word bool
}

func tokenize(s string) []token {
	var toks []token
	start := 0
	inWord := false
	for i, r := range s {
		w := isWordRune(r)
		if i == 0 {
			inWord = w
			continue
		}
		if w != inWord {
			toks = append(toks, token{text: s[start:i], word: inWord})
			start = i
			inWord = w
		}
	}
	if start < len(s) {
		toks = append(toks, token{text: s[start:], word: inWord})
	}
	return toks
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Translate replaces every known phrase in text. Words without an entry
// are kept as they are.
func (g *Glossary) Translate(text string) string {
	if g.Len() == 0 {
		return text
	}
	toks := tokenize(text)
	var b strings.Builder
	for i := 0; i < len(toks); {
		if !toks[i].word {
			b.WriteString(toks[i].text)
			i++
			continue
		}
		n, repl := g.longestMatch(toks, i)
		if n == 0 {
			b.WriteString(toks[i].text)
			i++
			continue
		}
		b.WriteString(repl)
		i += n
	}
	return b.String()
}

// longestMatch returns how many tokens starting at i form the longest
// known phrase, and its replacement. Words of a phrase may only be
// separated by whitespace.
func (g *Glossary) longestMatch(toks []token, i int) (int, string) {
	var words []string
	var ends []int // token index after each collected word
	for j := i; j < len(toks) && len(words) < g.maxWords; j++ {
		if toks[j].word {
			words = append(words, strings.ToLower(toks[j].text))
			ends = append(ends, j+1)
			continue
		}
		if !isBlank(toks[j].text) {
			break
		}
	}
	for n := len(words); n > 0; n-- {
		if repl, ok := g.phrases[strings.Join(words[:n], " ")]; ok {
			return ends[n-1] - i, repl
		}
	}
	return 0, ""
}
