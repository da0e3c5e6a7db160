// Package synth generates placeholder text for keys that have no
// translation yet.
//
// For the primary language the text is derived from the key itself
// ("calc.bmi.resultLabel" becomes "Result Label"). For other languages the
// primary text is rewritten word by word with a bilingual glossary. The
// output is a readable stand-in, not a translation: words the glossary does
// not know are left in the primary language.
package synth

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Synthesizer produces placeholder text. The zero value derives primary
// text without acronym corrections and has no glossary.
type Synthesizer struct {
	// Primary is the source language; keys are derived in this language.
	Primary string
	// Acronyms maps a title-cased word to its corrected spelling
	// ("Bmi" -> "BMI"). Lookups are case-insensitive and whole-word.
	Acronyms map[string]string
	// Glossary rewrites primary text for the secondary language.
	Glossary *Glossary
}

// New returns a Synthesizer with the built-in acronym table and glossary.
func New(primary string) *Synthesizer {
	return &Synthesizer{
		Primary:  primary,
		Acronyms: DefaultAcronyms(),
		Glossary: NewGlossary(DefaultGlossary()),
	}
}

// Synthesize returns placeholder text for key in lang. prior is the primary
// language text for the same key, when known. Synthesize never fails and
// returns a non-empty string for every non-empty key.
func (s *Synthesizer) Synthesize(key, lang string, prior *string) string {
	if !s.isPrimary(lang) && prior != nil && strings.TrimSpace(*prior) != "" {
		if s.Glossary != nil {
			return s.Glossary.Translate(*prior)
		}
		return *prior
	}
	return s.Derive(key)
}

// Derive builds primary-language text from the last segment of key.
func (s *Synthesizer) Derive(key string) string {
	seg := key
	if i := strings.LastIndex(key, "."); i >= 0 {
		seg = key[i+1:]
	}

	caser := cases.Title(language.Und)
	words := SplitWords(seg)
	for i, w := range words {
		w = caser.String(w)
		if fixed, ok := s.acronym(w); ok {
			w = fixed
		}
		words[i] = w
	}

	if out := strings.Join(words, " "); out != "" {
		return out
	}
	if seg != "" {
		return seg
	}
	return key
}

func (s *Synthesizer) acronym(word string) (string, bool) {
	if len(s.Acronyms) == 0 {
		return "", false
	}
	if fixed, ok := s.Acronyms[word]; ok {
		return fixed, true
	}
	for k, v := range s.Acronyms {
		if strings.EqualFold(k, word) {
			return v, true
		}
	}
	return "", false
}

func (s *Synthesizer) isPrimary(lang string) bool {
	if s.Primary == "" {
		return true
	}
	if strings.EqualFold(lang, s.Primary) {
		return true
	}
	a, errA := language.Parse(lang)
	b, errB := language.Parse(s.Primary)
	if errA != nil || errB != nil {
		return false
	}
	baseA, _ := a.Base()
	baseB, _ := b.Base()
	return baseA == baseB
}

// SplitWords splits an identifier-like segment into words at "_", "-",
// spaces, lower-to-upper transitions ("resultLabel") and the end of an
// upper-case run ("BMIValue" -> "BMI", "Value").
func SplitWords(seg string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(seg)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
