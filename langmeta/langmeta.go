// Package langmeta provides language display metadata (native names and
// emoji flags) for the CLI tables, derived from CLDR data in
// golang.org/x/text.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

// canonicalize normalizes codes like "pt_br" or " EN-us " to BCP 47 form.
// Codes that do not parse are returned trimmed.
func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return normalized
	}
	return tag.String()
}

// Resolve returns best-effort metadata for a language code. The name is the
// language's own name for itself; the flag comes from the explicit region
// or, failing that, the most likely one. Unknown codes pass through with no
// flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return Meta{Name: lang}
	}

	m := Meta{Name: display.Self.Name(tag)}
	if m.Name == "" {
		m.Name = lang
	}
	if region, conf := tag.Region(); conf != language.No {
		m.Flag = flagFromRegion(region.String())
	}
	return m
}

// flagFromRegion converts a two-letter region code to its regional
// indicator pair. Anything else yields "".
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, c := range region {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
