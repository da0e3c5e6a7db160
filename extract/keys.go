package extract

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// DefaultKeywords are the translation function names recognized when none
// are configured. "t" also matches member calls such as i18n.t("key").
var DefaultKeywords = []string{"t"}

// NamespaceSeparator separates an explicit namespace from the key in
// i18next-style qualified keys ("common:units.kg").
const NamespaceSeparator = ":"

// ErrMalformedKey is wrapped by every MalformedKeyError.
var ErrMalformedKey = errors.New("malformed key")

// MalformedKeyError describes a literal that is not a usable key.
type MalformedKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedKey, e.Key, e.Reason)
}

func (e *MalformedKeyError) Is(target error) bool {
	return target == ErrMalformedKey
}

// ValidateKey checks the structural rules for translation keys: non-empty,
// no whitespace or namespace separator, no empty segments, and no trailing
// "." or "_". Fragments
// such as "calc.errors." come from concatenated keys and are rejected
// instead of being guessed at.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return &MalformedKeyError{Key: key, Reason: "empty"}
	case strings.HasSuffix(key, "."):
		return &MalformedKeyError{Key: key, Reason: `ends with "."`}
	case strings.HasSuffix(key, "_"):
		return &MalformedKeyError{Key: key, Reason: `ends with "_"`}
	case strings.IndexFunc(key, unicode.IsSpace) >= 0:
		return &MalformedKeyError{Key: key, Reason: "contains whitespace"}
	case strings.Contains(key, NamespaceSeparator):
		return &MalformedKeyError{Key: key, Reason: fmt.Sprintf("contains %q", NamespaceSeparator)}
	}
	for _, seg := range strings.Split(key, ".") {
		if seg == "" {
			return &MalformedKeyError{Key: key, Reason: "empty segment"}
		}
	}
	return nil
}

// ValidateLiteral checks a call argument that may carry a namespace
// ("common:units.kg"). The part after the separator must pass ValidateKey.
func ValidateLiteral(lit string) error {
	ns, key := splitQualified(lit)
	err := ValidateKey(key)
	if err == nil || ns == "" {
		return err
	}
	var mk *MalformedKeyError
	if errors.As(err, &mk) {
		return &MalformedKeyError{Key: lit, Reason: "key after " + fmt.Sprintf("%q", NamespaceSeparator) + ": " + mk.Reason}
	}
	return err
}

// Result is what one source unit references.
type Result struct {
	// Keys are the distinct well-formed keys of the unit's own namespace, sorted.
	Keys []string
	// Qualified maps an explicit namespace ("common:ok") to its keys, sorted.
	Qualified map[string][]string
	// Malformed are literal arguments rejected by ValidateKey, sorted.
	Malformed []string
	// Hint is the namespace declared with useTranslation, or "".
	Hint string
}

// AllKeys returns the number of well-formed keys, qualified ones included.
func (r Result) AllKeys() int {
	n := len(r.Keys)
	for _, keys := range r.Qualified {
		n += len(keys)
	}
	return n
}

// Extractor finds literal translation keys in source text.
type Extractor struct {
	call *regexp.Regexp
}

var hintPattern = regexp.MustCompile(
	"useTranslation\\(\\s*\\[?\\s*(?:\"([^\"\\n]+)\"|'([^'\\n]+)'|`([^`$]+)`)")

// NewExtractor builds an extractor for the given function names. A name may
// contain dots ("i18n.translate").
func NewExtractor(keywords ...string) (*Extractor, error) {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	alts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			return nil, fmt.Errorf("empty keyword")
		}
		for _, part := range strings.Split(kw, ".") {
			if !isIdentifier(part) {
				return nil, fmt.Errorf("keyword %q is not a function name", kw)
			}
		}
		alts = append(alts, regexp.QuoteMeta(kw))
	}
	// Longest first so that "tr" is preferred over "t" at the same offset.
	sort.Slice(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })

	pattern := `(?:` + strings.Join(alts, "|") + `)\(\s*` +
		"(?:\"([^\"\\\\\\n]*)\"|'([^'\\\\\\n]*)'|`([^`\\\\]*)`)"
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling keyword pattern: %w", err)
	}
	return &Extractor{call: re}, nil
}

var defaultExtractor = func() *Extractor {
	e, err := NewExtractor(DefaultKeywords...)
	if err != nil {
		panic(err)
	}
	return e
}()

// ExtractKeys scans src with the default keywords.
func ExtractKeys(src string) Result {
	return defaultExtractor.Extract(src)
}

// Extract returns the keys referenced by literal translation calls in src.
//
// Only compile-time literals are extracted: t("a.b"), t('a.b') and t(`a.b`)
// with the literal as the first argument, followed by ")" or ",". A
// back-quoted literal containing ${...} is discarded entirely. Calls built
// from variables or concatenation are invisible. Missing a dynamic key is
// accepted; reporting a key that is not used is not.
func (e *Extractor) Extract(src string) Result {
	keys := make(map[string]bool)
	qualified := make(map[string]map[string]bool)
	malformed := make(map[string]bool)

	for _, m := range e.call.FindAllStringSubmatchIndex(src, -1) {
		if m[0] > 0 && isIdentByte(src[m[0]-1]) {
			continue // "format(" is not "t("
		}
		if !closesArgument(src[m[1]:]) {
			continue // "t('a.' + x)"
		}

		var lit string
		switch {
		case m[2] >= 0:
			lit = src[m[2]:m[3]]
		case m[4] >= 0:
			lit = src[m[4]:m[5]]
		case m[6] >= 0:
			lit = src[m[6]:m[7]]
			if strings.Contains(lit, "${") {
				continue
			}
		}

		if ValidateLiteral(lit) != nil {
			malformed[lit] = true
			continue
		}
		ns, key := splitQualified(lit)
		if ns == "" {
			keys[key] = true
			continue
		}
		if qualified[ns] == nil {
			qualified[ns] = make(map[string]bool)
		}
		qualified[ns][key] = true
	}

	r := Result{
		Keys:      sortedSet(keys),
		Malformed: sortedSet(malformed),
		Hint:      FindHint(src),
	}
	if len(qualified) > 0 {
		r.Qualified = make(map[string][]string, len(qualified))
		for ns, set := range qualified {
			r.Qualified[ns] = sortedSet(set)
		}
	}
	return r
}

// FindHint returns the first namespace declared with useTranslation("ns")
// or useTranslation(["ns", ...]), or "" when the unit declares none.
func FindHint(src string) string {
	m := hintPattern.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}

// splitQualified splits "ns:key" into its namespace and key.
func splitQualified(lit string) (ns, key string) {
	i := strings.Index(lit, NamespaceSeparator)
	if i <= 0 {
		return "", lit
	}
	return lit[:i], lit[i+len(NamespaceSeparator):]
}

// closesArgument reports whether rest, after optional whitespace, ends the
// first call argument.
func closesArgument(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest != "" && (rest[0] == ')' || rest[0] == ',')
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
