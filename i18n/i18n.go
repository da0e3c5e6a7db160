// Package i18n localizes keycov's own CLI output.
//
// Catalogs are gettext .po files embedded under
// locales/<lang>/LC_MESSAGES/keycov.po. Messages without a catalog entry,
// and all messages when no catalog matches, are printed as written.
//
//	i18n.Init("")                // KEYCOV_LANG, then the gettext environment
//	i18n.Init("ar_EG")           // regional variants use the base catalog
//	fmt.Printf(i18n.N("%d key added", "%d keys added", n), n)
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "keycov"

// EnvVar selects the language of keycov's own messages. It takes
// precedence over LANGUAGE, LC_ALL, LC_MESSAGES and LANG.
const EnvVar = "KEYCOV_LANG"

var (
	po      *gotext.Locale
	current string
)

// Init loads the embedded catalog that best matches lang and returns its
// language, or "" when no catalog matches and messages pass through. An
// empty lang is taken from the environment.
//
// Init should be called before any T or N call that must be localized.
func Init(lang string) string {
	if lang == "" {
		lang = detectLanguage()
	}

	po, current = nil, ""
	catalog, ok := match(lang, Available())
	if !ok {
		return ""
	}
	po = gotext.NewLocaleFSWithPath(catalog, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
	current = catalog
	return catalog
}

// Current returns the language of the loaded catalog, or "".
func Current() string {
	return current
}

// Available returns the languages that have an embedded catalog, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := fs.Stat(locales, "locales/"+e.Name()+"/LC_MESSAGES/"+domain+".po"); err == nil {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// match picks the catalog for a POSIX ("ar_EG") or BCP 47 ("ar-EG") locale.
func match(lang string, catalogs []string) (string, bool) {
	if lang == "" || len(catalogs) == 0 {
		return "", false
	}
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return "", false
	}
	tags := make([]language.Tag, len(catalogs))
	for i, c := range catalogs {
		tags[i] = language.Make(c)
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return "", false
	}
	return catalogs[idx], true
}

// T translates a string. If no translation is available, returns the
// original string unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms. Without a catalog the singular
// form is used when n == 1, the plural form otherwise.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage returns the first usable locale of KEYCOV_LANG, LANGUAGE,
// LC_ALL, LC_MESSAGES and LANG, without its encoding suffix.
func detectLanguage() string {
	for _, env := range []string{EnvVar, "LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return ""
}
