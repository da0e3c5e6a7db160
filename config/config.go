// Package config implements project settings: the .keycov.yaml file and,
// when it is absent, auto-detection of the i18next layout from
// package.json and an existing locales directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/minios-linux/keycov/extract"
	"github.com/minios-linux/keycov/lockfile"
)

// NamespaceRule maps a path or key prefix to a namespace.
type NamespaceRule struct {
	Prefix    string `yaml:"prefix"`
	Namespace string `yaml:"namespace"`
}

// Project holds the resolved project configuration. All paths are absolute.
type Project struct {
	// Name is the project/package name.
	Name string
	// Version from package.json or fallback.
	Version string
	// Root is the project root.
	Root string
	// LocalesDir contains one directory per language with <namespace>.json files.
	LocalesDir string
	// PrimaryLang is the language keys are written in (default "en").
	PrimaryLang string
	// SecondaryLang is the language filled from the primary text (default "ar").
	SecondaryLang string
	// Languages detected from existing locale directories.
	Languages []string
	// SourceDirs are directories to scan for source files.
	SourceDirs []string
	// Include and Exclude filter source files (globs relative to Root).
	Include []string
	Exclude []string
	// Keywords are the translation function names.
	Keywords []string
	// Namespaces is the prefix table, in file order.
	Namespaces []NamespaceRule
	// IgnoreKeys are key globs excluded from coverage.
	IgnoreKeys []string
	// Acronyms and Glossary extend the built-in synthesis tables.
	Acronyms map[string]string
	Glossary map[string]string
	// GlossaryFile is an optional YAML file with more acronyms and glossary entries.
	GlossaryFile string
	// Order lists source globs that run before all other units.
	Order []string
	// LockFile is the provenance sidecar path.
	LockFile string
	// FromFile is true when the settings came from .keycov.yaml.
	FromFile bool
}

// Langs returns the managed languages, primary first.
func (p *Project) Langs() []string {
	return []string{p.PrimaryLang, p.SecondaryLang}
}

// LocalePath returns the resource file for a language and namespace.
func (p *Project) LocalePath(lang, namespace string) string {
	return filepath.Join(p.LocalesDir, lang, filepath.FromSlash(namespace)+".json")
}

// NamespacePrefixes returns the prefix table as a map.
func (p *Project) NamespacePrefixes() map[string]string {
	m := make(map[string]string, len(p.Namespaces))
	for _, r := range p.Namespaces {
		m[r.Prefix] = r.Namespace
	}
	return m
}

// Rel returns path relative to the project root when possible.
func (p *Project) Rel(path string) string {
	if rel, err := filepath.Rel(p.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// Load returns the project settings for rootDir: from .keycov.yaml when it
// exists, otherwise auto-detected.
func Load(rootDir string) (*Project, error) {
	f, err := LoadFile(rootDir)
	if err != nil {
		return nil, err
	}
	if f != nil {
		return f.Resolve(rootDir)
	}
	return Detect(rootDir), nil
}

// localesCandidates are checked in order by Detect.
var localesCandidates = []string{
	filepath.Join("public", "locales"),
	"locales",
	filepath.Join("src", "locales"),
	filepath.Join("src", "i18n", "locales"),
}

// Detect auto-detects project settings from the working directory.
func Detect(rootDir string) *Project {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	p := &Project{
		Root:          absRoot,
		LocalesDir:    filepath.Join(absRoot, DefaultLocalesDir),
		PrimaryLang:   DefaultPrimaryLang,
		SecondaryLang: DefaultSecondaryLang,
		Keywords:      extract.DefaultKeywords,
		LockFile:      filepath.Join(absRoot, lockfile.FileName),
	}

	if name, version, err := parsePackageJSON(filepath.Join(absRoot, "package.json")); err == nil {
		p.Name = name
		p.Version = version
	}
	// Fallback to directory name
	if p.Name == "" {
		p.Name = filepath.Base(absRoot)
	}
	if p.Version == "" {
		p.Version = "0.0.0"
	}

	for _, candidate := range localesCandidates {
		dir := filepath.Join(absRoot, candidate)
		if langs := detectLanguages(dir); len(langs) > 0 {
			p.LocalesDir = dir
			p.Languages = langs
			break
		}
	}

	for _, candidate := range []string{"src", "app", "components", "pages"} {
		dir := filepath.Join(absRoot, candidate)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			p.SourceDirs = append(p.SourceDirs, dir)
		}
	}
	if len(p.SourceDirs) == 0 {
		p.SourceDirs = []string{filepath.Join(absRoot, DefaultSourceDir)}
	}

	return p
}

// detectLanguages finds language directories that contain at least one
// namespace file, e.g. public/locales/ar/common.json.
func detectLanguages(localesDir string) []string {
	entries, err := os.ReadDir(localesDir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() || !isLangCode(entry.Name()) {
			continue
		}
		if hasJSON(filepath.Join(localesDir, entry.Name())) {
			langs = append(langs, entry.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

func hasJSON(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// ExistingNamespaces lists the namespaces that have a file for lang, e.g.
// "common" and "calc/finance". Sorted.
func (p *Project) ExistingNamespaces(lang string) []string {
	base := filepath.Join(p.LocalesDir, lang)
	var out []string
	_ = filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(strings.TrimSuffix(rel, ".json")))
		return nil
	})
	sort.Strings(out)
	return out
}

// isLangCode checks if a string is a well-formed BCP 47 tag such as en,
// ar, pt-BR or zh-Hant.
func isLangCode(s string) bool {
	if s == "" || strings.ContainsAny(s, "_. ") {
		return false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return false
	}
	base, conf := tag.Base()
	return conf == language.Exact && base.String() != "und"
}

// parsePackageJSON extracts the package name and version from package.json.
func parsePackageJSON(path string) (name, version string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	var pkg struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return pkg.Name, pkg.Version, nil
}
