package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/keycov/extract"
	"github.com/minios-linux/keycov/lockfile"
	"github.com/minios-linux/keycov/namespace"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .keycov.yaml structure.
type File struct {
	// PrimaryLang is the language keys are written in (default "en").
	PrimaryLang string `yaml:"primary_lang,omitempty"`
	// SecondaryLang is the language filled from primary text (default "ar").
	SecondaryLang string `yaml:"secondary_lang,omitempty"`
	// LocalesDir is relative to the project root (default "public/locales").
	LocalesDir string `yaml:"locales_dir,omitempty"`
	// Sources are directories to scan (default "src").
	Sources []string `yaml:"sources,omitempty"`
	// Include and Exclude are globs over source paths relative to the root.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	// Keywords are translation function names (default "t").
	Keywords []string `yaml:"keywords,omitempty"`
	// Namespaces is the prefix table used when a unit declares no namespace.
	Namespaces []NamespaceRule `yaml:"namespaces,omitempty"`
	// IgnoreKeys are key globs ("common.*") left out of coverage.
	IgnoreKeys []string `yaml:"ignore_keys,omitempty"`
	// Acronyms extend the acronym table ("Cagr": "CAGR").
	Acronyms map[string]string `yaml:"acronyms,omitempty"`
	// Glossary extends the primary to secondary glossary.
	Glossary map[string]string `yaml:"glossary,omitempty"`
	// GlossaryFile is a YAML file with acronyms and glossary, relative to the root.
	GlossaryFile string `yaml:"glossary_file,omitempty"`
	// Order lists source globs processed first, in list order.
	Order []string `yaml:"order,omitempty"`
	// LockFile is the provenance sidecar, relative to the root (default "keycov.lock").
	LockFile string `yaml:"lock_file,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".keycov.yaml"

// Defaults applied to missing settings.
const (
	DefaultPrimaryLang   = "en"
	DefaultSecondaryLang = "ar"
	DefaultLocalesDir    = "public/locales"
	DefaultSourceDir     = "src"
)

// LoadFile loads and validates .keycov.yaml from the given directory.
// Unknown keys are rejected. Returns nil if no .keycov.yaml exists.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Validate fills defaults and checks every setting. Language codes are
// canonicalized ("en-us" becomes "en-US").
func (f *File) Validate() error {
	// Defaults
	if f.PrimaryLang == "" {
		f.PrimaryLang = DefaultPrimaryLang
	}
	if f.SecondaryLang == "" {
		f.SecondaryLang = DefaultSecondaryLang
	}
	if f.LocalesDir == "" {
		f.LocalesDir = DefaultLocalesDir
	}
	if len(f.Sources) == 0 {
		f.Sources = []string{DefaultSourceDir}
	}
	if len(f.Keywords) == 0 {
		f.Keywords = extract.DefaultKeywords
	}
	if f.LockFile == "" {
		f.LockFile = lockfile.FileName
	}

	var err error
	if f.PrimaryLang, err = canonicalLang(f.PrimaryLang); err != nil {
		return fmt.Errorf("primary_lang: %w", err)
	}
	if f.SecondaryLang, err = canonicalLang(f.SecondaryLang); err != nil {
		return fmt.Errorf("secondary_lang: %w", err)
	}
	if f.PrimaryLang == f.SecondaryLang {
		return fmt.Errorf("primary_lang and secondary_lang are both %q", f.PrimaryLang)
	}

	if _, err := extract.NewExtractor(f.Keywords...); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	if _, err := extract.NewFilter(f.Include, f.Exclude); err != nil {
		return fmt.Errorf("include/exclude: %w", err)
	}
	for _, p := range f.IgnoreKeys {
		if _, err := glob.Compile(p, '.'); err != nil {
			return fmt.Errorf("ignore_keys: invalid pattern %q: %w", p, err)
		}
	}
	for _, p := range f.Order {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("order: invalid pattern %q: %w", p, err)
		}
	}

	seen := make(map[string]string, len(f.Namespaces))
	for i, r := range f.Namespaces {
		if r.Prefix == "" {
			return fmt.Errorf("namespaces[%d]: prefix is empty", i)
		}
		if prev, ok := seen[r.Prefix]; ok && prev != r.Namespace {
			return fmt.Errorf("namespaces[%d]: prefix %q maps to both %q and %q", i, r.Prefix, prev, r.Namespace)
		}
		seen[r.Prefix] = r.Namespace
	}
	if _, err := namespace.NewTable(seen); err != nil {
		return fmt.Errorf("namespaces: %w", err)
	}
	return nil
}

func canonicalLang(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// ---------------------------------------------------------------------------
// Resolving to a Project
// ---------------------------------------------------------------------------

// Resolve converts the file into a Project with absolute paths. Name,
// version and the list of existing languages are still auto-detected.
func (f *File) Resolve(projectRoot string) (*Project, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}
	detected := Detect(absRoot)

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(absRoot, filepath.FromSlash(p))
	}

	p := &Project{
		Name:          detected.Name,
		Version:       detected.Version,
		Root:          absRoot,
		LocalesDir:    abs(f.LocalesDir),
		PrimaryLang:   f.PrimaryLang,
		SecondaryLang: f.SecondaryLang,
		Include:       f.Include,
		Exclude:       f.Exclude,
		Keywords:      f.Keywords,
		Namespaces:    f.Namespaces,
		IgnoreKeys:    f.IgnoreKeys,
		Acronyms:      f.Acronyms,
		Glossary:      f.Glossary,
		GlossaryFile:  abs(f.GlossaryFile),
		Order:         f.Order,
		LockFile:      abs(f.LockFile),
		FromFile:      true,
	}
	for _, s := range f.Sources {
		p.SourceDirs = append(p.SourceDirs, abs(s))
	}
	p.Languages = detectLanguages(p.LocalesDir)
	return p, nil
}
