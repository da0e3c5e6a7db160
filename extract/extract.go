// Package extract finds the translation keys a JavaScript/TypeScript code
// base references. It collects source files, then scans each one for
// literal calls to the translation function (t("calc.title")) and for the
// namespace declared with useTranslation("calc/finance").
//
// Extraction is lexical. Keys assembled at runtime are never seen, which
// keeps the reported set free of false positives.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// SupportedExtensions lists the source file extensions that are scanned.
var SupportedExtensions = map[string]string{
	".js":  "JavaScript",
	".jsx": "JavaScript",
	".mjs": "JavaScript",
	".cjs": "JavaScript",
	".ts":  "TypeScript",
	".tsx": "TypeScript",
	".vue": "Vue",
}

// skipDirs contains directory names to skip during source file scanning.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".next":        true,
	".nuxt":        true,
	".turbo":       true,
	"node_modules": true,
	"coverage":     true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
}

// Filter narrows the scanned files with glob patterns matched against the
// slash-separated path relative to the scan root. "**" crosses directories,
// "*" does not. An empty Include accepts every file.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include and exclude patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compileGlobs(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileGlobs(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Match reports whether rel (slash-separated) passes the filter.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// FindSources recursively finds all source files with known extensions in
// dirs on fs. Paths are returned sorted and relative to root, using "/".
// Skips dependency and build output directories (node_modules, dist, etc.).
func FindSources(fs afero.Fs, root string, dirs []string, filter *Filter) ([]string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	var files []string
	seen := make(map[string]bool)

	for _, dir := range dirs {
		start := dir
		if !filepath.IsAbs(start) {
			start = filepath.Join(root, dir)
		}
		if _, err := fs.Stat(start); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		err := afero.Walk(fs, start, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if info.IsDir() {
				if path != start && skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := SupportedExtensions[filepath.Ext(path)]; !ok {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] || !filter.Match(rel) {
				return nil
			}
			seen[rel] = true
			files = append(files, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// DescribeFiles returns a human-readable summary of the source files found.
func DescribeFiles(files []string) string {
	byLang := make(map[string]int)
	for _, f := range files {
		if lang, ok := SupportedExtensions[filepath.Ext(f)]; ok {
			byLang[lang]++
		}
	}
	var langs []string
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	var parts []string
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%d %s", byLang[lang], lang))
	}
	return strings.Join(parts, ", ")
}
