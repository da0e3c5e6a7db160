package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"

	"github.com/minios-linux/keycov/extract"
)

// Unit is one source file: its slash-separated path relative to the
// project root and its text.
type Unit struct {
	Path string
	Text string
	// Err is set when the file could not be read.
	Err error
}

// LoadUnits finds the source files under dirs and reads them. A file that
// cannot be read becomes a unit with Err set; only a failed walk is an
// error.
func LoadUnits(fs afero.Fs, root string, dirs []string, filter *extract.Filter) ([]Unit, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	files, err := extract.FindSources(fs, root, dirs, filter)
	if err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(files))
	for _, rel := range files {
		data, err := afero.ReadFile(fs, filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			units = append(units, Unit{Path: rel, Err: fmt.Errorf("reading source: %w", err)})
			continue
		}
		units = append(units, Unit{Path: rel, Text: string(data)})
	}
	return units, nil
}

// compileGlobs compiles patterns with the given separator.
func compileGlobs(patterns []string, sep rune) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, sep)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// orderUnits returns units in run order: those matching an order glob come
// first, grouped by the first glob they match in list order, and everything
// else follows. Paths are sorted within each group.
func orderUnits(units []Unit, order []glob.Glob) []Unit {
	sorted := append([]Unit(nil), units...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	if len(order) == 0 {
		return sorted
	}

	rank := func(p string) int {
		for i, g := range order {
			if g.Match(p) {
				return i
			}
		}
		return len(order)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i].Path) < rank(sorted[j].Path)
	})
	return sorted
}
