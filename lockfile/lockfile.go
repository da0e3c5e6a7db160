// Package lockfile implements keycov.lock, a provenance sidecar that
// records which locale leaves were generated rather than written by a
// person. For every generated value it stores the MD5 checksum of the text
// that was written. A leaf counts as generated only while its current text
// still matches that checksum; once someone edits it, it is curated and
// never regenerated.
//
// The locale files themselves stay plain i18next JSON.
package lockfile

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the default lock file name.
const FileName = "keycov.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the keycov.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // target -> key -> md5

	mu   sync.Mutex `yaml:"-"`
	fs   afero.Fs   `yaml:"-"`
	path string     `yaml:"-"`
}

// New returns an empty lock file that will be saved to path on fs.
func New(fs afero.Fs, path string) *LockFile {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		fs:        fs,
		path:      path,
	}
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the lock file at path. Returns an empty lock file if the file
// doesn't exist.
func Load(fs afero.Fs, path string) (*LockFile, error) {
	lf := New(fs, path)

	data, err := afero.ReadFile(lf.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported lock file version %d", path, lf.Version)
	}
	lf.Version = Version
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file. Targets without entries are dropped. Nothing
// is written when the content is unchanged, or when the lock file is empty
// and does not exist yet.
func (lf *LockFile) Save() (changed bool, err error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return false, fmt.Errorf("lock file path not set")
	}
	for t, keys := range lf.Checksums {
		if len(keys) == 0 {
			delete(lf.Checksums, t)
		}
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return false, fmt.Errorf("marshaling lock file: %w", err)
	}

	current, err := afero.ReadFile(lf.fs, lf.path)
	switch {
	case err == nil && bytes.Equal(current, data):
		return false, nil
	case errors.Is(err, os.ErrNotExist) && len(lf.Checksums) == 0:
		return false, nil
	}

	if err := lf.fs.MkdirAll(filepath.Dir(lf.path), 0755); err != nil {
		return false, fmt.Errorf("creating directory for %s: %w", lf.path, err)
	}
	if err := afero.WriteFile(lf.fs, lf.path, data, 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return true, nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// TargetKey builds the lock file key of one locale file, e.g.
// "ar/calc/finance.json".
func TargetKey(lang, namespace string) string {
	return lang + "/" + filepath.ToSlash(namespace) + ".json"
}

// IsSynthesized reports whether key in target was generated and still holds
// the generated text.
func (lf *LockFile) IsSynthesized(target, key, current string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keys, ok := lf.Checksums[target]
	if !ok {
		return false
	}
	hash, ok := keys[key]
	return ok && hash == Hash(current)
}

// RecordBatch marks several keys at once. entries maps key -> text.
func (lf *LockFile) RecordBatch(target string, entries map[string]string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[target] == nil {
		lf.Checksums[target] = make(map[string]string)
	}
	for key, value := range entries {
		lf.Checksums[target][key] = Hash(value)
	}
}

// Synthesized returns the keys of target whose current text, given as
// key -> text, is still the generated text. Sorted.
func (lf *LockFile) Synthesized(target string, current map[string]string) []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	var keys []string
	for key, hash := range lf.Checksums[target] {
		if value, ok := current[key]; ok && hash == Hash(value) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clean drops entries of target whose key is gone from current (key ->
// text) or whose text was edited since it was generated. Returns the
// number of dropped entries.
func (lf *LockFile) Clean(target string, current map[string]string) int {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[target]
	if existing == nil {
		return 0
	}

	dropped := 0
	for key, hash := range existing {
		if value, ok := current[key]; !ok || hash != Hash(value) {
			delete(existing, key)
			dropped++
		}
	}
	return dropped
}

// RemoveTarget removes all checksums for a target, e.g. one whose locale
// file was deleted.
func (lf *LockFile) RemoveTarget(target string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, target)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of targets and total keys in the lock file.
func (lf *LockFile) Stats() (targets, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Targets returns sorted list of target keys.
func (lf *LockFile) Targets() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets := make([]string, 0, len(lf.Checksums))
	for t := range lf.Checksums {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	targets, keys := lf.Stats()
	if targets == 0 {
		return "empty"
	}

	var parts []string
	for _, t := range lf.Targets() {
		lf.mu.Lock()
		n := len(lf.Checksums[t])
		lf.mu.Unlock()
		parts = append(parts, fmt.Sprintf("%s: %d keys", t, n))
	}
	return fmt.Sprintf("%d targets, %d generated keys (%s)", targets, keys, strings.Join(parts, ", "))
}
