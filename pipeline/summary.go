package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/minios-linux/keycov/coverage"
	"github.com/minios-linux/keycov/i18next"
)

// Skip reasons for keys.
const (
	ReasonMalformed        = "malformed"
	ReasonIgnored          = "ignored"
	ReasonConflict         = "structural conflict"
	ReasonInvalidNamespace = "invalid namespace"
	ReasonUnresolved       = "unresolved namespace"
	ReasonDestination      = "destination failed"
)

// SkippedKey is a key that was not checked or filled.
type SkippedKey struct {
	Unit      string `json:"unit"`
	Namespace string `json:"namespace,omitempty"`
	Lang      string `json:"lang,omitempty"`
	Key       string `json:"key"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// SkippedUnit is a source unit whose own keys were not processed.
type SkippedUnit struct {
	Unit string `json:"unit"`
	Err  error  `json:"-"`
}

// Reason returns the error text.
func (s SkippedUnit) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Failure is a destination that could not be loaded or written.
type Failure struct {
	Lang      string
	Namespace string
	Path      string
	Err       error
}

func (f Failure) Error() string {
	if f.Lang == "" {
		return fmt.Sprintf("%s: %v", f.Path, f.Err)
	}
	return fmt.Sprintf("%s/%s: %v", f.Lang, f.Namespace, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Conflict is a structural conflict in one destination.
type Conflict struct {
	Lang      string
	Namespace string
	i18next.Conflict
}

// Summary is the outcome of one run. Nothing that was skipped or failed is
// left out.
type Summary struct {
	DryRun bool
	// Units is the number of source units processed.
	Units int
	// Added counts keys filled per language.
	Added map[string]int
	// Resynthesized counts generated leaves rewritten per language.
	Resynthesized map[string]int
	SkippedKeys   []SkippedKey
	SkippedUnits  []SkippedUnit
	// Written and Unchanged are destination paths. In a dry run Written
	// lists the files that would change.
	Written   []string
	Unchanged []string
	Failed    []Failure
	Conflicts []Conflict
	// Reports is the coverage before filling, per namespace and language.
	Reports []coverage.Report
}

func newSummary(dryRun bool) *Summary {
	return &Summary{
		DryRun:        dryRun,
		Added:         make(map[string]int),
		Resynthesized: make(map[string]int),
	}
}

// TotalAdded returns the number of keys filled in all languages.
func (s *Summary) TotalAdded() int {
	n := 0
	for _, c := range s.Added {
		n += c
	}
	return n
}

// Missing returns the number of missing keys over all reports.
func (s *Summary) Missing() int {
	n := 0
	for _, r := range s.Reports {
		n += len(r.Missing)
	}
	return n
}

// SkipReasons counts skipped keys by reason.
func (s *Summary) SkipReasons() map[string]int {
	out := make(map[string]int)
	for _, k := range s.SkippedKeys {
		out[k.Reason]++
	}
	return out
}

// Err returns the destination failures joined, or nil.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failed))
	for i, f := range s.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

func (s *Summary) sort() {
	sort.Strings(s.Written)
	sort.Strings(s.Unchanged)
}
