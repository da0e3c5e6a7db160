// Package pipeline runs the coverage engine over a set of source units.
//
// For every unit the keys are extracted and routed to a namespace, then
// each language's tree for that namespace is checked for missing keys.
// Sync fills the gaps with synthesized text (primary language first, the
// secondary language from the primary text) and writes every changed tree
// once at the end. Runs are sequential and deterministic.
//
// Errors in one unit never abort the run. A destination that cannot be
// read or written fails on its own and is reported in the Summary.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/minios-linux/keycov/coverage"
	"github.com/minios-linux/keycov/extract"
	"github.com/minios-linux/keycov/i18next"
	"github.com/minios-linux/keycov/lockfile"
	"github.com/minios-linux/keycov/merge"
	"github.com/minios-linux/keycov/namespace"
	"github.com/minios-linux/keycov/synth"
)

// Sentinel errors of the engine, re-exported for callers that only import
// this package.
var (
	ErrMalformedKey        = extract.ErrMalformedKey
	ErrUnresolvedNamespace = namespace.ErrUnresolvedNamespace
	ErrStructuralConflict  = i18next.ErrStructuralConflict
	ErrIO                  = i18next.ErrIO
)

// Options configures a Runner.
type Options struct {
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
	// Store reads and writes locale trees. Defaults to the OS filesystem.
	Store *i18next.Store
	// LocalesDir holds <lang>/<namespace>.json.
	LocalesDir string
	// Langs are the managed languages, primary first.
	Langs []string
	// Table resolves units that declare no namespace. May be nil.
	Table *namespace.Table
	// Extractor defaults to the "t" keyword.
	Extractor *extract.Extractor
	// Synth defaults to synth.New(Langs[0]).
	Synth *synth.Synthesizer
	// Lock records generated values. May be nil.
	Lock *lockfile.LockFile
	// IgnoreKeys are key globs ("." separated) left out of coverage.
	IgnoreKeys []string
	// Order are unit path globs processed first, in list order.
	Order []string
	// DryRun computes everything but writes nothing.
	DryRun bool
	// Resynthesize rewrites generated leaves that nobody has edited.
	Resynthesize bool
}

// Runner executes runs with fixed options.
type Runner struct {
	opts   Options
	log    *zap.Logger
	ignore []glob.Glob
	order  []glob.Glob
}

// New validates opts and returns a Runner.
func New(opts Options) (*Runner, error) {
	if len(opts.Langs) == 0 {
		return nil, errors.New("no languages configured")
	}
	if opts.LocalesDir == "" {
		return nil, errors.New("no locales directory configured")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = i18next.NewStore(nil)
	}
	if opts.Extractor == nil {
		e, err := extract.NewExtractor()
		if err != nil {
			return nil, err
		}
		opts.Extractor = e
	}
	if opts.Synth == nil {
		opts.Synth = synth.New(opts.Langs[0])
	}

	ignore, err := compileGlobs(opts.IgnoreKeys, '.')
	if err != nil {
		return nil, fmt.Errorf("ignore_keys: %w", err)
	}
	order, err := compileGlobs(opts.Order, '/')
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}

	return &Runner{
		opts:   opts,
		log:    opts.Logger,
		ignore: ignore,
		order:  order,
	}, nil
}

// usage is what one unit needs, by namespace.
type usage struct {
	unit string
	keys map[namespace.Namespace][]string
}

// dest is one cached (language, namespace) tree.
type dest struct {
	lang   string
	ns     string
	path   string
	tree   *i18next.Tree
	failed bool
	dirty  bool
}

// run is the state of a single Report or Sync call.
type run struct {
	*Runner
	sum   *Summary
	dests map[string]*dest
}

func (r *Runner) newRun() *run {
	return &run{
		Runner: r,
		sum:    newSummary(r.opts.DryRun),
		dests:  make(map[string]*dest),
	}
}

// Report computes coverage for units without changing anything.
func (r *Runner) Report(units []Unit) *Summary {
	rn := r.newRun()
	used := rn.collect(units)
	rn.analyze(used)
	rn.sum.sort()
	return rn.sum
}

// Sync computes coverage, fills every missing key and writes the changed
// trees and the lock file.
func (r *Runner) Sync(units []Unit) *Summary {
	rn := r.newRun()
	used := rn.collect(units)
	rn.analyze(used)
	for _, u := range used {
		rn.fill(u)
	}
	if r.opts.Resynthesize {
		rn.resynthesize()
	}
	rn.write()
	rn.sum.sort()
	return rn.sum
}

// ---------------------------------------------------------------------------
// Collection
// ---------------------------------------------------------------------------

func (rn *run) collect(units []Unit) []usage {
	var out []usage
	for _, unit := range orderUnits(units, rn.order) {
		rn.sum.Units++
		log := rn.log.With(zap.String("unit", unit.Path))
		if unit.Err != nil {
			log.Warn("skipping unit", zap.Error(unit.Err))
			rn.sum.SkippedUnits = append(rn.sum.SkippedUnits, SkippedUnit{Unit: unit.Path, Err: unit.Err})
			continue
		}

		res := rn.opts.Extractor.Extract(unit.Text)
		log.Debug("extracted keys", zap.Int("keys", res.AllKeys()), zap.Int("malformed", len(res.Malformed)))
		u := usage{unit: unit.Path, keys: make(map[namespace.Namespace][]string)}

		for _, m := range res.Malformed {
			err := extract.ValidateLiteral(m)
			log.Warn("malformed key", zap.String("key", m), zap.Error(err))
			rn.skipKey(SkippedKey{Unit: unit.Path, Key: m, Reason: ReasonMalformed, Err: err})
		}

		if len(res.Keys) > 0 {
			ns, err := rn.opts.Table.Resolve(namespace.Unit{Path: unit.Path, Hint: res.Hint, Keys: res.Keys})
			if err != nil {
				log.Warn("unresolved namespace", zap.Error(err))
				rn.sum.SkippedUnits = append(rn.sum.SkippedUnits, SkippedUnit{Unit: unit.Path, Err: err})
				for _, k := range res.Keys {
					rn.skipKey(SkippedKey{Unit: unit.Path, Key: k, Reason: ReasonUnresolved, Err: err})
				}
			} else {
				log.Debug("resolved namespace", zap.String("namespace", ns), zap.Int("keys", len(res.Keys)))
				u.keys[ns] = append(u.keys[ns], rn.filterIgnored(unit.Path, ns, res.Keys)...)
			}
		}

		for _, ns := range sortedNamespaces(res.Qualified) {
			keys := res.Qualified[ns]
			if err := namespace.Validate(ns); err != nil {
				log.Warn("invalid namespace", zap.String("namespace", ns), zap.Error(err))
				for _, k := range keys {
					rn.skipKey(SkippedKey{Unit: unit.Path, Namespace: ns, Key: k, Reason: ReasonInvalidNamespace, Err: err})
				}
				continue
			}
			u.keys[ns] = append(u.keys[ns], rn.filterIgnored(unit.Path, ns, keys)...)
		}

		for ns, keys := range u.keys {
			if len(keys) == 0 {
				delete(u.keys, ns)
				continue
			}
			u.keys[ns] = dedupe(keys)
		}
		if len(u.keys) > 0 {
			out = append(out, u)
		}
	}
	return out
}

func (rn *run) filterIgnored(unit, ns string, keys []string) []string {
	if len(rn.ignore) == 0 {
		return keys
	}
	kept := make([]string, 0, len(keys))
	for _, k := range keys {
		if rn.ignored(k) {
			rn.skipKey(SkippedKey{Unit: unit, Namespace: ns, Key: k, Reason: ReasonIgnored})
			continue
		}
		kept = append(kept, k)
	}
	return kept
}

func (rn *run) ignored(key string) bool {
	for _, g := range rn.ignore {
		if g.Match(key) {
			return true
		}
	}
	return false
}

func (rn *run) skipKey(k SkippedKey) {
	rn.sum.SkippedKeys = append(rn.sum.SkippedKeys, k)
}

// ---------------------------------------------------------------------------
// Coverage
// ---------------------------------------------------------------------------

// analyze reports coverage of the combined usage of all units, before any
// tree is changed.
func (rn *run) analyze(used []usage) {
	all := make(map[namespace.Namespace][]string)
	for _, u := range used {
		for ns, keys := range u.keys {
			all[ns] = append(all[ns], keys...)
		}
	}

	for _, ns := range sortedNamespaces(all) {
		for _, lang := range rn.opts.Langs {
			d := rn.dest(lang, ns)
			if d.failed {
				continue
			}
			rn.sum.Reports = append(rn.sum.Reports, coverage.Analyze(ns, lang, all[ns], d.tree))
		}
	}
}

// dest returns the cached tree for (lang, ns), loading it on first use.
func (rn *run) dest(lang, ns string) *dest {
	id := lockfile.TargetKey(lang, ns)
	if d, ok := rn.dests[id]; ok {
		return d
	}

	d := &dest{lang: lang, ns: ns, path: i18next.FilePath(rn.opts.LocalesDir, lang, ns)}
	rn.dests[id] = d

	tree, err := rn.opts.Store.Load(d.path)
	if err != nil {
		d.failed = true
		rn.log.Error("loading locale file failed",
			zap.String("lang", lang), zap.String("namespace", ns), zap.String("path", d.path), zap.Error(err))
		rn.sum.Failed = append(rn.sum.Failed, Failure{Lang: lang, Namespace: ns, Path: d.path, Err: err})
		return d
	}
	d.tree = tree
	return d
}

// ---------------------------------------------------------------------------
// Filling
// ---------------------------------------------------------------------------

func (rn *run) fill(u usage) {
	for _, ns := range sortedNamespaces(u.keys) {
		for _, lang := range rn.opts.Langs {
			d := rn.dest(lang, ns)
			if d.failed {
				for _, k := range u.keys[ns] {
					rn.skipKey(SkippedKey{Unit: u.unit, Namespace: ns, Lang: lang, Key: k, Reason: ReasonDestination})
				}
				continue
			}

			keys := rn.fillable(u.unit, d, coverage.Missing(u.keys[ns], d.tree))
			if len(keys) == 0 {
				continue
			}
			res := merge.Fill(d.tree, keys, rn.valueFunc(d))
			rn.apply(d, res)
			rn.sum.Added[lang] += len(res.Added)
		}
	}
}

// fillable drops missing keys whose insertion would overwrite existing
// content, or each other. Earlier keys win.
func (rn *run) fillable(unit string, d *dest, missing []string) []string {
	accepted := i18next.NewTree()
	keys := make([]string, 0, len(missing))
	for _, k := range missing {
		c, bad := d.tree.Collides(k)
		if !bad {
			c, bad = accepted.Collides(k)
		}
		if bad {
			rn.log.Warn("structural conflict",
				zap.String("unit", unit), zap.String("lang", d.lang), zap.String("namespace", d.ns),
				zap.String("key", k), zap.Error(c))
			rn.sum.Conflicts = append(rn.sum.Conflicts, Conflict{Lang: d.lang, Namespace: d.ns, Conflict: c})
			rn.skipKey(SkippedKey{Unit: unit, Namespace: d.ns, Lang: d.lang, Key: k, Reason: ReasonConflict, Err: c})
			continue
		}
		accepted.Set(k, "")
		keys = append(keys, k)
	}
	return keys
}

// valueFunc synthesizes text for d. Secondary languages are fed the
// primary text of the same key when the primary tree holds it as a string;
// raw primary values fall back to text derived from the key.
func (rn *run) valueFunc(d *dest) func(string) string {
	var primary *i18next.Tree
	if lang := rn.opts.Langs[0]; d.lang != lang {
		if p := rn.dest(lang, d.ns); !p.failed {
			primary = p.tree
		}
	}
	return func(key string) string {
		var prior *string
		if primary != nil {
			if v, ok := primary.GetString(key); ok {
				prior = &v
			}
		}
		return rn.opts.Synth.Synthesize(key, d.lang, prior)
	}
}

// apply records a merge result on d and in the lock file.
func (rn *run) apply(d *dest, res merge.Result) {
	if !res.Changed() {
		return
	}
	d.dirty = true
	for _, c := range res.Conflicts {
		rn.sum.Conflicts = append(rn.sum.Conflicts, Conflict{Lang: d.lang, Namespace: d.ns, Conflict: c})
	}
	if rn.opts.Lock == nil {
		return
	}
	generated := make(map[string]string, len(res.Added)+len(res.Updated))
	for _, e := range res.Added {
		generated[e.Key] = e.Value
	}
	for _, e := range res.Updated {
		generated[e.Key] = e.Value
	}
	rn.opts.Lock.RecordBatch(lockfile.TargetKey(d.lang, d.ns), generated)
}

// resynthesize rewrites the leaves the lock file marks as generated and
// unedited, primary language first.
func (rn *run) resynthesize() {
	if rn.opts.Lock == nil {
		return
	}
	for _, d := range rn.orderedDests() {
		if d.failed {
			continue
		}
		keys := rn.opts.Lock.Synthesized(lockfile.TargetKey(d.lang, d.ns), entryMap(d.tree))
		if len(keys) == 0 {
			continue
		}
		res := merge.Fill(d.tree, keys, rn.valueFunc(d))
		rn.apply(d, res)
		rn.sum.Resynthesized[d.lang] += len(res.Updated)
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

func (rn *run) write() {
	for _, d := range rn.orderedDests() {
		if d.failed {
			continue
		}
		if rn.opts.Lock != nil {
			rn.opts.Lock.Clean(lockfile.TargetKey(d.lang, d.ns), entryMap(d.tree))
		}
		if !d.dirty {
			rn.sum.Unchanged = append(rn.sum.Unchanged, d.path)
			continue
		}
		if rn.opts.DryRun {
			rn.sum.Written = append(rn.sum.Written, d.path)
			continue
		}

		changed, err := rn.opts.Store.Write(d.tree, d.path)
		switch {
		case err != nil:
			rn.log.Error("writing locale file failed",
				zap.String("lang", d.lang), zap.String("namespace", d.ns), zap.String("path", d.path), zap.Error(err))
			rn.sum.Failed = append(rn.sum.Failed, Failure{Lang: d.lang, Namespace: d.ns, Path: d.path, Err: err})
		case changed:
			rn.log.Debug("wrote locale file", zap.String("path", d.path))
			rn.sum.Written = append(rn.sum.Written, d.path)
		default:
			rn.sum.Unchanged = append(rn.sum.Unchanged, d.path)
		}
	}

	if rn.opts.Lock == nil || rn.opts.DryRun {
		return
	}
	rn.pruneLock()
	if _, err := rn.opts.Lock.Save(); err != nil {
		rn.log.Error("saving lock file failed", zap.String("path", rn.opts.Lock.Path()), zap.Error(err))
		rn.sum.Failed = append(rn.sum.Failed, Failure{Path: rn.opts.Lock.Path(), Err: err})
	}
}

// pruneLock drops the lock entries of locale files that no longer exist.
func (rn *run) pruneLock() {
	fs := rn.opts.Store.Fs
	if fs == nil {
		return
	}
	for _, target := range rn.opts.Lock.Targets() {
		path := filepath.Join(rn.opts.LocalesDir, filepath.FromSlash(target))
		if ok, err := afero.Exists(fs, path); err != nil || ok {
			continue
		}
		rn.log.Info("dropping lock entries of missing locale file", zap.String("target", target))
		rn.opts.Lock.RemoveTarget(target)
	}
}

// orderedDests returns the cached destinations by namespace, then in
// language order.
func (rn *run) orderedDests() []*dest {
	rank := make(map[string]int, len(rn.opts.Langs))
	for i, l := range rn.opts.Langs {
		rank[l] = i
	}
	out := make([]*dest, 0, len(rn.dests))
	for _, d := range rn.dests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ns != out[j].ns {
			return out[i].ns < out[j].ns
		}
		return rank[out[i].lang] < rank[out[j].lang]
	})
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func entryMap(t *i18next.Tree) map[string]string {
	entries := t.Entries()
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

func sortedNamespaces(m map[namespace.Namespace][]string) []string {
	out := make([]string, 0, len(m))
	for ns := range m {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
