package pipeline

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minios-linux/keycov/extract"
	"github.com/minios-linux/keycov/i18next"
	"github.com/minios-linux/keycov/lockfile"
	"github.com/minios-linux/keycov/namespace"
	"github.com/minios-linux/keycov/synth"
)

const (
	localesDir = "/site/public/locales"
	lockPath   = "/site/keycov.lock"
)

type fixture struct {
	fs   afero.Fs
	logs *observer.ObservedLogs
	opts Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	core, logs := observer.New(zapcore.DebugLevel)
	table, err := namespace.NewTable(map[string]namespace.Namespace{
		"src/calculators/finance/": "calc/finance",
	})
	require.NoError(t, err)

	return &fixture{
		fs:   fs,
		logs: logs,
		opts: Options{
			Logger:     zap.New(core),
			Store:      i18next.NewStore(fs),
			LocalesDir: localesDir,
			Langs:      []string{"en", "ar"},
			Table:      table,
			Synth:      synth.New("en"),
			Lock:       lockfile.New(fs, lockPath),
		},
	}
}

func (f *fixture) runner(t *testing.T) *Runner {
	t.Helper()
	r, err := New(f.opts)
	require.NoError(t, err)
	return r
}

func (f *fixture) write(t *testing.T, lang, ns, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, i18next.FilePath(localesDir, lang, ns), []byte(content), 0644))
}

func (f *fixture) read(t *testing.T, lang, ns string) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, i18next.FilePath(localesDir, lang, ns))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) tree(t *testing.T, lang, ns string) *i18next.Tree {
	t.Helper()
	tree, err := i18next.Parse([]byte(f.read(t, lang, ns)))
	require.NoError(t, err)
	return tree
}

func get(t *testing.T, tree *i18next.Tree, key string) string {
	t.Helper()
	v, ok := tree.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

var bmiUnit = Unit{
	Path: "src/calculators/health/Bmi.tsx",
	Text: `const { t } = useTranslation("calc/health");
return <h1>{t("bmi.title")}</h1><p>{t('bmi.resultLabel')}</p>;`,
}

func TestSyncFillsPrimaryThenSecondary(t *testing.T) {
	f := newFixture(t)
	f.write(t, "en", "calc/health", `{"bmi": {"title": "BMI Calculator"}}`)

	sum := f.runner(t).Sync([]Unit{bmiUnit})
	require.NoError(t, sum.Err())

	en := f.tree(t, "en", "calc/health")
	assert.Equal(t, "BMI Calculator", get(t, en, "bmi.title"))
	assert.Equal(t, "Result Label", get(t, en, "bmi.resultLabel"))

	g := synth.New("en").Glossary
	ar := f.tree(t, "ar", "calc/health")
	assert.Equal(t, g.Translate("BMI Calculator"), get(t, ar, "bmi.title"))
	assert.Equal(t, g.Translate("Result Label"), get(t, ar, "bmi.resultLabel"))

	assert.Equal(t, map[string]int{"en": 1, "ar": 2}, sum.Added)
	assert.Equal(t, 1, sum.Units)
	assert.Len(t, sum.Written, 2)
	assert.Empty(t, sum.SkippedKeys)

	require.Len(t, sum.Reports, 2)
	assert.Equal(t, "en", sum.Reports[0].Lang)
	assert.Equal(t, []string{"bmi.resultLabel"}, sum.Reports[0].Missing)
	assert.Equal(t, "ar", sum.Reports[1].Lang)
	assert.Equal(t, []string{"bmi.resultLabel", "bmi.title"}, sum.Reports[1].Missing)
	assert.Equal(t, 3, sum.Missing())

	lock, err := lockfile.Load(f.fs, lockPath)
	require.NoError(t, err)
	assert.False(t, lock.IsSynthesized(lockfile.TargetKey("en", "calc/health"), "bmi.title", "BMI Calculator"),
		"existing entries are not generated")
	assert.True(t, lock.IsSynthesized(lockfile.TargetKey("en", "calc/health"), "bmi.resultLabel", "Result Label"))
	_, keys := lock.Stats()
	assert.Equal(t, 3, keys)
}

func TestSyncDoesNotFeedRawPrimaryValues(t *testing.T) {
	f := newFixture(t)
	f.write(t, "en", "calc/health", `{"n": 3, "totals": ["Total"], "label": "Total"}`)
	unit := Unit{
		Path: "src/calculators/health/Stats.tsx",
		Text: `useTranslation("calc/health"); t("n"); t("totals"); t("label");`,
	}

	sum := f.runner(t).Sync([]Unit{unit})
	require.NoError(t, sum.Err())

	ar := f.tree(t, "ar", "calc/health")
	assert.Equal(t, "N", get(t, ar, "n"))
	assert.Equal(t, "Totals", get(t, ar, "totals"))
	assert.Equal(t, synth.New("en").Glossary.Translate("Total"), get(t, ar, "label"))
	assert.Equal(t, map[string]int{"ar": 3}, sum.Added)

	en := f.tree(t, "en", "calc/health")
	assert.Equal(t, "3", get(t, en, "n"))
	_, ok := en.GetString("n")
	assert.False(t, ok, "primary number must stay a raw leaf")
}

func TestSyncDropsLockEntriesOfDeletedFiles(t *testing.T) {
	f := newFixture(t)
	f.opts.Lock.RecordBatch(lockfile.TargetKey("ar", "calc/retired"), map[string]string{"old.title": "Old"})

	sum := f.runner(t).Sync([]Unit{bmiUnit})
	require.NoError(t, sum.Err())

	lock, err := lockfile.Load(f.fs, lockPath)
	require.NoError(t, err)
	assert.Equal(t, []string{
		lockfile.TargetKey("ar", "calc/health"),
		lockfile.TargetKey("en", "calc/health"),
	}, lock.Targets())

	dropped := f.logs.FilterMessage("dropping lock entries of missing locale file").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, "ar/calc/retired.json", dropped[0].ContextMap()["target"])
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	units := []Unit{
		bmiUnit,
		{Path: "src/calculators/finance/Zakat.tsx", Text: `t("zakat.nisabThreshold"); t("common:actions.reset")`},
	}

	first := f.runner(t).Sync(units)
	require.NoError(t, first.Err())
	require.NotEmpty(t, first.Written)

	snapshot := map[string]string{}
	for _, p := range first.Written {
		data, err := afero.ReadFile(f.fs, p)
		require.NoError(t, err)
		snapshot[p] = string(data)
	}
	lockBefore, err := afero.ReadFile(f.fs, lockPath)
	require.NoError(t, err)

	lock, err := lockfile.Load(f.fs, lockPath)
	require.NoError(t, err)
	f.opts.Lock = lock
	second := f.runner(t).Sync(units)
	require.NoError(t, second.Err())

	assert.Zero(t, second.TotalAdded())
	assert.Empty(t, second.Written)
	assert.Len(t, second.Unchanged, len(first.Written))
	assert.Zero(t, second.Missing())
	for p, want := range snapshot {
		data, err := afero.ReadFile(f.fs, p)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), p)
	}
	lockAfter, err := afero.ReadFile(f.fs, lockPath)
	require.NoError(t, err)
	assert.Equal(t, string(lockBefore), string(lockAfter))
}

func TestSyncRoutesQualifiedAndPrefixedKeys(t *testing.T) {
	f := newFixture(t)
	unit := Unit{
		Path: "src/calculators/finance/Zakat.tsx",
		Text: `t("zakat.title"); t("common:actions.reset")`,
	}

	sum := f.runner(t).Sync([]Unit{unit})
	require.NoError(t, sum.Err())

	assert.Equal(t, "Title", get(t, f.tree(t, "en", "calc/finance"), "zakat.title"))
	assert.Equal(t, "Reset", get(t, f.tree(t, "en", "common"), "actions.reset"))
	ok, err := afero.Exists(f.fs, i18next.FilePath(localesDir, "ar", "common"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSyncSkipsWithReasons(t *testing.T) {
	f := newFixture(t)
	f.opts.IgnoreKeys = []string{"debug.*"}
	units := []Unit{
		{Path: "src/widgets/Orphan.tsx", Text: `t("orphan.title")`},
		{Path: "src/calculators/finance/Loan.tsx", Text: "t(\"loan.errors.\"); t(\"loan.rate\"); t(\"debug.dump\")"},
		{Path: "src/calculators/finance/Broken.tsx", Err: errors.New("permission denied")},
	}

	sum := f.runner(t).Sync(units)
	require.NoError(t, sum.Err())

	require.Len(t, sum.SkippedUnits, 2)
	assert.Equal(t, "src/calculators/finance/Broken.tsx", sum.SkippedUnits[0].Unit)
	assert.Equal(t, "src/widgets/Orphan.tsx", sum.SkippedUnits[1].Unit)
	assert.True(t, errors.Is(sum.SkippedUnits[1].Err, ErrUnresolvedNamespace))

	assert.Equal(t, map[string]int{
		ReasonUnresolved: 1,
		ReasonMalformed:  1,
		ReasonIgnored:    1,
	}, sum.SkipReasons())
	for _, k := range sum.SkippedKeys {
		if k.Reason == ReasonMalformed {
			assert.Equal(t, "loan.errors.", k.Key)
			assert.True(t, errors.Is(k.Err, ErrMalformedKey))
		}
	}

	tree := f.tree(t, "en", "calc/finance")
	assert.Equal(t, []string{"loan.rate"}, tree.Flatten())

	assert.Equal(t, 1, f.logs.FilterMessage("malformed key").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("unresolved namespace").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("skipping unit").Len())
}

func TestSyncNeverOverwritesExistingStructure(t *testing.T) {
	f := newFixture(t)
	f.write(t, "en", "calc/health", `{"bmi": "Body mass index"}`)
	unit := Unit{
		Path: "src/calculators/health/Bmi.tsx",
		Text: `useTranslation("calc/health"); t("bmi.title"); t("tdee"); t("tdee.result")`,
	}

	sum := f.runner(t).Sync([]Unit{unit})
	require.NoError(t, sum.Err())

	en := f.tree(t, "en", "calc/health")
	assert.Equal(t, "Body mass index", get(t, en, "bmi"))
	assert.Equal(t, "TDEE", get(t, en, "tdee"))
	assert.False(t, en.Has("tdee.result"))

	var enConflicts []Conflict
	for _, c := range sum.Conflicts {
		if c.Lang == "en" {
			enConflicts = append(enConflicts, c)
		}
	}
	require.Len(t, enConflicts, 2)
	assert.Equal(t, "bmi", enConflicts[0].Key)
	assert.Equal(t, i18next.KindLeaf, enConflicts[0].Was)
	assert.Equal(t, "tdee", enConflicts[1].Key)
	assert.True(t, errors.Is(enConflicts[0], ErrStructuralConflict))
	assert.GreaterOrEqual(t, f.logs.FilterMessage("structural conflict").Len(), 2)

	again := f.runner(t).Sync([]Unit{unit})
	assert.Zero(t, again.TotalAdded())
	assert.Empty(t, again.Written)
}

func TestSyncIOFailureOnlyFailsItsDestination(t *testing.T) {
	f := newFixture(t)
	f.write(t, "ar", "calc/health", `{"bmi": `)

	sum := f.runner(t).Sync([]Unit{bmiUnit})
	err := sum.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))

	require.Len(t, sum.Failed, 1)
	assert.Equal(t, "ar", sum.Failed[0].Lang)
	assert.Equal(t, map[string]int{"en": 2}, sum.Added)
	assert.Equal(t, 2, sum.SkipReasons()[ReasonDestination])

	assert.Equal(t, "Title", get(t, f.tree(t, "en", "calc/health"), "bmi.title"))
	assert.Equal(t, `{"bmi": `, f.read(t, "ar", "calc/health"))
	assert.Equal(t, 1, f.logs.FilterMessage("loading locale file failed").Len())
}

func TestDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.opts.DryRun = true

	sum := f.runner(t).Sync([]Unit{bmiUnit})
	require.NoError(t, sum.Err())
	assert.True(t, sum.DryRun)
	assert.Len(t, sum.Written, 2)
	assert.Equal(t, 4, sum.TotalAdded())

	for _, lang := range []string{"en", "ar"} {
		ok, err := afero.Exists(f.fs, i18next.FilePath(localesDir, lang, "calc/health"))
		require.NoError(t, err)
		assert.False(t, ok, lang)
	}
	ok, err := afero.Exists(f.fs, lockPath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReportChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.write(t, "en", "calc/health", `{"bmi": {"title": "BMI"}}`)

	sum := f.runner(t).Report([]Unit{bmiUnit})
	require.NoError(t, sum.Err())
	assert.Zero(t, sum.TotalAdded())
	assert.Empty(t, sum.Written)
	require.Len(t, sum.Reports, 2)
	assert.Equal(t, 2, sum.Reports[0].Used)
	assert.Equal(t, 1, sum.Reports[0].Defined)
	assert.Equal(t, []string{"bmi.resultLabel"}, sum.Reports[0].Missing)

	assert.Equal(t, `{"bmi": {"title": "BMI"}}`, f.read(t, "en", "calc/health"))
	ok, err := afero.Exists(f.fs, i18next.FilePath(localesDir, "ar", "calc/health"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResynthesizeRewritesOnlyGeneratedLeaves(t *testing.T) {
	f := newFixture(t)
	unit := Unit{
		Path: "src/calculators/health/Greeting.tsx",
		Text: `useTranslation("calc/health"); t("greeting.hello"); t("greeting.bye")`,
	}
	require.NoError(t, f.runner(t).Sync([]Unit{unit}).Err())
	assert.Equal(t, "Hello", get(t, f.tree(t, "ar", "calc/health"), "greeting.hello"))

	// A person translates one of the generated leaves.
	curated := f.tree(t, "ar", "calc/health")
	curated.Set("greeting.bye", "مع السلامة")
	_, err := f.opts.Store.Write(curated, i18next.FilePath(localesDir, "ar", "calc/health"))
	require.NoError(t, err)

	s := synth.New("en")
	s.Extend(nil, map[string]string{"Hello": "مرحبا", "Bye": "وداعا"})
	lock, err := lockfile.Load(f.fs, lockPath)
	require.NoError(t, err)
	f.opts.Synth = s
	f.opts.Lock = lock
	f.opts.Resynthesize = true

	sum := f.runner(t).Sync([]Unit{unit})
	require.NoError(t, sum.Err())
	assert.Equal(t, 1, sum.Resynthesized["ar"])

	ar := f.tree(t, "ar", "calc/health")
	assert.Equal(t, "مرحبا", get(t, ar, "greeting.hello"))
	assert.Equal(t, "مع السلامة", get(t, ar, "greeting.bye"))

	lock, err = lockfile.Load(f.fs, lockPath)
	require.NoError(t, err)
	target := lockfile.TargetKey("ar", "calc/health")
	assert.True(t, lock.IsSynthesized(target, "greeting.hello", "مرحبا"))
	assert.Equal(t, []string{"greeting.hello"}, lock.Synthesized(target, map[string]string{
		"greeting.hello": "مرحبا",
		"greeting.bye":   "مع السلامة",
	}))
}

func TestOrderUnits(t *testing.T) {
	order, err := compileGlobs([]string{"src/shared/**", "src/calculators/finance/**"}, '/')
	require.NoError(t, err)

	units := []Unit{
		{Path: "src/calculators/health/Bmi.tsx"},
		{Path: "src/calculators/finance/Zakat.tsx"},
		{Path: "src/App.tsx"},
		{Path: "src/shared/Header.tsx"},
		{Path: "src/calculators/finance/Loan.tsx"},
	}
	var got []string
	for _, u := range orderUnits(units, order) {
		got = append(got, u.Path)
	}
	assert.Equal(t, []string{
		"src/shared/Header.tsx",
		"src/calculators/finance/Loan.tsx",
		"src/calculators/finance/Zakat.tsx",
		"src/App.tsx",
		"src/calculators/health/Bmi.tsx",
	}, got)
}

func TestLoadUnits(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/src/b/Two.tsx", []byte(`t("two")`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/site/src/a/One.jsx", []byte(`t("one")`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/site/src/a/notes.md", []byte(`t("no")`), 0644))

	units, err := LoadUnits(fs, "/site", []string{"/site/src"}, nil)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, Unit{Path: "src/a/One.jsx", Text: `t("one")`}, units[0])
	assert.Equal(t, "src/b/Two.tsx", units[1].Path)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{LocalesDir: localesDir})
	assert.Error(t, err)
	_, err = New(Options{Langs: []string{"en"}})
	assert.Error(t, err)
	_, err = New(Options{Langs: []string{"en"}, LocalesDir: localesDir, IgnoreKeys: []string{"[x"}})
	assert.ErrorContains(t, err, "ignore_keys")

	e, err := extract.NewExtractor("t", "i18n.t")
	require.NoError(t, err)
	r, err := New(Options{Langs: []string{"en"}, LocalesDir: localesDir, Extractor: e})
	require.NoError(t, err)
	assert.NotNil(t, r.log)
}
