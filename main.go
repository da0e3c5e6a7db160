// keycov reports translation key coverage for i18next projects. It finds the keys
// the UI code uses that the locale files lack, and fills them with
// placeholder text.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/minios-linux/keycov/config"
	"github.com/minios-linux/keycov/coverage"
	"github.com/minios-linux/keycov/extract"
	"github.com/minios-linux/keycov/i18n"
	"github.com/minios-linux/keycov/i18next"
	"github.com/minios-linux/keycov/langmeta"
	"github.com/minios-linux/keycov/lockfile"
	"github.com/minios-linux/keycov/namespace"
	"github.com/minios-linux/keycov/pipeline"
	"github.com/minios-linux/keycov/synth"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	infoTag    = color.New(color.FgBlue).Sprint("[INFO]")
	successTag = color.New(color.FgGreen).Sprint("[OK]")
	warningTag = color.New(color.FgYellow, color.Bold).Sprint("[WARN]")
	errorTag   = color.New(color.FgRed).Sprint("[ERROR]")
	heading    = color.New(color.FgBlue).SprintFunc()
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, infoTag+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, successTag+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, warningTag+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorTag+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir   string
	secondary string
	uiLang    string
	verbose   bool
)

// newLogger builds the diagnostics logger: console output on stderr with
// colored levels, warnings and up unless --verbose.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keycov",
		Short: "Translation key coverage for i18next projects",
		Long: `keycov: translation key coverage for i18next projects.

Scans UI source code for literal t("key") calls, compares the keys with the
nested JSON locale files (<locales>/<lang>/<namespace>.json) and fills the
missing ones with placeholder text: derived from the key for the primary
language, and glossary-substituted from the primary text for the secondary
language. Existing entries are never overwritten.

Settings come from .keycov.yaml in the project root, or are auto-detected
from package.json and the locales directory.

Commands:
  status      Show project info and per-language coverage
  report      List missing keys per namespace and language
  sync        Fill missing keys and write the locale files
  audit       List secondary-language entries that are still untranslated`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if uiLang != "" {
				i18n.Init(uiLang)
			}
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&secondary, "lang", "", "Secondary language (overrides secondary_lang)")
	root.PersistentFlags().StringVar(&uiLang, "ui-lang", "", "Language of keycov's own messages (default $"+i18n.EnvVar+" or the locale)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics")

	root.AddCommand(
		newStatusCmd(),
		newReportCmd(),
		newSyncCmd(),
		newAuditCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("keycov version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Project setup
// ---------------------------------------------------------------------------

// loadProject reads the settings and applies the --lang override.
func loadProject() (*config.Project, error) {
	proj, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if secondary != "" {
		f := config.File{PrimaryLang: proj.PrimaryLang, SecondaryLang: secondary}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("--lang: %w", err)
		}
		proj.SecondaryLang = f.SecondaryLang
	}
	return proj, nil
}

// runFlags are the options of commands that run the pipeline.
type runFlags struct {
	dryRun       bool
	resynthesize bool
}

// addRunFlags registers the pipeline flags on fs.
func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	fs.BoolVar(&f.dryRun, "dry-run", false, "Show what would change without writing files")
	fs.BoolVar(&f.resynthesize, "resynthesize", false, "Regenerate generated entries nobody has edited")
}

// newSynthesizer builds the synthesizer with the project's glossary
// additions. The glossary file is applied before the inline settings.
func newSynthesizer(proj *config.Project) (*synth.Synthesizer, error) {
	s := synth.New(proj.PrimaryLang)
	if proj.GlossaryFile != "" {
		f, err := synth.LoadFile(proj.GlossaryFile)
		if err != nil {
			return nil, err
		}
		s.Extend(f.Acronyms, f.Glossary)
	}
	s.Extend(proj.Acronyms, proj.Glossary)
	return s, nil
}

// prepare builds a runner for proj and loads its source units.
func prepare(proj *config.Project, f runFlags, log *zap.Logger) (*pipeline.Runner, []pipeline.Unit, error) {
	table, err := namespace.NewTable(proj.NamespacePrefixes())
	if err != nil {
		return nil, nil, fmt.Errorf("namespaces: %w", err)
	}
	extractor, err := extract.NewExtractor(proj.Keywords...)
	if err != nil {
		return nil, nil, fmt.Errorf("keywords: %w", err)
	}
	filter, err := extract.NewFilter(proj.Include, proj.Exclude)
	if err != nil {
		return nil, nil, err
	}
	s, err := newSynthesizer(proj)
	if err != nil {
		return nil, nil, err
	}
	lock, err := lockfile.Load(nil, proj.LockFile)
	if err != nil {
		return nil, nil, err
	}

	runner, err := pipeline.New(pipeline.Options{
		Logger:       log,
		Store:        i18next.NewStore(nil),
		LocalesDir:   proj.LocalesDir,
		Langs:        proj.Langs(),
		Table:        table,
		Extractor:    extractor,
		Synth:        s,
		Lock:         lock,
		IgnoreKeys:   proj.IgnoreKeys,
		Order:        proj.Order,
		DryRun:       f.dryRun,
		Resynthesize: f.resynthesize,
	})
	if err != nil {
		return nil, nil, err
	}

	units, err := pipeline.LoadUnits(nil, proj.Root, proj.SourceDirs, filter)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("found source units", zap.Int("units", len(units)), zap.String("files", describeUnits(units)))
	return runner, units, nil
}

func describeUnits(units []pipeline.Unit) string {
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	return extract.DescribeFiles(paths)
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project info and per-language coverage",
		Long: `Show the project settings and how many of the keys used in the source
code each managed language defines. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	log := newLogger(verbose)
	defer log.Sync() //nolint:errcheck

	printProject(proj)

	runner, units, err := prepare(proj, runFlags{}, log)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		logInfo(i18n.T("No source files found in %s"), strings.Join(proj.SourceDirs, ", "))
		return nil
	}
	sum := runner.Report(units)
	printCoverageTable(proj, sum)
	return sum.Err()
}

func printProject(proj *config.Project) {
	fmt.Fprintf(os.Stderr, "\n%s\n", heading(i18n.T("Project")))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	source := i18n.T("auto-detected")
	if proj.FromFile {
		source = config.FileName
	}
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Name:"), proj.Name)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Version:"), proj.Version)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Root:"), proj.Root)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Settings:"), source)
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Locales:"), proj.Rel(proj.LocalesDir))

	sources := make([]string, len(proj.SourceDirs))
	for i, d := range proj.SourceDirs {
		sources[i] = proj.Rel(d)
	}
	fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Sources:"), strings.Join(sources, ", "))
	fmt.Fprintf(os.Stderr, "  %-12s %s → %s\n", i18n.T("Languages:"), langLabel(proj.PrimaryLang), langLabel(proj.SecondaryLang))
	if len(proj.Languages) > 0 {
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Detected:"), strings.Join(proj.Languages, ", "))
	}
	fmt.Fprintf(os.Stderr, "  %-12s %d\n", i18n.T("Prefixes:"), len(proj.Namespaces))

	if lock, err := lockfile.Load(nil, proj.LockFile); err == nil {
		_, keys := lock.Stats()
		fmt.Fprintf(os.Stderr, "  %-12s %s\n", i18n.T("Generated:"),
			fmt.Sprintf(i18n.N("%d entry", "%d entries", keys), keys))
		if verbose && keys > 0 {
			fmt.Fprintf(os.Stderr, "  %-12s %s\n", "", lock.Summary())
		}
	}
	fmt.Fprintln(os.Stderr)
}

func printCoverageTable(proj *config.Project, sum *pipeline.Summary) {
	totals := coverage.Totals(sum.Reports)
	width := langColumnWidth(proj.Langs())

	fmt.Fprintf(os.Stderr, "%s\n", heading(i18n.T("Key Coverage")))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "%-*s %-8s %-8s %s\n", width+3, i18n.T("Lang"), i18n.T("Used"), i18n.T("Missing"), i18n.T("Coverage"))

	for _, lang := range proj.Langs() {
		t, ok := totals[lang]
		if !ok {
			fmt.Fprintf(os.Stderr, "%s %-8s %-8s %s\n", langCell(lang, width), "-", "-", i18n.T("error"))
			continue
		}
		fmt.Fprintf(os.Stderr, "%s %-8d %-8d %s\n", langCell(lang, width), t.Used, len(t.Missing), progressBar(int(t.Percent()), 20))
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, i18n.N("%d source file", "%d source files", sum.Units)+", ", sum.Units)
	fmt.Fprintf(os.Stderr, i18n.N("%d namespace", "%d namespaces", namespaceCount(sum.Reports))+"\n", namespaceCount(sum.Reports))
	printSkipped(sum)
	fmt.Fprintln(os.Stderr)

	if sum.Missing() > 0 {
		logInfo(i18n.T("Run 'keycov report' for the missing keys or 'keycov sync' to fill them."))
	}
}

// progressBar renders percent as a colored bar followed by the number.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	c := color.New(color.FgRed)
	switch {
	case percent == 100:
		c = color.New(color.FgGreen)
	case percent >= 50:
		c = color.New(color.FgYellow)
	}
	return fmt.Sprintf("%s %3d%%", c.Sprint(bar), percent)
}

func langLabel(lang string) string {
	meta := langmeta.Resolve(lang)
	if meta.Name == lang {
		return lang
	}
	return fmt.Sprintf("%s (%s)", lang, meta.Name)
}

func langColumnWidth(langs []string) int {
	width := 4
	for _, l := range langs {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

// langCell renders a language code padded to width, prefixed with its flag.
func langCell(lang string, width int) string {
	flag := langmeta.Resolve(lang).Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}

func namespaceCount(reports []coverage.Report) int {
	seen := make(map[string]bool)
	for _, r := range reports {
		seen[r.Namespace] = true
	}
	return len(seen)
}

func printSkipped(sum *pipeline.Summary) {
	if len(sum.SkippedUnits) > 0 {
		fmt.Fprintf(os.Stderr, "\n%s\n", heading(i18n.T("Skipped files")))
		for _, u := range sum.SkippedUnits {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", u.Unit, u.Reason())
		}
	}

	reasons := sum.SkipReasons()
	if len(reasons) == 0 {
		return
	}
	names := make([]string, 0, len(reasons))
	for r := range reasons {
		names = append(names, r)
	}
	sort.Strings(names)
	fmt.Fprintf(os.Stderr, "\n%s\n", heading(i18n.T("Skipped keys")))
	for _, r := range names {
		fmt.Fprintf(os.Stderr, "  %-22s %d\n", r, reasons[r])
	}
	for _, k := range sum.SkippedKeys {
		if k.Reason == pipeline.ReasonMalformed {
			fmt.Fprintf(os.Stderr, "  %s %q (%s)\n", i18n.T("malformed:"), k.Key, k.Unit)
		}
	}
}

// ---------------------------------------------------------------------------
// report
// ---------------------------------------------------------------------------

func newReportCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "List missing keys per namespace and language",
		Long: `List the keys used in the source code that a locale file does not
define, per namespace and language. Also lists source files whose namespace
could not be determined and literal keys that are malformed.

With --json the report is printed to stdout as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

// jsonReport is the --json output of report.
type jsonReport struct {
	Project      string                `json:"project"`
	Languages    []string              `json:"languages"`
	Units        int                   `json:"units"`
	Reports      []coverage.Report     `json:"reports"`
	SkippedUnits []jsonSkippedUnit     `json:"skipped_units"`
	SkippedKeys  []pipeline.SkippedKey `json:"skipped_keys"`
	Failed       []string              `json:"failed,omitempty"`
}

type jsonSkippedUnit struct {
	Unit   string `json:"unit"`
	Reason string `json:"reason"`
}

func newJSONReport(proj *config.Project, sum *pipeline.Summary) jsonReport {
	out := jsonReport{
		Project:      proj.Name,
		Languages:    proj.Langs(),
		Units:        sum.Units,
		Reports:      sum.Reports,
		SkippedUnits: []jsonSkippedUnit{},
		SkippedKeys:  sum.SkippedKeys,
	}
	if out.Reports == nil {
		out.Reports = []coverage.Report{}
	}
	if out.SkippedKeys == nil {
		out.SkippedKeys = []pipeline.SkippedKey{}
	}
	for _, u := range sum.SkippedUnits {
		out.SkippedUnits = append(out.SkippedUnits, jsonSkippedUnit{Unit: u.Unit, Reason: u.Reason()})
	}
	for _, f := range sum.Failed {
		out.Failed = append(out.Failed, f.Error())
	}
	return out
}

func runReport(asJSON bool) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	log := newLogger(verbose)
	defer log.Sync() //nolint:errcheck

	runner, units, err := prepare(proj, runFlags{}, log)
	if err != nil {
		return err
	}
	sum := runner.Report(units)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(newJSONReport(proj, sum)); err != nil {
			return err
		}
		return sum.Err()
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", heading(i18n.T("Missing Keys")))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	if len(sum.Reports) == 0 {
		logInfo(i18n.T("No translation keys found in %s"), strings.Join(proj.SourceDirs, ", "))
	}
	for _, r := range sum.Reports {
		status := color.GreenString("✓")
		if !r.Complete() {
			status = color.YellowString("%d", len(r.Missing))
		}
		fmt.Fprintf(os.Stderr, "%-28s %-6s %s / %d\n", r.Namespace, r.Lang, status, r.Used)
		for _, k := range r.Missing {
			fmt.Fprintf(os.Stderr, "    %s\n", k)
		}
	}
	printSkipped(sum)
	fmt.Fprintln(os.Stderr)
	return sum.Err()
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fill missing keys and write the locale files",
		Long: `Fill every key the source code uses but a locale file lacks.

Primary-language text is derived from the key ("bmi.resultLabel" becomes
"Result Label"); secondary-language text is the primary text rewritten with
the glossary. Existing entries are never replaced, and a key that would
overwrite an existing entry or subtree is skipped and reported.

Generated entries are recorded in the lock file. With --resynthesize the
generated entries that nobody has edited since are regenerated, e.g. after
a glossary update.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(f)
		},
	}
	addRunFlags(cmd.Flags(), &f)
	return cmd
}

func runSync(f runFlags) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	log := newLogger(verbose)
	defer log.Sync() //nolint:errcheck

	runner, units, err := prepare(proj, f, log)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		logWarning(i18n.T("No source files found in %s"), strings.Join(proj.SourceDirs, ", "))
		return nil
	}

	sum := runner.Sync(units)
	printSyncSummary(proj, sum)

	if err := sum.Err(); err != nil {
		return fmt.Errorf("%s: %w", i18n.T("some locale files failed"), err)
	}
	return nil
}

func printSyncSummary(proj *config.Project, sum *pipeline.Summary) {
	if sum.DryRun {
		logInfo(i18n.T("Dry run: no files were written"))
	}
	for _, lang := range proj.Langs() {
		added := sum.Added[lang]
		msg := fmt.Sprintf(i18n.N("%d key added", "%d keys added", added), added)
		if n := sum.Resynthesized[lang]; n > 0 {
			msg += ", " + fmt.Sprintf(i18n.N("%d regenerated", "%d regenerated", n), n)
		}
		logInfo("%s: %s", langLabel(lang), msg)
	}

	verb := i18n.T("Wrote")
	if sum.DryRun {
		verb = i18n.T("Would write")
	}
	for _, p := range sum.Written {
		logSuccess("%s %s", verb, proj.Rel(p))
	}
	if len(sum.Written) == 0 && len(sum.Failed) == 0 {
		logSuccess(i18n.T("All locale files are up to date"))
	}
	for _, c := range sum.Conflicts {
		logWarning("%s/%s: %v", c.Lang, c.Namespace, c.Conflict)
	}
	for _, fl := range sum.Failed {
		logError("%v", fl)
	}
	printSkipped(sum)
}

// ---------------------------------------------------------------------------
// audit
// ---------------------------------------------------------------------------

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List secondary-language entries that are still untranslated",
		Long: `List the entries of the secondary language's locale files that contain
Latin letters but none of the language's own script, e.g. English text left
in the Arabic files. Only reports; nothing is changed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit()
		},
	}
}

func runAudit() error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	lang := proj.SecondaryLang
	if coverage.Scripts(lang) == nil {
		return fmt.Errorf("%s: %s", lang, i18n.T("audit needs a language not written in Latin script"))
	}

	store := i18next.NewStore(nil)
	lock, err := lockfile.Load(nil, proj.LockFile)
	if err != nil {
		logWarning("%v", err)
		lock = nil
	}
	var failed []error
	total, generated := 0, 0
	for _, ns := range proj.ExistingNamespaces(lang) {
		path := proj.LocalePath(lang, ns)
		tree, err := store.Load(path)
		if err != nil {
			logError("%v", err)
			failed = append(failed, err)
			continue
		}
		entries := coverage.Untranslated(tree, lang)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(os.Stderr, "\n%s (%d)\n", heading(ns), len(entries))
		target := lockfile.TargetKey(lang, ns)
		for _, e := range entries {
			mark := ""
			if lock != nil && lock.IsSynthesized(target, e.Key, e.Value) {
				mark = " " + color.New(color.FgHiBlack).Sprint(i18n.T("(generated)"))
				generated++
			}
			fmt.Fprintf(os.Stderr, "  %-40s %s%s\n", e.Key, e.Value, mark)
		}
		total += len(entries)
	}

	fmt.Fprintln(os.Stderr)
	if total == 0 {
		logSuccess(i18n.T("No untranslated entries in %s"), langLabel(lang))
	} else {
		logWarning(i18n.N("%d untranslated entry in %s", "%d untranslated entries in %s", total), total, langLabel(lang))
		if generated > 0 {
			logInfo(i18n.N("%d of them is a generated placeholder", "%d of them are generated placeholders", generated), generated)
		}
	}
	return errors.Join(failed...)
}
