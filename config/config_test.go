package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDetect(t *testing.T) {
	t.Run("package.json and public/locales", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "package.json"), `{"name": "alathasiba", "version": "2.1.0"}`)
		writeFile(t, filepath.Join(dir, "public", "locales", "en", "common.json"), "{}")
		writeFile(t, filepath.Join(dir, "public", "locales", "ar", "calc", "finance.json"), "{}")
		writeFile(t, filepath.Join(dir, "public", "locales", "empty", "README"), "")
		writeFile(t, filepath.Join(dir, "public", "locales", "fr", "notes.txt"), "")
		writeFile(t, filepath.Join(dir, "src", "App.tsx"), "")

		p := Detect(dir)
		if p.Name != "alathasiba" || p.Version != "2.1.0" {
			t.Fatalf("Name/Version = %q/%q", p.Name, p.Version)
		}
		if want := filepath.Join(dir, "public", "locales"); p.LocalesDir != want {
			t.Fatalf("LocalesDir = %q, want %q", p.LocalesDir, want)
		}
		if !reflect.DeepEqual(p.Languages, []string{"ar", "en"}) {
			t.Fatalf("Languages = %v, want [ar en]", p.Languages)
		}
		if !reflect.DeepEqual(p.SourceDirs, []string{filepath.Join(dir, "src")}) {
			t.Fatalf("SourceDirs = %v", p.SourceDirs)
		}
		if p.PrimaryLang != "en" || p.SecondaryLang != "ar" || p.FromFile {
			t.Fatalf("unexpected defaults: %+v", p)
		}
		if got := p.ExistingNamespaces("ar"); !reflect.DeepEqual(got, []string{"calc/finance"}) {
			t.Fatalf("ExistingNamespaces(ar) = %v", got)
		}
	})

	t.Run("fallbacks", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "locales", "de", "translation.json"), "{}")

		p := Detect(dir)
		if p.Name != filepath.Base(dir) || p.Version != "0.0.0" {
			t.Fatalf("Name/Version = %q/%q", p.Name, p.Version)
		}
		if want := filepath.Join(dir, "locales"); p.LocalesDir != want {
			t.Fatalf("LocalesDir = %q, want %q", p.LocalesDir, want)
		}
		if !reflect.DeepEqual(p.SourceDirs, []string{filepath.Join(dir, "src")}) {
			t.Fatalf("SourceDirs = %v", p.SourceDirs)
		}
	})
}

func TestProjectPaths(t *testing.T) {
	p := &Project{
		Root:       "/work/site",
		LocalesDir: "/work/site/public/locales",
		Namespaces: []NamespaceRule{{Prefix: "a/", Namespace: "x"}, {Prefix: "b/", Namespace: "y"}},
	}
	if got, want := p.LocalePath("ar", "calc/home"), filepath.Join("/work/site/public/locales", "ar", "calc", "home.json"); got != want {
		t.Fatalf("LocalePath = %q, want %q", got, want)
	}
	if got := p.Rel("/work/site/src/App.tsx"); got != filepath.Join("src", "App.tsx") {
		t.Fatalf("Rel = %q", got)
	}
	if got := p.Rel("/elsewhere/x"); got != "/elsewhere/x" {
		t.Fatalf("Rel outside root = %q", got)
	}
	if got := p.NamespacePrefixes(); !reflect.DeepEqual(got, map[string]string{"a/": "x", "b/": "y"}) {
		t.Fatalf("NamespacePrefixes = %v", got)
	}
}

func TestLoadFileDefaultsAndValidation(t *testing.T) {
	t.Run("missing file returns nil", func(t *testing.T) {
		dir := t.TempDir()
		f, err := LoadFile(dir)
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		if f != nil {
			t.Fatalf("LoadFile expected nil, got %#v", f)
		}
	})

	t.Run("empty file gets defaults", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), "")

		f, err := LoadFile(dir)
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		if f.PrimaryLang != "en" || f.SecondaryLang != "ar" {
			t.Fatalf("langs = %q/%q", f.PrimaryLang, f.SecondaryLang)
		}
		if f.LocalesDir != DefaultLocalesDir || f.LockFile != "keycov.lock" {
			t.Fatalf("paths = %q/%q", f.LocalesDir, f.LockFile)
		}
		if !reflect.DeepEqual(f.Sources, []string{"src"}) || !reflect.DeepEqual(f.Keywords, []string{"t"}) {
			t.Fatalf("sources/keywords = %v/%v", f.Sources, f.Keywords)
		}
	})

	t.Run("full file", func(t *testing.T) {
		dir := t.TempDir()
		yaml := "primary_lang: en-us\n" +
			"secondary_lang: ar\n" +
			"locales_dir: web/locales\n" +
			"sources: [src, lib]\n" +
			"keywords: [t, i18n.t]\n" +
			"namespaces:\n" +
			"  - prefix: src/calculators/finance/\n" +
			"    namespace: calc/finance\n" +
			"  - prefix: bmi.\n" +
			"    namespace: calc/health\n" +
			"ignore_keys: [\"common.*\"]\n" +
			"glossary:\n" +
			"  Zakat: الزكاة\n" +
			"glossary_file: i18n/glossary.yaml\n"
		writeFile(t, filepath.Join(dir, FileName), yaml)

		p, err := Load(dir)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if !p.FromFile {
			t.Fatal("FromFile = false")
		}
		if p.PrimaryLang != "en-US" {
			t.Fatalf("PrimaryLang = %q, want en-US", p.PrimaryLang)
		}
		if want := filepath.Join(dir, "web", "locales"); p.LocalesDir != want {
			t.Fatalf("LocalesDir = %q, want %q", p.LocalesDir, want)
		}
		if want := []string{filepath.Join(dir, "src"), filepath.Join(dir, "lib")}; !reflect.DeepEqual(p.SourceDirs, want) {
			t.Fatalf("SourceDirs = %v, want %v", p.SourceDirs, want)
		}
		if len(p.Namespaces) != 2 || p.Namespaces[1].Namespace != "calc/health" {
			t.Fatalf("Namespaces = %+v", p.Namespaces)
		}
		if p.GlossaryFile != filepath.Join(dir, "i18n", "glossary.yaml") {
			t.Fatalf("GlossaryFile = %q", p.GlossaryFile)
		}
		if p.LockFile != filepath.Join(dir, "keycov.lock") {
			t.Fatalf("LockFile = %q", p.LockFile)
		}
		if p.Glossary["Zakat"] != "الزكاة" {
			t.Fatalf("Glossary = %v", p.Glossary)
		}
	})

	invalid := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "targets: []\n", "not found"},
		{"bad language", "primary_lang: \"not a tag\"\n", "primary_lang"},
		{"same languages", "primary_lang: ar\n", "both"},
		{"bad keyword", "keywords: [\"t(\"]\n", "keywords"},
		{"bad glob", "ignore_keys: [\"[x\"]\n", "ignore_keys"},
		{"empty prefix", "namespaces:\n  - prefix: \"\"\n    namespace: x\n", "prefix is empty"},
		{"duplicate prefix", "namespaces:\n  - {prefix: a, namespace: x}\n  - {prefix: a, namespace: y}\n", "maps to both"},
		{"ambiguous prefix", "namespaces:\n  - {prefix: cat, namespace: x}\n  - {prefix: category, namespace: y}\n", "ambiguous"},
		{"bad namespace", "namespaces:\n  - {prefix: a, namespace: ../x}\n", "invalid namespace"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, FileName), tc.yaml)
			_, err := LoadFile(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestIsLangCode(t *testing.T) {
	for _, s := range []string{"en", "ar", "pt-BR", "zh-Hant", "ar-EG"} {
		if !isLangCode(s) {
			t.Fatalf("isLangCode(%q) = false", s)
		}
	}
	for _, s := range []string{"", "calc", "pt_BR", "empty", "en.json"} {
		if isLangCode(s) {
			t.Fatalf("isLangCode(%q) = true", s)
		}
	}
}
