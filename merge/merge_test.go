package merge

import (
	"strings"
	"testing"

	"github.com/minios-linux/keycov/i18next"
)

func mustParse(t *testing.T, s string) *i18next.Tree {
	t.Helper()
	tree, err := i18next.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return tree
}

func upper(key string) string { return strings.ToUpper(key) }

func TestFillAddsMissingKeepsCurated(t *testing.T) {
	dst := mustParse(t, `{"calc": {"title": "Curated title"}}`)

	res := Fill(dst, []string{"calc.result", "calc.errors.invalid"}, upper)

	if len(res.Added) != 2 || len(res.Updated) != 0 || len(res.Conflicts) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !res.Changed() {
		t.Fatal("Changed() = false, want true")
	}
	if got, _ := dst.Get("calc.title"); got != "Curated title" {
		t.Fatalf("curated value changed to %q", got)
	}
	if got, _ := dst.Get("calc.errors.invalid"); got != "CALC.ERRORS.INVALID" {
		t.Fatalf("calc.errors.invalid = %q", got)
	}

	out, err := dst.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{
  "calc": {
    "title": "Curated title",
    "result": "CALC.RESULT",
    "errors": {
      "invalid": "CALC.ERRORS.INVALID"
    }
  }
}
`
	if string(out) != want {
		t.Fatalf("merged tree =\n%s\nwant:\n%s", out, want)
	}
}

func TestFillUpdatesNamedKeys(t *testing.T) {
	dst := mustParse(t, `{"a": "old", "b": "same"}`)
	res := Fill(dst, []string{"a", "b"}, func(key string) string {
		if key == "a" {
			return "new"
		}
		return "same"
	})

	if len(res.Updated) != 1 || res.Updated[0] != (i18next.Entry{Key: "a", Value: "new"}) {
		t.Fatalf("Updated = %+v", res.Updated)
	}
	if len(res.Added) != 0 {
		t.Fatalf("Added = %+v", res.Added)
	}
}

func TestFillNothingIsNoChange(t *testing.T) {
	dst := mustParse(t, `{"a": "x"}`)
	before, _ := dst.Marshal()

	res := Fill(dst, nil, upper)
	if res.Changed() {
		t.Fatalf("Changed() = true for empty key list: %+v", res)
	}
	after, _ := dst.Marshal()
	if string(before) != string(after) {
		t.Fatalf("tree changed:\n%s", after)
	}
}

func TestFillReportsConflicts(t *testing.T) {
	dst := mustParse(t, `{"calc": {"errors": {"invalid": "Bad"}}, "units": "kg"}`)

	res := Fill(dst, []string{"calc.errors", "units.kg"}, upper)

	want := []i18next.Conflict{
		{Key: "calc.errors", Was: i18next.KindTree, Now: i18next.KindLeaf},
		{Key: "units", Was: i18next.KindLeaf, Now: i18next.KindTree},
	}
	if len(res.Conflicts) != len(want) {
		t.Fatalf("Conflicts = %+v, want %+v", res.Conflicts, want)
	}
	for i := range want {
		if res.Conflicts[i] != want[i] {
			t.Fatalf("Conflicts[%d] = %+v, want %+v", i, res.Conflicts[i], want[i])
		}
	}
	if _, ok := dst.Get("calc.errors.invalid"); ok {
		t.Fatal("subtree should have been replaced by the leaf")
	}
}

func TestPatchSelfConflict(t *testing.T) {
	patch, conflicts := Patch([]string{"a", "a.b"}, upper)
	if len(conflicts) != 1 || conflicts[0].Key != "a" {
		t.Fatalf("conflicts = %+v", conflicts)
	}
	if got, ok := patch.Get("a.b"); !ok || got != "A.B" {
		t.Fatalf("a.b = %q, %v", got, ok)
	}
}
