// Package merge applies generated values to a locale tree.
//
// Values are first collected into a patch tree which is then deep-merged
// into the destination, so the patch always wins: new keys are added,
// existing leaves named by the patch are replaced, and a leaf/subtree
// clash is resolved in favor of the patch and reported as a conflict.
// Keys the patch does not name are left alone.
package merge

import (
	"github.com/minios-linux/keycov/i18next"
)

// Result describes what a merge changed.
type Result struct {
	// Added are keys that were not defined before.
	Added []i18next.Entry
	// Updated are keys whose existing value was replaced.
	Updated []i18next.Entry
	// Conflicts are structural replacements, in the patch or in dst.
	Conflicts []i18next.Conflict
}

// Changed reports whether dst was modified.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0 || len(r.Conflicts) > 0
}

// Patch builds a tree holding value(key) for each key, in order. Keys that
// collide structurally with each other (both "a" and "a.b") are resolved
// by the later one and reported.
func Patch(keys []string, value func(key string) string) (*i18next.Tree, []i18next.Conflict) {
	patch := i18next.NewTree()
	var conflicts []i18next.Conflict
	for _, key := range keys {
		conflicts = append(conflicts, patch.Set(key, value(key))...)
	}
	return patch, conflicts
}

// Fill sets value(key) for every key in dst and reports the changes.
// Writing a key to the value it already has is not a change.
func Fill(dst *i18next.Tree, keys []string, value func(key string) string) Result {
	patch, conflicts := Patch(keys, value)

	var res Result
	for _, e := range patch.Entries() {
		old, ok := dst.Get(e.Key)
		switch {
		case !ok:
			res.Added = append(res.Added, e)
		case old != e.Value:
			res.Updated = append(res.Updated, e)
		}
	}

	res.Conflicts = append(conflicts, dst.Merge(patch)...)
	return res
}
