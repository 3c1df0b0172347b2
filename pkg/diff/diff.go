// Package diff renders a unified diff between a file's original and
// formatted contents. Signature kept from the teacher's pkg/diff/diff.go
// call sites (internal/runner calling diff.Unified); the hand-rolled
// Myers implementation is replaced by github.com/pmezard/go-difflib.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified returns a unified diff of old versus new, labeled with
// filename on the "---" header and filename + ".formatted" on the "+++"
// header. It returns "" when old and new are identical.
func Unified(filename, old, new string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: filename,
		ToFile:   filename + ".formatted",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		// GetUnifiedDiffString only fails on a pathological internal
		// invariant break in difflib itself; there is nothing a caller
		// can do with it beyond seeing an empty diff.
		return ""
	}
	if out == "" {
		return ""
	}
	return strings.TrimRight(out, "\n") + "\n"
}
