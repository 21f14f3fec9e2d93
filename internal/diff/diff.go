// Package diff renders unified diffs between two rendered configurations,
// using github.com/pmezard/go-difflib/difflib.
package diff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Options controls patch generation.
type Options struct {
	// Context lines per hunk; DefaultContext when zero or negative.
	Context int
}

// Unified returns the unified diff turning a into b, or "" when they are
// equal.
func Unified(aName, bName string, a, b []byte, opt Options) (string, error) {
	ctx := opt.Context
	if ctx <= 0 {
		ctx = DefaultContext
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	})
}

// splitLinesKeepNL keeps the trailing newline on every line; difflib writes
// lines as given.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
