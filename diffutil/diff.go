// backend/diffutil/diff.go
package diffutil

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified computes a line-oriented unified diff between two document
// contents. The from/to headers carry the version labels so a reviewer can
// tell which snapshots a hunk belongs to. Output is deterministic: the same
// inputs always produce the same bytes. Returns an empty string when the
// contents are line-identical after normalizing line endings, which is the
// signal the change ledger uses to suppress no-op changes.
func Unified(previousContent, newContent, previousLabel, newLabel string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(NormalizeLineEndings(previousContent)),
		B:        difflib.SplitLines(NormalizeLineEndings(newContent)),
		FromFile: "version_" + previousLabel,
		ToFile:   "version_" + newLabel,
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to compute unified diff: %w", err)
	}
	return text, nil
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF so that
// line-ending-only edits never register as content changes.
func NormalizeLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// IsEmpty reports whether a diff carries no change worth recording.
func IsEmpty(diff string) bool {
	return strings.TrimSpace(diff) == ""
}
