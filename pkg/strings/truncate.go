// Package strings holds small text helpers for log lines and CLI output.
package strings

import (
	"strings"
)

const (
	// PreviewLen bounds raw bus records quoted in log lines.
	PreviewLen = 120

	// ColumnLen bounds free-text table columns in CLI output.
	ColumnLen = 40

	minLen = 4
)

// Truncate collapses all whitespace in s into single spaces and shortens it
// to at most maxLen runes, ending in "..." when cut. maxLen below 4 is
// treated as 4.
func Truncate(s string, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
