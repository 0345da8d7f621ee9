package strings

import (
	"strings"
)

// MinTruncateLen is the smallest usable maxLen: one character plus "...".
const MinTruncateLen = 4

// TruncateOneLine collapses a string to a single line and truncates it
// to maxLen characters, appending "..." when content was cut. It
// operates on runes, so multi-byte characters are never split.
func TruncateOneLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	// Fields handles newlines, tabs, and repeated spaces in one pass.
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
