package strings

import (
	"strings"
)

// ellipsis marks abbreviated text.
const ellipsis = "..."

// Abbreviate collapses s to a single line and shortens it to at most maxLen
// runes, ending in "..." when cut. A maxLen too small to hold one rune plus
// the ellipsis is raised to that minimum.
func Abbreviate(s string, maxLen int) string {
	if floor := len(ellipsis) + 1; maxLen < floor {
		maxLen = floor
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-len(ellipsis)]) + ellipsis
	}
	return s
}
