// Package textutil provides the small string helpers shared by the bridge's
// display and logging paths.
package textutil

// Ellipsize truncates s to at most max runes, replacing the cut tail with a
// single ellipsis rune. Strings within the limit are returned unchanged.
func Ellipsize(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
