// Package pattern implements wildcard matching for protected branch names.
//
// Patterns are literal strings where `*` matches any sequence of characters,
// including the empty string and path separators. Matching is anchored at
// both ends and case-sensitive:
//
//	"main"        matches only "main"
//	"releases/*"  matches "releases/v1.0", "releases/"
//	"feature-*-x" matches "feature-123-x", "feature--x"
package pattern

// Match reports whether name matches the pattern as a full string.
func Match(name, pattern string) bool {
	t, p := 0, 0
	starP := -1 // pattern index just past the last '*'
	starT := 0  // name index where that '*' started matching

	for t < len(name) {
		switch {
		case p < len(pattern) && pattern[p] == '*':
			// Try matching zero characters first; remember where to backtrack.
			starP = p + 1
			starT = t
			p++
		case p < len(pattern) && name[t] == pattern[p]:
			t++
			p++
		case starP >= 0:
			// Mismatch with a star behind us: let the star absorb one more byte.
			starT++
			t = starT
			p = starP
		default:
			return false
		}
	}

	// Trailing stars match the empty suffix.
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// Protected reports whether name matches any of the given patterns.
// An empty pattern set protects nothing. Pattern order is irrelevant.
func Protected(name string, patterns []string) bool {
	for _, p := range patterns {
		if Match(name, p) {
			return true
		}
	}
	return false
}
