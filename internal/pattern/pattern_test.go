package pattern

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		// Exact matches are anchored at both ends.
		{"main", "main", true},
		{"master", "master", true},
		{"main", "master", false},
		{"main-feature", "main", false},
		{"my-main", "main", false},

		// Wildcard suffix.
		{"releases/v1.0", "releases/*", true},
		{"releases/v12.x", "releases/*", true},
		{"releases/", "releases/*", true},
		{"releases", "releases/*", false},
		{"release/v1.0", "releases/*", false},
		{"my-releases/x", "releases/*", false},

		// Wildcard prefix.
		{"feature-main", "*main", true},
		{"main", "*main", true},
		{"main-feature", "*main", false},

		// Wildcard in the middle matches any substring, including empty.
		{"feature-123-test", "feature-*-test", true},
		{"feature--test", "feature-*-test", true},
		{"feature-123-prod", "feature-*-test", false},

		// Multiple wildcards; '*' crosses path separators.
		{"a/b/c", "*/*", true},
		{"foo/bar/baz", "*/*", true},

		// Bare star matches everything, including the empty string.
		{"anything", "*", true},
		{"", "*", true},

		// Case-sensitive.
		{"Main", "main", false},
	}

	for _, tt := range tests {
		if got := Match(tt.name, tt.pattern); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.name, tt.pattern, got, tt.want)
		}
	}
}

func TestProtected(t *testing.T) {
	patterns := []string{"main", "master", "releases/*"}

	protected := []string{"main", "master", "releases/v1.0"}
	for _, name := range protected {
		if !Protected(name, patterns) {
			t.Errorf("Protected(%q) = false, want true", name)
		}
	}

	unprotected := []string{"feature/123", "develop", "release/v1.0", "my-releases/x"}
	for _, name := range unprotected {
		if Protected(name, patterns) {
			t.Errorf("Protected(%q) = true, want false", name)
		}
	}

	if Protected("main", nil) {
		t.Error("empty pattern set must protect nothing")
	}
}
