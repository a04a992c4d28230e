package exec

import "testing"

func TestOpenCommand(t *testing.T) {
	url := "https://dev.azure.com/org/_workitems/edit/42"

	tests := []struct {
		goos     string
		wantName string
	}{
		{"linux", "xdg-open"},
		{"darwin", "open"},
		{"windows", "cmd"},
		{"freebsd", "xdg-open"},
		{"plan9", ""},
	}

	for _, tt := range tests {
		name, args := openCommand(tt.goos, url)
		if name != tt.wantName {
			t.Errorf("openCommand(%q) name = %q, want %q", tt.goos, name, tt.wantName)
			continue
		}
		if name == "" {
			continue
		}
		if args[len(args)-1] != url {
			t.Errorf("openCommand(%q) args = %v, want url last", tt.goos, args)
		}
	}
}
