package git

import "testing"

func TestParseBranchList(t *testing.T) {
	output := "*main\n feature/123-login\n bugfix/42-x\n"

	branches := parseBranchList(output)
	if len(branches) != 3 {
		t.Fatalf("got %d branches, want 3", len(branches))
	}

	if branches[0].Name != "main" || !branches[0].IsCurrent {
		t.Errorf("branches[0] = %+v, want current main", branches[0])
	}
	if branches[1].Name != "feature/123-login" || branches[1].IsCurrent {
		t.Errorf("branches[1] = %+v", branches[1])
	}
	if branches[2].Name != "bugfix/42-x" || branches[2].IsCurrent {
		t.Errorf("branches[2] = %+v", branches[2])
	}
}

func TestParseBranchListEmpty(t *testing.T) {
	if branches := parseBranchList("\n"); len(branches) != 0 {
		t.Errorf("got %d branches from empty output, want 0", len(branches))
	}
}

func TestParseBranchListDetachedHead(t *testing.T) {
	// With a detached HEAD no branch carries the '*' marker.
	branches := parseBranchList(" main\n feature/7\n")
	for _, b := range branches {
		if b.IsCurrent {
			t.Errorf("branch %q unexpectedly current", b.Name)
		}
	}
}
