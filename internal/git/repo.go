// Package git provides the branch operations azb needs: listing, checkout,
// and deletion. Everything shells out to the git binary; azb never
// reimplements git.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Repo identifies the repository the session operates on.
type Repo struct {
	// Root is the working tree root directory.
	Root string
}

// Discover locates the repository containing the current directory.
// Failing here is fatal: without a repository there is no session.
func Discover() (*Repo, error) {
	out, err := runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository (or any parent): %w", err)
	}
	return &Repo{Root: strings.TrimSpace(out)}, nil
}

// runGit executes a git command and returns stdout.
func runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
