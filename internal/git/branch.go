package git

import (
	"fmt"
	"strings"
)

// Branch is one local branch as reported by git.
type Branch struct {
	Name      string
	IsCurrent bool
}

// ListBranches returns all local branches in git's order.
func ListBranches() ([]Branch, error) {
	output, err := runGit("branch", "--list", "--format=%(HEAD)%(refname:short)")
	if err != nil {
		return nil, err
	}
	return parseBranchList(output), nil
}

// parseBranchList parses `git branch --format=%(HEAD)%(refname:short)`
// output: the current branch is prefixed with '*', others with a space.
func parseBranchList(output string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		isCurrent := strings.HasPrefix(line, "*")
		name := strings.TrimPrefix(line, "*")
		name = strings.TrimPrefix(name, " ")
		branches = append(branches, Branch{Name: name, IsCurrent: isCurrent})
	}
	return branches
}

// Checkout switches the working tree to the named branch.
func Checkout(name string) error {
	_, err := runGit("checkout", name)
	return err
}

// DeleteBranch deletes a local branch and returns the sha its tip pointed
// at, so the caller can offer a restore hint. With force false, git refuses
// to delete unmerged branches.
func DeleteBranch(name string, force bool) (sha string, err error) {
	sha, err = BranchSHA(name)
	if err != nil {
		return "", err
	}

	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := runGit("branch", flag, name); err != nil {
		return "", err
	}
	return sha, nil
}

// BranchSHA returns the full commit sha a branch points at.
func BranchSHA(name string) (string, error) {
	out, err := runGit("rev-parse", "--verify", "refs/heads/"+name)
	if err != nil {
		return "", fmt.Errorf("resolve branch %q: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}
