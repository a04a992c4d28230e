package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"azb/internal/azure"
	"azb/internal/config"
	"azb/internal/git"
	"azb/internal/ui"
	"azb/internal/workitem"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the current branch's work item",
		Long: `Print the work item for the current branch without starting the
interactive browser. The work item id is the first run of digits in the
branch name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if _, err := git.Discover(); err != nil {
				return fmt.Errorf("azb must be run from within a git repository: %w", err)
			}

			branches, err := git.ListBranches()
			if err != nil {
				return fmt.Errorf("listing branches: %w", err)
			}

			var current string
			for _, b := range branches {
				if b.IsCurrent {
					current = b.Name
					break
				}
			}
			if current == "" {
				return fmt.Errorf("no current branch (detached HEAD?)")
			}

			fetch := func(id uint64) (*azure.WorkItem, error) {
				pat, err := cfg.ResolvePAT()
				if err != nil {
					return nil, err
				}
				client := azure.NewClient(cfg.AzureDevOps.OrganizationURL, pat)
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				return client.FetchWorkItem(ctx, id)
			}

			for _, line := range infoLines(current, 80, fetch) {
				fmt.Println(line)
			}
			return nil
		},
	}
}

// infoLines resolves a branch name to its work item output. A branch without
// an id and a failed fetch are both reported as output, not as errors: info
// on such a branch is an answer, not a failure.
func infoLines(branch string, width int, fetch func(uint64) (*azure.WorkItem, error)) []string {
	id, ok := workitem.Extract(branch)
	if !ok {
		return []string{fmt.Sprintf("Branch '%s' has no work item id.", branch)}
	}

	wi, err := fetch(id)
	if err != nil {
		return []string{fmt.Sprintf("Work item %d: %v", id, err)}
	}
	return ui.WorkItemLines(wi, width)
}
