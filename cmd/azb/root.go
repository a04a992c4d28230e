package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"azb/internal/app"
	"azb/internal/azure"
	"azb/internal/config"
	"azb/internal/git"
	"azb/internal/logging"
	"azb/internal/workitem"
)

// rootCmd runs the branch browser when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "azb",
	Short: "Browse local branches and their Azure DevOps work items",
	Long: `azb maps your local git branches to Azure DevOps work items.

The first run of digits in a branch name is treated as a work item id;
select a branch to see the work item's details, check branches out,
delete them, or open the work item in your browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "azb: %v\n", err)
		os.Exit(1)
	}
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg = config.DefaultConfig()
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	logger, err := logging.Setup(logFile, cfg.Log.Level, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Discard()
	}
	defer logging.Close()

	repo, err := git.Discover()
	if err != nil {
		return fmt.Errorf("azb must be run from within a git repository: %w", err)
	}

	// This is the only fatal error past startup wiring: without the
	// branch list there is nothing to show.
	gitBranches, err := git.ListBranches()
	if err != nil {
		return fmt.Errorf("listing branches: %w", err)
	}

	// A missing PAT is not fatal: the list still works, fetches fail
	// with an inline error instead.
	pat, err := cfg.ResolvePAT()
	if err != nil {
		logger.Warn("no PAT available, work item fetches will fail", "err", err)
	}

	client := azure.NewClient(cfg.AzureDevOps.OrganizationURL, pat)
	cache := workitem.NewCache()
	if cfg.Cache.Persist {
		workitem.LoadDiskCache(repo.Root, cache)
	}
	coord := workitem.NewCoordinator(cache, client)

	branches := app.NewBranches(gitBranches, cfg.Branches.Protected)
	logger.Info("session start", "repo", repo.Root, "branches", len(branches))

	model := app.New(cfg, repo, coord, branches, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if cfg.Cache.Persist {
		workitem.SaveDiskCache(repo.Root, cache)
	}

	if m, ok := finalModel.(app.Model); ok {
		printDeletedSummary(m.DeletedBranches())
	}
	return nil
}

// printDeletedSummary prints the branches deleted this session with the
// sha needed to restore each one.
func printDeletedSummary(deleted []app.DeletedBranch) {
	if len(deleted) == 0 {
		return
	}
	fmt.Printf("Deleted %d branch(es):\n", len(deleted))
	for _, d := range deleted {
		fmt.Printf("  %s (restore: git branch %s %s)\n", d.Name, d.Name, d.SHA)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versionString())
		},
	}
}
