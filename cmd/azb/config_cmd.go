package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"azb/internal/azure"
	"azb/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage azb configuration.

Config file: ` + "`${XDG_CONFIG_HOME:-~/.config}/azb/config.toml`",
		Example: `  azb config init --url https://dev.azure.com/myorg/myproject
  azb config show
  azb config verify`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigVerifyCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		url   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a commented default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.CreateDefaultConfigFile(url); err != nil {
				return err
			}
			fmt.Printf("Created %s\n", path)
			if url == "" {
				fmt.Println("Set organization_url before running azb.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Azure DevOps organization/project URL")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			data, err := toml.Marshal(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("# %s\n%s", config.ConfigPath(), data)

			for _, warning := range cfg.Validate() {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
			}
			return nil
		},
	}
}

func newConfigVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the configuration and Azure DevOps connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			failed := false
			for _, warning := range cfg.Validate() {
				fmt.Printf("✗ %s\n", warning)
				failed = true
			}

			pat, err := cfg.ResolvePAT()
			if err != nil {
				fmt.Printf("✗ %v\n", err)
				return errors.New("configuration is not usable")
			}
			fmt.Println("✓ PAT resolved")

			client := azure.NewClient(cfg.AzureDevOps.OrganizationURL, pat)
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			if err := client.Verify(ctx); err != nil {
				fmt.Printf("✗ Azure DevOps: %v\n", err)
				return errors.New("configuration is not usable")
			}
			fmt.Printf("✓ Connected to %s\n", cfg.AzureDevOps.OrganizationURL)

			if failed {
				return errors.New("configuration has warnings")
			}
			return nil
		},
	}
}
