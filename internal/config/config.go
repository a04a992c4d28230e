// Package config handles azb configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// PATEnvVar is checked before the config file when resolving the token.
const PATEnvVar = "AZB_PAT"

// Config represents azb configuration.
type Config struct {
	AzureDevOps AzureDevOpsConfig `toml:"azure_devops"`
	Branches    BranchesConfig    `toml:"branches"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
	Keys        KeysConfig        `toml:"keys"`
}

// AzureDevOpsConfig points azb at one organization.
type AzureDevOpsConfig struct {
	// Organization URL, e.g. https://dev.azure.com/myorg or an on-prem
	// collection URL.
	OrganizationURL string `toml:"organization_url"`

	// Optional path to a file containing the PAT. The AZB_PAT environment
	// variable takes precedence.
	PATFile string `toml:"pat_file"`
}

// BranchesConfig controls which branches are treated as protected.
type BranchesConfig struct {
	// Glob patterns for protected branches. '*' matches any substring,
	// including path separators.
	Protected []string `toml:"protected"`

	// Whether protected branches are visible at startup.
	ShowProtected bool `toml:"show_protected"`
}

// CacheConfig controls work item persistence between sessions.
type CacheConfig struct {
	// Persist fetched work items to disk so the next session starts warm.
	Persist bool `toml:"persist"`
}

// LogConfig controls file logging.
type LogConfig struct {
	// Log file path. Empty means the default under the user cache dir.
	File string `toml:"file"`

	// Level: "debug", "info", "warn", or "error".
	Level string `toml:"level"`
}

// KeysConfig contains keybinding settings (comma-separated for multiple keys).
type KeysConfig struct {
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Checkout      string `toml:"checkout"`
	Delete        string `toml:"delete"`
	ForceDelete   string `toml:"force_delete"`
	Refresh       string `toml:"refresh"`
	Open          string `toml:"open"`
	Yank          string `toml:"yank"`
	ToggleProtect string `toml:"toggle_protected"`
	Filter        string `toml:"filter"`
	Help          string `toml:"help"`
	Quit          string `toml:"quit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AzureDevOps: AzureDevOpsConfig{},
		Branches: BranchesConfig{
			Protected:     []string{"main", "master", "develop", "releases/*"},
			ShowProtected: false,
		},
		Cache: CacheConfig{
			Persist: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Keys: KeysConfig{
			Up:            "up,k",
			Down:          "down,j",
			Checkout:      "enter",
			Delete:        "d",
			ForceDelete:   "D",
			Refresh:       "r",
			Open:          "o",
			Yank:          "y",
			ToggleProtect: "p",
			Filter:        "/",
			Help:          "?",
			Quit:          "q,esc,ctrl+c",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/azb/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "azb", "config.toml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "azb", "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "azb", "config.toml")
	}
	return filepath.Join(configDir, "azb", "config.toml")
}

// DefaultLogPath returns the default log file location.
func DefaultLogPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "azb", "azb.log")
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults.
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal directly into the default config. go-toml/v2 only
	// overwrites fields present in the TOML file, preserving defaults
	// for unspecified fields (including booleans).
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to the config file.
func Save(cfg *Config) error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolvePAT resolves the Personal Access Token once, at session start:
// the AZB_PAT environment variable wins, then the configured pat_file.
func (c *Config) ResolvePAT() (string, error) {
	if pat := os.Getenv(PATEnvVar); pat != "" {
		return pat, nil
	}

	if c.AzureDevOps.PATFile != "" {
		data, err := os.ReadFile(c.AzureDevOps.PATFile)
		if err != nil {
			return "", fmt.Errorf("read pat_file: %w", err)
		}
		if pat := strings.TrimSpace(string(data)); pat != "" {
			return pat, nil
		}
		return "", fmt.Errorf("pat_file %s is empty", c.AzureDevOps.PATFile)
	}

	return "", fmt.Errorf(
		"no PAT found: set %s or pat_file in %s\nThe PAT needs 'Work Items (Read)' permission",
		PATEnvVar, ConfigPath())
}

// CreateDefaultConfigFile creates a commented default config file.
func CreateDefaultConfigFile(organizationURL string) error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(generateDefaultConfigContent(organizationURL)), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent(organizationURL string) string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# azb configuration\n\n")

	b.WriteString("[azure_devops]\n")
	b.WriteString("# Organization URL, e.g. https://dev.azure.com/myorg\n")
	fmt.Fprintf(&b, "organization_url = %q\n", organizationURL)
	b.WriteString("# Path to a file containing your PAT. The AZB_PAT environment\n")
	b.WriteString("# variable takes precedence when set.\n")
	b.WriteString("# pat_file = \"~/.azb-pat\"\n\n")

	b.WriteString("[branches]\n")
	b.WriteString("# Protected branches are hidden by default and never offered for deletion.\n")
	b.WriteString("# '*' matches any substring, including '/'.\n")
	b.WriteString("protected = [")
	for i, p := range cfg.Branches.Protected {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", p)
	}
	b.WriteString("]\n")
	fmt.Fprintf(&b, "show_protected = %v\n\n", cfg.Branches.ShowProtected)

	b.WriteString("[cache]\n")
	b.WriteString("# Persist fetched work items between sessions.\n")
	fmt.Fprintf(&b, "persist = %v\n\n", cfg.Cache.Persist)

	b.WriteString("[log]\n")
	b.WriteString("# Log level: \"debug\", \"info\", \"warn\", or \"error\"\n")
	fmt.Fprintf(&b, "level = %q\n", cfg.Log.Level)
	b.WriteString("# file = \"/path/to/azb.log\"\n\n")

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# up = %q\n", cfg.Keys.Up)
	fmt.Fprintf(&b, "# down = %q\n", cfg.Keys.Down)
	fmt.Fprintf(&b, "# checkout = %q\n", cfg.Keys.Checkout)
	fmt.Fprintf(&b, "# delete = %q\n", cfg.Keys.Delete)
	fmt.Fprintf(&b, "# force_delete = %q\n", cfg.Keys.ForceDelete)
	fmt.Fprintf(&b, "# refresh = %q\n", cfg.Keys.Refresh)
	fmt.Fprintf(&b, "# open = %q\n", cfg.Keys.Open)
	fmt.Fprintf(&b, "# yank = %q\n", cfg.Keys.Yank)
	fmt.Fprintf(&b, "# toggle_protected = %q\n", cfg.Keys.ToggleProtect)
	fmt.Fprintf(&b, "# filter = %q\n", cfg.Keys.Filter)
	fmt.Fprintf(&b, "# help = %q\n", cfg.Keys.Help)
	fmt.Fprintf(&b, "# quit = %q\n", cfg.Keys.Quit)

	return b.String()
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.AzureDevOps.OrganizationURL == "" {
		warnings = append(warnings, "azure_devops.organization_url is not set (run 'azb config init')")
	} else if u, err := url.Parse(c.AzureDevOps.OrganizationURL); err != nil || u.Scheme == "" || u.Host == "" {
		warnings = append(warnings, fmt.Sprintf("azure_devops.organization_url does not look like a URL: %s", c.AzureDevOps.OrganizationURL))
	}

	if c.AzureDevOps.PATFile != "" {
		if _, err := os.Stat(c.AzureDevOps.PATFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("azure_devops.pat_file is not readable: %s", c.AzureDevOps.PATFile))
		}
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("Invalid value for log.level: %s (expected debug, info, warn, or error)", c.Log.Level))
	}

	for _, p := range c.Branches.Protected {
		if p == "" {
			warnings = append(warnings, "branches.protected contains an empty pattern")
		}
	}

	return warnings
}
