package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"azb/internal/config"
)

// KeyMap defines all keybindings.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	Checkout    key.Binding
	Delete      key.Binding
	ForceDelete key.Binding
	Refresh     key.Binding
	Open        key.Binding
	Yank        key.Binding

	// View
	ToggleProtect key.Binding
	Filter        key.Binding
	ScrollDown    key.Binding
	ScrollUp      key.Binding
	HalfPageDown  key.Binding
	HalfPageUp    key.Binding

	// General
	Confirm key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "checkout"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ForceDelete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "force delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy URL"),
		),
		ToggleProtect: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "protected"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "half page up"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "confirm"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapFromConfig creates a KeyMap from config settings.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	km := DefaultKeyMap()

	bind := func(b *key.Binding, keys, desc string) {
		if keys != "" {
			*b = key.NewBinding(
				key.WithKeys(parseKeys(keys)...),
				key.WithHelp(keys, desc),
			)
		}
	}

	bind(&km.Up, cfg.Up, "up")
	bind(&km.Down, cfg.Down, "down")
	bind(&km.Checkout, cfg.Checkout, "checkout")
	bind(&km.Delete, cfg.Delete, "delete")
	bind(&km.ForceDelete, cfg.ForceDelete, "force delete")
	bind(&km.Refresh, cfg.Refresh, "refresh")
	bind(&km.Open, cfg.Open, "open in browser")
	bind(&km.Yank, cfg.Yank, "copy URL")
	bind(&km.ToggleProtect, cfg.ToggleProtect, "protected")
	bind(&km.Filter, cfg.Filter, "filter")
	bind(&km.Help, cfg.Help, "help")
	bind(&km.Quit, cfg.Quit, "quit")

	return km
}

// parseKeys parses a comma-separated list of keys.
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
