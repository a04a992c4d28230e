// Package ui provides rendering functions for the azb terminal UI.
//
// It contains the Render function which takes RenderParams and produces the
// terminal output, Lipgloss style definitions, and the HTML-to-text
// conversion for Azure DevOps rich text fields. Rendering is pure (no side
// effects) and separated from state management.
package ui
