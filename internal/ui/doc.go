// Package ui styles command line output with lipgloss.
//
// A [Palette] holds the named styles (title, ok, err, warn, help) and renders the
// tables printed by the CLI, such as the artist listing.
package ui
