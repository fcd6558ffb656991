package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// padRight pads a string with spaces to fill width terminal cells.
// Uses lipgloss.Width to correctly handle ANSI codes and full-width characters.
func padRight(s string, width int) string {
	sw := lipgloss.Width(s)
	if sw >= width {
		// Use ANSI-aware truncation
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateRunes truncates a string to fit within maxWidth terminal cells.
// Uses runewidth to correctly handle full-width characters (CJK, emoji, etc.)
// that occupy 2 terminal cells but count as 1 rune. Newlines and tabs are
// flattened first so stream names cannot break the layout.
func truncateRunes(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// truncateToWidth returns the prefix of s that fits within maxWidth visual columns.
// Uses ANSI-aware truncation to preserve escape sequences.
func truncateToWidth(s string, maxWidth int) string {
	return ansi.Truncate(s, maxWidth, "")
}

// skipToWidth returns the suffix of s starting after skipWidth visual columns.
// Uses ANSI-aware cutting to preserve escape sequences.
func skipToWidth(s string, skipWidth int) string {
	return ansi.TruncateLeft(s, skipWidth, "")
}
