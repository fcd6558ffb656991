package header

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Rendered is the output of the header template: the icon glyph, kept
// separate so it can be coloured, and the rest of the line.
type Rendered struct {
	Icon string
	Body string
}

// TitleBar is the header's UI node. Every mutation bumps Revision, so
// callers can tell whether a render touched it.
type TitleBar struct {
	content   Rendered
	hidden    bool
	iconColor string
	revision  int
}

// NewTitleBar returns an empty, hidden title bar.
func NewTitleBar() *TitleBar {
	return &TitleBar{hidden: true}
}

// Replace swaps in new content. Any icon colour is discarded.
func (b *TitleBar) Replace(r Rendered) {
	b.content = r
	b.iconColor = ""
	b.revision++
}

// SetIconColor colours the icon with a hex colour.
func (b *TitleBar) SetIconColor(hex string) {
	b.iconColor = hex
	b.revision++
}

// Show unhides the title bar.
func (b *TitleBar) Show() {
	b.hidden = false
	b.revision++
}

// Hide hides the title bar.
func (b *TitleBar) Hide() {
	b.hidden = true
	b.revision++
}

// PostProcess rewrites the body through fn.
func (b *TitleBar) PostProcess(fn func(string) string) {
	b.content.Body = fn(b.content.Body)
	b.revision++
}

func (b *TitleBar) Content() Rendered { return b.content }
func (b *TitleBar) Hidden() bool      { return b.hidden }
func (b *TitleBar) IconColor() string { return b.iconColor }
func (b *TitleBar) Revision() int     { return b.revision }

var (
	titleBarStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	iconStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"})
)

// View renders the title bar as one line of the given width. A hidden bar
// renders as an empty string.
func (b *TitleBar) View(width int) string {
	if b.hidden {
		return ""
	}
	icon := b.content.Icon
	if icon != "" {
		// Pad to two cells so titles line up whatever the glyph width.
		if w := runewidth.StringWidth(icon); w < 2 {
			icon += strings.Repeat(" ", 2-w)
		}
		style := iconStyle
		if b.iconColor != "" {
			style = style.Foreground(lipgloss.Color(b.iconColor))
		}
		icon = style.Render(icon) + " "
	}
	line := " " + icon + strings.ReplaceAll(b.content.Body, "\n", " ")
	if width <= 0 {
		return line
	}
	if ansi.StringWidth(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return titleBarStyle.Width(width).MaxHeight(1).Render(line)
}
