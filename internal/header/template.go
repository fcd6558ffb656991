package header

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SettingsZoneID marks the subscriber-count affordance that opens stream
// settings and carries the tooltip.
const SettingsZoneID = "header-stream-settings"

// glyphs maps icon names from both namespaces to terminal glyphs.
var glyphs = map[string]string{
	InboxIcon:    "📥",
	"hashtag":    "#",
	"lock":       "🔒",
	"globe":      "🌐",
	"star":       "★",
	"at":         "@",
	"envelope":   "✉",
	"check":      "✔",
	"home":       "⌂",
	"align-left": "≡",
	"search":     "🔍",
	"clock-o":    "↻",
}

var (
	headerTitleStyle = lipgloss.NewStyle().Bold(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#aaaaaa"})
	subCountStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1f5fa8", Dark: "#8ab4f8"})
)

// iconGlyph returns the glyph for whichever icon the model carries.
func iconGlyph(vm ViewModel) string {
	name := vm.ZulipIcon
	if name == "" {
		name = vm.Icon
	}
	if g, ok := glyphs[name]; ok {
		return g
	}
	return name
}

// renderHeader is the header template.
func (p *Presenter) renderHeader(vm ViewModel) Rendered {
	var b strings.Builder
	b.WriteString(headerTitleStyle.Render(vm.Title))
	if vm.Description != "" {
		b.WriteString("  ")
		b.WriteString(descriptionStyle.Render(oneLine(vm.Description)))
	}
	if vm.SubCount != "" {
		count := subCountStyle.Render("👤 " + vm.FormattedSubCount)
		if vm.StreamSettingsLink != "" && p.zones != nil {
			count = p.zones.Mark(SettingsZoneID, count)
		}
		b.WriteString("  ")
		b.WriteString(count)
	}
	return Rendered{Icon: iconGlyph(vm), Body: b.String()}
}

// oneLine collapses a multi-paragraph description onto a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}
