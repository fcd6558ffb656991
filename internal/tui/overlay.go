package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// spliceOverlay draws overlayLines over view with the top-left corner at
// (anchorX, anchorY). Every overlay line is assumed to have the width of
// the first. Lines falling outside the view are dropped, and view lines
// shorter than anchorX are padded so the overlay lands in its column.
func spliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])
	anchorX = max(anchorX, 0)

	for i, overlayLine := range overlayLines {
		idx := anchorY + i
		if idx < 0 || idx >= len(viewLines) {
			continue
		}
		viewLine := viewLines[idx]
		viewWidth := ansi.StringWidth(viewLine)

		// prefix + reset + overlay + reset + suffix
		var sb strings.Builder
		if anchorX > 0 {
			prefix := truncateToWidth(viewLine, anchorX)
			sb.WriteString(prefix)
			if w := ansi.StringWidth(prefix); w < anchorX {
				sb.WriteString(strings.Repeat(" ", anchorX-w))
			}
		}
		sb.WriteString("\x1b[0m")
		sb.WriteString(overlayLine)
		sb.WriteString("\x1b[0m")

		if suffixStart := anchorX + overlayWidth; suffixStart < viewWidth {
			sb.WriteString(skipToWidth(viewLine, suffixStart))
		}
		viewLines[idx] = sb.String()
	}
	return strings.Join(viewLines, "\n")
}
