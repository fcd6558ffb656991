package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wesm/streamview/internal/store"
)

// Monochrome theme - adaptive for light and dark terminals
var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}

	// App title line - bold with visible background
	appTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#444444"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	searchBarStyle = lipgloss.NewStyle().
			Background(bgBase)

	cursorRowStyle = lipgloss.NewStyle().
			Background(bgCursor)

	// Normal rows need background to clear old content
	normalRowStyle = lipgloss.NewStyle().
			Background(bgBase)

	paneStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	separatorStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Background(bgBase)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true)

	flashStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"}). // Amber for visibility
			Background(bgBase)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.appTitleView(), m.headerView())
	lines = append(lines, m.bodyView()...)
	lines = append(lines, m.footerView())
	view := strings.Join(lines, "\n")

	// Scan must see the marked view; overlays go on afterwards so they do
	// not shift zone positions.
	if m.zones != nil {
		view = m.zones.Scan(view)
	}
	view = m.overlayTooltip(view)
	if m.modal != modalNone {
		view = m.overlayModal(view)
	}
	return view
}

// appTitleView renders the first line: app name, viewer and stream count.
func (m Model) appTitleView() string {
	left := "streamview"
	if m.selfName != "" {
		left += " - " + m.selfName
	}
	right := fmt.Sprintf("%d streams", len(m.streams))
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap > 1 {
		left += strings.Repeat(" ", gap) + right
	}
	return appTitleStyle.Render(padRight(left, max(m.width-2, 0))) // -2 for padding
}

// headerView renders the second line: the search input while the search
// bar is open, otherwise the narrow's title bar.
func (m Model) headerView() string {
	if m.search.open {
		return searchBarStyle.Render(padRight(m.search.input.View(), m.width))
	}
	if bar := m.presenter.TitleBar().View(m.width); bar != "" {
		return bar
	}
	return normalRowStyle.Render(strings.Repeat(" ", m.width))
}

// streamZoneID is the bubblezone id of a stream row.
func streamZoneID(id int64) string {
	return fmt.Sprintf("stream-%d", id)
}

// listWidth is the width of the stream list column.
func (m Model) listWidth() int {
	return min(28, max(m.width/3, 8))
}

// bodyView renders the stream list beside the message pane, one string per
// screen line.
func (m Model) bodyView() []string {
	listW := m.listWidth()
	paneW := max(m.width-listW-1, 0)
	pane := m.paneLines()

	rows := make([]string, 0, m.pageSize())
	for i := 0; i < m.pageSize(); i++ {
		idx := m.scrollOffset + i
		left := normalRowStyle.Render(strings.Repeat(" ", listW))
		switch {
		case idx < len(m.streams):
			left = m.streamRow(m.streams[idx], idx == m.cursor, listW)
		case i == 0 && len(m.streams) == 0:
			left = paneStyle.Render(padRight(" No streams", listW))
		}

		right := ""
		if i < len(pane) {
			right = pane[i]
		}
		rows = append(rows, left+separatorStyle.Render("│")+normalRowStyle.Render(padRight(right, paneW)))
	}
	return rows
}

// streamRow renders one entry of the stream list.
func (m Model) streamRow(st *store.Stream, selected bool, width int) string {
	icon := "#"
	if st.InviteOnly {
		icon = "🔒"
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render("●")
	name := truncateRunes(st.Name, max(width-6, 1))

	prefix := "  "
	style := normalRowStyle
	if selected {
		prefix = "▸ "
		style = cursorRowStyle
	}
	row := style.Render(padRight(prefix+swatch+" "+icon+" "+name, width))
	if m.zones != nil {
		row = m.zones.Mark(streamZoneID(st.ID), row)
	}
	return row
}

// paneLines describes what the message pane would show for the current
// view and narrow.
func (m Model) paneLines() []string {
	var lines []string
	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf(" Error: %v", m.err)), "")
	}

	switch {
	case m.views.recent:
		lines = append(lines, paneStyle.Render(" Recent conversations"))
	case m.views.inbox:
		lines = append(lines, paneStyle.Render(" Inbox"))
	case m.narrow.Filter() == nil:
		lines = append(lines, paneStyle.Render(" All messages"))
	default:
		lines = append(lines, paneStyle.Render(" Narrowed to: "+m.narrow.SearchString()))
		if st := m.narrow.Filter().Stream(); st != nil {
			lines = append(lines, paneStyle.Render(" Settings: "+st.SettingsPath()))
		}
	}
	return lines
}

// footerView renders the key hints, or the flash message when one is set.
func (m Model) footerView() string {
	if m.flashMessage != "" {
		return flashStyle.Render(padRight(" "+m.flashMessage, m.width))
	}

	var keys []string
	if m.search.Focused() {
		keys = []string{"Enter apply", "Esc cancel"}
	} else {
		keys = []string{"↑/k", "↓/j", "Enter narrow", "/ search", "r recent", "i inbox", "a all", "? help", "q quit"}
	}
	return footerStyle.Render(padRight(strings.Join(keys, "  "), max(m.width-2, 0)))
}

// overlayTooltip draws the header tooltip, kept inside the screen.
func (m Model) overlayTooltip(view string) string {
	t := m.presenter.Tooltip()
	if t == nil || !t.Visible() || len(t.Lines()) == 0 {
		return view
	}
	x, y := t.Position()
	w := lipgloss.Width(t.Lines()[0])
	if x+w > m.width {
		x = max(m.width-w, 0)
	}
	return spliceOverlay(view, t.Lines(), x, y)
}

// rawHelpLines contains the help modal content. The first line is the title
// (rendered with modalTitleStyle at display time).
var rawHelpLines = []string{
	"Keyboard Shortcuts",
	"",
	"Streams",
	"  ↑/k, ↓/j    Move cursor up/down",
	"  PgUp/PgDn   Page up/down",
	"  Home/End    Go to first/last",
	"  Enter       Narrow to stream",
	"  s           Show stream settings link",
	"",
	"Narrows",
	"  /           Edit narrow in search bar",
	"  a           All messages",
	"  *           Starred messages",
	"  @           Mentions",
	"  d           Direct message feed",
	"  h           Combined feed",
	"  p           Public streams",
	"  r           Toggle recent conversations",
	"  i           Toggle inbox",
	"  Esc         Close view, then clear narrow",
	"",
	"  q           Quit",
	"  ?           Close this help",
}

// renderHelpModal renders the help modal content.
func (m Model) renderHelpModal() string {
	var sb strings.Builder
	sb.WriteString(modalTitleStyle.Render(rawHelpLines[0]))
	for _, line := range rawHelpLines[1:] {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// renderQuitConfirmModal renders the quit confirmation modal content.
func (m Model) renderQuitConfirmModal() string {
	return modalTitleStyle.Render("Quit streamview?") + "\n\n" +
		"[Y] Yes    [N] No"
}

// overlayModal renders the active modal centred over background.
func (m Model) overlayModal(background string) string {
	var modalContent string
	switch m.modal {
	case modalQuitConfirm:
		modalContent = m.renderQuitConfirmModal()
	case modalHelp:
		modalContent = m.renderHelpModal()
	}
	if modalContent == "" {
		return background
	}

	modal := modalStyle.Render(modalContent)
	modalLines := strings.Split(modal, "\n")
	bgHeight := strings.Count(background, "\n") + 1

	startLine := max((bgHeight-len(modalLines))/2, 0)
	leftPadding := max((m.width-lipgloss.Width(modal))/2, 0)
	return spliceOverlay(background, modalLines, leftPadding, startLine)
}
