package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/streamview/internal/narrow"
	"github.com/wesm/streamview/internal/store"
)

// handleKeyPress routes a key to the modal, the search bar or the main view.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.handleModalKeys(msg)
	}
	if m.search.Focused() {
		return m.handleSearchKeys(msg)
	}
	if m2, cmd, handled := m.handleGlobalKeys(msg); handled {
		return m2, cmd
	}
	return m.handleStreamListKeys(msg)
}

// handleSearchKeys handles keys when the search bar has focus.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.commitSearch()

	case "esc":
		return m.cancelSearch()

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.search.input, cmd = m.search.input.Update(msg)
		return m, cmd
	}
}

// handleGlobalKeys handles keys common to all views (quit, help).
// Returns (model, cmd, true) if the key was handled, or (model, nil, false) otherwise.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		m.modal = modalQuitConfirm
		return m, nil, true
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "?":
		m.modal = modalHelp
		return m, nil, true
	}
	return m, nil, false
}

// commonNarrowKeys open the standard narrows directly.
var commonNarrowKeys = map[string]string{
	"a": "",
	"*": "is:starred",
	"@": "is:mentioned",
	"d": "is:dm",
	"h": "in:home",
	"p": "streams:public",
}

// handleStreamListKeys handles keys in the main view.
func (m Model) handleStreamListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.navigateList(msg.String(), len(m.streams)) {
		return m, nil
	}

	if narrowStr, ok := commonNarrowKeys[msg.String()]; ok {
		var f *narrow.Filter
		if narrowStr != "" {
			f = narrow.FromString(narrowStr, m.resolver)
		}
		m.setNarrow(f)
		return m, nil
	}

	switch msg.String() {
	case "enter", "l", "right":
		if m.cursor < len(m.streams) {
			m.setNarrow(m.streamFilter(m.streams[m.cursor]))
		}
		return m, nil

	case "/":
		m.search.Open(m.narrow.SearchString())
		return m, m.search.input.Focus()

	case "r":
		m.toggleView(true)
		return m, nil

	case "i":
		m.toggleView(false)
		return m, nil

	case "esc":
		// Esc leaves a full-screen view first, then any narrow.
		if m.views.recent || m.views.inbox {
			m.views.recent, m.views.inbox = false, false
			m.presenter.Render(m.narrow.Filter())
			return m, nil
		}
		if m.narrow.Filter() != nil {
			m.setNarrow(nil)
		}
		return m, nil

	case "s":
		if link := m.settingsLink(); link != "" {
			return m.showFlash("Stream settings: " + link)
		}
		return m, nil
	}

	return m, nil
}

// streamFilter returns the narrow for a single stream.
func (m Model) streamFilter(st *store.Stream) *narrow.Filter {
	return narrow.New([]narrow.Term{{Operator: narrow.OpStream, Operand: st.Name}}, m.resolver)
}

// settingsLink returns the settings path of the narrowed stream, if any.
func (m Model) settingsLink() string {
	f := m.narrow.Filter()
	if f == nil || f.Stream() == nil {
		return ""
	}
	return f.Stream().SettingsPath()
}

// commitSearch turns the search bar's text into the active narrow.
func (m Model) commitSearch() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.search.input.Value())
	m.search.input.Blur()
	if q == "" {
		m.setNarrow(nil)
		return m, nil
	}
	m.setNarrow(narrow.FromString(q, m.resolver))
	return m, nil
}

// cancelSearch abandons the edit and restores the header for the active
// narrow.
func (m Model) cancelSearch() (tea.Model, tea.Cmd) {
	m.search.input.Blur()
	m.presenter.Render(m.narrow.Filter())
	return m, nil
}

// handleModalKeys handles keys while a modal is open.
func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalQuitConfirm:
		switch msg.String() {
		case "y", "Y", "q", "enter":
			m.quitting = true
			return m, tea.Quit
		default:
			m.modal = modalNone
			return m, nil
		}
	default:
		m.modal = modalNone
		return m, nil
	}
}

// handleMouseEvent gives the header first refusal, then handles clicks and
// wheel scrolling in the stream list.
func (m Model) handleMouseEvent(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.zones == nil || m.modal != modalNone {
		return m, nil
	}
	if m.handleMouse != nil && m.handleMouse(msg) {
		if link := m.pending.settingsLink; link != "" {
			m.pending.settingsLink = ""
			return m.showFlash("Stream settings: " + link)
		}
		return m, nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.navigateList("up", len(m.streams))
	case msg.Button == tea.MouseButtonWheelDown:
		m.navigateList("down", len(m.streams))
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		for i, st := range m.streams {
			if m.zones.Get(streamZoneID(st.ID)).InBounds(msg) {
				m.cursor = i
				m.setNarrow(m.streamFilter(st))
				break
			}
		}
	}
	return m, nil
}
