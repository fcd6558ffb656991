package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/streamview/internal/header"
	"github.com/wesm/streamview/internal/testutil"
)

func TestStreamListNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"down", []tea.KeyMsg{keyDown()}, 1},
		{"j", []tea.KeyMsg{key('j')}, 1},
		{"down stops at end", []tea.KeyMsg{keyDown(), keyDown(), keyDown()}, 1},
		{"up stops at start", []tea.KeyMsg{keyUp()}, 0},
		{"down then k", []tea.KeyMsg{key('j'), key('k')}, 0},
		{"G", []tea.KeyMsg{key('G')}, 1},
		{"G then g", []tea.KeyMsg{key('G'), key('g')}, 0},
		{"pgdown", []tea.KeyMsg{{Type: tea.KeyPgDown}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewBuilder().Build(t)
			for _, k := range tt.keys {
				m, _ = sendKey(t, m, k)
			}
			if m.cursor != tt.want {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.want)
			}
		})
	}
}

func TestEnterNarrowsToSelectedStream(t *testing.T) {
	m, _ := NewBuilder().Build(t)

	m, _ = sendKey(t, m, keyDown())
	m, _ = sendKey(t, m, keyEnter())

	assertSearchString(t, m, "stream:team")
	if id, ok := m.narrow.StreamID(); !ok || id != 7 {
		t.Errorf("StreamID() = %d, %v; want 7, true", id, ok)
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"team", "👤 1"})
}

func TestCommonNarrowKeys(t *testing.T) {
	tests := []struct {
		key        rune
		wantNarrow string
		wantTitle  string
	}{
		{'*', "is:starred", "Starred messages"},
		{'@', "is:mentioned", "Mentions"},
		{'d', "is:dm", "Direct message feed"},
		{'h', "in:home", "Combined feed"},
		{'p', "streams:public", "Public streams"},
		{'a', "", "All messages"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
			m, _ = sendKey(t, m, key(tt.key))

			assertSearchString(t, m, tt.wantNarrow)
			testutil.AssertContainsAll(t, headerLine(t, m), []string{tt.wantTitle})
		})
	}
}

func TestSearchOpensWithCurrentNarrow(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	m, cmd := sendKey(t, m, key('/'))

	if !m.search.Focused() {
		t.Fatal("search bar not focused after /")
	}
	if cmd == nil {
		t.Error("expected cursor blink command from Focus")
	}
	if got := m.search.input.Value(); got != "stream:general" {
		t.Errorf("search input = %q, want stream:general", got)
	}
}

func TestSearchCapturesKeys(t *testing.T) {
	m, _ := NewBuilder().Build(t)
	m, _ = sendKey(t, m, key('/'))
	m = typeText(t, m, "q?")

	assertModal(t, m, modalNone)
	if got := m.search.input.Value(); got != "q?" {
		t.Errorf("search input = %q, want q?", got)
	}
}

func TestSearchCommitSearchNarrow(t *testing.T) {
	m, _ := NewBuilder().Build(t)
	m, _ = sendKey(t, m, key('/'))
	m = typeText(t, m, "stream:general outage")
	m, _ = sendKey(t, m, keyEnter())

	assertSearchString(t, m, "stream:general outage")
	if !m.search.open || m.search.Focused() {
		t.Errorf("search bar open=%v focused=%v; want open and unfocused", m.search.open, m.search.Focused())
	}
	if m.presenter.DescriptionVisible() {
		t.Error("description visible for a search narrow")
	}
}

func TestSearchCommitCommonNarrow(t *testing.T) {
	m, _ := NewBuilder().Build(t)
	m, _ = sendKey(t, m, key('/'))
	m = typeText(t, m, "stream:team")
	m, _ = sendKey(t, m, keyEnter())

	assertSearchString(t, m, "stream:team")
	if m.search.open {
		t.Error("search bar still open for a common narrow")
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"team"})
}

func TestSearchCommitEmptyClearsNarrow(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	m, _ = sendKey(t, m, key('/'))
	m.search.input.SetValue("  ")
	m, _ = sendKey(t, m, keyEnter())

	if m.narrow.Filter() != nil {
		t.Errorf("narrow = %q, want none", m.narrow.SearchString())
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"All messages"})
}

func TestSearchEscRestoresHeader(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	m, _ = sendKey(t, m, key('/'))
	m = typeText(t, m, " typo")
	m, _ = sendKey(t, m, keyEsc())

	assertSearchString(t, m, "stream:general")
	if m.search.open {
		t.Error("search bar still open after esc")
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"general", "Everything"})
}

func TestEscClearsSearchNarrow(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("outage").Build(t)
	m, _ = sendKey(t, m, keyEsc())

	if m.narrow.Filter() != nil {
		t.Errorf("narrow = %q, want none", m.narrow.SearchString())
	}
	if m.search.open {
		t.Error("search bar still open")
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"All messages"})
}

func TestToggleViews(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)

	m, _ = sendKey(t, m, key('r'))
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"Recent conversations"})

	m, _ = sendKey(t, m, key('i'))
	if m.views.recent {
		t.Error("recent view still visible after switching to inbox")
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"Inbox"})

	m, _ = sendKey(t, m, key('i'))
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"general"})
}

func TestEscLeavesViewBeforeNarrow(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	m, _ = sendKey(t, m, key('r'))

	m, _ = sendKey(t, m, keyEsc())
	assertSearchString(t, m, "stream:general")
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"general"})

	m, _ = sendKey(t, m, keyEsc())
	assertSearchString(t, m, "")
}

func TestNarrowDismissesViews(t *testing.T) {
	m, _ := NewBuilder().Build(t)
	m, _ = sendKey(t, m, key('i'))
	m, _ = sendKey(t, m, key('*'))

	if m.views.inbox {
		t.Error("inbox still visible after narrowing")
	}
	testutil.AssertContainsAll(t, headerLine(t, m), []string{"Starred messages"})
}

func TestQuitConfirm(t *testing.T) {
	m, _ := NewBuilder().Build(t)

	m, _ = sendKey(t, m, key('q'))
	assertModal(t, m, modalQuitConfirm)

	m, _ = sendKey(t, m, key('n'))
	assertModal(t, m, modalNone)
	if m.quitting {
		t.Fatal("quitting after declining")
	}

	m, _ = sendKey(t, m, key('q'))
	m, cmd := sendKey(t, m, key('y'))
	if !m.quitting || cmd == nil {
		t.Errorf("quitting = %v, cmd = %v; want quit", m.quitting, cmd)
	}
}

func TestHelpModal(t *testing.T) {
	m, _ := NewBuilder().Build(t)

	m, _ = sendKey(t, m, key('?'))
	assertModal(t, m, modalHelp)

	// Any key closes help without acting on it.
	m, _ = sendKey(t, m, keyDown())
	assertModal(t, m, modalNone)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, key leaked through the help modal", m.cursor)
	}
}

func TestSettingsKeyFlashesLink(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	m, cmd := sendKey(t, m, key('s'))

	if m.flashMessage != "Stream settings: #streams/42/general" {
		t.Errorf("flashMessage = %q", m.flashMessage)
	}
	if cmd == nil {
		t.Error("expected flash clear tick")
	}

	m2, _ := NewBuilder().Build(t)
	m2, _ = sendKey(t, m2, key('s'))
	if m2.flashMessage != "" {
		t.Errorf("flash without a stream narrow: %q", m2.flashMessage)
	}
}

func TestMouseWheelMovesCursor(t *testing.T) {
	m, _ := NewBuilder().Build(t)

	m, _ = sendMsg(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if m.cursor != 1 {
		t.Errorf("cursor after wheel down = %d, want 1", m.cursor)
	}
	m, _ = sendMsg(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if m.cursor != 0 {
		t.Errorf("cursor after wheel up = %d, want 0", m.cursor)
	}
}

func TestMouseIgnoredWhenDisabled(t *testing.T) {
	m, _ := NewBuilder().WithoutMouse().Build(t)

	m, _ = sendMsg(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, mouse should be ignored", m.cursor)
	}
}

func TestMouseMotionAwayHidesTooltip(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	tt := m.presenter.HoverEnter(header.InputMouse, header.Anchor{X0: 30, Y0: 1, X1: 34, Y1: 1})
	if tt == nil {
		t.Fatal("HoverEnter returned nil for a stream narrow")
	}

	m, _ = sendMsg(t, m, tea.MouseMsg{X: 0, Y: 20, Action: tea.MouseActionMotion})
	if !tt.Destroyed() {
		t.Error("tooltip not destroyed after the pointer left")
	}
	if m.presenter.Tooltip() != nil {
		t.Error("presenter still holds a tooltip")
	}
}

func TestCloseDisposesTooltip(t *testing.T) {
	m, _ := NewBuilder().WithNarrow("stream:general").Build(t)
	tt := m.presenter.HoverEnter(header.InputMouse, header.Anchor{})

	m.Close()
	if !tt.Destroyed() {
		t.Error("Close left the tooltip alive")
	}
}
