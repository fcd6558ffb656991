package tui

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/wesm/streamview/internal/store"
	"github.com/wesm/streamview/internal/testutil"
)

// colorProfileMu serializes tests that mutate the global lipgloss color profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that assert
// on styled output. It acquires colorProfileMu to prevent data races with
// parallel tests and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// =============================================================================
// Test Fixtures
// =============================================================================

const testUserID = 1

// TestModelBuilder helps construct Model instances for testing.
type TestModelBuilder struct {
	narrow string
	width  int
	height int
	mouse  bool
	noLoad bool
}

func NewBuilder() *TestModelBuilder {
	return &TestModelBuilder{
		width:  100,
		height: 24,
		mouse:  true,
	}
}

func (b *TestModelBuilder) WithNarrow(narrowStr string) *TestModelBuilder {
	b.narrow = narrowStr
	return b
}

func (b *TestModelBuilder) WithSize(width, height int) *TestModelBuilder {
	b.width = width
	b.height = height
	return b
}

func (b *TestModelBuilder) WithoutMouse() *TestModelBuilder {
	b.mouse = false
	return b
}

// WithoutStreams skips the initial stream list load.
func (b *TestModelBuilder) WithoutStreams() *TestModelBuilder {
	b.noLoad = true
	return b
}

// Build creates the fixture store and a sized model over it. The store
// holds general (public, 3 subscribers), team (private, viewer subscribed)
// and secret (private, viewer not subscribed).
func (b *TestModelBuilder) Build(t *testing.T) (Model, *store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)
	testutil.MustCreateStream(t, st, store.Stream{
		ID: 42, Name: "general", Color: "#76ce90",
		Description: "Everything", RenderedDescription: "Everything :tada:",
	}, testUserID, 2, 3)
	testutil.MustCreateStream(t, st, store.Stream{ID: 7, Name: "team", Color: "#e4523d", InviteOnly: true}, testUserID)
	testutil.MustCreateStream(t, st, store.Stream{ID: 8, Name: "secret", InviteOnly: true}, 2)

	m := New(st, Options{
		UserID:       testUserID,
		SelfName:     "Iago",
		Narrow:       b.narrow,
		DarkTheme:    true,
		Mouse:        b.mouse,
		TooltipWidth: 40,
	})
	t.Cleanup(m.Close)

	m, _ = sendMsg(t, m, tea.WindowSizeMsg{Width: b.width, Height: b.height})
	if !b.noLoad {
		m = loadStreams(t, m)
	}
	return m, st
}

// loadStreams runs the stream load command synchronously.
func loadStreams(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadStreams()()
	loaded, ok := msg.(streamsLoadedMsg)
	if !ok {
		t.Fatalf("loadStreams returned %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("loadStreams: %v", loaded.err)
	}
	m, _ = sendMsg(t, m, loaded)
	return m
}

// =============================================================================
// Helpers
// =============================================================================

// sendKey sends a key message through Update and returns the concrete Model.
func sendKey(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	newM, cmd := m.Update(k)
	return newM.(Model), cmd
}

// sendMsg sends any tea.Msg through Update and returns the concrete Model.
func sendMsg(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newM, cmd := m.Update(msg)
	return newM.(Model), cmd
}

// typeText sends each rune of s as a key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = sendKey(t, m, key(r))
	}
	return m
}

func assertModal(t *testing.T, m Model, expected modalType) {
	t.Helper()
	if m.modal != expected {
		t.Errorf("modal = %v, want %v", m.modal, expected)
	}
}

func assertSearchString(t *testing.T, m Model, want string) {
	t.Helper()
	if got := m.narrow.SearchString(); got != want {
		t.Errorf("narrow = %q, want %q", got, want)
	}
}

// headerLine returns the plain text of the title bar line.
func headerLine(t *testing.T, m Model) string {
	t.Helper()
	lines := strings.Split(stripANSI(m.View()), "\n")
	if len(lines) < 2 {
		t.Fatalf("view has %d lines, want at least 2", len(lines))
	}
	return lines[1]
}

// key returns a KeyMsg for a single rune.
func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// keyEnter returns a KeyMsg for the Enter key
func keyEnter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

// keyEsc returns a KeyMsg for the Escape key
func keyEsc() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEscape}
}

// keyDown returns a KeyMsg for the Down arrow key
func keyDown() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyDown}
}

// keyUp returns a KeyMsg for the Up arrow key
func keyUp() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyUp}
}
