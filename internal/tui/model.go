// Package tui provides a terminal user interface for streamview.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/wesm/streamview/internal/header"
	"github.com/wesm/streamview/internal/i18n"
	"github.com/wesm/streamview/internal/narrow"
	"github.com/wesm/streamview/internal/richtext"
	"github.com/wesm/streamview/internal/store"
)

// Options configuration for TUI.
type Options struct {
	UserID   int64
	SelfName string
	// Narrow is the narrow to open with, in search-bar syntax.
	Narrow       string
	Translator   *i18n.Translator
	DarkTheme    bool
	Mouse        bool
	TooltipWidth int
	// Updates delivers IDs of streams whose metadata changed.
	Updates <-chan int64
	Logger  *slog.Logger
}

// modalType represents the type of modal dialog.
type modalType int

const (
	modalNone modalType = iota
	modalQuitConfirm
	modalHelp
)

// fullViews tracks the full-screen views that replace the message list.
type fullViews struct {
	recent bool
	inbox  bool
}

func (v *fullViews) RecentVisible() bool { return v.recent }
func (v *fullViews) InboxVisible() bool  { return v.inbox }

// searchBar is the search input shown in place of the title bar.
type searchBar struct {
	input textinput.Model
	open  bool
}

// Open shows the bar holding query, without taking focus.
func (s *searchBar) Open(query string) {
	s.input.SetValue(query)
	s.input.CursorEnd()
	s.open = true
}

// Close hides and blurs the bar.
func (s *searchBar) Close() {
	s.input.Blur()
	s.open = false
}

// Focused reports whether keys go to the input.
func (s *searchBar) Focused() bool {
	return s.open && s.input.Focused()
}

// pendingState carries results from header callbacks back into Update.
type pendingState struct {
	settingsLink string
}

// Model is the main TUI model following the Elm architecture.
type Model struct {
	store    *store.Store
	resolver *store.Resolver
	logger   *slog.Logger

	// Header
	presenter    *header.Presenter
	views        *fullViews
	search       *searchBar
	narrow       narrow.State
	zones        *zone.Manager
	handleMouse  func(tea.MouseMsg) bool
	disposeMouse func()
	pending      *pendingState

	// Stream list
	streams      []*store.Stream
	cursor       int
	scrollOffset int

	selfName string
	updates  <-chan int64

	// Terminal dimensions
	width  int
	height int

	err error

	// Modal state
	modal modalType

	// Flash message (temporary notification)
	flashMessage   string
	flashExpiresAt time.Time

	quitting bool
}

// New creates a new TUI model reading from st.
func New(st *store.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "stream:general topic:lunch or search text"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.Width = 60

	translator := opts.Translator
	if translator == nil {
		translator = i18n.English()
	}

	m := Model{
		store:    st,
		resolver: store.NewResolver(st, opts.UserID, logger),
		logger:   logger,
		views:    &fullViews{},
		search:   &searchBar{input: ti},
		pending:  &pendingState{},
		selfName: opts.SelfName,
		updates:  opts.Updates,
	}

	pending := m.pending
	m.presenter = header.New(header.NewTitleBar(), header.Options{
		View:          m.views,
		Subscribers:   store.NewPeerData(st, logger),
		SearchBar:     m.search,
		Translator:    translator,
		PostProcessor: richtext.NewProcessor(opts.SelfName),
		DarkTheme:     opts.DarkTheme,
		TooltipWidth:  opts.TooltipWidth,
		OpenSettings:  func(link string) { pending.settingsLink = link },
		Logger:        logger,
	})
	if opts.Mouse {
		m.zones = zone.New()
		m.handleMouse, m.disposeMouse = m.presenter.BindEvents(m.zones)
	}

	var initial *narrow.Filter
	if opts.Narrow != "" {
		initial = narrow.FromString(opts.Narrow, m.resolver)
	}
	m.narrow.Set(initial)
	m.presenter.Render(initial)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStreams(), m.waitForUpdate())
}

// streamsLoadedMsg is sent when the stream list is loaded.
type streamsLoadedMsg struct {
	streams []*store.Stream
	err     error
}

// streamUpdatedMsg reports a change to one stream's metadata.
type streamUpdatedMsg struct {
	id int64
}

// updatesClosedMsg is sent when the update channel closes.
type updatesClosedMsg struct{}

// flashClearMsg clears the flash message after timeout.
type flashClearMsg struct{}

// flashDuration is how long flash messages are displayed.
const flashDuration = 4 * time.Second

// loadStreams fetches the streams visible to the viewer.
func (m Model) loadStreams() tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = streamsLoadedMsg{err: fmt.Errorf("streams panic: %v", r)}
			}
		}()

		all, err := m.store.ListStreams()
		if err != nil {
			return streamsLoadedMsg{err: err}
		}
		visible := make([]*store.Stream, 0, len(all))
		for _, st := range all {
			if _, ok := m.resolver.StreamByID(st.ID); ok {
				visible = append(visible, st)
			}
		}
		return streamsLoadedMsg{streams: visible}
	}
}

// waitForUpdate blocks on the next stream change notification.
func (m Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		id, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return streamUpdatedMsg{id: id}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouseEvent(msg)

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.search.input.Width = max(m.width-6, 10)
		m.ensureCursorVisible()
		return m, nil

	case streamsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.streams = msg.streams
		if m.cursor >= len(m.streams) {
			m.cursor = max(len(m.streams)-1, 0)
		}
		m.ensureCursorVisible()
		return m, nil

	case streamUpdatedMsg:
		m.refreshNarrow(msg.id)
		return m, tea.Batch(m.loadStreams(), m.waitForUpdate())

	case updatesClosedMsg:
		m.updates = nil
		return m, nil

	case flashClearMsg:
		// Clear flash message if it hasn't been updated since the timer started
		if time.Now().After(m.flashExpiresAt) || m.flashExpiresAt.IsZero() {
			m.flashMessage = ""
		}
		return m, nil
	}

	return m, nil
}

// setNarrow makes f the active narrow and renders the header for it. The
// full-screen views are dismissed.
func (m *Model) setNarrow(f *narrow.Filter) {
	m.views.recent = false
	m.views.inbox = false
	m.narrow.Set(f)
	m.presenter.Render(f)
}

// refreshNarrow re-resolves the narrowed stream after stream id changed and
// rerenders the header if it showed that stream.
func (m *Model) refreshNarrow(id int64) {
	f := m.narrow.Filter()
	if f == nil {
		return
	}
	refreshed := f.Refreshed(m.resolver)
	if f.Stream() == nil && f.HasOperator(narrow.OpStream) {
		refreshed = narrow.New(f.Terms(), m.resolver)
	}
	m.narrow.Set(refreshed)
	if m.search.Focused() {
		// cancelSearch or commitSearch redraws the title bar.
		m.presenter.Track(refreshed)
		return
	}

	lost := f.Stream() != nil && f.Stream().ID == id && refreshed.Stream() == nil
	gained := f.Stream() == nil && refreshed.Stream() != nil
	if lost || gained {
		m.presenter.Render(refreshed)
		return
	}
	m.presenter.MaybeRerenderForStream(refreshed, id)
}

// toggleView switches a full-screen view on or off and re-renders the
// header. Only one full-screen view shows at a time.
func (m *Model) toggleView(recent bool) {
	if recent {
		m.views.recent = !m.views.recent
		m.views.inbox = false
	} else {
		m.views.inbox = !m.views.inbox
		m.views.recent = false
	}
	m.presenter.Render(m.narrow.Filter())
}

// showFlash displays a temporary flash message.
func (m Model) showFlash(message string) (tea.Model, tea.Cmd) {
	m.flashMessage = message
	m.flashExpiresAt = time.Now().Add(flashDuration)
	return m, tea.Tick(flashDuration, func(t time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

// Close releases the header's mouse bindings.
func (m Model) Close() {
	if m.disposeMouse != nil {
		m.disposeMouse()
	}
}

// Run starts the TUI program and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, opts Options) error {
	m := New(st, opts)
	defer m.Close()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Mouse {
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	return err
}
