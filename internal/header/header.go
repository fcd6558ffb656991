// Package header renders the message-view header: the title bar above the
// message list that reflects the current narrow.
//
// The Presenter decides between five variants (recent conversations, inbox,
// all messages, an unknown stream, or any other narrow), builds a ViewModel
// for it and splices the rendered result into its TitleBar. Narrows that need
// free-text search leave the title bar alone and open the search bar
// instead.
package header

import (
	"log/slog"
	"strconv"

	zone "github.com/lrstanley/bubblezone"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/wesm/streamview/internal/i18n"
	"github.com/wesm/streamview/internal/narrow"
)

// Fixed header variants.
const (
	RecentTitle = "Recent conversations"
	RecentIcon  = "clock-o"
	InboxTitle  = "Inbox"
	InboxIcon   = "inbox"
	AllTitle    = "All messages"
	AllIcon     = "align-left"

	StreamNotFound = "This stream does not exist or is private."
	subscribersOne = "This stream has {count} subscriber."
	subscribersMsg = "This stream has {count} subscribers."
)

// ViewModel is the data handed to the header template. It is rebuilt on
// every render.
type ViewModel struct {
	Title     string
	Icon      string
	ZulipIcon string
	// Description is the stream's rendered description, already styled.
	Description        string
	SubCount           string
	FormattedSubCount  string
	SubCountTooltip    string
	StreamSettingsLink string
}

// ViewState reports whether one of the full-screen views that replace the
// message list is showing.
type ViewState interface {
	RecentVisible() bool
	InboxVisible() bool
}

// SubscriberCounter returns live subscriber counts.
type SubscriberCounter interface {
	SubscriberCount(streamID int64) int
}

// Translator localizes UI strings keyed by their English text.
type Translator interface {
	T(msg string, vals i18n.Values) string
	TN(singular, plural string, n int, vals i18n.Values) string
}

// SearchBar is the free-text search input that replaces the title bar.
type SearchBar interface {
	Open(query string)
	Close()
}

// PostProcessor resolves mentions, emoji and timestamps in rendered text.
type PostProcessor interface {
	Update(rendered string) string
}

// Options configures a Presenter. View, Subscribers and SearchBar are
// required.
type Options struct {
	View          ViewState
	Subscribers   SubscriberCounter
	SearchBar     SearchBar
	Translator    Translator
	PostProcessor PostProcessor
	// DarkTheme adjusts stream colours for a dark background.
	DarkTheme bool
	// TooltipWidth bounds the tooltip box, padding included.
	TooltipWidth int
	// OpenSettings is called when the subscriber count is clicked.
	OpenSettings func(link string)
	Logger       *slog.Logger
}

// Presenter owns the title bar and the settings tooltip.
type Presenter struct {
	bar  *TitleBar
	opts Options

	logger *slog.Logger

	// filter is the narrow most recently rendered or pushed to the search bar.
	filter             *narrow.Filter
	descriptionVisible bool

	zones      *zone.Manager
	tooltip    *Tooltip
	tooltipSeq int
}

// New returns a presenter writing into bar.
func New(bar *TitleBar, opts Options) *Presenter {
	if opts.Translator == nil {
		opts.Translator = i18n.English()
	}
	if opts.TooltipWidth < 10 {
		opts.TooltipWidth = 40
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{bar: bar, opts: opts, logger: logger}
}

// TitleBar returns the owned title bar.
func (p *Presenter) TitleBar() *TitleBar {
	return p.bar
}

// Filter returns the narrow last passed to Render.
func (p *Presenter) Filter() *narrow.Filter {
	return p.filter
}

// Track records filter as the current narrow without touching the title bar
// or the search bar, so hovers follow stream changes made while the search
// bar owns the header. The next Render redraws.
func (p *Presenter) Track(filter *narrow.Filter) {
	p.filter = filter
}

// DescriptionVisible reports whether the narrow description is showing.
func (p *Presenter) DescriptionVisible() bool {
	return p.descriptionVisible
}

// FormatCount abbreviates subscriber counts of 1000 or more to whole
// thousands. The division truncates: 1999 is "1k".
func FormatCount(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(n/1000) + "k"
}

// BuildViewModel computes the header for filter. A nil filter is the
// all-messages view.
func (p *Presenter) BuildViewModel(filter *narrow.Filter) ViewModel {
	t := p.opts.Translator
	switch {
	case p.opts.View.RecentVisible():
		return ViewModel{Title: t.T(RecentTitle, nil), Icon: RecentIcon}
	case p.opts.View.InboxVisible():
		return ViewModel{Title: t.T(InboxTitle, nil), ZulipIcon: InboxIcon}
	case filter == nil:
		return ViewModel{Title: t.T(AllTitle, nil), Icon: AllIcon}
	}

	var icon narrow.IconData
	filter.AddIconData(&icon)
	vm := ViewModel{
		Title:     p.title(filter),
		Icon:      icon.Icon,
		ZulipIcon: icon.ZulipIcon,
	}

	st := filter.Stream()
	if st == nil {
		if filter.HasOperator(narrow.OpStream) {
			vm.SubCount = "0"
			vm.FormattedSubCount = "0"
			vm.Description = t.T(StreamNotFound, nil)
		}
		return vm
	}

	count := p.opts.Subscribers.SubscriberCount(st.ID)
	vm.Description = st.RenderedDescription
	vm.SubCount = strconv.Itoa(count)
	vm.FormattedSubCount = FormatCount(count)
	vm.SubCountTooltip = t.TN(subscribersOne, subscribersMsg, count, nil)
	vm.StreamSettingsLink = st.SettingsPath()
	return vm
}

// title localizes the filter's title unless it is a name.
func (p *Presenter) title(filter *narrow.Filter) string {
	title := filter.Title()
	if filter.Stream() != nil || filter.HasOperator(narrow.OpDM) {
		return title
	}
	return p.opts.Translator.T(title, nil)
}

// Render shows filter in the header. Narrows that are not common narrows
// put their search string in the search bar and leave the title bar as it
// was.
func (p *Presenter) Render(filter *narrow.Filter) {
	p.filter = filter
	if filter != nil && !filter.IsCommonNarrow() {
		p.opts.SearchBar.Open(filter.SearchString())
		p.descriptionVisible = false
		return
	}

	vm := p.BuildViewModel(filter)
	p.bar.Replace(p.renderHeader(vm))
	p.Colorize(filter)
	p.bar.Show()
	if p.opts.PostProcessor != nil {
		p.bar.PostProcess(p.opts.PostProcessor.Update)
	}
	p.descriptionVisible = true
	p.opts.SearchBar.Close()
}

// Colorize paints the title-bar icon in the narrowed stream's colour. It
// must follow every Replace, which resets the icon style.
func (p *Presenter) Colorize(filter *narrow.Filter) {
	if filter == nil || filter.Stream() == nil {
		return
	}
	color, err := p.adjustColor(filter.Stream().Color)
	if err != nil {
		p.logger.Warn("invalid stream color", "stream_id", filter.Stream().ID, "color", filter.Stream().Color, "error", err)
		return
	}
	p.bar.SetIconColor(color)
}

// adjustColor keeps stream colours legible against the terminal background.
func (p *Presenter) adjustColor(hex string) (string, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", err
	}
	l, a, b := c.Lab()
	switch {
	case p.opts.DarkTheme && l < 0.55:
		l = 0.55
	case !p.opts.DarkTheme && l > 0.6:
		l = 0.6
	default:
		return c.Hex(), nil
	}
	return colorful.Lab(l, a, b).Clamped().Hex(), nil
}

// MaybeRerenderForStream rerenders when the stream with modifiedID is the one
// filter is narrowed to, and reports whether it did.
func (p *Presenter) MaybeRerenderForStream(filter *narrow.Filter, modifiedID int64) bool {
	if filter == nil || filter.Stream() == nil || filter.Stream().ID != modifiedID {
		return false
	}
	p.Render(filter)
	return true
}
