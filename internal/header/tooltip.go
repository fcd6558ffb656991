package header

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
)

// TooltipRequest is the data behind one settings tooltip. A new one is
// built from live values on every hover.
type TooltipRequest struct {
	StreamName      string
	SubscriberCount int
}

// InputKind is the pointer type that produced a hover.
type InputKind int

const (
	InputMouse InputKind = iota
	InputTouch
)

// PlacementBottom anchors the tooltip below its target.
const PlacementBottom = "bottom"

// Anchor is the screen rectangle of a tooltip target. X1 is exclusive.
type Anchor struct {
	X0, Y0 int
	X1, Y1 int
}

// Tooltip is a single-use tooltip instance. Once hidden it is destroyed and
// a later hover creates a new one.
type Tooltip struct {
	ID        int
	Request   TooltipRequest
	Placement string
	Anchor    Anchor

	lines     []string
	visible   bool
	destroyed bool
	onHidden  func(*Tooltip)
}

// Show makes the tooltip visible.
func (t *Tooltip) Show() {
	if t.destroyed {
		return
	}
	t.visible = true
}

// Hide hides the tooltip and fires its hidden callback.
func (t *Tooltip) Hide() {
	if !t.visible {
		return
	}
	t.visible = false
	if t.onHidden != nil {
		t.onHidden(t)
	}
}

func (t *Tooltip) Visible() bool   { return t.visible }
func (t *Tooltip) Destroyed() bool { return t.destroyed }

// Lines returns the rendered box, every line the same width.
func (t *Tooltip) Lines() []string {
	return t.lines
}

// Position returns the top-left screen cell of the box.
func (t *Tooltip) Position() (x, y int) {
	return t.Anchor.X0, t.Anchor.Y1 + 1
}

var (
	tooltipBg        = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#e8e8e8"}
	tooltipFg        = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	tooltipTextStyle = lipgloss.NewStyle().Foreground(tooltipFg).Background(tooltipBg)
	tooltipPadStyle  = lipgloss.NewStyle().Background(tooltipBg)
)

// renderTooltip is the tooltip template.
func renderTooltip(req TooltipRequest, t Translator, maxWidth int) []string {
	inner := maxWidth - 2
	text := []string{
		"#" + req.StreamName,
		t.TN(subscribersOne, subscribersMsg, req.SubscriberCount, nil),
	}
	width := 0
	for _, s := range text {
		width = max(width, ansi.StringWidth(s))
	}
	width = min(width, inner)

	lines := make([]string, 0, len(text))
	for i, s := range text {
		if ansi.StringWidth(s) > width {
			s = ansi.Truncate(s, width-1, "…")
		}
		style := tooltipTextStyle
		if i == 0 {
			style = style.Bold(true)
		}
		pad := width - ansi.StringWidth(s)
		lines = append(lines, tooltipPadStyle.Render(" ")+style.Render(s)+tooltipPadStyle.Render(strings.Repeat(" ", pad+1)))
	}
	return lines
}

// Tooltip returns the live tooltip, or nil.
func (p *Presenter) Tooltip() *Tooltip {
	return p.tooltip
}

// HoverEnter handles the pointer entering the settings affordance at
// anchor. Touch input never opens a tooltip. It returns the new tooltip, or
// nil when none was created.
func (p *Presenter) HoverEnter(kind InputKind, anchor Anchor) *Tooltip {
	if p.tooltip != nil {
		p.tooltip.Hide()
	}
	if kind == InputTouch || p.filter == nil || p.filter.Stream() == nil {
		return nil
	}
	st := p.filter.Stream()
	req := TooltipRequest{
		StreamName:      st.Name,
		SubscriberCount: p.opts.Subscribers.SubscriberCount(st.ID),
	}

	p.tooltipSeq++
	tt := &Tooltip{
		ID:        p.tooltipSeq,
		Request:   req,
		Placement: PlacementBottom,
		Anchor:    anchor,
		lines:     renderTooltip(req, p.opts.Translator, p.opts.TooltipWidth),
		onHidden:  p.destroyTooltip,
	}
	p.tooltip = tt
	tt.Show()
	return tt
}

// HoverLeave hides the live tooltip, which destroys it.
func (p *Presenter) HoverLeave() {
	if p.tooltip != nil {
		p.tooltip.Hide()
	}
}

func (p *Presenter) destroyTooltip(t *Tooltip) {
	t.destroyed = true
	t.lines = nil
	if p.tooltip == t {
		p.tooltip = nil
	}
}

// BindEvents starts routing mouse events through zones, which must be the
// manager that scans the program's view. It returns the mouse handler,
// which reports whether it consumed the event, and a disposer that unbinds
// the header and destroys any live tooltip.
func (p *Presenter) BindEvents(zones *zone.Manager) (handle func(tea.MouseMsg) bool, dispose func()) {
	p.zones = zones
	bound := true

	handle = func(msg tea.MouseMsg) bool {
		if !bound {
			return false
		}
		info := zones.Get(SettingsZoneID)
		inside := info != nil && !info.IsZero() && info.InBounds(msg) && p.settingsLink() != ""

		switch {
		case msg.Action == tea.MouseActionMotion && inside:
			if p.tooltip == nil {
				p.HoverEnter(InputMouse, Anchor{X0: info.StartX, Y0: info.StartY, X1: info.EndX + 1, Y1: info.EndY})
			}
			return true
		case msg.Action == tea.MouseActionMotion:
			if p.tooltip != nil {
				p.HoverLeave()
				return true
			}
			return false
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
			p.HoverLeave()
			if p.opts.OpenSettings != nil {
				p.opts.OpenSettings(p.settingsLink())
			}
			return true
		}
		return false
	}

	dispose = func() {
		bound = false
		p.HoverLeave()
		if p.zones == zones {
			p.zones = nil
		}
	}
	return handle, dispose
}

// settingsLink is the settings path of the narrowed stream, if any.
func (p *Presenter) settingsLink() string {
	if p.filter == nil || p.filter.Stream() == nil {
		return ""
	}
	return p.filter.Stream().SettingsPath()
}
