package richtext

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	linkColor      = lipgloss.AdaptiveColor{Light: "#1f5fa8", Dark: "#6ea8fe"}
	codeColor      = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}
	mentionColor   = lipgloss.AdaptiveColor{Light: "#1f5fa8", Dark: "#8ab4f8"}
	selfMentionBg  = lipgloss.AdaptiveColor{Light: "#fbe7a1", Dark: "#5c4a00"}
	timestampColor = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#dddddd"}
)

var emojiRe = regexp.MustCompile(`:([a-z0-9_+\-]+):`)

// TimeLayout is the absolute format used for <time:...> spans.
const TimeLayout = "Mon, Jan 2 2006, 3:04 PM"

// Processor resolves the mention, timestamp and emoji spans in rendered
// text for display to one viewer.
type Processor struct {
	// SelfName is the viewer's full name. Mentions of it are highlighted.
	SelfName string
	// Now returns the reference time for relative hints.
	Now func() time.Time
	// Location is the zone absolute times are shown in.
	Location *time.Location

	renderer *lipgloss.Renderer
}

// NewProcessor returns a processor for the named viewer using the local
// clock and zone.
func NewProcessor(selfName string) *Processor {
	return &Processor{
		SelfName: selfName,
		Now:      time.Now,
		Location: time.Local,
		renderer: lipgloss.DefaultRenderer(),
	}
}

// Update returns rendered with mentions styled, emoji shortcodes replaced
// and timestamps localized. Text without spans is returned unchanged.
func (p *Processor) Update(rendered string) string {
	out := markerRe.ReplaceAllStringFunc(rendered, func(m string) string {
		sub := markerRe.FindStringSubmatch(m)
		switch sub[1] {
		case "mention":
			return p.mention(sub[2], false)
		case "silent":
			return p.mention(sub[2], true)
		default:
			return p.timestamp(sub[2])
		}
	})
	return ReplaceEmoji(out)
}

func (p *Processor) newStyle() lipgloss.Style {
	if p.renderer == nil {
		return lipgloss.NewStyle()
	}
	return p.renderer.NewStyle()
}

func (p *Processor) mention(name string, silent bool) string {
	if silent {
		return p.newStyle().Foreground(mentionColor).Render(name)
	}
	style := p.newStyle().Foreground(mentionColor).Bold(true)
	if name == "all" || name == "everyone" || name == "stream" || strings.EqualFold(name, p.SelfName) {
		style = style.Background(selfMentionBg)
	}
	return style.Render("@" + name)
}

func (p *Processor) timestamp(value string) string {
	t, ok := parseTimestamp(value)
	if !ok {
		return p.newStyle().Foreground(codeColor).Render("Invalid time format: " + value)
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	abs := t.In(loc).Format(TimeLayout)
	rel := humanize.RelTime(t, now(), "ago", "from now")
	return p.newStyle().Foreground(timestampColor).Render(abs) + " (" + rel + ")"
}

// parseTimestamp accepts RFC 3339 or Unix seconds.
func parseTimestamp(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}

// ReplaceEmoji swaps known :shortcode: sequences for their glyph. Unknown
// codes are left as typed.
func ReplaceEmoji(s string) string {
	if !strings.Contains(s, ":") {
		return s
	}
	return emojiRe.ReplaceAllStringFunc(s, func(m string) string {
		if glyph, ok := emojiByName[m[1:len(m)-1]]; ok {
			return glyph
		}
		return m
	})
}
