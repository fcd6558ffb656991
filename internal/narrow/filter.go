package narrow

import (
	"sort"
	"strings"

	"github.com/wesm/streamview/internal/store"
)

// StreamResolver looks up streams the viewer is allowed to see.
type StreamResolver interface {
	ResolveStream(name string) (*store.Stream, bool)
	StreamByID(id int64) (*store.Stream, bool)
}

// IconData carries a narrow's icon. Icon (the "fa" namespace) and ZulipIcon
// (the app's own icon set) are mutually exclusive.
type IconData struct {
	Icon      string
	ZulipIcon string
}

// SetIcon sets the "fa" icon and clears the app icon.
func (d *IconData) SetIcon(name string) {
	d.Icon = name
	d.ZulipIcon = ""
}

// SetZulipIcon sets the app icon and clears the "fa" icon.
func (d *IconData) SetZulipIcon(name string) {
	d.ZulipIcon = name
	d.Icon = ""
}

// Filter is an immutable narrow: its terms plus, when the narrow names a
// single stream the viewer can access, the resolved stream.
type Filter struct {
	terms  []Term
	stream *store.Stream
}

// New builds a filter from terms, resolving the stream operand through r.
// r may be nil, in which case no stream resolves.
func New(terms []Term, r StreamResolver) *Filter {
	f := &Filter{terms: append([]Term(nil), terms...)}
	if r == nil {
		return f
	}
	names := f.Operands(OpStream)
	if len(names) == 1 {
		if st, ok := r.ResolveStream(names[0]); ok {
			f.stream = st
		}
	}
	return f
}

// FromString parses and builds a filter in one step.
func FromString(narrowStr string, r StreamResolver) *Filter {
	return New(Parse(narrowStr), r)
}

// Refreshed returns a copy of f whose stream reflects its current state in r.
// Renames are followed by ID; a stream that is no longer accessible drops out.
// Filters without a resolved stream are returned unchanged.
func (f *Filter) Refreshed(r StreamResolver) *Filter {
	if f == nil || f.stream == nil || r == nil {
		return f
	}
	out := &Filter{terms: append([]Term(nil), f.terms...)}
	st, ok := r.StreamByID(f.stream.ID)
	if !ok {
		return out
	}
	out.stream = st
	for i, t := range out.terms {
		if t.Operator == OpStream && !t.Negated {
			out.terms[i].Operand = st.Name
		}
	}
	return out
}

// Terms returns a copy of the filter's terms.
func (f *Filter) Terms() []Term {
	return append([]Term(nil), f.terms...)
}

// Stream returns the resolved stream, or nil when the narrow does not name
// exactly one accessible stream.
func (f *Filter) Stream() *store.Stream {
	return f.stream
}

// HasOperator reports whether any non-negated term uses op.
func (f *Filter) HasOperator(op string) bool {
	for _, t := range f.terms {
		if t.Operator == op && !t.Negated {
			return true
		}
	}
	return false
}

// HasOperand reports whether a non-negated op:operand term is present.
func (f *Filter) HasOperand(op, operand string) bool {
	for _, t := range f.terms {
		if t.Operator == op && !t.Negated && strings.EqualFold(t.Operand, operand) {
			return true
		}
	}
	return false
}

// Operands returns the operands of all non-negated terms using op.
func (f *Filter) Operands(op string) []string {
	var out []string
	for _, t := range f.terms {
		if t.Operator == op && !t.Negated {
			out = append(out, t.Operand)
		}
	}
	return out
}

// SearchString returns the textual form of the narrow for the search bar.
func (f *Filter) SearchString() string {
	return Unparse(f.terms)
}

// termType names a term for common-narrow matching, e.g. "stream",
// "is-starred", "not-topic".
func termType(t Term) string {
	result := ""
	if t.Negated {
		result = "not-"
	}
	result += t.Operator
	switch t.Operator {
	case OpIs, OpIn, OpStreams:
		result += "-" + t.Operand
	}
	return result
}

// sortedTermTypes returns the filter's term types in canonical order.
func (f *Filter) sortedTermTypes() string {
	types := make([]string, len(f.terms))
	for i, t := range f.terms {
		types[i] = termType(t)
	}
	sort.Strings(types)
	return strings.Join(types, ",")
}

// commonNarrows lists the sorted term-type signatures that are expressible
// without free-text search.
var commonNarrows = map[string]bool{
	"":               true,
	"stream":         true,
	"stream,topic":   true,
	"dm":             true,
	"is-dm":          true,
	"is-mentioned":   true,
	"is-starred":     true,
	"is-resolved":    true,
	"in-home":        true,
	"in-all":         true,
	"streams-public": true,
}

// IsCommonNarrow reports whether the narrow is one of the standard views
// (stream, stream+topic, direct messages, starred...) rather than a search.
func (f *Filter) IsCommonNarrow() bool {
	return commonNarrows[f.sortedTermTypes()]
}

// Title returns the narrow's English title. Callers localize it.
func (f *Filter) Title() string {
	switch f.sortedTermTypes() {
	case "stream", "stream,topic":
		if f.stream != nil {
			return f.stream.Name
		}
		return "Unknown stream"
	case "is-starred":
		return "Starred messages"
	case "is-mentioned":
		return "Mentions"
	case "is-dm":
		return "Direct message feed"
	case "is-resolved":
		return "Topics marked as resolved"
	case "dm":
		return strings.Join(strings.Split(f.Operands(OpDM)[0], ","), ", ")
	case "in-home":
		return "Combined feed"
	case "in-all", "":
		return "All messages"
	case "streams-public":
		return "Public streams"
	default:
		return "Search results"
	}
}

// AddIconData fills in the icon for the narrow.
func (f *Filter) AddIconData(d *IconData) {
	switch f.sortedTermTypes() {
	case "stream", "stream,topic":
		switch {
		case f.stream == nil:
			d.SetZulipIcon("hashtag")
		case f.stream.WebPublic:
			d.SetZulipIcon("globe")
		case f.stream.InviteOnly:
			d.SetZulipIcon("lock")
		default:
			d.SetZulipIcon("hashtag")
		}
	case "is-starred":
		d.SetIcon("star")
	case "is-mentioned":
		d.SetIcon("at")
	case "is-dm", "dm":
		d.SetIcon("envelope")
	case "is-resolved":
		d.SetIcon("check")
	case "in-home":
		d.SetIcon("home")
	case "in-all", "":
		d.SetIcon("align-left")
	case "streams-public":
		d.SetIcon("globe")
	default:
		d.SetIcon("search")
	}
}
