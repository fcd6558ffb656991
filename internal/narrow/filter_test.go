package narrow

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wesm/streamview/internal/store"
)

// mapResolver resolves streams from an in-memory map keyed by lowercase name.
type mapResolver map[string]*store.Stream

func (m mapResolver) ResolveStream(name string) (*store.Stream, bool) {
	st, ok := m[strings.ToLower(name)]
	return st, ok
}

func (m mapResolver) StreamByID(id int64) (*store.Stream, bool) {
	for _, st := range m {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}

func testResolver() mapResolver {
	return mapResolver{
		"general":  {ID: 42, Name: "general", Color: "#76ce90"},
		"team":     {ID: 7, Name: "team", InviteOnly: true},
		"announce": {ID: 9, Name: "announce", InviteOnly: true, WebPublic: true},
	}
}

func TestNewResolvesSingleStream(t *testing.T) {
	r := testResolver()

	f := FromString("stream:General topic:lunch", r)
	if f.Stream() == nil || f.Stream().ID != 42 {
		t.Fatalf("Stream() = %v, want general (42)", f.Stream())
	}

	if f := FromString("stream:missing", r); f.Stream() != nil {
		t.Errorf("missing stream resolved to %v", f.Stream())
	}
	if f := FromString("stream:general stream:team", r); f.Stream() != nil {
		t.Errorf("two stream operands resolved to %v", f.Stream())
	}
	if f := FromString("-stream:general", r); f.Stream() != nil {
		t.Errorf("negated stream resolved to %v", f.Stream())
	}
	if f := FromString("stream:general", nil); f.Stream() != nil {
		t.Errorf("nil resolver resolved to %v", f.Stream())
	}
}

func TestIsCommonNarrow(t *testing.T) {
	tests := []struct {
		narrow string
		want   bool
	}{
		{"", true},
		{"stream:general", true},
		{"stream:general topic:lunch", true},
		{"topic:lunch stream:general", true},
		{"dm:iago@example.com", true},
		{"is:dm", true},
		{"is:starred", true},
		{"is:mentioned", true},
		{"is:resolved", true},
		{"in:home", true},
		{"streams:public", true},
		{"stream:general outage", false},
		{"stream:general -topic:lunch", false},
		{"-is:resolved", false},
		{"sender:iago@example.com", false},
		{"has:link", false},
		{"stream:general near:100", false},
		{"is:unread", false},
		{"outage", false},
	}
	for _, tt := range tests {
		f := FromString(tt.narrow, nil)
		if got := f.IsCommonNarrow(); got != tt.want {
			t.Errorf("IsCommonNarrow(%q) = %v, want %v", tt.narrow, got, tt.want)
		}
	}
}

func TestTitleAndIcon(t *testing.T) {
	r := testResolver()
	tests := []struct {
		narrow    string
		wantTitle string
		wantIcon  IconData
	}{
		{"stream:general", "general", IconData{ZulipIcon: "hashtag"}},
		{"stream:general topic:lunch", "general", IconData{ZulipIcon: "hashtag"}},
		{"stream:team", "team", IconData{ZulipIcon: "lock"}},
		{"stream:announce", "announce", IconData{ZulipIcon: "globe"}},
		{"stream:missing", "Unknown stream", IconData{ZulipIcon: "hashtag"}},
		{"is:starred", "Starred messages", IconData{Icon: "star"}},
		{"is:mentioned", "Mentions", IconData{Icon: "at"}},
		{"is:dm", "Direct message feed", IconData{Icon: "envelope"}},
		{"dm:iago@example.com,cordelia@example.com", "iago@example.com, cordelia@example.com", IconData{Icon: "envelope"}},
		{"is:resolved", "Topics marked as resolved", IconData{Icon: "check"}},
		{"in:home", "Combined feed", IconData{Icon: "home"}},
		{"streams:public", "Public streams", IconData{Icon: "globe"}},
		{"sender:iago@example.com", "Search results", IconData{Icon: "search"}},
	}
	for _, tt := range tests {
		t.Run(tt.narrow, func(t *testing.T) {
			f := FromString(tt.narrow, r)
			if got := f.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			var icon IconData
			f.AddIconData(&icon)
			if diff := cmp.Diff(tt.wantIcon, icon); diff != "" {
				t.Errorf("AddIconData mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIconNamespacesExclusive(t *testing.T) {
	var d IconData
	d.SetIcon("star")
	d.SetZulipIcon("inbox")
	if d.Icon != "" || d.ZulipIcon != "inbox" {
		t.Errorf("after SetZulipIcon: %+v", d)
	}
	d.SetIcon("search")
	if d.ZulipIcon != "" || d.Icon != "search" {
		t.Errorf("after SetIcon: %+v", d)
	}
}

func TestOperatorQueries(t *testing.T) {
	f := FromString("stream:general -topic:lunch has:link", nil)
	if !f.HasOperator(OpStream) {
		t.Error("HasOperator(stream) = false")
	}
	if f.HasOperator(OpTopic) {
		t.Error("HasOperator(topic) = true for negated term")
	}
	if !f.HasOperand(OpHas, "LINK") {
		t.Error("HasOperand(has, LINK) = false")
	}
	if got := f.SearchString(); got != "stream:general -topic:lunch has:link" {
		t.Errorf("SearchString() = %q", got)
	}
}

func TestRefreshedFollowsRename(t *testing.T) {
	r := testResolver()
	f := FromString("stream:general topic:lunch", r)

	renamed := &store.Stream{ID: 42, Name: "lobby", Color: "#000000"}
	r2 := mapResolver{"lobby": renamed}

	got := f.Refreshed(r2)
	if got.Stream() != renamed {
		t.Fatalf("Refreshed stream = %v, want %v", got.Stream(), renamed)
	}
	if got.SearchString() != "stream:lobby topic:lunch" {
		t.Errorf("Refreshed SearchString() = %q", got.SearchString())
	}
	// Original is unchanged.
	if f.Stream().Name != "general" || f.SearchString() != "stream:general topic:lunch" {
		t.Errorf("original filter mutated: %q", f.SearchString())
	}

	gone := f.Refreshed(mapResolver{})
	if gone.Stream() != nil {
		t.Errorf("Refreshed on inaccessible stream kept %v", gone.Stream())
	}
}

func TestState(t *testing.T) {
	var s State
	if s.Filter() != nil || s.SearchString() != "" {
		t.Fatal("zero State should have no filter")
	}
	if _, ok := s.StreamID(); ok {
		t.Error("StreamID ok on empty state")
	}

	s.Set(FromString("stream:general", testResolver()))
	if id, ok := s.StreamID(); !ok || id != 42 {
		t.Errorf("StreamID() = %d, %v; want 42, true", id, ok)
	}
	if s.SearchString() != "stream:general" {
		t.Errorf("SearchString() = %q", s.SearchString())
	}
}
