package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/wesm/streamview/internal/config"
	"github.com/wesm/streamview/internal/header"
	"github.com/wesm/streamview/internal/richtext"
	"github.com/wesm/streamview/internal/store"
	"github.com/wesm/streamview/internal/testutil"
)

// setupTestConfig points the package config at a temporary home and
// restores the previous value when the test ends.
func setupTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	home := t.TempDir()
	c, err := config.Load(filepath.Join(home, "config.toml"), home)
	testutil.MustNoErr(t, err, "config.Load")
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"#76CE90", "#76ce90", false},
		{"#fff", "#ffffff", false},
		{"green", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("normalizeColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUserIDs(t *testing.T) {
	ids, err := parseUserIDs([]string{"1", "22"})
	testutil.MustNoErr(t, err, "parseUserIDs")
	if diff := cmp.Diff([]int64{1, 22}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"x", "0", "-3"} {
		if _, err := parseUserIDs([]string{bad}); err == nil {
			t.Errorf("parseUserIDs(%q) error = nil", bad)
		}
	}
}

func TestLookupStream(t *testing.T) {
	s := testutil.NewTestStore(t)
	testutil.MustCreateStream(t, s, store.Stream{ID: 42, Name: "general"})

	for _, ref := range []string{"42", "general", "GENERAL"} {
		st, err := lookupStream(s, ref)
		if err != nil {
			t.Errorf("lookupStream(%q) error = %v", ref, err)
			continue
		}
		if st.ID != 42 {
			t.Errorf("lookupStream(%q) = %d, want 42", ref, st.ID)
		}
	}

	_, err := lookupStream(s, "missing")
	if err == nil || !strings.Contains(err.Error(), `stream "missing" not found`) {
		t.Errorf("lookupStream(missing) error = %v", err)
	}
}

func TestOutputStreamsTable(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	rows := []streamRow{
		{Stream: &store.Stream{ID: 42, Name: "general", Color: "#76ce90", UpdatedAt: now.Add(-2 * time.Hour)}, Subscribers: 1999},
		{Stream: &store.Stream{ID: 7, Name: "team", Color: "#e4523d", InviteOnly: true, UpdatedAt: now}, Subscribers: 3},
	}

	var buf bytes.Buffer
	testutil.MustNoErr(t, outputStreamsTable(&buf, rows, now), "outputStreamsTable")

	testutil.AssertContainsAll(t, buf.String(), []string{
		"ID", "SUBSCRIBERS",
		"general", "public", "1,999", "2 hours ago",
		"team", "private",
		"2 stream(s)",
	})
}

func TestOutputStreamsJSON(t *testing.T) {
	rows := []streamRow{{Stream: &store.Stream{ID: 9, Name: "announce", WebPublic: true, InviteOnly: true}, Subscribers: 2}}

	var buf bytes.Buffer
	testutil.MustNoErr(t, outputStreamsJSON(&buf, rows), "outputStreamsJSON")

	var got []map[string]any
	testutil.MustNoErr(t, json.Unmarshal(buf.Bytes(), &got), "unmarshal")
	if len(got) != 1 || got[0]["name"] != "announce" || got[0]["subscribers"] != float64(2) {
		t.Errorf("json = %v", got)
	}
	if access(rows[0].Stream) != "web-public" {
		t.Errorf("access = %q, want web-public", access(rows[0].Stream))
	}
}

func TestHeaderRender(t *testing.T) {
	setupTestConfig(t)
	s := testutil.NewTestStore(t)
	testutil.MustCreateStream(t, s, store.Stream{
		ID: 42, Name: "general", Color: "#76ce90", RenderedDescription: "Everything :tada:",
	}, 1, 2)

	tests := []struct {
		name   string
		narrow string
		views  oneShotViews
		want   []string
	}{
		{"stream", "stream:general", oneShotViews{}, []string{"#", "general", "Everything 🎉", "👤 2"}},
		{"all messages", "", oneShotViews{}, []string{"All messages"}},
		{"recent", "stream:general", oneShotViews{recent: true}, []string{"Recent conversations"}},
		{"search", "stream:general outage", oneShotViews{}, []string{"/ stream:general outage"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out := headerOutput{views: tt.views}
			err := out.render(&buf, s, tt.narrow, header.Options{
				Subscribers:   store.NewPeerData(s, nil),
				PostProcessor: richtext.NewProcessor(""),
			})
			testutil.MustNoErr(t, err, "render")
			testutil.AssertContainsAll(t, buf.String(), tt.want)
			if strings.Contains(buf.String(), "\x1b[") {
				t.Error("output contains ANSI escapes with colour disabled")
			}
		})
	}
}

func TestColorEnabledForNonFile(t *testing.T) {
	if colorEnabled(&bytes.Buffer{}) {
		t.Error("colorEnabled(buffer) = true")
	}
}
