package testutil

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// AssertStrings compares two string slices element-by-element.
// It provides nicer %q formatting for string values.
func AssertStrings(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got len %d, want %d: %q", len(got), len(want), got)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("at index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// AssertContainsAll asserts that got contains every substring in subs.
// ANSI escape sequences in got are ignored.
func AssertContainsAll(t *testing.T, got string, subs []string) {
	t.Helper()
	plain := ansi.Strip(got)
	for _, substr := range subs {
		if !strings.Contains(plain, substr) {
			t.Errorf("result %q should contain %q", plain, substr)
		}
	}
}

// AssertContainsNone asserts that got contains none of subs.
// ANSI escape sequences in got are ignored.
func AssertContainsNone(t *testing.T, got string, subs []string) {
	t.Helper()
	plain := ansi.Strip(got)
	for _, substr := range subs {
		if strings.Contains(plain, substr) {
			t.Errorf("result %q should not contain %q", plain, substr)
		}
	}
}

// MustNoErr fails the test immediately if err is non-nil.
// Use this for setup operations where failure means the test cannot proceed.
func MustNoErr(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}
