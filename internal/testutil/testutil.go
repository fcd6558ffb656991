// Package testutil provides test helpers for streamview tests.
//
// The package is organized into focused files:
//   - assert.go: assertion helpers (MustNoErr, AssertContainsAll, etc.)
//   - store_helpers.go: database test setup (NewTestStore, MustCreateStream)
package testutil
