//go:build !windows

package fileutil

// restrict is a no-op on Unix, where the mode bits passed at creation
// already limit access.
func restrict(string) {}
