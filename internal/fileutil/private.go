// Package fileutil creates the owner-only files and directories under the
// streamview home: the home directory itself and the TUI log.
package fileutil

import (
	"os"
	"path/filepath"
)

const (
	dirPerm  os.FileMode = 0700
	filePerm os.FileMode = 0600
)

// PrivateDir creates path and any missing parents readable only by the
// current user. Directories that already exist are left as they are.
func PrivateDir(path string) error {
	created := missingDirs(path)
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return err
	}
	for _, dir := range created {
		restrict(dir)
	}
	return nil
}

// AppendPrivate opens path for appending, creating it owner-only if needed.
func AppendPrivate(path string) (*os.File, error) {
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, err
	}
	if os.IsNotExist(statErr) {
		restrict(path)
	}
	return f, nil
}

// missingDirs lists path and each ancestor that does not exist yet, leaf
// first.
func missingDirs(path string) []string {
	var out []string
	for p := filepath.Clean(path); p != "." && p != string(filepath.Separator); {
		if _, err := os.Stat(p); err == nil {
			break
		}
		out = append(out, p)
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	return out
}
