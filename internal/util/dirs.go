package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureWritableDir makes sure dir exists and the process can create files
// in it. Paths containing ".." are rejected.
func EnsureWritableDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	if strings.Contains(dir, "..") {
		return fmt.Errorf("directory path %q contains a parent reference", dir)
	}
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	case err != nil:
		return fmt.Errorf("cannot access %s: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists but is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".homebase-write-check-*")
	if err != nil {
		return fmt.Errorf("no write permission for %s: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
