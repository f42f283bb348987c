// Package filex provides filesystem helpers over afero.Fs so callers can run
// against the OS or an in-memory filesystem.
package filex

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// EnsureDir creates dir (and parents) if missing and returns its cleaned path.
func EnsureDir(fs afero.Fs, dir string) (string, error) {
	dir = filepath.Clean(dir)
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// WriteFileAtomic writes data to path through a temporary sibling file and a
// rename, so readers never observe a partially written file. The parent
// directory is created when missing.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm uint32) error {
	if _, err := EnsureDir(fs, filepath.Dir(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, fsMode(perm)); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil
	}
	if err := fs.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
