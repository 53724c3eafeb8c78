package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Dir against the host file system with no path restrictions.
type Local struct{}

// Stat returns file info for path.
func (Local) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir lists the entries of path.
func (Local) ReadDir(path string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read dir %s: %w", path, err)
	}
	return entries, nil
}

// ReadFile returns the raw bytes of a file.
func (Local) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Abs returns the absolute path, or path unchanged if it cannot be resolved.
func (Local) Abs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// FS implements Dir rooted at a decision directory. Paths are relative to
// the root and may not escape it.
type FS struct {
	root string // absolute path to the decision directory
}

// NewFS creates a new FS rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute root directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// Stat returns file info for a path under the root.
func (f *FS) Stat(path string) (fs.FileInfo, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	return os.Stat(abs)
}

// ReadDir lists the immediate children of a directory under the root.
func (f *FS) ReadDir(path string) ([]fs.DirEntry, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read dir %s: %w", path, err)
	}
	return entries, nil
}

// ReadFile returns the raw bytes of a file under the root.
func (f *FS) ReadFile(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Abs returns the absolute location of path under the root.
func (f *FS) Abs(path string) string {
	if path == "" {
		return f.root
	}
	return filepath.Join(f.root, filepath.Clean(path))
}
