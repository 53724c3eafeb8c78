// Package storage defines the read-only directory handle the importers work against.
package storage

import "io/fs"

// Dir is the interface for directory and file access used during import.
type Dir interface {
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists the immediate children of path, sorted by filename.
	ReadDir(path string) ([]fs.DirEntry, error)
	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) ([]byte, error)
	// Abs returns the absolute form of path, used in error messages.
	Abs(path string) string
}
