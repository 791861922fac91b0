// Package storage defines the file-tree abstraction used for the input and
// output roots.
package storage

import "github.com/starford/laguz/internal/models"

// Provider is the interface for operations on a rooted file tree. The
// pipeline holds one provider for the input root (read side) and one for the
// output root (write side).
type Provider interface {
	// List returns metadata for every regular file under dir (relative to root).
	List(dir string) ([]models.FileMeta, error)
	// Dirs returns every directory under root (relative, slash-separated),
	// depth-first lexical order, excluding the root itself.
	Dirs() ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root), creating
	// parent directories as needed.
	Write(path string, content []byte) error
	// MkdirAll ensures the directory at path (relative to root) exists.
	MkdirAll(path string) error
	// Exists reports whether path (relative to root) exists.
	Exists(path string) bool
}
