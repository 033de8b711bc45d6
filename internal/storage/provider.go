// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileInfo is the lightweight metadata the index keeps per vault file.
type FileInfo struct {
	Path    string    `json:"path"` // relative to vault root, forward slashes
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Provider is the interface for vault file operations. The open pipeline is
// read-only; Write exists solely for the embedded-image export tool.
type Provider interface {
	// List returns metadata for every regular file under dir (relative to
	// the vault root), skipping dot-directories such as the editor's own
	// configuration directory.
	List(dir string) ([]FileInfo, error)
	// Stat returns metadata for a single vault file.
	Stat(path string) (FileInfo, error)
	// Read returns the content of a vault file.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
