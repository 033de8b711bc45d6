package index

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/perthro/internal/storage"
)

// imageExts are the extensions ListImages reports. Wikilink lookup is not
// restricted to these; any vault file can be a link target.
var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".webp": {}, ".svg": {}, ".bmp": {}, ".avif": {},
}

// FileRow represents a row in the files table.
type FileRow struct {
	Path    string    // relative to vault root, forward slashes
	Name    string    // base name with extension
	Stem    string    // base name without extension
	Ext     string    // lowercase extension including the dot
	Size    int64
	ModTime time.Time
}

// NewFileRow derives the indexed name fields from file metadata.
func NewFileRow(fi storage.FileInfo) FileRow {
	name := path.Base(fi.Path)
	ext := strings.ToLower(path.Ext(name))
	return FileRow{
		Path:    fi.Path,
		Name:    name,
		Stem:    strings.TrimSuffix(name, path.Ext(name)),
		Ext:     ext,
		Size:    fi.Size,
		ModTime: fi.ModTime,
	}
}

// UpsertFile inserts or replaces a file row.
func (db *DB) UpsertFile(row FileRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO files (path, name, stem, ext, size, mtime)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name  = excluded.name,
			stem  = excluded.stem,
			ext   = excluded.ext,
			size  = excluded.size,
			mtime = excluded.mtime
	`, row.Path, row.Name, row.Stem, row.Ext, row.Size, row.ModTime)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}
	return nil
}

// DeleteFile removes a file row.
func (db *DB) DeleteFile(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete file: %w", err)
	}
	return nil
}

// LookupName maps a bare wikilink target to a vault-relative path. The
// target may carry its extension (name match) or omit it (stem match).
// On multiple candidates the shortest path wins. Empty string means no match.
func (db *DB) LookupName(name string) (string, error) {
	var p string
	err := db.conn.QueryRow(`
		SELECT path FROM files
		WHERE name = ? OR stem = ?
		ORDER BY LENGTH(path), path
		LIMIT 1
	`, name, name).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: lookup name: %w", err)
	}
	return p, nil
}

// GetFile returns the row for a path, or nil if not indexed.
func (db *DB) GetFile(path string) (*FileRow, error) {
	row := db.conn.QueryRow(`SELECT path, name, stem, ext, size, mtime FROM files WHERE path = ?`, path)
	var fr FileRow
	err := row.Scan(&fr.Path, &fr.Name, &fr.Stem, &fr.Ext, &fr.Size, &fr.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get file: %w", err)
	}
	return &fr, nil
}

// ListImages returns image files, optionally restricted to a folder prefix.
func (db *DB) ListImages(folder string, limit int) ([]FileRow, error) {
	if limit <= 0 {
		limit = 200
	}
	exts := make([]string, 0, len(imageExts))
	args := make([]any, 0, len(imageExts)+2)
	for ext := range imageExts {
		exts = append(exts, "?")
		args = append(args, ext)
	}
	query := `SELECT path, name, stem, ext, size, mtime FROM files WHERE ext IN (` + strings.Join(exts, ",") + `)`
	if folder != "" {
		query += ` AND path LIKE ?`
		args = append(args, strings.TrimSuffix(folder, "/")+"/%")
	}
	query += ` ORDER BY path LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list images: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var fr FileRow
		if err := rows.Scan(&fr.Path, &fr.Name, &fr.Stem, &fr.Ext, &fr.Size, &fr.ModTime); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

// AllFiles returns every indexed row keyed by path, for sync comparisons.
func (db *DB) AllFiles() (map[string]FileRow, error) {
	rows, err := db.conn.Query(`SELECT path, name, stem, ext, size, mtime FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all files: %w", err)
	}
	defer rows.Close()
	out := make(map[string]FileRow)
	for rows.Next() {
		var fr FileRow
		if err := rows.Scan(&fr.Path, &fr.Name, &fr.Stem, &fr.Ext, &fr.Size, &fr.ModTime); err != nil {
			return nil, err
		}
		out[fr.Path] = fr
	}
	return out, rows.Err()
}
