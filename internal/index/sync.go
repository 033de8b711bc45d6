package index

import (
	"log/slog"

	"github.com/starford/perthro/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new files and files whose size or mtime changed are upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	indexed, err := db.AllFiles()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if prev, ok := indexed[m.Path]; ok && prev.Size == m.Size && prev.ModTime.Equal(m.ModTime) {
			continue
		}

		if err := db.UpsertFile(NewFileRow(m)); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range indexed {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}
