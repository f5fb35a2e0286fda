package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docwell/docsearch/internal/index"
)

// SaveSnapshot serialises the index to a JSON snapshot file. The write goes
// to a .tmp file first and is renamed into place only after a successful
// sync, so a crash mid-write never leaves a truncated snapshot behind.
func (e *Engine) SaveSnapshot(path string) error {
	snap := e.idx.Export()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot file: %w", err)
	}

	stats := e.idx.Stats()
	e.logger.Info("snapshot saved",
		"path", path,
		"documents", stats.TotalDocuments,
		"terms", stats.TotalTerms,
		"size_bytes", len(data),
	)
	return nil
}

// LoadSnapshot replaces the index contents with the snapshot at path.
// TF-IDF scores are never read from disk; they are recomputed from the
// restored documents so scoring always reflects the loaded corpus. On any
// failure (unreadable file, malformed JSON, missing sections, postings
// referencing unknown documents) the in-memory index is left untouched.
func (e *Engine) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot file: %w", err)
	}
	var snap index.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}
	if err := e.idx.Restore(&snap); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	stats := e.idx.Stats()
	e.logger.Info("snapshot loaded",
		"path", path,
		"documents", stats.TotalDocuments,
		"terms", stats.TotalTerms,
	)
	return nil
}
