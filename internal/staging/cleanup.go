// Package staging finds and removes staging files that an interrupted atomic
// rewrite left next to the assets they were meant to replace.
package staging

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/afero"

	"guidregen/internal/fileutil"
	"guidregen/internal/logging"
)

// CleanStaleResult contains the outcome of a stale file cleanup operation.
type CleanStaleResult struct {
	Removed []FileInfo
	Errors  []CleanupError
}

// CleanupError pairs a file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// FileInfo contains metadata about a leftover staging file.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// List returns every staging file below root, sorted by path.
func List(fsys afero.Fs, root string) ([]FileInfo, error) {
	if ok, err := afero.DirExists(fsys, root); err != nil || !ok {
		return nil, err
	}
	var files []FileInfo
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !fileutil.IsStagingFile(info.Name()) {
			return nil
		}
		files = append(files, FileInfo{Path: path, ModTime: info.ModTime(), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// CleanStale removes staging files below root older than maxAge. A running
// atomic rewrite holds the project lock, so callers should hold it too.
func CleanStale(ctx context.Context, fsys afero.Fs, root string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	files, err := List(fsys, root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, file := range files {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: file.Path, Error: ctx.Err()})
			return result
		}
		if !file.ModTime.Before(cutoff) {
			continue
		}
		if err := fsys.Remove(file.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: file.Path, Error: err})
			logging.Warn(logger, "failed to remove stale staging file", "staging_cleanup_failed",
				"the temporary file remains next to the asset",
				slog.String(logging.FieldPath, file.Path), logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, file)
		if logger != nil {
			logger.Info("removed stale staging file",
				slog.String(logging.FieldPath, file.Path),
				slog.Duration("age", time.Since(file.ModTime)),
				slog.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}
	return result
}
