package regen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"guidregen/internal/fileutil"
	"guidregen/internal/guid"
	"guidregen/internal/logging"
)

type pendingWrite struct {
	path   string
	staged string
}

// Rewrite applies the minted mapping to every indexed file. Only identifiers
// that are both owned and selected are replaced. Files that end up unchanged
// are not written. Progress updates are sent but cancellation is ignored.
func (r *Regenerator) Rewrite(ctx context.Context, inv *Inventory, selected Set, req Request, progress Progress, result *Result) error {
	if progress == nil {
		progress = nopProgress{}
	}
	logger := logging.WithContext(ctx, r.logger)
	fsys := r.project.FS()
	if result.Applied == nil {
		result.Applied = make(map[guid.ID]guid.ID)
	}

	var staged []pendingWrite
	sampler := logging.NewProgressSampler(0.1)
	total := len(inv.Indexed)
	for i, path := range inv.Indexed {
		rel := r.project.Rel(path)
		fraction := float64(i) / float64(total)
		progress.Update(PhaseRewriting, rel, fraction)
		if sampler.ShouldLog(string(PhaseRewriting), fraction) {
			logger.Debug("rewrite progress", slog.Int("files_checked", i), slog.Int("files_total", total))
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			r.discardStaged(logger, staged)
			return fmt.Errorf("read %s: %w", rel, err)
		}
		content, change, err := r.substitute(logger, inv, selected, path, string(data))
		if err != nil {
			r.discardStaged(logger, staged)
			return err
		}
		if len(change.Replacements) == 0 {
			continue
		}
		for _, rep := range change.Replacements {
			result.Applied[rep.Old] = rep.New
		}
		result.Changes = append(result.Changes, change)

		if req.DryRun {
			continue
		}
		if req.Atomic {
			tmp, err := fileutil.StageFile(fsys, path, []byte(content))
			if err != nil {
				r.discardStaged(logger, staged)
				return err
			}
			staged = append(staged, pendingWrite{path: path, staged: tmp})
			continue
		}
		if err := r.backup(req.BackupDir, path); err != nil {
			return err
		}
		if err := fileutil.WriteFileKeepMode(fsys, path, []byte(content)); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}

	if req.Atomic && !req.DryRun {
		return r.commitStaged(logger, staged, req.BackupDir)
	}
	return nil
}

func (r *Regenerator) substitute(logger *slog.Logger, inv *Inventory, selected Set, path, content string) (string, FileChange, error) {
	change := FileChange{Path: path}
	for _, old := range inv.FileIDs[path] {
		if !inv.Owned.Has(old) || !selected.Has(old) {
			continue
		}
		replacement := inv.Mapping[old]
		if replacement == "" {
			return "", change, fmt.Errorf("%s in %s: %w", old, r.project.Rel(path), ErrMissingMapping)
		}
		count := guid.Occurrences(content, old)
		if count == 0 {
			continue
		}
		logger.Info("replacing guid",
			slog.String(logging.FieldPath, r.project.Rel(path)),
			slog.String("old_guid", old.String()),
			slog.String("new_guid", replacement.String()),
			slog.Int("occurrences", count),
		)
		content = guid.Replace(content, old, replacement)
		change.Replacements = append(change.Replacements, Replacement{Old: old, New: replacement, Count: count})
	}
	return content, change, nil
}

func (r *Regenerator) commitStaged(logger *slog.Logger, staged []pendingWrite, backupDir string) error {
	for _, pending := range staged {
		if err := r.backup(backupDir, pending.path); err != nil {
			r.discardStaged(logger, staged)
			return err
		}
	}
	fsys := r.project.FS()
	for i, pending := range staged {
		if err := fsys.Rename(pending.staged, pending.path); err != nil {
			r.discardStaged(logger, staged[i:])
			return fmt.Errorf("replace %s: %w", r.project.Rel(pending.path), err)
		}
	}
	logger.Debug("staged rewrites committed", slog.Int("files", len(staged)))
	return nil
}

func (r *Regenerator) discardStaged(logger *slog.Logger, staged []pendingWrite) {
	fsys := r.project.FS()
	for _, pending := range staged {
		if err := fsys.Remove(pending.staged); err != nil {
			logging.Warn(logger, "failed to remove staging file", "staging_cleanup_failed",
				"a temporary file remains next to the asset", slog.String(logging.FieldPath, pending.staged), logging.Error(err))
		}
	}
}

func (r *Regenerator) backup(dir, path string) error {
	if dir == "" {
		return nil
	}
	dst := filepath.Join(dir, filepath.FromSlash(r.project.ProjectRel(path)))
	if err := fileutil.CopyFileVerified(r.project.FS(), path, dst); err != nil {
		return fmt.Errorf("back up %s: %w", r.project.Rel(path), err)
	}
	return nil
}
