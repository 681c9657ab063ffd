package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"guidregen/internal/guid"
	"guidregen/internal/logging"
	"guidregen/internal/project"
)

// Set is a set of identifiers.
type Set map[guid.ID]struct{}

// Has reports membership.
func (s Set) Has(id guid.ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) add(id guid.ID) { s[id] = struct{}{} }

// ResolveSelection turns selected paths into the regeneration set. Sidecar
// files are skipped since their identifier is implied by the asset. In
// recursive mode every file below a selected folder contributes its own
// identifier. Entries whose sidecar is missing are skipped with a warning;
// paths that cannot be resolved abort the run.
func (r *Regenerator) ResolveSelection(ctx context.Context, selection []string, recursive bool) (Set, error) {
	logger := logging.WithContext(ctx, r.logger)
	selected := make(Set)

	for _, entry := range selection {
		path, err := r.project.Resolve(entry)
		if err != nil {
			return nil, err
		}
		if project.IsMeta(path) {
			logger.Debug("skipping sidecar selection", slog.String(logging.FieldPath, r.project.Rel(path)))
			continue
		}

		if err := r.addAsset(logger, selected, path); err != nil {
			return nil, err
		}

		if recursive && r.project.IsDir(path) {
			files, err := r.project.FilesUnder(path)
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", r.project.Rel(path), err)
			}
			for _, file := range files {
				if project.IsMeta(file) {
					continue
				}
				if err := r.addAsset(logger, selected, file); err != nil {
					return nil, err
				}
			}
		}
	}

	logger.Info("selection resolved",
		slog.Int("selected_items", len(selection)),
		slog.Int("guids_selected", len(selected)),
		slog.Bool("recursive", recursive),
	)
	return selected, nil
}

func (r *Regenerator) addAsset(logger *slog.Logger, selected Set, path string) error {
	id, err := r.project.AssetGUID(path)
	if err != nil {
		if !errors.Is(err, project.ErrNoMeta) {
			return err
		}
		// The asset root itself never has a sidecar.
		if path != r.project.AssetsPath() {
			logging.Warn(logger, "selected item has no identifier", "missing_meta",
				"item keeps its identifier", slog.String(logging.FieldPath, r.project.Rel(path)))
		}
		return nil
	}
	selected.add(id)
	return nil
}
