package regen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"guidregen/internal/guid"
	"guidregen/internal/logging"
	"guidregen/internal/project"
)

// ExtStats aggregates scan figures for one extension.
type ExtStats struct {
	Files       int
	Bytes       int64
	Occurrences int
}

// Inventory is the outcome of a scan: which identifiers live in which files,
// which identifiers the project owns, and (after Mint) their replacements.
type Inventory struct {
	// Files lists every scanned file in scan order.
	Files []string
	// Indexed lists files containing at least one identifier, in scan order.
	Indexed []string
	// FileIDs holds the distinct identifiers of each indexed file in
	// first-seen order.
	FileIDs map[string][]guid.ID
	// Owned holds identifiers declared first in a sidecar file.
	Owned Set
	// Order lists every distinct identifier in first-seen order.
	Order []guid.ID
	// Mapping maps each identifier to its replacement. Empty until Mint.
	Mapping map[guid.ID]guid.ID
	// ByExt aggregates sizes and occurrence counts per extension.
	ByExt map[string]*ExtStats
	Bytes int64
}

func newInventory() *Inventory {
	return &Inventory{
		FileIDs: make(map[string][]guid.ID),
		Owned:   make(Set),
		Mapping: make(map[guid.ID]guid.ID),
		ByExt:   make(map[string]*ExtStats),
	}
}

func (inv *Inventory) seen(id guid.ID) bool {
	_, ok := inv.Mapping[id]
	return ok
}

// Mint assigns a fresh replacement to every identifier in first-seen order.
// Every discovered identifier is reserved first so no replacement can collide
// with an identifier that already exists anywhere in the tree.
func (inv *Inventory) Mint(m *guid.Minter) error {
	for _, id := range inv.Order {
		m.Reserve(id)
	}
	for _, id := range inv.Order {
		if replacement := inv.Mapping[id]; replacement != "" {
			continue
		}
		replacement, err := m.Mint()
		if err != nil {
			return err
		}
		inv.Mapping[id] = replacement
	}
	return nil
}

// Scan reads every allow-listed file under the asset root once. The
// cancellation check is polled before each file; on cancellation Scan returns
// ErrCanceled and nothing has been written.
func (r *Regenerator) Scan(ctx context.Context, extensions []string, progress Progress) (*Inventory, error) {
	if progress == nil {
		progress = nopProgress{}
	}
	logger := logging.WithContext(ctx, r.logger)

	files, err := r.project.Files(withSidecars(extensions))
	if err != nil {
		return nil, err
	}

	inv := newInventory()
	sampler := logging.NewProgressSampler(0.1)
	fsys := r.project.FS()
	total := len(files)

	for i, path := range files {
		rel := r.project.Rel(path)
		fraction := float64(i) / float64(total)
		if err := checkCanceled(ctx, progress, PhaseScanning, rel, fraction); err != nil {
			logger.Info("scan stopped", slog.Int("files_scanned", i), slog.Int("files_total", total))
			return nil, err
		}
		if sampler.ShouldLog(string(PhaseScanning), fraction) {
			logger.Debug("scan progress", slog.Int("files_scanned", i), slog.Int("files_total", total))
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		inv.add(path, string(data))
	}

	logger.Info("scan complete",
		slog.Int("files_scanned", len(inv.Files)),
		slog.Int("files_with_guids", len(inv.Indexed)),
		slog.Int("guids_found", len(inv.Order)),
		slog.Int("guids_owned", len(inv.Owned)),
	)
	return inv, nil
}

// withSidecars appends the sidecar extension when the allow-list omits it.
// Without sidecars nothing is owned and no run could change anything.
func withSidecars(extensions []string) []string {
	for _, ext := range extensions {
		if strings.EqualFold(ext, project.MetaExt) {
			return extensions
		}
	}
	return append(slices.Clip(extensions), project.MetaExt)
}

func (inv *Inventory) add(path, content string) {
	inv.Files = append(inv.Files, path)
	inv.Bytes += int64(len(content))

	ext := strings.ToLower(filepath.Ext(path))
	stats := inv.ByExt[ext]
	if stats == nil {
		stats = &ExtStats{}
		inv.ByExt[ext] = stats
	}
	stats.Files++
	stats.Bytes += int64(len(content))

	ids := guid.Extract(content)
	if len(ids) == 0 {
		return
	}
	stats.Occurrences += len(ids)

	if project.IsMeta(path) {
		inv.Owned.add(ids[0])
	}

	distinct := make([]guid.ID, 0, len(ids))
	inFile := make(Set, len(ids))
	for _, id := range ids {
		if !inv.seen(id) {
			inv.Mapping[id] = ""
			inv.Order = append(inv.Order, id)
		}
		if inFile.Has(id) {
			continue
		}
		inFile.add(id)
		distinct = append(distinct, id)
	}
	inv.Indexed = append(inv.Indexed, path)
	inv.FileIDs[path] = distinct
}
