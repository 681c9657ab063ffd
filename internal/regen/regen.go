package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"guidregen/internal/guid"
	"guidregen/internal/logging"
	"guidregen/internal/project"
)

// Request describes one regeneration run.
type Request struct {
	// Selection lists assets and folders, as accepted by project.Resolve.
	Selection []string
	// Recursive expands selected folders to every file they contain.
	Recursive bool
	// Extensions is the allow-list of scanned file extensions.
	Extensions []string
	// Atomic stages every rewritten file before replacing any.
	Atomic bool
	// DryRun computes the changes without writing.
	DryRun bool
	// BackupDir, when set, receives a verified copy of every file before it is
	// rewritten, laid out relative to the project root.
	BackupDir string
	// Progress receives updates and cancellation requests. Nil disables both.
	Progress Progress
}

// Replacement is one identifier substitution applied to a file.
type Replacement struct {
	Old   guid.ID
	New   guid.ID
	Count int
}

// FileChange lists the substitutions applied to one file.
type FileChange struct {
	Path         string
	Replacements []Replacement
}

// Result summarizes a run. It is returned alongside errors with whatever was
// known when the run stopped.
type Result struct {
	RunID     string
	Phase     Phase
	DryRun    bool
	StartedAt time.Time
	EndedAt   time.Time

	// Selected is the size of the regeneration set.
	Selected int
	// Scanned counts files read during the scan.
	Scanned int
	// Indexed counts files containing at least one identifier.
	Indexed int
	// Owned counts identifiers declared by sidecars.
	Owned int
	// Mapped counts distinct identifiers discovered (and minted for).
	Mapped int

	Changes []FileChange
	// Applied maps every regenerated identifier to its replacement.
	Applied map[guid.ID]guid.ID
}

// RunInfo describes a run to a Recorder before it starts.
type RunInfo struct {
	ID        string
	Project   string
	Selection []string
	Recursive bool
	Atomic    bool
	DryRun    bool
	StartedAt time.Time
}

// Recorder persists run history. Recorder failures are logged and never
// abort a run.
type Recorder interface {
	RunStarted(ctx context.Context, info RunInfo) error
	RunFinished(ctx context.Context, result *Result, runErr error) error
}

// Option customizes a Regenerator.
type Option func(*Regenerator)

// WithSource replaces the identifier source used for minting.
func WithSource(source guid.Source) Option {
	return func(r *Regenerator) { r.source = source }
}

// WithRecorder attaches a run history recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Regenerator) { r.recorder = rec }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Regenerator) { r.now = now }
}

// Regenerator runs identifier regeneration against one project.
type Regenerator struct {
	project  *project.Project
	logger   *slog.Logger
	source   guid.Source
	recorder Recorder
	now      func() time.Time
}

// New constructs a Regenerator for p.
func New(p *project.Project, logger *slog.Logger, opts ...Option) *Regenerator {
	r := &Regenerator{
		project: p,
		logger:  logging.NewComponentLogger(logger, "regen"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Project returns the project the regenerator operates on.
func (r *Regenerator) Project() *project.Project { return r.project }

// Run resolves the selection, scans the asset tree, and rewrites every file
// referencing a selected asset's identifier.
func (r *Regenerator) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Selection) == 0 {
		return nil, ErrEmptySelection
	}
	if err := CheckBackupDir(r.project, req.BackupDir); err != nil {
		return nil, err
	}
	progress := req.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	defer progress.Done()

	result := &Result{
		RunID:     uuid.NewString(),
		Phase:     PhaseIdle,
		DryRun:    req.DryRun,
		StartedAt: r.now().UTC(),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	r.recordStart(ctx, req, result)

	err := r.run(ctx, req, progress, result)
	final := PhaseFailed
	switch {
	case err == nil:
		final = PhaseDone
	case errors.Is(err, ErrCanceled):
		final = PhaseCanceled
	}
	if terr := result.Advance(final); terr != nil {
		err = errors.Join(err, terr)
		result.Phase = PhaseFailed
	}
	result.EndedAt = r.now().UTC()

	logger := logging.WithContext(ctx, r.logger)
	switch result.Phase {
	case PhaseDone:
		logger.Info("guid regeneration finished",
			slog.Int("files_rewritten", len(result.Changes)),
			slog.Int("guids_regenerated", len(result.Applied)),
			slog.Bool("dry_run", req.DryRun),
			slog.Duration("elapsed", result.EndedAt.Sub(result.StartedAt)),
		)
	case PhaseCanceled:
		logger.Warn("guid regeneration canceled", slog.String(logging.FieldImpact, "no files were modified"))
	default:
		logger.Error("guid regeneration failed", logging.Error(err))
	}

	// The run context may already be canceled; the journal still needs the
	// terminal phase.
	r.recordFinish(context.WithoutCancel(ctx), result, err)
	return result, err
}

func (r *Regenerator) run(ctx context.Context, req Request, progress Progress, result *Result) error {
	if err := result.Advance(PhaseResolving); err != nil {
		return err
	}
	selected, err := r.ResolveSelection(logging.WithPhase(ctx, string(PhaseResolving)), req.Selection, req.Recursive)
	if err != nil {
		return err
	}
	result.Selected = len(selected)

	if err := result.Advance(PhaseScanning); err != nil {
		return err
	}
	scanCtx := logging.WithPhase(ctx, string(PhaseScanning))
	inv, err := r.Scan(scanCtx, req.Extensions, progress)
	if err != nil {
		return err
	}
	if err := inv.Mint(guid.NewMinter(r.source)); err != nil {
		return err
	}
	result.Scanned = len(inv.Files)
	result.Indexed = len(inv.Indexed)
	result.Owned = len(inv.Owned)
	result.Mapped = len(inv.Mapping)

	if err := result.Advance(PhaseRewriting); err != nil {
		return err
	}
	rewriteCtx := logging.WithPhase(ctx, string(PhaseRewriting))
	return r.Rewrite(rewriteCtx, inv, selected, req, progress, result)
}

// CheckBackupDir rejects backup directories at or below the project's asset
// root. Relative directories are resolved against the working directory.
func CheckBackupDir(p *project.Project, dir string) error {
	if dir == "" {
		return nil
	}
	abs := filepath.Clean(dir)
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(dir); err != nil {
			return fmt.Errorf("resolve backup directory: %w", err)
		}
	}
	if p.Contains(abs) {
		return fmt.Errorf("%s: %w", dir, ErrBackupInsideAssets)
	}
	return nil
}

func (r *Regenerator) recordStart(ctx context.Context, req Request, result *Result) {
	if r.recorder == nil {
		return
	}
	info := RunInfo{
		ID:        result.RunID,
		Project:   r.project.Root(),
		Selection: append([]string(nil), req.Selection...),
		Recursive: req.Recursive,
		Atomic:    req.Atomic,
		DryRun:    req.DryRun,
		StartedAt: result.StartedAt,
	}
	if err := r.recorder.RunStarted(ctx, info); err != nil {
		logging.Warn(logging.WithContext(ctx, r.logger), "run journal unavailable", "journal_write_failed",
			"run history will not include this run", logging.Error(err))
	}
}

func (r *Regenerator) recordFinish(ctx context.Context, result *Result, runErr error) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RunFinished(ctx, result, runErr); err != nil {
		logging.Warn(logging.WithContext(ctx, r.logger), "run journal update failed", "journal_write_failed",
			"run history may show this run as incomplete", logging.Error(err))
	}
}

func checkCanceled(ctx context.Context, progress Progress, phase Phase, item string, fraction float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	if progress.Update(phase, item, fraction) {
		return ErrCanceled
	}
	return nil
}
