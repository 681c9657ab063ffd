package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"guidregen/internal/guid"
	"guidregen/internal/regen"
)

var (
	// ErrRunNotFound is returned when no run matches an identifier.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when a run id prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// timeLayout keeps a fixed width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	modeInPlace = "inplace"
	modeAtomic  = "atomic"
)

// Run is one journaled regeneration.
type Run struct {
	ID               string
	Project          string
	StartedAt        time.Time
	FinishedAt       time.Time
	Phase            regen.Phase
	Recursive        bool
	Mode             string
	DryRun           bool
	Selection        []string
	FilesScanned     int
	FilesRewritten   int
	GUIDsRegenerated int
	ErrorMessage     string
}

// Finished reports whether the run reached a terminal phase.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Mapping is one old-to-new identifier pair applied by a run.
type Mapping struct {
	Old guid.ID
	New guid.ID
}

const runColumns = "id, project, started_at, finished_at, phase, recursive, mode, dry_run, selection_json, files_scanned, files_rewritten, guids_regenerated, error_message"

// RunStarted inserts a run row. It implements regen.Recorder.
func (s *Store) RunStarted(ctx context.Context, info regen.RunInfo) error {
	selection, err := json.Marshal(info.Selection)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	mode := modeInPlace
	if info.Atomic {
		mode = modeAtomic
	}
	err = s.execWithoutResultRetry(ctx,
		`INSERT INTO runs (id, project, started_at, phase, recursive, mode, dry_run, selection_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID,
		info.Project,
		info.StartedAt.UTC().Format(timeLayout),
		string(regen.PhaseResolving),
		boolToInt(info.Recursive),
		mode,
		boolToInt(info.DryRun),
		string(selection),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", info.ID, err)
	}
	return nil
}

// RunFinished stores the outcome of a run and the identifiers it replaced.
// It implements regen.Recorder.
func (s *Store) RunFinished(ctx context.Context, result *regen.Result, runErr error) error {
	if result == nil {
		return nil
	}
	var errMsg sql.NullString
	if runErr != nil {
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	finished := result.EndedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	olds := make([]guid.ID, 0, len(result.Applied))
	for old := range result.Applied {
		olds = append(olds, old)
	}
	sort.Slice(olds, func(i, j int) bool { return olds[i] < olds[j] })

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET finished_at = ?, phase = ?, files_scanned = ?, files_rewritten = ?,
             guids_regenerated = ?, error_message = ? WHERE id = ?`,
			finished.UTC().Format(timeLayout),
			string(result.Phase),
			result.Scanned,
			len(result.Changes),
			len(result.Applied),
			errMsg,
			result.RunID,
		)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, result.RunID)
		}
		if len(olds) == 0 {
			return nil
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO run_mappings (run_id, old_guid, new_guid) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, old := range olds {
			if _, err := stmt.ExecContext(ctx, result.RunID, string(old), string(result.Applied[old])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("finish run %s: %w", result.RunID, err)
	}
	return nil
}

// List returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run whose id equals or starts with idOrPrefix.
func (s *Store) Get(ctx context.Context, idOrPrefix string) (*Run, error) {
	ctx = ensureContext(ctx)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	run, err := scanRun(s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", idOrPrefix))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", idOrPrefix, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2", len(idOrPrefix), idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", idOrPrefix, err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// Mappings returns the identifier pairs recorded for a run, ordered by old identifier.
func (s *Store) Mappings(ctx context.Context, runID string) ([]Mapping, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT old_guid, new_guid FROM run_mappings WHERE run_id = ? ORDER BY old_guid", runID)
	if err != nil {
		return nil, fmt.Errorf("list mappings for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var oldID, newID string
		if err := rows.Scan(&oldID, &newID); err != nil {
			return nil, err
		}
		out = append(out, Mapping{Old: guid.ID(oldID), New: guid.ID(newID)})
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           string
		project      string
		startedRaw   string
		finishedRaw  sql.NullString
		phase        string
		recursive    int64
		mode         string
		dryRun       int64
		selection    sql.NullString
		scanned      int64
		rewritten    int64
		regenerated  int64
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&project,
		&startedRaw,
		&finishedRaw,
		&phase,
		&recursive,
		&mode,
		&dryRun,
		&selection,
		&scanned,
		&rewritten,
		&regenerated,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:               id,
		Project:          project,
		StartedAt:        parseTime(startedRaw),
		Phase:            regen.Phase(phase),
		Recursive:        recursive != 0,
		Mode:             mode,
		DryRun:           dryRun != 0,
		FilesScanned:     int(scanned),
		FilesRewritten:   int(rewritten),
		GUIDsRegenerated: int(regenerated),
		ErrorMessage:     errorMessage.String,
	}
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	if selection.Valid && selection.String != "" {
		if err := json.Unmarshal([]byte(selection.String), &run.Selection); err != nil {
			return nil, fmt.Errorf("decode selection for run %s: %w", id, err)
		}
	}
	return run, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

var _ regen.Recorder = (*Store)(nil)
