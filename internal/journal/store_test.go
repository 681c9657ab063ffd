package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"guidregen/internal/guid"
	"guidregen/internal/journal"
	"guidregen/internal/regen"
	"guidregen/internal/testsupport"
)

var baseTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func startRun(t *testing.T, store *journal.Store, id string, started time.Time) {
	t.Helper()
	err := store.RunStarted(context.Background(), regen.RunInfo{
		ID:        id,
		Project:   "/work/Game",
		Selection: []string{"Assets/Materials/Red.mat", "Assets/Prefabs"},
		Recursive: true,
		Atomic:    true,
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("RunStarted: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	startRun(t, store, "run-1", baseTime)

	run, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Finished() {
		t.Fatal("run should not be finished yet")
	}
	if run.Phase != regen.PhaseResolving || run.Mode != "atomic" || !run.Recursive {
		t.Fatalf("unexpected started run %+v", run)
	}
	if len(run.Selection) != 2 || run.Selection[1] != "Assets/Prefabs" {
		t.Fatalf("selection not round-tripped: %v", run.Selection)
	}

	result := &regen.Result{
		RunID:   "run-1",
		Phase:   regen.PhaseDone,
		EndedAt: baseTime.Add(2 * time.Second),
		Scanned: 42,
		Changes: []regen.FileChange{{Path: "a"}, {Path: "b"}, {Path: "c"}},
		Applied: map[guid.ID]guid.ID{
			"b0000000000000000000000000000000": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"a0000000000000000000000000000000": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		},
	}
	if err := store.RunFinished(ctx, result, nil); err != nil {
		t.Fatalf("RunFinished: %v", err)
	}

	run, err = store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !run.Finished() || !run.FinishedAt.Equal(result.EndedAt) {
		t.Fatalf("unexpected finish time %v", run.FinishedAt)
	}
	if run.Phase != regen.PhaseDone || run.FilesScanned != 42 || run.FilesRewritten != 3 || run.GUIDsRegenerated != 2 {
		t.Fatalf("unexpected finished run %+v", run)
	}
	if run.ErrorMessage != "" {
		t.Fatalf("unexpected error message %q", run.ErrorMessage)
	}

	mappings, err := store.Mappings(ctx, "run-1")
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(mappings) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(mappings))
	}
	if mappings[0].Old != "a0000000000000000000000000000000" || mappings[0].New != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("unexpected first mapping %+v", mappings[0])
	}
}

func TestRunFinishedStoresError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	startRun(t, store, "run-err", baseTime)
	result := &regen.Result{RunID: "run-err", Phase: regen.PhaseFailed, EndedAt: baseTime.Add(time.Second)}
	if err := store.RunFinished(ctx, result, errors.New("write Scenes/Main.unity: permission denied")); err != nil {
		t.Fatalf("RunFinished: %v", err)
	}
	run, err := store.Get(ctx, "run-err")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Phase != regen.PhaseFailed || run.ErrorMessage != "write Scenes/Main.unity: permission denied" {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestRunFinishedUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)

	err := store.RunFinished(context.Background(), &regen.Result{RunID: "missing", Phase: regen.PhaseDone}, nil)
	if !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		startRun(t, store, fmt.Sprintf("run-%d", i), baseTime.Add(time.Duration(i)*time.Minute))
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 4 || runs[0].ID != "run-3" || runs[3].ID != "run-0" {
		t.Fatalf("unexpected order: %v", runIDs(runs))
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 || limited[1].ID != "run-2" {
		t.Fatalf("unexpected limited list: %v", runIDs(limited))
	}
}

func TestGetByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	startRun(t, store, "3f2a9c10-aaaa", baseTime)
	startRun(t, store, "3f2b0000-bbbb", baseTime.Add(time.Minute))

	run, err := store.Get(ctx, "3f2a")
	if err != nil {
		t.Fatalf("Get by prefix: %v", err)
	}
	if run.ID != "3f2a9c10-aaaa" {
		t.Fatalf("unexpected run %s", run.ID)
	}
	if _, err := store.Get(ctx, "3f2"); !errors.Is(err, journal.ErrAmbiguousRun) {
		t.Fatalf("expected ErrAmbiguousRun, got %v", err)
	}
	if _, err := store.Get(ctx, "ffff"); !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.JournalPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := journal.Open(cfg); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRejectsForeignDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	db, err := sql.Open("sqlite", cfg.JournalPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_ = db.Close()

	if _, err := journal.Open(cfg); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRecorderIntegratesWithRegenerator(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	fx := testsupport.NewMemProject(t)
	fx.Asset("Red.mat", "c0000000000000000000000000000001", "m_Shader: {fileID: 46, guid: 0000000000000000f000000000000000, type: 0}\n")
	fx.Asset("Crate.prefab", "c0000000000000000000000000000002", "m: {fileID: 2100000, guid: c0000000000000000000000000000001, type: 2}\n")

	r := regen.New(fx.Project, nil, regen.WithRecorder(store))
	res, err := r.Run(context.Background(), regen.Request{
		Selection:  []string{"Assets/Red.mat"},
		Extensions: cfg.Project.Extensions,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := store.Get(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Phase != regen.PhaseDone || run.FilesRewritten != 2 || run.GUIDsRegenerated != 1 {
		t.Fatalf("unexpected journaled run %+v", run)
	}
	mappings, err := store.Mappings(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(mappings) != 1 || mappings[0].New != res.Applied["c0000000000000000000000000000001"] {
		t.Fatalf("unexpected mappings %+v", mappings)
	}
}

func runIDs(runs []*journal.Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func TestCanceledRunIsFinishedInJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	fx := testsupport.NewMemProject(t)
	fx.Asset("Red.mat", "c0000000000000000000000000000001", "m_Shader: {fileID: 46, guid: 0000000000000000f000000000000000, type: 0}\n")
	fx.Asset("Crate.prefab", "c0000000000000000000000000000002", "m: {fileID: 2100000, guid: c0000000000000000000000000000001, type: 2}\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := 0
	r := regen.New(fx.Project, nil, regen.WithRecorder(store))
	res, err := r.Run(ctx, regen.Request{
		Selection:  []string{"Assets/Red.mat"},
		Extensions: cfg.Project.Extensions,
		Progress: regen.ProgressFunc(func(regen.Phase, string, float64) bool {
			updates++
			if updates == 2 {
				cancel()
			}
			return false
		}),
	})
	if !errors.Is(err, regen.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}

	run, err := store.Get(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Phase != regen.PhaseCanceled || !run.Finished() {
		t.Fatalf("journaled phase=%s finished=%v, want canceled and finished", run.Phase, run.Finished())
	}
	if run.FilesRewritten != 0 || run.ErrorMessage == "" {
		t.Fatalf("unexpected journaled run %+v", run)
	}
}
