package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"guidregen/internal/project"
)

// MemProjectRoot is the project directory used by in-memory fixtures.
const MemProjectRoot = "/work/Game"

// Fixture is a Unity project tree built for a test.
type Fixture struct {
	t       testing.TB
	FS      afero.Fs
	Project *project.Project
}

// NewMemProject builds an empty project with an Assets folder on an in-memory filesystem.
func NewMemProject(t testing.TB) *Fixture {
	t.Helper()
	return NewProjectOn(t, afero.NewMemMapFs(), MemProjectRoot)
}

// NewProjectOn builds an empty project with an Assets folder at root on fsys.
func NewProjectOn(t testing.TB, fsys afero.Fs, root string) *Fixture {
	t.Helper()
	p := project.New(fsys, root, "Assets")
	if err := fsys.MkdirAll(p.AssetsPath(), 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	return &Fixture{t: t, FS: fsys, Project: p}
}

// Path returns the absolute path of a file relative to the asset root.
func (f *Fixture) Path(rel string) string {
	return filepath.Join(f.Project.AssetsPath(), filepath.FromSlash(rel))
}

// Write stores content at a path relative to the asset root.
func (f *Fixture) Write(rel, content string) string {
	f.t.Helper()
	path := f.Path(rel)
	if err := f.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := afero.WriteFile(f.FS, path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// Read returns the content stored at a path relative to the asset root.
func (f *Fixture) Read(rel string) string {
	f.t.Helper()
	data, err := afero.ReadFile(f.FS, f.Path(rel))
	if err != nil {
		f.t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// Asset writes an asset file and its sidecar declaring id.
func (f *Fixture) Asset(rel, id, content string) string {
	f.t.Helper()
	f.Write(rel+project.MetaExt, MetaContent(id))
	return f.Write(rel, content)
}

// Folder creates a folder and its sidecar declaring id.
func (f *Fixture) Folder(rel, id string) string {
	f.t.Helper()
	path := f.Path(rel)
	if err := f.FS.MkdirAll(path, 0o755); err != nil {
		f.t.Fatalf("mkdir %s: %v", rel, err)
	}
	f.Write(rel+project.MetaExt, MetaContent(id)+"folderAsset: yes\n")
	return path
}

// Snapshot captures every file in the tree, keyed by absolute path.
func (f *Fixture) Snapshot() map[string]string {
	f.t.Helper()
	out := make(map[string]string)
	err := afero.Walk(f.FS, f.Project.Root(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(f.FS, path)
		if err != nil {
			return err
		}
		out[path] = string(data)
		return nil
	})
	if err != nil {
		f.t.Fatalf("snapshot: %v", err)
	}
	return out
}

// MetaContent renders a minimal sidecar body.
func MetaContent(id string) string {
	return fmt.Sprintf("fileFormatVersion: 2\nguid: %s\nDefaultImporter:\n  externalObjects: {}\n", id)
}

// Ref renders an inline object reference as Unity serializes it.
func Ref(fileID int64, id string, typ int) string {
	return fmt.Sprintf("{fileID: %d, guid: %s, type: %d}", fileID, id, typ)
}
