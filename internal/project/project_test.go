package project_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"guidregen/internal/config"
	"guidregen/internal/project"
	"guidregen/internal/testsupport"
)

const (
	matGUID    = "11111111111111111111111111111111"
	folderGUID = "22222222222222222222222222222222"
)

func TestFilesFiltersByExtension(t *testing.T) {
	fx := testsupport.NewMemProject(t)
	fx.Asset("Materials/Red.mat", matGUID, "%YAML 1.1\n")
	fx.Write("Scripts/Player.cs", "class Player {}\n")
	fx.Write("Scenes/Main.UNITY", "guid: x\n")

	files, err := fx.Project.Files(config.DefaultExtensions)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, fx.Project.Rel(f))
	}
	got := strings.Join(rels, ",")
	want := "Materials/Red.mat,Materials/Red.mat.meta,Scenes/Main.UNITY"
	if got != want {
		t.Fatalf("Files = %s, want %s", got, want)
	}
}

func TestCheckLayout(t *testing.T) {
	fx := testsupport.NewMemProject(t)
	if err := fx.Project.CheckLayout(); err != nil {
		t.Fatalf("CheckLayout: %v", err)
	}
	missing := project.New(afero.NewMemMapFs(), "/nowhere", "Assets")
	if err := missing.CheckLayout(); err == nil {
		t.Fatal("expected missing asset root to fail")
	}
}

func TestAssetGUID(t *testing.T) {
	fx := testsupport.NewMemProject(t)
	mat := fx.Asset("Materials/Red.mat", matGUID, "%YAML 1.1\n")
	folder := fx.Folder("Materials", folderGUID)
	orphan := fx.Write("Orphan.asset", "guid: 33333333333333333333333333333333\n")

	id, err := fx.Project.AssetGUID(mat)
	if err != nil || id.String() != matGUID {
		t.Fatalf("AssetGUID(mat) = %q, %v", id, err)
	}
	id, err = fx.Project.AssetGUID(folder)
	if err != nil || id.String() != folderGUID {
		t.Fatalf("AssetGUID(folder) = %q, %v", id, err)
	}
	if _, err := fx.Project.AssetGUID(orphan); !errors.Is(err, project.ErrNoMeta) {
		t.Fatalf("expected ErrNoMeta, got %v", err)
	}

	fx.Write("Broken.asset.meta", "fileFormatVersion: 2\n")
	if _, err := fx.Project.AssetGUID(fx.Path("Broken.asset")); !errors.Is(err, project.ErrNoMeta) {
		t.Fatalf("expected ErrNoMeta for sidecar without guid, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	fx := testsupport.NewMemProject(t)
	mat := fx.Asset("Materials/Red.mat", matGUID, "%YAML 1.1\n")

	cases := []struct {
		name      string
		selection string
		want      string
		wantErr   error
	}{
		{"project relative", "Assets/Materials/Red.mat", mat, nil},
		{"absolute", mat, mat, nil},
		{"asset root", "Assets", fx.Project.AssetsPath(), nil},
		{"missing", "Assets/Materials/Blue.mat", "", fs.ErrNotExist},
		{"outside", filepath.Join(testsupport.MemProjectRoot, "ProjectSettings", "x.asset"), "", project.ErrOutsideAssets},
		{"escape", "Assets/../Library/x.asset", "", project.ErrOutsideAssets},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fx.Project.Resolve(tc.selection)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tc.selection, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tc.selection, err)
			}
			if got != tc.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.selection, got, tc.want)
			}
		})
	}
}

func TestFilesUnderAndRel(t *testing.T) {
	fx := testsupport.NewMemProject(t)
	fx.Folder("Props", folderGUID)
	fx.Asset("Props/Crate.prefab", matGUID, "x\n")
	fx.Asset("Props/Nested/Barrel.prefab", "44444444444444444444444444444444", "x\n")

	files, err := fx.Project.FilesUnder(fx.Path("Props"))
	if err != nil {
		t.Fatalf("FilesUnder: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %v", files)
	}
	if rel := fx.Project.ProjectRel(files[0]); !strings.HasPrefix(rel, "Assets/Props/") {
		t.Fatalf("unexpected project-relative path %q", rel)
	}
	if !fx.Project.IsDir(fx.Path("Props/Nested")) || fx.Project.IsDir(files[0]) {
		t.Fatal("IsDir mismatch")
	}
	if !project.IsMeta("a/b.prefab.meta") || project.IsMeta("a/b.prefab") {
		t.Fatal("IsMeta mismatch")
	}
}
