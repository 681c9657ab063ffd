package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"guidregen/internal/guid"
)

// MetaExt is the extension of the sidecar file that stores an asset's identifier.
const MetaExt = ".meta"

var (
	// ErrNoMeta indicates an asset has no readable sidecar identifier.
	ErrNoMeta = errors.New("asset has no .meta identifier")
	// ErrOutsideAssets indicates a selection that does not live under the asset root.
	ErrOutsideAssets = errors.New("path is outside the asset root")
)

// Project is a Unity project rooted at Root with assets under AssetsPath.
type Project struct {
	fs     afero.Fs
	root   string
	assets string
}

// New describes the project at root. assetsDir is relative to root.
func New(fsys afero.Fs, root, assetsDir string) *Project {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	root = filepath.Clean(root)
	return &Project{
		fs:     fsys,
		root:   root,
		assets: filepath.Join(root, assetsDir),
	}
}

// FS exposes the filesystem the project lives on.
func (p *Project) FS() afero.Fs { return p.fs }

// Root returns the project directory.
func (p *Project) Root() string { return p.root }

// AssetsPath returns the asset root.
func (p *Project) AssetsPath() string { return p.assets }

// CheckLayout confirms the asset root exists and is a directory.
func (p *Project) CheckLayout() error {
	info, err := p.fs.Stat(p.assets)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("asset root %s does not exist; is %s a Unity project?", p.assets, p.root)
		}
		return fmt.Errorf("stat asset root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset root %s is not a directory", p.assets)
	}
	return nil
}

// Files lists every file under the asset root whose extension is in the
// allow-list, in lexical order. Extensions are compared case-insensitively.
func (p *Project) Files(extensions []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	var files []string
	err := afero.Walk(p.fs, p.assets, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list asset files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// FilesUnder lists every regular file below dir, at any depth.
func (p *Project) FilesUnder(dir string) ([]string, error) {
	var files []string
	err := afero.Walk(p.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.Rel(dir), err)
	}
	sort.Strings(files)
	return files, nil
}

// IsDir reports whether path is an existing directory.
func (p *Project) IsDir(path string) bool {
	ok, err := afero.DirExists(p.fs, path)
	return err == nil && ok
}

// AssetGUID returns the identifier recorded in the asset's sidecar, which is
// the first identifier in path+".meta".
func (p *Project) AssetGUID(path string) (guid.ID, error) {
	data, err := afero.ReadFile(p.fs, path+MetaExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", p.Rel(path), ErrNoMeta)
		}
		return "", fmt.Errorf("read sidecar for %s: %w", p.Rel(path), err)
	}
	id, ok := guid.First(string(data))
	if !ok {
		return "", fmt.Errorf("%s: %w", p.Rel(path), ErrNoMeta)
	}
	return id, nil
}

// Resolve maps a selection entry onto an absolute path under the asset root.
// Entries may be absolute, relative to the project root (Assets/...), or
// relative to the working directory.
func (p *Project) Resolve(selection string) (string, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return "", errors.New("empty selection path")
	}
	var candidates []string
	if filepath.IsAbs(selection) {
		candidates = append(candidates, filepath.Clean(selection))
	} else {
		candidates = append(candidates, filepath.Join(p.root, selection))
		if abs, err := filepath.Abs(selection); err == nil {
			candidates = append(candidates, abs)
		}
	}
	for _, candidate := range candidates {
		if !p.Contains(candidate) {
			continue
		}
		if ok, err := afero.Exists(p.fs, candidate); err == nil && ok {
			return candidate, nil
		}
	}
	for _, candidate := range candidates {
		if p.Contains(candidate) {
			return "", fmt.Errorf("selection %q: %w", selection, fs.ErrNotExist)
		}
	}
	return "", fmt.Errorf("selection %q: %w", selection, ErrOutsideAssets)
}

// Contains reports whether path is the asset root or lies below it.
func (p *Project) Contains(path string) bool {
	rel, err := filepath.Rel(p.assets, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Rel renders path relative to the asset root with forward slashes. Paths
// outside the root are returned unchanged.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.assets, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// ProjectRel renders path relative to the project root (Assets/...).
func (p *Project) ProjectRel(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// IsMeta reports whether path is a sidecar file.
func IsMeta(path string) bool {
	return strings.EqualFold(filepath.Ext(path), MetaExt)
}
