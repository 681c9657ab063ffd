package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const defaultMode os.FileMode = 0o644

// StagingMarker appears in the name of every file written by StageFile.
const StagingMarker = ".guidregen-"

// IsStagingFile reports whether name (a base name) was produced by StageFile.
func IsStagingFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, StagingMarker)
}

// ModeOf returns the permission bits of path, or 0o644 when it cannot be read.
func ModeOf(fsys afero.Fs, path string) os.FileMode {
	info, err := fsys.Stat(path)
	if err != nil {
		return defaultMode
	}
	return info.Mode().Perm()
}

// WriteFileKeepMode replaces the content of path, keeping its permissions.
func WriteFileKeepMode(fsys afero.Fs, path string, data []byte) error {
	return afero.WriteFile(fsys, path, data, ModeOf(fsys, path))
}

// StageFile writes data to a temporary sibling of path and returns the
// temporary name. The caller renames it into place or removes it.
func StageFile(fsys afero.Fs, path string, data []byte) (string, error) {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+StagingMarker+"*")
	if err != nil {
		return "", fmt.Errorf("create staging file for %s: %w", path, err)
	}
	name := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = fsys.Remove(name)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", fmt.Errorf("write staging file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("sync staging file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(name)
		return "", fmt.Errorf("close staging file for %s: %w", path, err)
	}
	if err := fsys.Chmod(name, ModeOf(fsys, path)); err != nil {
		_ = fsys.Remove(name)
		return "", fmt.Errorf("chmod staging file for %s: %w", path, err)
	}
	return name, nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification,
// creating parent directories as needed. Removes dst on mismatch.
func CopyFileVerified(fsys afero.Fs, src, dst string) error {
	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
