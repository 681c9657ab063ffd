package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeProject(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRewrite()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeProject() error {
	if value, ok := os.LookupEnv("GUIDREGEN_PROJECT"); ok && strings.TrimSpace(value) != "" {
		c.Project.Root = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Project.Root) == "" {
		c.Project.Root = defaultProjectRoot
	}
	var err error
	if c.Project.Root, err = expandPath(strings.TrimSpace(c.Project.Root)); err != nil {
		return fmt.Errorf("project.root: %w", err)
	}

	c.Project.AssetsDir = filepath.Clean(strings.TrimSpace(c.Project.AssetsDir))
	if c.Project.AssetsDir == "." || c.Project.AssetsDir == "" {
		c.Project.AssetsDir = defaultAssetsDir
	}

	c.Project.Extensions = NormalizeExtensions(c.Project.Extensions)
	return nil
}

// NormalizeExtensions lowercases, dot-prefixes, and dedupes extensions while
// preserving their order. Blank entries are dropped.
func NormalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		ext = strings.TrimPrefix(ext, "*")
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRewrite() {
	c.Rewrite.Mode = strings.ToLower(strings.TrimSpace(c.Rewrite.Mode))
	if c.Rewrite.Mode == "" {
		c.Rewrite.Mode = RewriteInPlace
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("GUIDREGEN_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
