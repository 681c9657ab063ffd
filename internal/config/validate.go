package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateRewrite(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProject() error {
	if len(c.Project.Extensions) == 0 {
		return errors.New("project.extensions must list at least one extension")
	}
	if !slices.Contains(c.Project.Extensions, ".meta") {
		return errors.New("project.extensions must include .meta; asset identifiers are read from sidecar files")
	}
	if filepath.IsAbs(c.Project.AssetsDir) {
		return fmt.Errorf("project.assets_dir must be relative to project.root, got %q", c.Project.AssetsDir)
	}
	return nil
}

func (c *Config) validateRewrite() error {
	switch c.Rewrite.Mode {
	case RewriteInPlace, RewriteAtomic:
		return nil
	default:
		return fmt.Errorf("rewrite.mode: unsupported value %q (want %q or %q)", c.Rewrite.Mode, RewriteInPlace, RewriteAtomic)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
