package preflight

import (
	"errors"
	"fmt"

	"guidregen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Access selects which permissions RunAll demands of the asset root.
type Access int

const (
	// ReadOnly is enough for scans and dry runs.
	ReadOnly Access = iota
	// ReadWrite is required before files are rewritten.
	ReadWrite
)

// RunAll executes the checks applicable to cfg.
func RunAll(cfg *config.Config, access Access) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckProjectRoot("Project", cfg.Project.Root, cfg.Project.AssetsDir))

	if access == ReadWrite {
		results = append(results, CheckDirectoryAccess("Asset folder", cfg.AssetsPath()))
	} else {
		results = append(results, CheckDirectoryReadable("Asset folder", cfg.AssetsPath()))
	}

	// State directory (only when something is persisted there)
	if cfg.Journal.Enabled || cfg.Logging.File {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	return results
}

// Err joins the details of every failed result, or returns nil.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", r.Name, r.Detail))
		}
	}
	return errors.Join(errs...)
}
