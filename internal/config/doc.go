// Package config loads, normalizes, and validates guidregen configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GUIDREGEN_PROJECT. The Config type centralizes the project layout, the
// scanned extension allow-list, rewrite behaviour, journal and logging
// settings so the CLI resolves everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
