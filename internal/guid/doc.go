// Package guid holds the identifier primitives used by the regenerator.
//
// Unity text assets reference each other through 32-character lowercase
// alphanumeric tokens that follow the literal marker "guid: ". This package
// extracts those tokens from file contents, validates them, mints fresh
// random replacements, and performs the marker-anchored substitution used by
// the rewrite pass. It has no knowledge of files or projects.
package guid
