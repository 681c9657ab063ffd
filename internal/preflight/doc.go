// Package preflight provides readiness checks for the filesystem paths a
// regeneration run depends on.
//
// The regenerate command calls RunAll before touching the project and stops
// on the first failing check, so permission problems surface before any
// file is rewritten. The scan and guid commands only need read access.
package preflight
