// Package main hosts the guidregen CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration and the target Unity
// project once, then hands off to the internal packages: regen for scanning
// and rewriting, journal for run history, projectlock for single-writer
// protection, and preflight for path checks.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it through dedicated commands or flags here.
package main
