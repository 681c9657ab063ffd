// Package regen regenerates the identifiers of selected Unity assets.
//
// A run moves through a fixed sequence of phases:
//
//	idle -> resolving -> scanning -> (canceled | rewriting) -> done
//
// Resolving turns the user's selection into the set of identifiers to
// regenerate. Scanning reads every allow-listed text asset under the asset
// root, indexes which identifiers each file contains, records the identifiers
// that sidecar files declare for themselves (the owned set), and mints one
// replacement per distinct identifier. Rewriting revisits only the indexed
// files and substitutes identifiers that are both owned and selected, so
// references to built-in engine resources and to unselected assets survive
// untouched.
//
// Cancellation is cooperative and only honoured while scanning; a canceled
// run never modifies a file. Once rewriting starts it runs to completion or
// to the first I/O error. In-place mode offers no atomicity across files;
// atomic mode stages every rewritten file before renaming any into place.
package regen
