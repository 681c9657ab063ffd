// Package project gives the regenerator a view of a Unity project's asset
// tree.
//
// All access goes through an afero.Fs so the regeneration passes run the same
// way against the real disk and against in-memory trees in tests. The package
// knows the asset root, the ".meta" sidecar convention, and how to turn user
// supplied selection paths into files under the asset root.
package project
