package regen

import "errors"

var (
	// ErrCanceled is returned when the run was canceled during the scan. No
	// file has been modified.
	ErrCanceled = errors.New("guid regeneration canceled")
	// ErrMissingMapping signals an internal inconsistency: an identifier slated
	// for replacement has no minted counterpart.
	ErrMissingMapping = errors.New("identifier has no replacement mapping")
	// ErrEmptySelection is returned when nothing was selected.
	ErrEmptySelection = errors.New("no assets selected")
	// ErrInvalidTransition is returned when a run attempts a phase change the
	// state machine does not allow.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrBackupInsideAssets rejects backup directories under the asset root,
	// where the copies would be scanned and imported as duplicate assets.
	ErrBackupInsideAssets = errors.New("backup directory is inside the asset folder")
)
