package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrLoadFailed is returned by Fill when no schema could be loaded.
	ErrLoadFailed = errors.New("tui: form schema could not be loaded")
	// ErrDiscarded is returned by Fill when the user declines to submit and
	// chooses to discard the form.
	ErrDiscarded = errors.New("tui: form discarded")
)
